package services

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
	"github.com/wz7jpprpd8-debug/habits-bot/utils"
	"go.uber.org/zap"
)

// ErrUnavailable — AI-коллаборатор не ответил. Всегда перехватывается и
// превращается в запасной текст: корректность леджера и streak от него не
// зависит.
var ErrUnavailable = errors.New("AI-анализ временно недоступен")

// Summarizer превращает статистику привычки в текст для пользователя.
type Summarizer interface {
	Summarize(habitTitle string, stats *Stats) (string, error)
}

// OpenAISummarizer — chat completion с параметрами исходного бота.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAISummarizer(apiKey, model string, logger *zap.Logger) *OpenAISummarizer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAISummarizer{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

func (s *OpenAISummarizer) Summarize(habitTitle string, stats *Stats) (string, error) {
	prompt := utils.HabitAnalysisPrompt(
		habitTitle,
		stats.Total,
		stats.BestWeekday,
		stats.WorstWeekday,
		stats.AvgRunLength,
		stats.MaxRunLength,
	)

	resp, err := s.client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.4,
		MaxTokens:   300,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		utils.SummarizerErrors.Inc()
		s.logger.Warn("summarizer_failed", zap.Error(err))
		return "", ErrUnavailable
	}
	if len(resp.Choices) == 0 {
		utils.SummarizerErrors.Inc()
		s.logger.Warn("summarizer_empty_response")
		return "", ErrUnavailable
	}

	return resp.Choices[0].Message.Content, nil
}
