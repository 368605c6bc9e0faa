package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Telegram шлёт сообщения через Bot API sendMessage. Тонкий адаптер:
// вся доставка — один POST.
type Telegram struct {
	token  string
	client *http.Client
}

func NewTelegram(token string) *Telegram {
	return &Telegram{
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Telegram) Notify(telegramID int64, text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id": telegramID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	resp, err := t.client.Post(
		fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token),
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage: status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier — заглушка для запуска без BOT_TOKEN: сообщения уходят в лог.
type LogNotifier struct {
	Logger *zap.Logger
}

func (l *LogNotifier) Notify(telegramID int64, text string) error {
	l.Logger.Info("notification_logged",
		zap.Int64("telegram_id", telegramID),
		zap.String("text", text),
	)
	return nil
}
