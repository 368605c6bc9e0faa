package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wz7jpprpd8-debug/habits-bot/cache"
	"github.com/wz7jpprpd8-debug/habits-bot/models"
	"github.com/wz7jpprpd8-debug/habits-bot/services"
	"github.com/wz7jpprpd8-debug/habits-bot/utils"
	"go.uber.org/zap"
)

// Telegram update — разбираем только то, что нужно командам.
type tgUpdate struct {
	Message *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"from"`
	} `json:"message"`
	CallbackQuery *struct {
		Data string `json:"data"`
		From struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
		} `json:"from"`
	} `json:"callback_query"`
}

const stateAwaitingTitle = "awaiting_title"

const helpText = "👋 Привет!\n\n" +
	"Я бот для трекинга привычек.\n\n" +
	"Команды:\n" +
	"/add Название\n" +
	"/list\n" +
	"/done ID\n" +
	"/ai — AI-анализ\n" +
	"/remind ЧЧ:ММ\n" +
	"/timezone +3"

// BotWebhook — тонкий адаптер Telegram-команд поверх тех же сервисов, что и
// HTTP API. Telegram всегда получает 200, иначе начинает ретраить апдейт.
func BotWebhook(c *gin.Context) {
	var update tgUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	switch {
	case update.Message != nil:
		handleBotMessage(update.Message.From.ID, update.Message.From.Username, update.Message.Text)
	case update.CallbackQuery != nil:
		handleBotCallback(update.CallbackQuery.From.ID, update.CallbackQuery.From.Username, update.CallbackQuery.Data)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func handleBotMessage(telegramID int64, username, text string) {
	user, err := repo.GetOrCreateUser(telegramID, username)
	if err != nil {
		utils.Logger.Error("bot_user_upsert_failed", zap.Error(err))
		return
	}

	text = strings.TrimSpace(text)
	command, args := splitCommand(text)

	switch command {
	case "/start":
		reply(telegramID, helpText)

	case "/add":
		if args == "" {
			// Двухшаговый /add: название придёт следующим сообщением.
			cache.SetUserState(telegramID, stateAwaitingTitle, 10*time.Minute)
			reply(telegramID, "Напиши название привычки")
			return
		}
		botCreateHabit(user, args)

	case "/list":
		botListHabits(user)

	case "/done":
		habitID, err := strconv.ParseUint(args, 10, 32)
		if err != nil {
			reply(telegramID, "❗ Используй: /done ID")
			return
		}
		botComplete(user, uint(habitID))

	case "/ai":
		botAnalyze(user)

	case "/remind":
		normalized, err := services.ParseReminderTime(args)
		if err != nil {
			reply(telegramID, "❗ Используй: /remind ЧЧ:ММ")
			return
		}
		if err := repo.UpdateUserSettings(user.ID, nil, &normalized); err != nil {
			reply(telegramID, "Не получилось сохранить напоминание")
			return
		}
		reply(telegramID, fmt.Sprintf("⏰ Напоминание каждый день в %s", normalized))

	case "/timezone":
		offset, err := strconv.Atoi(strings.TrimPrefix(args, "+"))
		if err != nil || services.ValidateTimezoneOffset(offset) != nil {
			reply(telegramID, "❗ Используй: /timezone +3 (от -12 до +14)")
			return
		}
		if err := repo.UpdateUserSettings(user.ID, &offset, nil); err != nil {
			reply(telegramID, "Не получилось сохранить часовой пояс")
			return
		}
		reply(telegramID, fmt.Sprintf("🌍 Часовой пояс: UTC%+d", offset))

	default:
		// Не команда: возможно, ждём название привычки после /add.
		if state, _ := cache.GetUserState(telegramID); state == stateAwaitingTitle {
			cache.ClearUserState(telegramID)
			botCreateHabit(user, text)
			return
		}
		reply(telegramID, helpText)
	}
}

func handleBotCallback(telegramID int64, username, data string) {
	user, err := repo.GetOrCreateUser(telegramID, username)
	if err != nil {
		utils.Logger.Error("bot_user_upsert_failed", zap.Error(err))
		return
	}

	if id, found := strings.CutPrefix(data, "done:"); found {
		habitID, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			return
		}
		botComplete(user, uint(habitID))
	}
}

func botCreateHabit(user *models.User, rawTitle string) {
	title, err := services.NormalizeTitle(rawTitle)
	if err != nil {
		reply(user.TelegramID, "❗ Название привычки должно быть не короче 2 символов")
		return
	}

	habit, err := repo.CreateHabit(user.ID, title)
	if err != nil {
		utils.Logger.Error("bot_create_habit_failed", zap.Error(err))
		reply(user.TelegramID, "Не получилось добавить привычку")
		return
	}

	reply(user.TelegramID, fmt.Sprintf("✅ Привычка «%s» добавлена (/done %d)", habit.Title, habit.ID))
}

func botListHabits(user *models.User) {
	habits, err := repo.ListActiveHabits(user.ID)
	if err != nil {
		reply(user.TelegramID, "Не получилось загрузить привычки")
		return
	}
	if len(habits) == 0 {
		reply(user.TelegramID, "У тебя пока нет привычек. /add Название")
		return
	}

	var b strings.Builder
	for _, h := range habits {
		fmt.Fprintf(&b, "📌 %s — 🔥 %d (/done %d)\n", h.Title, h.Streak, h.ID)
	}
	reply(user.TelegramID, b.String())
}

func botComplete(user *models.User, habitID uint) {
	if _, err := repo.GetUserHabit(habitID, user.ID); err != nil {
		reply(user.TelegramID, "❌ Привычка не найдена")
		return
	}

	result, err := ledger.RecordCompletion(habitID)
	if err != nil {
		reply(user.TelegramID, "Не получилось отметить выполнение")
		return
	}

	if result.Status == services.AlreadyRecorded {
		utils.DuplicateCompletions.Inc()
		reply(user.TelegramID, "⚠️ Сегодня уже отмечено")
		return
	}

	utils.CompletionsTotal.Inc()
	services.InvalidateUserStats(user.ID)
	cache.Delete(fmt.Sprintf("habit_stats:%d", habitID))

	message := fmt.Sprintf("🔥 Отлично! Streak: %d дней", result.Streak)
	if result.Achievement != "" {
		message += "\n🏆 " + result.Achievement
	}
	reply(user.TelegramID, message)
}

func botAnalyze(user *models.User) {
	habits, err := repo.ListActiveHabits(user.ID)
	if err != nil || len(habits) == 0 {
		reply(user.TelegramID, "Нет привычек для анализа")
		return
	}

	// Как в исходном боте: анализируем самую первую привычку.
	habit := habits[0]

	dates, err := repo.GetCompletionDates(habit.ID, nil, nil)
	if err != nil {
		reply(user.TelegramID, "Не получилось загрузить историю")
		return
	}

	stats, err := services.Aggregate(dates)
	if errors.Is(err, services.ErrNoData) {
		reply(user.TelegramID, "Недостаточно данных для анализа")
		return
	}

	text, err := summarizer.Summarize(habit.Title, stats)
	if err != nil {
		reply(user.TelegramID, "🤖 AI-анализ временно недоступен. Попробуй позже.")
		return
	}

	reply(user.TelegramID, "🧠 AI-анализ привычки\n\n"+text)
}

func reply(telegramID int64, text string) {
	if err := notifier.Notify(telegramID, text); err != nil {
		utils.Logger.Warn("bot_reply_failed",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err),
		)
	}
}

func splitCommand(text string) (command, args string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	command, args, _ = strings.Cut(text, " ")
	// Команды вида /add@habits_bot тоже валидны.
	command, _, _ = strings.Cut(command, "@")
	return command, strings.TrimSpace(args)
}
