package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/wz7jpprpd8-debug/habits-bot/db"
	"github.com/wz7jpprpd8-debug/habits-bot/models"
	"github.com/wz7jpprpd8-debug/habits-bot/services"
)

var (
	repo       *db.Repository
	ledger     *services.Ledger
	statsSvc   *services.StatsService
	summarizer services.Summarizer
	clock      services.Clock
	notifier   services.Notifier
)

// Setup внедряет зависимости хендлеров и регистрирует кастомные валидаторы.
func Setup(r *db.Repository, l *services.Ledger, s *services.StatsService, sum services.Summarizer, c services.Clock, n services.Notifier) {
	repo = r
	ledger = l
	statsSvc = s
	summarizer = sum
	clock = c
	notifier = n

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := services.ParseReminderTime(fl.Field().String())
			return err == nil
		})
	}
}

// queryUser достаёт пользователя по telegram_id из query-параметра.
func queryUser(c *gin.Context) (*models.User, bool) {
	telegramID, err := strconv.ParseInt(c.Query("telegram_id"), 10, 64)
	if err != nil || telegramID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Нужен параметр telegram_id"})
		return nil, false
	}
	return userByTelegramID(c, telegramID)
}

func userByTelegramID(c *gin.Context, telegramID int64) (*models.User, bool) {
	user, err := repo.GetUserByTelegramID(telegramID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Пользователь не найден. Напиши /start"})
		return nil, false
	}
	return user, true
}

func habitParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID привычки"})
		return 0, false
	}
	return uint(id), true
}
