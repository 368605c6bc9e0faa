package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wz7jpprpd8-debug/habits-bot/services"
	"github.com/wz7jpprpd8-debug/habits-bot/utils"
	"go.uber.org/zap"
)

// RegisterUser — первый контакт: апсерт по telegram_id, без пароля и прочей
// аутентификации (пользователя идентифицирует Telegram).
func RegisterUser(c *gin.Context) {
	var input struct {
		TelegramID int64  `json:"telegram_id" binding:"required"`
		Username   string `json:"username"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	user, err := repo.GetOrCreateUser(input.TelegramID, input.Username)
	if err != nil {
		utils.Logger.Error("register_user_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при регистрации"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateSettings — часовой пояс и время напоминания. Пустая строка
// reminder_time выключает напоминание.
func UpdateSettings(c *gin.Context) {
	var input struct {
		TelegramID     int64   `json:"telegram_id" binding:"required"`
		TimezoneOffset *int    `json:"timezone_offset" binding:"omitempty,min=-12,max=14"`
		ReminderTime   *string `json:"reminder_time" binding:"omitempty,hhmm"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	user, ok := userByTelegramID(c, input.TelegramID)
	if !ok {
		return
	}

	if input.TimezoneOffset != nil {
		if err := services.ValidateTimezoneOffset(*input.TimezoneOffset); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if input.ReminderTime != nil && *input.ReminderTime != "" {
		normalized, err := services.ParseReminderTime(*input.ReminderTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.ReminderTime = &normalized
	}

	if err := repo.UpdateUserSettings(user.ID, input.TimezoneOffset, input.ReminderTime); err != nil {
		utils.Logger.Error("update_settings_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении настроек"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Настройки сохранены"})
}
