package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wz7jpprpd8-debug/habits-bot/cache"
	"github.com/wz7jpprpd8-debug/habits-bot/services"
	"github.com/wz7jpprpd8-debug/habits-bot/utils"
	"go.uber.org/zap"
)

func CreateHabit(c *gin.Context) {
	var input struct {
		TelegramID int64  `json:"telegram_id" binding:"required"`
		Title      string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	user, ok := userByTelegramID(c, input.TelegramID)
	if !ok {
		return
	}

	title, err := services.NormalizeTitle(input.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := repo.CreateHabit(user.ID, title)
	if err != nil {
		utils.Logger.Error("create_habit_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании привычки"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("✅ Привычка «%s» добавлена", habit.Title),
		"habit":   habit,
	})
}

func GetHabits(c *gin.Context) {
	user, ok := queryUser(c)
	if !ok {
		return
	}

	habits, err := repo.ListActiveHabits(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении привычек"})
		return
	}

	c.JSON(http.StatusOK, habits)
}

// CompleteHabit — отметка "выполнено сегодня". Повторный вызов за тот же
// день — не ошибка: сообщаем already_recorded, streak не меняется.
func CompleteHabit(c *gin.Context) {
	var input struct {
		TelegramID int64 `json:"telegram_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные"})
		return
	}

	user, ok := userByTelegramID(c, input.TelegramID)
	if !ok {
		return
	}
	habitID, ok := habitParam(c)
	if !ok {
		return
	}

	// Проверяем владельца до записи.
	if _, err := repo.GetUserHabit(habitID, user.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "❌ Привычка не найдена"})
		return
	}

	result, err := ledger.RecordCompletion(habitID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "❌ Привычка не найдена"})
			return
		}
		utils.Logger.Error("complete_habit_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении отметки"})
		return
	}

	if result.Status == services.AlreadyRecorded {
		utils.DuplicateCompletions.Inc()
		c.JSON(http.StatusOK, gin.H{
			"message":          "⚠️ Сегодня уже отмечено",
			"streak":           result.Streak,
			"already_recorded": true,
		})
		return
	}

	utils.CompletionsTotal.Inc()
	services.InvalidateUserStats(user.ID)
	cache.Delete(fmt.Sprintf("habit_stats:%d", habitID))

	message := fmt.Sprintf("🔥 Отлично! Streak: %d дней", result.Streak)
	if result.Achievement != "" {
		message += "\n🏆 " + result.Achievement
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          message,
		"streak":           result.Streak,
		"already_recorded": false,
		"achievement":      result.Achievement,
	})
}

func DeleteHabit(c *gin.Context) {
	user, ok := queryUser(c)
	if !ok {
		return
	}
	habitID, ok := habitParam(c)
	if !ok {
		return
	}

	if err := repo.DeactivateHabit(habitID, user.ID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "❌ Привычка не найдена"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при удалении привычки"})
		return
	}

	services.InvalidateUserStats(user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Привычка удалена"})
}

// GetHabitStats — агрегированная статистика по одной привычке.
func GetHabitStats(c *gin.Context) {
	user, ok := queryUser(c)
	if !ok {
		return
	}
	habitID, ok := habitParam(c)
	if !ok {
		return
	}

	habit, err := repo.GetUserHabit(habitID, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "❌ Привычка не найдена"})
		return
	}

	cacheKey := fmt.Sprintf("habit_stats:%d", habitID)
	var cached services.Stats
	if err := cache.Get(cacheKey, &cached); err == nil {
		c.JSON(http.StatusOK, gin.H{"habit_id": habitID, "title": habit.Title, "stats": cached})
		return
	}

	dates, err := repo.GetCompletionDates(habitID, nil, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении логов"})
		return
	}

	stats, err := services.Aggregate(dates)
	if errors.Is(err, services.ErrNoData) {
		c.JSON(http.StatusOK, gin.H{
			"habit_id": habitID,
			"title":    habit.Title,
			"no_data":  true,
			"message":  "Недостаточно данных для анализа",
		})
		return
	}

	cache.Set(cacheKey, stats, 5*time.Minute)
	c.JSON(http.StatusOK, gin.H{"habit_id": habitID, "title": habit.Title, "stats": stats})
}

// GetHabitTrend — тренд по дням за окно (по умолчанию 7 дней), дни без
// отметок заполнены нулями.
func GetHabitTrend(c *gin.Context) {
	user, ok := queryUser(c)
	if !ok {
		return
	}
	habitID, ok := habitParam(c)
	if !ok {
		return
	}

	if _, err := repo.GetUserHabit(habitID, user.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "❌ Привычка не найдена"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 || days > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Окно должно быть от 1 до 90 дней"})
		return
	}

	end := clock.Today()
	start := end.AddDate(0, 0, -(days - 1))

	dates, err := repo.GetCompletionDates(habitID, &start, &end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении логов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit_id": habitID,
		"trend":    services.WindowedCounts(dates, start, end),
	})
}

// AnalyzeHabit — AI-анализ: статистика → промпт → саммаризатор. Отказ AI
// не фатален, возвращаем запасной текст.
func AnalyzeHabit(c *gin.Context) {
	user, ok := queryUser(c)
	if !ok {
		return
	}
	habitID, ok := habitParam(c)
	if !ok {
		return
	}

	habit, err := repo.GetUserHabit(habitID, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "❌ Привычка не найдена"})
		return
	}

	dates, err := repo.GetCompletionDates(habitID, nil, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении логов"})
		return
	}

	stats, err := services.Aggregate(dates)
	if errors.Is(err, services.ErrNoData) {
		c.JSON(http.StatusOK, gin.H{"no_data": true, "message": "Недостаточно данных для анализа"})
		return
	}

	text, err := summarizer.Summarize(habit.Title, stats)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"analysis":    "🤖 AI-анализ временно недоступен. Попробуй позже.",
			"stats":       stats,
			"unavailable": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis": "🧠 AI-анализ привычки\n\n" + text,
		"stats":    stats,
	})
}

// GetUserStats — статистика по всем привычкам пользователя, параллельный
// подсчёт с кэшем.
func GetUserStats(c *gin.Context) {
	user, ok := queryUser(c)
	if !ok {
		return
	}

	stats, err := statsSvc.UserStats(user.ID)
	if err != nil {
		utils.Logger.Error("user_stats_failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при расчёте статистики"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func GetAchievements(c *gin.Context) {
	user, ok := queryUser(c)
	if !ok {
		return
	}

	achievements, err := repo.ListAchievements(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при получении ачивок"})
		return
	}

	c.JSON(http.StatusOK, achievements)
}
