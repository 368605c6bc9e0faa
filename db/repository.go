package db

import (
	"errors"
	"time"

	"github.com/wz7jpprpd8-debug/habits-bot/models"
	"github.com/wz7jpprpd8-debug/habits-bot/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository — единственная точка доступа движка к Postgres. Реализует
// интерфейсы магазинов из services (CompletionStore, ReminderStore,
// AnalyticsStore).
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- пользователи ---

// GetOrCreateUser — апсерт по telegram_id при первом контакте.
func (r *Repository) GetOrCreateUser(telegramID int64, username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{TelegramID: telegramID, Username: username}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoNothing: true,
	}).Create(&user).Error; err != nil {
		return nil, err
	}
	// При гонке вставок перечитываем строку победителя.
	if user.ID == 0 {
		if err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func (r *Repository) GetUserByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserSettings меняет часовой пояс и/или время напоминания.
// reminder == nil — поле не трогаем, пустая строка — напоминание выключаем.
func (r *Repository) UpdateUserSettings(userID uint, offset *int, reminder *string) error {
	updates := map[string]interface{}{}
	if offset != nil {
		updates["timezone_offset"] = *offset
	}
	if reminder != nil {
		if *reminder == "" {
			updates["reminder_time"] = nil
		} else {
			updates["reminder_time"] = *reminder
		}
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (r *Repository) ListUsersWithReminder() ([]models.User, error) {
	var users []models.User
	err := r.db.Where("reminder_time IS NOT NULL").Find(&users).Error
	return users, err
}

func (r *Repository) MarkReminderSent(userID uint, date time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("last_reminder", date).Error
}

// --- привычки ---

func (r *Repository) CreateHabit(userID uint, title string) (*models.Habit, error) {
	habit := models.Habit{UserID: userID, Title: title, IsActive: true}
	if err := r.db.Create(&habit).Error; err != nil {
		return nil, err
	}
	return &habit, nil
}

func (r *Repository) GetActiveHabit(habitID uint) (*models.Habit, error) {
	var habit models.Habit
	err := r.db.Where("id = ? AND is_active = ?", habitID, true).First(&habit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// GetUserHabit — активная привычка с проверкой владельца.
func (r *Repository) GetUserHabit(habitID, userID uint) (*models.Habit, error) {
	var habit models.Habit
	err := r.db.Where("id = ? AND user_id = ? AND is_active = ?", habitID, userID, true).
		First(&habit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

func (r *Repository) ListActiveHabits(userID uint) ([]models.Habit, error) {
	var habits []models.Habit
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at").Find(&habits).Error
	return habits, err
}

// DeactivateHabit — мягкое удаление: история отметок остаётся для аналитики.
func (r *Repository) DeactivateHabit(habitID, userID uint) error {
	res := r.db.Model(&models.Habit{}).
		Where("id = ? AND user_id = ? AND is_active = ?", habitID, userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

// --- леджер ---

// CompleteHabit атомарно вставляет отметку и обновляет кэшированный streak.
// FOR UPDATE на строке привычки сериализует конкурентные отметки одного дня:
// вставку выигрывает ровно одна, вторая видит RowsAffected == 0.
func (r *Repository) CompleteHabit(habitID uint, date time.Time, next func(prev int, last *time.Time) int) (bool, int, error) {
	var inserted bool
	var streak int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var habit models.Habit
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_active = ?", habitID, true).
			First(&habit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrNotFound
			}
			return err
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
			DoNothing: true,
		}).Create(&models.HabitLog{HabitID: habitID, Date: date})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			inserted = false
			streak = habit.Streak
			return nil
		}

		inserted = true
		streak = next(habit.Streak, habit.LastCompleted)
		return tx.Model(&models.Habit{}).Where("id = ?", habitID).
			Updates(map[string]interface{}{
				"streak":         streak,
				"last_completed": date,
			}).Error
	})

	return inserted, streak, err
}

// GetCompletionDates — история отметок по возрастанию даты; границы окна
// опциональны.
func (r *Repository) GetCompletionDates(habitID uint, start, end *time.Time) ([]time.Time, error) {
	q := r.db.Model(&models.HabitLog{}).Where("habit_id = ?", habitID)
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date <= ?", *end)
	}

	var dates []time.Time
	err := q.Order("date").Pluck("date", &dates).Error
	return dates, err
}

// --- ачивки ---

func (r *Repository) CreateAchievement(userID uint, title, description string) error {
	return r.db.Create(&models.Achievement{
		UserID:      userID,
		Title:       title,
		Description: description,
	}).Error
}

func (r *Repository) ListAchievements(userID uint) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.Where("user_id = ?", userID).Order("earned_at DESC").Find(&achievements).Error
	return achievements, err
}
