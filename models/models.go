package models

import "time"

type User struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	TelegramID     int64         `gorm:"uniqueIndex" json:"telegram_id"`
	Username       string        `json:"username"`
	TimezoneOffset int           `gorm:"default:0" json:"timezone_offset"`
	ReminderTime   *string       `gorm:"type:time" json:"reminder_time"`
	LastReminder   *time.Time    `gorm:"type:date" json:"last_reminder"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	Habits         []Habit       `gorm:"foreignKey:UserID"`
	Achievements   []Achievement `gorm:"foreignKey:UserID"`
}

type Habit struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `json:"user_id"`
	Title         string     `json:"title"`
	Streak        int        `gorm:"default:0" json:"streak"`
	LastCompleted *time.Time `gorm:"type:date" json:"last_completed"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	Logs          []HabitLog `gorm:"foreignKey:HabitID"`
}

// HabitLog — одна отметка выполнения. Не больше одной записи на (habit_id, date).
type HabitLog struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	HabitID uint      `gorm:"uniqueIndex:idx_habit_date" json:"habit_id"`
	Date    time.Time `gorm:"type:date;uniqueIndex:idx_habit_date" json:"date"`
}

type Achievement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EarnedAt    time.Time `gorm:"autoCreateTime" json:"earned_at"`
}
