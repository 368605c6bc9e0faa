package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wz7jpprpd8-debug/habits-bot/models"
	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("привычка не найдена")
	ErrInvalidInput = errors.New("некорректные данные")
)

// CompletionStore — персистентная часть леджера (реализуется db.Repository).
type CompletionStore interface {
	GetActiveHabit(habitID uint) (*models.Habit, error)

	// CompleteHabit атомарно вставляет строку лога (habit_id, date) и, если
	// строка новая, применяет next к кэшированному состоянию под блокировкой
	// строки привычки. inserted=false — день уже был отмечен, мутаций нет.
	CompleteHabit(habitID uint, date time.Time, next func(prev int, last *time.Time) int) (inserted bool, streak int, err error)

	CreateAchievement(userID uint, title, description string) error
}

type CompletionStatus int

const (
	Recorded CompletionStatus = iota
	AlreadyRecorded
)

type CompletionResult struct {
	Status      CompletionStatus
	Streak      int
	Date        time.Time
	Achievement string // название ачивки, если серия дошла до порога
}

// Ledger записывает выполнения привычек: одна отметка на день, повторная —
// валидный идемпотентный исход, а не ошибка. Дату берёт только из Clock:
// отметки задним числом не поддерживаются.
type Ledger struct {
	store  CompletionStore
	clock  Clock
	logger *zap.Logger
}

func NewLedger(store CompletionStore, clock Clock, logger *zap.Logger) *Ledger {
	return &Ledger{store: store, clock: clock, logger: logger}
}

// RecordCompletion отмечает привычку выполненной за сегодняшний день.
func (l *Ledger) RecordCompletion(habitID uint) (*CompletionResult, error) {
	habit, err := l.store.GetActiveHabit(habitID)
	if err != nil {
		return nil, err
	}

	today := l.clock.Today()
	inserted, streak, err := l.store.CompleteHabit(habitID, today, func(prev int, last *time.Time) int {
		return NextStreak(prev, last, today)
	})
	if err != nil {
		return nil, err
	}

	if !inserted {
		// streak пришёл из-под блокировки строки — в гонке двух отметок
		// проигравший видит уже обновлённое значение победителя.
		l.logger.Info("completion_duplicate",
			zap.Uint("habit_id", habitID),
			zap.Time("date", today),
		)
		return &CompletionResult{Status: AlreadyRecorded, Streak: streak, Date: today}, nil
	}

	result := &CompletionResult{Status: Recorded, Streak: streak, Date: today}

	// Ачивка — best effort: её потеря не должна ломать отметку.
	if title, desc, ok := milestoneFor(streak); ok {
		if err := l.store.CreateAchievement(habit.UserID, title, desc); err != nil {
			l.logger.Warn("achievement_award_failed",
				zap.Uint("user_id", habit.UserID),
				zap.Error(err),
			)
		} else {
			result.Achievement = title
		}
	}

	l.logger.Info("habit_completed",
		zap.Uint("habit_id", habitID),
		zap.Int("streak", streak),
	)
	return result, nil
}

// Пороговые серии, за которые выдаётся ачивка.
var streakMilestones = []int{3, 7, 30, 100}

func milestoneFor(streak int) (title, description string, ok bool) {
	for _, m := range streakMilestones {
		if streak == m {
			return fmt.Sprintf("Серия %d дней", m),
				fmt.Sprintf("Привычка выполнялась %d дней подряд без пропусков", m),
				true
		}
	}
	return "", "", false
}

// NormalizeTitle валидирует название привычки: минимум 2 символа после
// обрезки пробелов.
func NormalizeTitle(s string) (string, error) {
	title := strings.TrimSpace(s)
	if utf8.RuneCountInString(title) < 2 {
		return "", fmt.Errorf("%w: название привычки должно быть не короче 2 символов", ErrInvalidInput)
	}
	return title, nil
}
