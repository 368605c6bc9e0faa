package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wz7jpprpd8-debug/habits-bot/cache"
	"github.com/wz7jpprpd8-debug/habits-bot/models"
	"go.uber.org/zap"
)

// AnalyticsStore — чтение истории для агрегатора.
type AnalyticsStore interface {
	ListActiveHabits(userID uint) ([]models.Habit, error)
	GetCompletionDates(habitID uint, start, end *time.Time) ([]time.Time, error)
}

type HabitStats struct {
	HabitID uint   `json:"habit_id"`
	Title   string `json:"title"`
	Streak  int    `json:"streak"`
	Stats   *Stats `json:"stats,omitempty"` // nil — по привычке ещё нет отметок
	Err     error  `json:"-"`
}

type UserStats struct {
	UserID         uint          `json:"user_id"`
	TotalHabits    int           `json:"total_habits"`
	HabitStats     []HabitStats  `json:"habit_stats"`
	ProcessingTime time.Duration `json:"processing_time_ms"`
}

// StatsService считает статистику по всем привычкам пользователя. Привычки
// независимы, поэтому каждая считается в своей горутине, результаты
// собираются из канала. Готовый ответ живёт в Redis до первой новой отметки.
type StatsService struct {
	store  AnalyticsStore
	logger *zap.Logger
}

func NewStatsService(store AnalyticsStore, logger *zap.Logger) *StatsService {
	return &StatsService{store: store, logger: logger}
}

func (s *StatsService) UserStats(userID uint) (*UserStats, error) {
	startTime := time.Now()

	cacheKey := fmt.Sprintf("user_stats:%d", userID)
	var cached UserStats
	if err := cache.Get(cacheKey, &cached); err == nil {
		s.logger.Info("cache_hit", zap.String("key", cacheKey))
		return &cached, nil
	}

	habits, err := s.store.ListActiveHabits(userID)
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return &UserStats{UserID: userID}, nil
	}

	statsChan := make(chan HabitStats, len(habits))
	var wg sync.WaitGroup

	for _, habit := range habits {
		wg.Add(1)
		go func(h models.Habit) {
			defer wg.Done()
			statsChan <- s.habitStats(h)
		}(habit)
	}

	go func() {
		wg.Wait()
		close(statsChan)
	}()

	var habitStats []HabitStats
	for stat := range statsChan {
		if stat.Err != nil {
			s.logger.Warn("habit_stats_error",
				zap.Uint("habit_id", stat.HabitID),
				zap.Error(stat.Err),
			)
			continue
		}
		habitStats = append(habitStats, stat)
	}

	// Горутины финишируют в произвольном порядке.
	sort.Slice(habitStats, func(i, j int) bool { return habitStats[i].HabitID < habitStats[j].HabitID })

	result := &UserStats{
		UserID:         userID,
		TotalHabits:    len(habits),
		HabitStats:     habitStats,
		ProcessingTime: time.Since(startTime),
	}

	cache.Set(cacheKey, result, 5*time.Minute)

	s.logger.Info("stats_calculated_concurrently",
		zap.Uint("user_id", userID),
		zap.Int("habits_count", len(habits)),
		zap.Duration("duration", result.ProcessingTime),
	)

	return result, nil
}

func (s *StatsService) habitStats(h models.Habit) HabitStats {
	stat := HabitStats{HabitID: h.ID, Title: h.Title, Streak: h.Streak}

	dates, err := s.store.GetCompletionDates(h.ID, nil, nil)
	if err != nil {
		stat.Err = err
		return stat
	}

	if agg, err := Aggregate(dates); err == nil {
		stat.Stats = agg
	}
	return stat
}

// InvalidateUserStats сбрасывает кэш после новой отметки.
func InvalidateUserStats(userID uint) {
	cache.Delete(fmt.Sprintf("user_stats:%d", userID))
}
