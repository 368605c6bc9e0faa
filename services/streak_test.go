package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStreakFirstCompletion(t *testing.T) {
	today := day(2024, time.June, 3)
	assert.Equal(t, 1, NextStreak(0, nil, today))
}

func TestNextStreakConsecutive(t *testing.T) {
	today := day(2024, time.June, 4)
	yesterday := day(2024, time.June, 3)

	assert.Equal(t, 2, NextStreak(1, &yesterday, today))
	assert.Equal(t, 8, NextStreak(7, &yesterday, today))
}

func TestNextStreakGapResets(t *testing.T) {
	today := day(2024, time.June, 5)
	twoDaysAgo := day(2024, time.June, 3)

	// Отметка была позавчера: день пропущен, серия начинается заново.
	assert.Equal(t, 1, NextStreak(4, &twoDaysAgo, today))
}

func TestNextStreakClockSkew(t *testing.T) {
	today := day(2024, time.June, 3)
	future := day(2024, time.June, 10)

	// last_completed в будущем — деградация часов, не продолжаем серию.
	assert.Equal(t, 1, NextStreak(5, &future, today))
}

func TestRebuildStreakEmpty(t *testing.T) {
	streak, last := RebuildStreak(nil)
	assert.Equal(t, 0, streak)
	assert.Nil(t, last)
}

func TestRebuildStreak(t *testing.T) {
	tests := []struct {
		name   string
		days   []int // смещения в днях от базовой даты
		streak int
	}{
		{"single day", []int{0}, 1},
		{"two consecutive", []int{0, 1}, 2},
		{"gap before tail", []int{0, 1, 2, 4}, 1},
		{"long tail after gap", []int{0, 2, 3, 4, 5}, 4},
		{"all consecutive", []int{0, 1, 2, 3, 4}, 5},
		{"duplicates collapse", []int{0, 0, 1, 1}, 2},
	}

	base := day(2024, time.June, 3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dates []time.Time
			for _, off := range tt.days {
				dates = append(dates, base.AddDate(0, 0, off))
			}

			streak, last := RebuildStreak(dates)
			require.NotNil(t, last)
			assert.Equal(t, tt.streak, streak)
			assert.Equal(t, base.AddDate(0, 0, tt.days[len(tt.days)-1]), *last)
		})
	}
}

// Инкрементальный O(1) переход должен давать то же, что и полная
// реконструкция по истории — для любой последовательности отметок.
func TestIncrementalMatchesRebuild(t *testing.T) {
	sequences := [][]int{
		{0},
		{0, 1, 2},
		{0, 1, 3, 4, 5},
		{0, 2, 4, 6},
		{0, 1, 2, 5, 6, 7, 8, 20, 21},
		{0, 3, 4, 5, 6, 7, 8, 9, 10},
	}

	base := day(2024, time.January, 1)
	for _, seq := range sequences {
		streak := 0
		var last *time.Time
		var history []time.Time

		for _, off := range seq {
			today := base.AddDate(0, 0, off)
			streak = NextStreak(streak, last, today)
			d := today
			last = &d
			history = append(history, today)
		}

		rebuilt, rebuiltLast := RebuildStreak(history)
		require.NotNil(t, rebuiltLast)
		assert.Equal(t, rebuilt, streak, "sequence %v", seq)
		assert.Equal(t, *rebuiltLast, *last, "sequence %v", seq)
	}
}
