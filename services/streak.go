package services

import (
	"sort"
	"time"
)

// NextStreak — O(1) переход streak по кэшированному состоянию привычки.
// Продолжает серию только вчерашняя отметка; всё остальное (пропуск дня,
// первая отметка, last_completed в будущем из-за сдвига часов) начинает
// серию заново с 1. Полную историю здесь не читаем никогда.
func NextStreak(prev int, lastCompleted *time.Time, today time.Time) int {
	if lastCompleted != nil && sameDay(*lastCompleted, today.AddDate(0, 0, -1)) {
		return prev + 1
	}
	return 1
}

// RebuildStreak восстанавливает (streak, last_completed) полным проходом по
// истории отметок. Не горячий путь: нужен для сверки кэшированных полей с
// леджером и для ремонта после ручных правок данных.
func RebuildStreak(dates []time.Time) (int, *time.Time) {
	days := normalizeDays(dates)
	if len(days) == 0 {
		return 0, nil
	}

	last := days[len(days)-1]
	streak := 1
	for i := len(days) - 2; i >= 0; i-- {
		if !days[i].Equal(days[i+1].AddDate(0, 0, -1)) {
			break
		}
		streak++
	}
	return streak, &last
}

// normalizeDays: обрезаем до полуночи, сортируем, убираем дубликаты.
func normalizeDays(dates []time.Time) []time.Time {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		days = append(days, Midnight(d))
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := days[:0]
	for i, d := range days {
		if i == 0 || !d.Equal(out[len(out)-1]) {
			out = append(out, d)
		}
	}
	return out
}
