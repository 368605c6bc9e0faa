package services

import (
	"errors"
	"time"
)

// ErrNoData — в истории нет ни одной отметки; среднее по пустому набору не
// определено, поэтому это отдельный результат, а не нулевая статистика.
var ErrNoData = errors.New("недостаточно данных для анализа")

// Stats — дескриптивная статистика по истории выполнений одной привычки.
// Дни недели считаются как в исходном трекере: понедельник = 0, воскресенье = 6.
type Stats struct {
	Total        int     `json:"total"`
	BestWeekday  int     `json:"best_weekday"`
	WorstWeekday int     `json:"worst_weekday"`
	AvgRunLength float64 `json:"avg_run_length"`
	MaxRunLength int     `json:"max_run_length"`
}

// Aggregate строит статистику по множеству дат выполнения. Вход сортируется
// и дедуплицируется здесь же: инвариант "одна отметка в день" защищаем даже
// от сырых строк, переданных вызывающим.
//
// BestWeekday — день с наибольшим числом отметок, WorstWeekday — день с
// наименьшим среди дней, где отметки вообще были; ничьи в обоих случаях
// разрешаются в пользу меньшего индекса дня.
func Aggregate(dates []time.Time) (*Stats, error) {
	days := normalizeDays(dates)
	if len(days) == 0 {
		return nil, ErrNoData
	}

	var hist [7]int
	for _, d := range days {
		hist[MondayWeekday(d)]++
	}

	best, worst := 0, -1
	for wd := 0; wd < 7; wd++ {
		if hist[wd] > hist[best] {
			best = wd
		}
		if hist[wd] == 0 {
			continue
		}
		if worst == -1 || hist[wd] < hist[worst] {
			worst = wd
		}
	}

	runs := runLengths(days)
	sum, max := 0, 0
	for _, r := range runs {
		sum += r
		if r > max {
			max = r
		}
	}

	return &Stats{
		Total:        len(days),
		BestWeekday:  best,
		WorstWeekday: worst,
		AvgRunLength: float64(sum) / float64(len(runs)),
		MaxRunLength: max,
	}, nil
}

// runLengths — RLE по отсортированным дням: серия растёт, пока день идёт
// сразу за предыдущим, иначе закрывается и начинается новая.
func runLengths(days []time.Time) []int {
	runs := make([]int, 0, len(days))
	current := 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			current++
			continue
		}
		runs = append(runs, current)
		current = 1
	}
	return append(runs, current)
}

// DayCount — одна точка тренда.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// WindowedCounts раскладывает отметки по каждому календарному дню отрезка
// [start, end] включительно, заполняя нулями дни без отметок. Ни один день
// не пропускается — график тренда опирается на это.
func WindowedCounts(dates []time.Time, start, end time.Time) []DayCount {
	start, end = Midnight(start), Midnight(end)

	counts := make(map[time.Time]int, len(dates))
	for _, d := range dates {
		counts[Midnight(d)]++
	}

	var out []DayCount
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, DayCount{Date: d, Count: counts[d]})
	}
	return out
}

// MondayWeekday переводит time.Weekday (воскресенье = 0) в соглашение
// понедельник = 0 .. воскресенье = 6.
func MondayWeekday(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}
