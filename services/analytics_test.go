package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 3 июня 2024 — понедельник.
var monday = day(2024, time.June, 3)

func TestAggregateEmptyIsNoData(t *testing.T) {
	stats, err := Aggregate(nil)
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, ErrNoData)
}

// Сценарий из жизни: отметки в дни 1, 2, 3, пропуск, день 5.
func TestAggregateRuns(t *testing.T) {
	dates := []time.Time{
		monday,
		monday.AddDate(0, 0, 1),
		monday.AddDate(0, 0, 2),
		monday.AddDate(0, 0, 4),
	}

	stats, err := Aggregate(dates)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.MaxRunLength)
	assert.Equal(t, 2.0, stats.AvgRunLength)
}

func TestAggregateWeekdayConvention(t *testing.T) {
	// Понедельник = 0, воскресенье = 6.
	assert.Equal(t, 0, MondayWeekday(monday))
	assert.Equal(t, 6, MondayWeekday(monday.AddDate(0, 0, 6)))

	stats, err := Aggregate([]time.Time{monday.AddDate(0, 0, 6)})
	require.NoError(t, err)
	assert.Equal(t, 6, stats.BestWeekday)
	assert.Equal(t, 6, stats.WorstWeekday)
}

func TestAggregateBestWorstTieBreaks(t *testing.T) {
	// Два понедельника, два вторника, одна среда.
	dates := []time.Time{
		monday,
		monday.AddDate(0, 0, 7),
		monday.AddDate(0, 0, 1),
		monday.AddDate(0, 0, 8),
		monday.AddDate(0, 0, 2),
	}

	stats, err := Aggregate(dates)
	require.NoError(t, err)

	// Ничья 2:2 между пн и вт — берём меньший индекс.
	assert.Equal(t, 0, stats.BestWeekday)
	assert.Equal(t, 2, stats.WorstWeekday)
}

func TestAggregateWorstIgnoresEmptyWeekdays(t *testing.T) {
	// Отметки только по пятницам: дни без отметок не кандидаты в худшие.
	friday := monday.AddDate(0, 0, 4)
	dates := []time.Time{friday, friday.AddDate(0, 0, 7)}

	stats, err := Aggregate(dates)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.BestWeekday)
	assert.Equal(t, 4, stats.WorstWeekday)
}

func TestAggregateDeduplicates(t *testing.T) {
	dates := []time.Time{monday, monday, monday.AddDate(0, 0, 1)}

	stats, err := Aggregate(dates)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.MaxRunLength)
}

func TestWindowedCountsFillsEveryDay(t *testing.T) {
	start := monday
	end := monday.AddDate(0, 0, 6)
	dates := []time.Time{
		monday.AddDate(0, 0, 1),
		monday.AddDate(0, 0, 4),
	}

	trend := WindowedCounts(dates, start, end)
	require.Len(t, trend, 7)

	zeros := 0
	total := 0
	for i, dc := range trend {
		assert.Equal(t, start.AddDate(0, 0, i), dc.Date)
		total += dc.Count
		if dc.Count == 0 {
			zeros++
		}
	}
	assert.Equal(t, 2, total)
	assert.Equal(t, 5, zeros)
}

func TestWindowedCountsSingleDay(t *testing.T) {
	trend := WindowedCounts([]time.Time{monday}, monday, monday)
	require.Len(t, trend, 1)
	assert.Equal(t, 1, trend[0].Count)
}
