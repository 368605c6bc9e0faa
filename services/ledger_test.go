package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLedger(t *testing.T) (*Ledger, *fakeStore, *fixedClock) {
	t.Helper()
	store := newFakeStore()
	clock := &fixedClock{now: time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)}
	return NewLedger(store, clock, zap.NewNop()), store, clock
}

func TestRecordCompletionIdempotent(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	store.addHabit(1, 10, "Бег")

	first, err := ledger.RecordCompletion(1)
	require.NoError(t, err)
	assert.Equal(t, Recorded, first.Status)
	assert.Equal(t, 1, first.Streak)

	// Вторая отметка за тот же день — не ошибка и не мутация.
	second, err := ledger.RecordCompletion(1)
	require.NoError(t, err)
	assert.Equal(t, AlreadyRecorded, second.Status)
	assert.Equal(t, 1, second.Streak)
}

func TestRecordCompletionUnknownHabit(t *testing.T) {
	ledger, _, _ := newTestLedger(t)

	_, err := ledger.RecordCompletion(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordCompletionInactiveHabit(t *testing.T) {
	ledger, store, _ := newTestLedger(t)
	habit := store.addHabit(1, 10, "Бег")
	habit.IsActive = false

	_, err := ledger.RecordCompletion(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStreakGrowsAndResets(t *testing.T) {
	ledger, store, clock := newTestLedger(t)
	store.addHabit(1, 10, "Бег")

	// Дни 1, 2, 3 подряд.
	for want := 1; want <= 3; want++ {
		res, err := ledger.RecordCompletion(1)
		require.NoError(t, err)
		assert.Equal(t, want, res.Streak)
		clock.advance(1)
	}

	// День 4 пропущен, отметка в день 5 — серия заново.
	clock.advance(1)
	res, err := ledger.RecordCompletion(1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
}

func TestMilestoneAchievement(t *testing.T) {
	ledger, store, clock := newTestLedger(t)
	store.addHabit(1, 10, "Бег")

	var last *CompletionResult
	for i := 0; i < 3; i++ {
		var err error
		last, err = ledger.RecordCompletion(1)
		require.NoError(t, err)
		clock.advance(1)
	}

	assert.Equal(t, "Серия 3 дней", last.Achievement)
	require.Len(t, store.achievements, 1)
	assert.Equal(t, uint(10), store.achievements[0].UserID)

	// Между порогами ачивки не выдаются.
	res, err := ledger.RecordCompletion(1)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Streak)
	assert.Empty(t, res.Achievement)
	assert.Len(t, store.achievements, 1)
}

// Кэшированный streak обязан совпадать с полной реконструкцией по леджеру —
// для любой последовательности дней с повторами и пропусками.
func TestCachedStreakMatchesLedgerTruth(t *testing.T) {
	sequences := [][]int{
		{0, 0, 1, 2},
		{0, 2, 3, 3, 4},
		{0, 1, 5, 6, 7, 9},
		{0, 1, 2, 3, 4, 5, 6},
	}

	for _, seq := range sequences {
		ledger, store, clock := newTestLedger(t)
		store.addHabit(1, 10, "Чтение")
		start := clock.now

		for _, off := range seq {
			clock.now = start.AddDate(0, 0, off)
			_, err := ledger.RecordCompletion(1)
			require.NoError(t, err)
		}

		habit := store.habits[1]
		rebuilt, rebuiltLast := RebuildStreak(store.loggedDates(1))
		require.NotNil(t, rebuiltLast)
		assert.Equal(t, rebuilt, habit.Streak, "sequence %v", seq)
		assert.Equal(t, *rebuiltLast, *habit.LastCompleted, "sequence %v", seq)
	}
}

func TestNormalizeTitle(t *testing.T) {
	got, err := NormalizeTitle("  Бег по утрам  ")
	require.NoError(t, err)
	assert.Equal(t, "Бег по утрам", got)

	_, err = NormalizeTitle(" а ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NormalizeTitle("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
