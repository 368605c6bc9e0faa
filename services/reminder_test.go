package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wz7jpprpd8-debug/habits-bot/models"
	"go.uber.org/zap"
)

func TestShouldFire(t *testing.T) {
	utc1800 := time.Date(2024, time.June, 3, 18, 0, 30, 0, time.UTC)

	// UTC+3, напоминание на 21:00: локально сейчас ровно 21:00.
	assert.True(t, ShouldFire(3, strPtr("21:00"), utc1800))

	// Минутой позже уже не совпадает.
	assert.False(t, ShouldFire(3, strPtr("21:00"), utc1800.Add(time.Minute)))

	// Без настроенного напоминания не срабатывает никогда.
	assert.False(t, ShouldFire(3, nil, utc1800))

	// Отрицательное смещение.
	assert.True(t, ShouldFire(-5, strPtr("13:00"), utc1800))
}

func TestShouldFirePostgresTimeFormat(t *testing.T) {
	// Postgres отдаёт TIME как "21:00:00" — секунды отбрасываются.
	utc1800 := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	assert.True(t, ShouldFire(3, strPtr("21:00:00"), utc1800))
}

func TestShouldFireMalformedTime(t *testing.T) {
	utc1800 := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	assert.False(t, ShouldFire(3, strPtr("not a time"), utc1800))
}

func TestParseReminderTime(t *testing.T) {
	got, err := ParseReminderTime(" 9:05 ")
	require.NoError(t, err)
	assert.Equal(t, "09:05", got)

	got, err = ParseReminderTime("21:00")
	require.NoError(t, err)
	assert.Equal(t, "21:00", got)

	_, err = ParseReminderTime("25:00")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseReminderTime("вечером")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateTimezoneOffset(t *testing.T) {
	assert.NoError(t, ValidateTimezoneOffset(-12))
	assert.NoError(t, ValidateTimezoneOffset(0))
	assert.NoError(t, ValidateTimezoneOffset(14))
	assert.ErrorIs(t, ValidateTimezoneOffset(-13), ErrInvalidInput)
	assert.ErrorIs(t, ValidateTimezoneOffset(15), ErrInvalidInput)
}

func TestLocalDateCrossesMidnight(t *testing.T) {
	// 23:30 UTC при +3 — уже следующий локальный день.
	utcNow := time.Date(2024, time.June, 3, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, day(2024, time.June, 4), LocalDate(3, utcNow))
	assert.Equal(t, day(2024, time.June, 3), LocalDate(0, utcNow))
}

func TestSchedulerTickSendsOncePerLocalDay(t *testing.T) {
	user := models.User{
		ID:             1,
		TelegramID:     100500,
		TimezoneOffset: 3,
		ReminderTime:   strPtr("21:00"),
	}
	store := newFakeReminderStore(user)
	notifier := &fakeNotifier{}
	scheduler := NewReminderScheduler(store, notifier, &fixedClock{}, 2, zap.NewNop())

	utc1800 := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)

	scheduler.Tick(utc1800)
	assert.Equal(t, 1, notifier.count())

	// Повторный тик в ту же минуту: last_reminder уже сегодняшний, дубля нет.
	scheduler.Tick(utc1800.Add(30 * time.Second))
	assert.Equal(t, 1, notifier.count())

	// На следующий локальный день напоминание срабатывает снова.
	scheduler.Tick(utc1800.AddDate(0, 0, 1))
	assert.Equal(t, 2, notifier.count())
}

func TestSchedulerTickSkipsNonMatchingUsers(t *testing.T) {
	noReminder := models.User{ID: 1, TelegramID: 1, TimezoneOffset: 3}
	wrongMinute := models.User{ID: 2, TelegramID: 2, TimezoneOffset: 3, ReminderTime: strPtr("21:01")}

	store := newFakeReminderStore(noReminder, wrongMinute)
	notifier := &fakeNotifier{}
	scheduler := NewReminderScheduler(store, notifier, &fixedClock{}, 2, zap.NewNop())

	scheduler.Tick(time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, 0, notifier.count())
}
