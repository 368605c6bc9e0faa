package services

import (
	"fmt"
	"strings"
	"time"
)

// ShouldFire — чистый предикат: совпала ли локальная минута пользователя с
// настроенным временем напоминания. Никакого состояния "уже отправлено"
// здесь нет — им владеет планировщик через users.last_reminder.
func ShouldFire(offsetHours int, reminder *string, utcNow time.Time) bool {
	if reminder == nil {
		return false
	}
	h, m, err := parseClockTime(*reminder)
	if err != nil {
		return false
	}
	local := utcNow.Add(time.Duration(offsetHours) * time.Hour)
	return local.Hour() == h && local.Minute() == m
}

// LocalDate — календарная дата пользователя в его часовом поясе.
func LocalDate(offsetHours int, utcNow time.Time) time.Time {
	return Midnight(utcNow.Add(time.Duration(offsetHours) * time.Hour))
}

// ParseReminderTime валидирует пользовательский ввод "ЧЧ:ММ" и приводит его
// к каноничному виду. Секунды отбрасываются.
func ParseReminderTime(s string) (string, error) {
	h, m, err := parseClockTime(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: время напоминания должно быть в формате ЧЧ:ММ", ErrInvalidInput)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// ValidateTimezoneOffset проверяет смещение в допустимом диапазоне UTC-12..UTC+14.
func ValidateTimezoneOffset(offset int) error {
	if offset < -12 || offset > 14 {
		return fmt.Errorf("%w: смещение часового пояса вне диапазона -12..+14", ErrInvalidInput)
	}
	return nil
}

// parseClockTime принимает "15:04" и "15:04:05" — Postgres отдаёт TIME во
// второй форме.
func parseClockTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
