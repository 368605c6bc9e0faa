package services

import "time"

// Clock отдаёт текущее время. Внедряется снаружи, чтобы streak и
// напоминания были детерминированы в тестах.
type Clock interface {
	NowUTC() time.Time
	Today() time.Time
}

type UTCClock struct{}

func (UTCClock) NowUTC() time.Time { return time.Now().UTC() }

func (UTCClock) Today() time.Time { return Midnight(time.Now().UTC()) }

// Midnight truncates t to its calendar day (00:00 UTC).
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
