package services

import (
	"sync"
	"time"

	"github.com/wz7jpprpd8-debug/habits-bot/models"
	"github.com/wz7jpprpd8-debug/habits-bot/utils"
	"go.uber.org/zap"
)

// ReminderStore — выборка пользователей с напоминаниями и отметка отправки.
type ReminderStore interface {
	ListUsersWithReminder() ([]models.User, error)
	MarkReminderSent(userID uint, date time.Time) error
}

// Notifier доставляет текст пользователю; сам транспорт сообщений — внешний
// коллаборатор.
type Notifier interface {
	Notify(telegramID int64, text string) error
}

const reminderText = "⏰ Время отметить привычки! /list"

// ReminderScheduler раз в минуту проверяет всех пользователей с настроенным
// временем напоминания. Дедупликация "уже напомнили сегодня" идёт только
// через users.last_reminder — предикат ShouldFire остаётся чистым.
type ReminderScheduler struct {
	store    ReminderStore
	notifier Notifier
	clock    Clock
	logger   *zap.Logger
	workers  int

	stop chan struct{}
	done chan struct{}
}

func NewReminderScheduler(store ReminderStore, notifier Notifier, clock Clock, workers int, logger *zap.Logger) *ReminderScheduler {
	if workers < 1 {
		workers = 4
	}
	return &ReminderScheduler{
		store:    store,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		workers:  workers,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run тикает с заданным интервалом до вызова Stop. Интервал не мельче
// минуты: ShouldFire сравнивает минуты, и более частый тик дал бы дубликаты
// внутри одной минуты.
func (s *ReminderScheduler) Run(interval time.Duration) {
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.done)

	s.logger.Info("reminder_scheduler_started", zap.Duration("interval", interval))

	for {
		select {
		case <-ticker.C:
			s.Tick(s.clock.NowUTC())
		case <-s.stop:
			s.logger.Info("reminder_scheduler_stopped")
			return
		}
	}
}

func (s *ReminderScheduler) Stop() {
	close(s.stop)
	<-s.done
}

// Tick обрабатывает один проход планировщика. Отправки уходят через worker
// pool: внешний транспорт не заваливаем всеми пользователями разом.
func (s *ReminderScheduler) Tick(utcNow time.Time) {
	users, err := s.store.ListUsersWithReminder()
	if err != nil {
		s.logger.Error("reminder_list_failed", zap.Error(err))
		return
	}

	jobs := make(chan models.User, len(users))
	var wg sync.WaitGroup

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				s.send(u, utcNow)
			}
		}()
	}

	for _, u := range users {
		if !ShouldFire(u.TimezoneOffset, u.ReminderTime, utcNow) {
			continue
		}
		if alreadyNotifiedToday(u, utcNow) {
			continue
		}
		jobs <- u
	}
	close(jobs)
	wg.Wait()
}

func alreadyNotifiedToday(u models.User, utcNow time.Time) bool {
	if u.LastReminder == nil {
		return false
	}
	return sameDay(*u.LastReminder, LocalDate(u.TimezoneOffset, utcNow))
}

func (s *ReminderScheduler) send(u models.User, utcNow time.Time) {
	if err := s.notifier.Notify(u.TelegramID, reminderText); err != nil {
		s.logger.Warn("reminder_send_failed",
			zap.Int64("telegram_id", u.TelegramID),
			zap.Error(err),
		)
		return
	}

	localToday := LocalDate(u.TimezoneOffset, utcNow)
	if err := s.store.MarkReminderSent(u.ID, localToday); err != nil {
		s.logger.Error("reminder_mark_failed",
			zap.Uint("user_id", u.ID),
			zap.Error(err),
		)
		return
	}

	utils.RemindersSent.Inc()
	s.logger.Info("reminder_sent",
		zap.Int64("telegram_id", u.TelegramID),
		zap.Time("local_date", localToday),
	)
}
