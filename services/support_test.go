package services

import (
	"sync"
	"time"

	"github.com/wz7jpprpd8-debug/habits-bot/models"
)

// fixedClock — управляемое время для детерминированных тестов.
type fixedClock struct {
	now time.Time
}

func (f *fixedClock) NowUTC() time.Time { return f.now }
func (f *fixedClock) Today() time.Time  { return Midnight(f.now) }

func (f *fixedClock) advance(days int) { f.now = f.now.AddDate(0, 0, days) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeStore — CompletionStore в памяти с той же семантикой, что у
// db.Repository: вставка лога идемпотентна, streak обновляется только на
// новой строке.
type fakeStore struct {
	habits       map[uint]*models.Habit
	logs         map[uint]map[time.Time]bool
	achievements []models.Achievement
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		habits: make(map[uint]*models.Habit),
		logs:   make(map[uint]map[time.Time]bool),
	}
}

func (s *fakeStore) addHabit(id, userID uint, title string) *models.Habit {
	h := &models.Habit{ID: id, UserID: userID, Title: title, IsActive: true}
	s.habits[id] = h
	s.logs[id] = make(map[time.Time]bool)
	return h
}

func (s *fakeStore) GetActiveHabit(habitID uint) (*models.Habit, error) {
	h, ok := s.habits[habitID]
	if !ok || !h.IsActive {
		return nil, ErrNotFound
	}
	snapshot := *h
	return &snapshot, nil
}

func (s *fakeStore) CompleteHabit(habitID uint, date time.Time, next func(prev int, last *time.Time) int) (bool, int, error) {
	h, ok := s.habits[habitID]
	if !ok || !h.IsActive {
		return false, 0, ErrNotFound
	}
	if s.logs[habitID][date] {
		return false, h.Streak, nil
	}
	s.logs[habitID][date] = true
	h.Streak = next(h.Streak, h.LastCompleted)
	d := date
	h.LastCompleted = &d
	return true, h.Streak, nil
}

func (s *fakeStore) CreateAchievement(userID uint, title, description string) error {
	s.achievements = append(s.achievements, models.Achievement{
		UserID: userID, Title: title, Description: description,
	})
	return nil
}

func (s *fakeStore) loggedDates(habitID uint) []time.Time {
	var dates []time.Time
	for d := range s.logs[habitID] {
		dates = append(dates, d)
	}
	return dates
}

// fakeReminderStore / fakeNotifier — для тестов планировщика.
type fakeReminderStore struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeReminderStore(users ...models.User) *fakeReminderStore {
	s := &fakeReminderStore{users: make(map[uint]*models.User)}
	for i := range users {
		u := users[i]
		s.users[u.ID] = &u
	}
	return s
}

func (s *fakeReminderStore) ListUsersWithReminder() ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.ReminderTime != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeReminderStore) MarkReminderSent(userID uint, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := date
	s.users[userID].LastReminder = &d
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []int64
}

func (n *fakeNotifier) Notify(telegramID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, telegramID)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func strPtr(s string) *string { return &s }
