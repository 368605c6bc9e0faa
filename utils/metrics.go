package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Counter: общее количество HTTP запросов
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Histogram: время выполнения запросов
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "app_request_duration_seconds",
			Help: "Request duration seconds",
		},
		[]string{"method", "path"},
	)

	// Counter: записанные отметки выполнения
	CompletionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "app_habit_completions_total",
			Help: "Total recorded habit completions",
		},
	)

	// Counter: повторные отметки за тот же день (идемпотентные, не ошибки)
	DuplicateCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "app_habit_completions_duplicate_total",
			Help: "Completion requests for an already recorded day",
		},
	)

	// Counter: отправленные напоминания
	RemindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "app_reminders_sent_total",
			Help: "Total reminders sent",
		},
	)

	// Counter: отказы AI-саммаризатора (перекрытые запасным текстом)
	SummarizerErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "app_summarizer_errors_total",
			Help: "Total summarizer failures",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(
		ReqCount,
		ReqDuration,
		CompletionsTotal,
		DuplicateCompletions,
		RemindersSent,
		SummarizerErrors,
	)
}
