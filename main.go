package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wz7jpprpd8-debug/habits-bot/cache"
	"github.com/wz7jpprpd8-debug/habits-bot/db"
	"github.com/wz7jpprpd8-debug/habits-bot/handlers"
	"github.com/wz7jpprpd8-debug/habits-bot/models"
	"github.com/wz7jpprpd8-debug/habits-bot/notify"
	"github.com/wz7jpprpd8-debug/habits-bot/routes"
	"github.com/wz7jpprpd8-debug/habits-bot/services"
	"github.com/wz7jpprpd8-debug/habits-bot/utils"
	"go.uber.org/zap"
)

func main() {
	// Инициализация логирования и метрик
	utils.InitLogger()
	defer utils.Logger.Sync()
	utils.InitMetrics()

	utils.Logger.Info("starting_application")

	// Подключение к БД
	db.Connect()
	if err := db.DB.AutoMigrate(
		&models.User{},
		&models.Habit{},
		&models.HabitLog{},
		&models.Achievement{},
	); err != nil {
		utils.Logger.Fatal("migration_failed", zap.Error(err))
	}

	// Redis — кэш статистики, состояние диалога бота, rate limit.
	// Без него работаем, просто без кэша.
	if err := cache.InitRedis(utils.Logger); err != nil {
		utils.Logger.Warn("redis_unavailable_continuing_without_cache", zap.Error(err))
	}
	defer cache.Close()

	// Сборка сервисов
	repo := db.NewRepository(db.DB)
	clock := services.UTCClock{}
	ledger := services.NewLedger(repo, clock, utils.Logger)
	statsSvc := services.NewStatsService(repo, utils.Logger)
	summarizer := services.NewOpenAISummarizer(
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("OPENAI_MODEL"),
		utils.Logger,
	)

	var notifier services.Notifier
	if token := os.Getenv("BOT_TOKEN"); token != "" {
		notifier = notify.NewTelegram(token)
	} else {
		utils.Logger.Warn("bot_token_missing_using_log_notifier")
		notifier = &notify.LogNotifier{Logger: utils.Logger}
	}

	handlers.Setup(repo, ledger, statsSvc, summarizer, clock, notifier)

	// Планировщик напоминаний: тик раз в минуту
	scheduler := services.NewReminderScheduler(repo, notifier, clock, 4, utils.Logger)
	go scheduler.Run(time.Minute)
	defer scheduler.Stop()

	// Запуск сервера
	startServer(routes.Setup())
}

func startServer(router http.Handler) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	utils.Logger.Info("starting_http_server", zap.String("port", port))

	fmt.Println("\n🚀 ================================")
	fmt.Println("   Habits Bot Backend Started")
	fmt.Println("   ================================")
	fmt.Printf("   🌐 Server:  http://localhost:%s\n", port)
	fmt.Printf("   📊 Metrics: http://localhost:%s/metrics\n", port)
	fmt.Printf("   ❤️  Health: http://localhost:%s/health\n", port)
	fmt.Println("   ================================")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("http_server_failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Logger.Info("shutting_down_server")
	fmt.Println("\n🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Fatal("server_forced_shutdown", zap.Error(err))
	}

	utils.Logger.Info("server_stopped")
	fmt.Println("✅ Server stopped gracefully")
}
