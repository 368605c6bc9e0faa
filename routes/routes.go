package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wz7jpprpd8-debug/habits-bot/handlers"
	"github.com/wz7jpprpd8-debug/habits-bot/middleware"
)

// Setup собирает роутер: middleware в правильном порядке, CORS для
// mini app, служебные и API-эндпоинты.
func Setup() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RateLimitMiddleware(120, time.Minute))

	// Mini App открывается с внешнего origin.
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now(),
			"database":  "connected",
		})
	})

	api := r.Group("/api")
	{
		api.POST("/users", handlers.RegisterUser)
		api.PUT("/users/settings", handlers.UpdateSettings)

		api.GET("/habits", handlers.GetHabits)
		api.POST("/habits", handlers.CreateHabit)
		api.POST("/habits/:id/done", handlers.CompleteHabit)
		api.DELETE("/habits/:id", handlers.DeleteHabit)

		api.GET("/habits/:id/stats", handlers.GetHabitStats)
		api.GET("/habits/:id/trend", handlers.GetHabitTrend)
		api.GET("/habits/:id/analysis", handlers.AnalyzeHabit)
		api.GET("/stats", handlers.GetUserStats)
		api.GET("/achievements", handlers.GetAchievements)

		api.POST("/bot/webhook", handlers.BotWebhook)
	}

	// Метрики Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
