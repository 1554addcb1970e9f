package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yuchou/tripledger/internal/auth"
	"github.com/yuchou/tripledger/internal/middleware"
	"github.com/yuchou/tripledger/internal/service"
	"github.com/yuchou/tripledger/internal/state"
	"github.com/yuchou/tripledger/internal/storage/sqlite"
	"github.com/yuchou/tripledger/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "data/tripledger.db")
	port := getEnv("PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	jwtManager := auth.NewJWTManager(jwtSecret, tokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)
	sessions := state.NewRegistry(store)

	authService := service.NewAuthService(authenticator, jwtManager)
	tripService := service.NewTripService(sessions)
	expenseService := service.NewExpenseService(sessions, tripService)
	shareService := service.NewShareService(store)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/auth/register", authService.Register)
		api.POST("/auth/login", authService.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(jwtManager))
	{
		authed.GET("/trips", tripService.ListTrips)
		authed.POST("/trips", tripService.CreateTrip)
		authed.DELETE("/trips/:tripId", tripService.DeleteTrip)

		authed.POST("/trips/:tripId/days/:dayId/items", tripService.AddItem)
		authed.PUT("/trips/:tripId/days/:dayId/items/:itemId", tripService.UpdateItem)
		authed.DELETE("/trips/:tripId/days/:dayId/items/:itemId", tripService.DeleteItem)
		authed.PUT("/trips/:tripId/days/:dayId/items-order", tripService.ReorderItems)

		authed.POST("/trips/:tripId/expenses", expenseService.AddExpense)
		authed.PUT("/trips/:tripId/expenses/:expenseId", expenseService.UpdateExpense)
		authed.DELETE("/trips/:tripId/expenses/:expenseId", expenseService.DeleteExpense)
		authed.PUT("/trips/:tripId/expenses-order", expenseService.ReorderExpenses)
		authed.GET("/trips/:tripId/summary", expenseService.Summary)

		authed.POST("/trips/:tripId/payers", expenseService.AddPayer)
		authed.DELETE("/trips/:tripId/payers/:name", expenseService.DeletePayer)
		authed.PUT("/trips/:tripId/payers/:name", expenseService.RenamePayer)

		authed.POST("/trips/:tripId/shares", shareService.ShareByEmail)
		authed.DELETE("/trips/:tripId/shares/:userId", shareService.RemoveShare)
		authed.POST("/trips/:tripId/invites", shareService.CreateInvite)
		authed.POST("/invites/:code/accept", shareService.AcceptInvite)
	}

	slog.Info("Server starting", "port", port, "db", dbPath)
	if err := router.Run(":" + port); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
