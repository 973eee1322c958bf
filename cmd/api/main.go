package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/trafikk-api/internal/config"
	"github.com/yourusername/trafikk-api/internal/handler"
	"github.com/yourusername/trafikk-api/internal/middleware"
	pgRepo "github.com/yourusername/trafikk-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/trafikk-api/internal/repository/redis"
	"github.com/yourusername/trafikk-api/internal/service"
	"github.com/yourusername/trafikk-api/internal/service/gamesession"
	"github.com/yourusername/trafikk-api/pkg/auth"
	"github.com/yourusername/trafikk-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	scenarioRepo := pgRepo.NewScenarioRepo(db)
	resultRepo := pgRepo.NewGameResultRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Собираем игровой движок и реестр игр
	gameConfig := gamesession.DefaultConfig()
	gameConfig.SessionMaxAgeHours = cfg.Game.SessionMaxAgeHours

	registry := service.NewGameRegistry()
	if err := registry.Register(gamesession.NewEngine(scenarioRepo, gameConfig)); err != nil {
		log.Printf("Failed to register game engine: %v", err)
		os.Exit(1)
	}

	sessionStore := gamesession.NewSessionStore()

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo, cacheRepo)
	scenarioService := service.NewScenarioService(scenarioRepo)
	gameService := service.NewGameService(
		registry,
		sessionStore,
		resultRepo,
		userRepo,
		cacheRepo,
		time.Duration(cfg.Game.SessionMaxAgeHours)*time.Hour,
	)

	// Контекст приложения для фоновых горутин
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Периодическая очистка просроченных сессий
	cleanupInterval := time.Duration(cfg.Game.CleanupIntervalMin) * time.Minute
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := gameService.CleanupExpiredSessions(); removed > 0 {
					log.Printf("[Main] Очистка сессий: удалено %d", removed)
				}
			case <-appCtx.Done():
				return
			}
		}
	}()

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	gameHandler := handler.NewGameHandler(gameService)
	scenarioHandler := handler.NewScenarioHandler(scenarioService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация (строгий rate limit против brute-force)
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.Limit(middleware.StrictAuthRateLimitConfig()))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Пользователи и лидерборд
		users := api.Group("/users")
		{
			users.GET("/leaderboard", userHandler.GetLeaderboard)

			authedUsers := users.Group("")
			authedUsers.Use(authMiddleware.RequireAuth())
			{
				authedUsers.GET("/me", userHandler.GetMe)
				authedUsers.PUT("/me", userHandler.UpdateMe)
			}
		}

		// Игры и сессии
		games := api.Group("/games")
		{
			games.GET("", gameHandler.ListGames)

			authedGames := games.Group("")
			authedGames.Use(authMiddleware.RequireAuth())
			{
				authedGames.GET("/results", gameHandler.GetMyResults)
				authedGames.GET("/results/export", gameHandler.ExportMyResults)
				authedGames.GET("/stats", gameHandler.GetMyStats)

				sessions := authedGames.Group("/sessions")
				sessions.Use(rateLimiter.LimitByIP(middleware.GameActionRateLimitConfig()))
				{
					sessions.POST("", gameHandler.StartSession)
					sessions.GET("/:session_id", gameHandler.GetSession)
					sessions.POST("/:session_id/actions", gameHandler.ProcessAction)
					sessions.POST("/:session_id/complete", gameHandler.CompleteSession)
				}
			}
		}

		// Админ-операции над шаблонами сценариев
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.GET("/scenarios", scenarioHandler.ListScenarios)
			admin.POST("/scenarios", scenarioHandler.CreateScenario)

			scenarioWithID := admin.Group("/scenarios/:id")
			scenarioWithID.Use(middleware.ExtractUintParam("id", "scenarioID"))
			{
				scenarioWithID.GET("", scenarioHandler.GetScenario)
				scenarioWithID.PUT("", scenarioHandler.UpdateScenario)
				scenarioWithID.PATCH("/active", scenarioHandler.SetScenarioActive)
			}
		}
	}

	// Healthcheck
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"active_sessions": gameService.ActiveSessionCount(),
		})
	})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ждем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Завершаем фоновые горутины
	cancel()

	// Graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
