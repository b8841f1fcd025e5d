package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-bot/internal/bot"
	"github.com/ignatzorin/lostfound-bot/internal/config"
	"github.com/ignatzorin/lostfound-bot/internal/conversation"
	"github.com/ignatzorin/lostfound-bot/internal/db"
	"github.com/ignatzorin/lostfound-bot/internal/goroutine"
	httpHandlers "github.com/ignatzorin/lostfound-bot/internal/http/handlers"
	httpRouter "github.com/ignatzorin/lostfound-bot/internal/http/router"
	"github.com/ignatzorin/lostfound-bot/internal/logger"
	"github.com/ignatzorin/lostfound-bot/internal/moderation"
	"github.com/ignatzorin/lostfound-bot/internal/notify"
	"github.com/ignatzorin/lostfound-bot/internal/repository"
	"github.com/ignatzorin/lostfound-bot/internal/service"
	"github.com/ignatzorin/lostfound-bot/internal/session"
	"github.com/ignatzorin/lostfound-bot/internal/telegram"
	"github.com/ignatzorin/lostfound-bot/internal/worker"
	"github.com/ignatzorin/lostfound-bot/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	if err := logger.InitSentry(cfg.SentryDSN, cfg.Env); err != nil {
		logger.Log.WithError(err).Warn("main: sentry не инициализирован")
	}
	defer logger.Flush()

	// Подключение к базе и миграции.
	dbConn, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка подключения к базе")
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка миграций")
	}

	// Telegram.
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось подключиться к Telegram")
	}
	logger.Log.WithField("bot", api.Self.UserName).Info("main: бот авторизован")

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)

	// Ядро.
	dispatcher := notify.NewDispatcher(telegram.NewClient(api), cfg.AdminChatID, cfg.ChannelChatID)
	sessions := session.NewMemoryStore(cfg.SessionTTL)
	coordinator := moderation.NewCoordinator(reportRepo, dispatcher)
	machine := conversation.NewMachine(sessions, dispatcher, coordinator)

	cache := service.NewCacheService()
	userService := service.NewUserService(userRepo, cache)

	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) { sessions.Run(ctx, time.Minute) })
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) { cache.Run(ctx, 5*time.Minute) })

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	goroutine.SafeGo(hub.Run)
	coordinator.SetPublisher(hub)

	// Админский API.
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           buildRouter(cfg, dbConn, sessions, coordinator, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	goroutine.SafeGo(func() {
		logger.Log.WithField("port", cfg.HTTPPort).Info("main: HTTP сервер запущен")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Error("main: сервер завершился с ошибкой")
			stop()
		}
	})

	// Бот.
	pool := worker.NewPool(cfg.WorkerQueues, cfg.WorkerQueueSize)
	pool.Start(context.WithoutCancel(ctx))

	router := bot.NewRouter(machine, coordinator, userService, dispatcher, cfg.AdminChatID)
	poller := telegram.NewPoller(api, cfg.PollTimeout)

	logger.Log.Info("main: бот запущен")
	if err := bot.New(router, pool).Run(ctx, poller.Events(ctx)); err != nil {
		logger.Log.WithError(err).Error("main: бот остановлен с ошибкой")
	}

	// Дожидаемся уже принятых событий.
	pool.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
	}

	logger.Log.Info("main: бот остановлен")
}

func buildRouter(cfg *config.Config, dbConn *sqlx.DB, sessions *session.MemoryStore, coordinator *moderation.Coordinator, hub *ws.Hub) http.Handler {
	healthHandler := httpHandlers.NewHealthHandler(dbConn, sessions.Len)

	if !cfg.AdminAPIEnabled() {
		logger.Log.Warn("main: ADMIN_PASSWORD_HASH не задан, админский API отключён")
		return httpRouter.SetupRouter(cfg, healthHandler, nil, nil, nil, nil)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.AdminAccessTTL)
	authService := service.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash, tokenManager)

	return httpRouter.SetupRouter(cfg,
		healthHandler,
		httpHandlers.NewAuthHandler(authService),
		httpHandlers.NewReportHandler(coordinator),
		httpHandlers.NewWSHandler(hub, authService, cfg.AllowedOrigins),
		authService,
	)
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
