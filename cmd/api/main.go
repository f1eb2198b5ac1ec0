package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"civicalert/internal/adapter/api"
	"civicalert/internal/adapter/api/handler"
	apimiddleware "civicalert/internal/adapter/api/middleware"
	"civicalert/internal/adapter/api/router"
	"civicalert/internal/adapter/repository"
	"civicalert/internal/domain/entity"
	"civicalert/internal/infrastructure/cache"
	"civicalert/internal/infrastructure/firebase"
	"civicalert/internal/infrastructure/ratelimit"
	"civicalert/internal/infrastructure/storage"
	"civicalert/internal/infrastructure/websocket"
	"civicalert/internal/usecase"
	"civicalert/pkg/config"
	"civicalert/pkg/logger"
	"civicalert/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opt option.ClientOption
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))
	} else {
		if _, err := os.Stat(cfg.ServiceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", cfg.ServiceAccountPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.ServiceAccountPath)
		opt = option.WithCredentialsFile(cfg.ServiceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	checks := map[string]handler.HealthCheck{
		"firestore": func(ctx context.Context) error {
			_, err := firestoreClient.Collection("tickets").Limit(1).Documents(ctx).Next()
			if err == iterator.Done {
				return nil
			}
			return err
		},
	}

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	if cfg.RedisAddr != "" {
		profileCache := cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
		defer profileCache.Close()
		if err := profileCache.Ping(ctx); err != nil {
			logger.Warn("Redis unreachable at %s, profile cache will fall through: %v", cfg.RedisAddr, err)
		}
		userRepo = repository.NewCachedUserRepository(userRepo, profileCache, time.Duration(cfg.ProfileCacheTTL)*time.Second)
		checks["redis"] = profileCache.Ping
	}
	ticketRepo := repository.NewFirestoreTicketRepository(firestoreClient)
	inviteRepo := repository.NewFirestoreInviteRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)
	checks["firebase_auth"] = firebaseAuthClient.TestConnection

	limiter := ratelimit.NewRateLimiter()
	limiter.StartCleanupRoutine(ctx.Done())
	apimiddleware.StartCleanupRoutine(ctx.Done())

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	inviteUseCase := usecase.NewInviteUseCase(inviteRepo, userRepo, firebaseAuthClient, limiter, wsManager)
	authUseCase := usecase.NewAuthUseCase(userRepo, firebaseAuthClient, inviteUseCase)
	userUseCase := usecase.NewUserUseCase(userRepo, storageClient, limiter)
	ticketUseCase := usecase.NewTicketUseCase(ticketRepo, userRepo, storageClient, limiter)

	feed := usecase.NewTicketFeed(ticketRepo)
	go func() {
		if err := feed.Run(ctx); err != nil {
			logger.Error("Ticket feed stopped: %v", err)
		}
	}()

	handler.Setup(authUseCase, userUseCase, ticketUseCase, inviteUseCase)
	handler.SetupHealthHandler(checks, wsManager.Count)
	handler.SetupDevTokenHandler(firebaseAuthClient, userRepo)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.GeneralRateLimit())

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if respErr := response.Error(c, err); respErr != nil {
			logger.Error("Failed to write error response: %v", respErr)
		}
	}

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware()

	wsHandler := handler.NewWebSocketHandler(wsManager, userUseCase, usecase.MapSessionDeps{
		Users:   userRepo,
		Tickets: ticketUseCase,
		Feed:    feed,
		Map: usecase.MapOptions{
			DefaultCenter: entity.Coordinate{Latitude: cfg.Map.DefaultLat, Longitude: cfg.Map.DefaultLon},
			DefaultZoom:   cfg.Map.DefaultZoom,
			FocusZoom:     cfg.Map.FocusZoom,
			APIKey:        cfg.Map.APIKey,
		},
	}, time.Duration(cfg.Map.ReadyTimeoutSec)*time.Second)

	router.Setup(e, authMiddleware, adminMiddleware, wsHandler)
	router.SetupDevRouter(e, cfg.Environment)

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}
