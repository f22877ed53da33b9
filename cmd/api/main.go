package main

import (
	"context"
	"os"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"rentora/internal/adapter/api"
	"rentora/internal/adapter/api/handler"
	apimiddleware "rentora/internal/adapter/api/middleware"
	"rentora/internal/adapter/api/router"
	"rentora/internal/adapter/repository"
	"rentora/internal/infrastructure/realtime"
	"rentora/internal/infrastructure/websocket"
	"rentora/internal/usecase"
	"rentora/pkg/config"
	"rentora/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if credsJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); credsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credsJSON)))
	} else if credsPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		logger.Error("Failed to initialize Firebase: %v", err)
		os.Exit(1)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Error("Failed to initialize Firebase Auth: %v", err)
		os.Exit(1)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		logger.Error("Failed to create Firestore client: %v", err)
		os.Exit(1)
	}
	defer firestoreClient.Close()

	// Redis relays realtime events between server processes. Without an
	// address the dispatcher serves local connections only, which is the
	// single-process desktop deployment.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	dispatcher := realtime.NewRedisDispatcher(wsManager, redisClient)
	go dispatcher.Run(ctx)

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	companyRepo := repository.NewFirestoreCompanyRepository(firestoreClient)
	propertyRepo := repository.NewFirestorePropertyRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	bookingRepo := repository.NewFirestoreBookingRepository(firestoreClient)
	ledgerRepo := repository.NewFirestoreLedgerRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, dispatcher)
	chatUseCase := usecase.NewChatUseCase(chatRepo, companyRepo, propertyRepo, dispatcher)
	bookingUseCase := usecase.NewBookingUseCase(bookingRepo, propertyRepo, userRepo, companyRepo, ledgerRepo, notificationUseCase)

	chatHandler := handler.NewChatHandler(chatUseCase)
	bookingHandler := handler.NewBookingHandler(bookingUseCase)
	notificationHandler := handler.NewNotificationHandler(notificationUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager)
	healthHandler := handler.NewHealthHandler()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient, userRepo)
	adminMiddleware := apimiddleware.NewAdminMiddleware()

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	router.SetupHealthRouter(e, healthHandler)
	router.SetupChatRouter(e, chatHandler, authMiddleware)
	router.SetupBookingRouter(e, bookingHandler, authMiddleware, adminMiddleware)
	router.SetupNotificationRouter(e, notificationHandler, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler, authMiddleware)

	logger.Info("starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
