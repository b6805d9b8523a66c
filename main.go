package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casaora/config"
	"casaora/cron"
	"casaora/database"
	bookingRepo "casaora/database/repository/booking"
	helpRepo "casaora/database/repository/help"
	messagingRepo "casaora/database/repository/messaging"
	payoutRepo "casaora/database/repository/payout"
	professionalRepo "casaora/database/repository/professional"
	profileRepo "casaora/database/repository/profile"
	referralRepo "casaora/database/repository/referral"
	"casaora/handlers"
	"casaora/middleware"
	"casaora/routes"
	"casaora/services/booking"
	"casaora/services/directory"
	"casaora/services/helpcenter"
	ai "casaora/services/intelligence"
	"casaora/services/messaging"
	"casaora/services/notification"
	"casaora/services/payments"
	"casaora/services/payout"
	"casaora/services/professional"
	"casaora/services/referral"
	"casaora/services/storage"
	"casaora/services/tasks"
	"casaora/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	defer utils.Sync()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()
	if err := database.InitMongo(cfg.MongoURL); err != nil {
		logger.Fatal("main: failed to connect transcript archive", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// repositories.
	profiles := profileRepo.NewGormProfileRepo(database.DB)
	pros := professionalRepo.NewGormProfessionalRepo(database.DB)
	bookings := bookingRepo.NewGormBookingRepo(database.DB)
	payoutStore := payoutRepo.NewGormPayoutRepo(database.DB)
	conversations := messagingRepo.NewGormMessagingRepo(database.DB)
	referrals := referralRepo.NewGormReferralRepo(database.DB)
	help := helpRepo.NewGormHelpRepo(database.DB)

	notifier := newNotifier(ctx, profiles, logger)
	gateway := payments.NewStripeGateway(cfg.StripeKey, cfg.StripeWebhookSecret, logger)

	queue := asynq.NewClient(cron.RedisOpt())
	defer queue.Close()

	// services.
	professionalSvc := professional.NewProfessionalService(pros, bookings, newStorage(logger), cfg.DefaultCurrency, logger)
	if cfg.GoogleMapsAPIKey != "" {
		professionalSvc.Geocoder = directory.NewGoogleGeocoder(cfg.GoogleMapsAPIKey)
	}
	referralSvc := referral.NewReferralService(profiles, referrals, notifier, decimal.NewFromFloat(cfg.ReferralRewardAmount), logger)
	bookingSvc := booking.NewBookingService(booking.Deps{
		Repo:      bookings,
		Pros:      pros,
		Payments:  gateway,
		Reminders: tasks.NewReminderScheduler(queue, logger),
		Referrals: referralSvc,
		Ratings:   professionalSvc,
		Notifier:  notifier,
	}, booking.Config{
		CommissionRate: decimal.NewFromFloat(cfg.PlatformCommissionRate),
		Currency:       cfg.DefaultCurrency,
	}, logger)
	directorySvc := directory.NewDirectoryService(pros, directory.NewRedisPageCache(utils.GetCacheClient(), config.DirectoryCacheTTL()), logger)
	helpSvc := helpcenter.NewHelpCenterService(help, logger)
	messagingSvc := messaging.NewMessagingService(conversations, pros, notifier, logger)
	payoutSvc := payout.NewPayoutService(payoutStore, pros, gateway, notifier, cfg.DefaultCurrency, logger)

	assistantDeps := ai.Deps{
		Contexts:   ai.NewRedisContextStore(utils.GetAIContextCacheClient(), ai.ContextTTL),
		Classifier: ai.FallbackClassifier{Fallback: ai.KeywordClassifier{}, Logger: logger},
		Directory:  directorySvc,
		Help:       helpSvc,
		Quotes:     bookingSvc,
		Pros:       professionalSvc,
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("main: Gemini unavailable, using keyword classifier", zap.Error(err))
		} else {
			defer gemini.Close()
			assistantDeps.Classifier = ai.FallbackClassifier{Primary: gemini, Fallback: ai.KeywordClassifier{}, Logger: logger}
		}
	}
	if cfg.GoogleApplicationCredentials != "" {
		speechClient, err := ai.NewGoogleSpeechTranscriber(ctx, cfg.GoogleApplicationCredentials)
		if err != nil {
			logger.Warn("main: speech recognition disabled", zap.Error(err))
		} else {
			defer speechClient.Close()
			assistantDeps.Speech = speechClient
		}
	}
	if database.MongoClient != nil {
		archive := ai.NewMongoTranscriptArchive(database.MongoClient, cfg.MongoDatabase)
		if err := archive.EnsureIndexes(ctx); err != nil {
			logger.Warn("main: failed to ensure transcript indexes", zap.Error(err))
		}
		assistantDeps.Transcripts = archive
	}
	assistantSvc := ai.NewDefaultAIService(assistantDeps, logger)

	cron.InitWorker(notifier, payoutSvc, logger)
	utils.StartHealthMonitor(ctx, []*redis.Client{utils.GetCacheClient(), utils.GetAIContextCacheClient()}, database.DB)

	handlerBundle := &handlers.HandlerBundle{
		ProfileRepo:  profiles,
		JWTSecret:    cfg.SupabaseJWTSecret,
		Directory:    handlers.NewDirectoryHandler(directorySvc),
		Professional: handlers.NewProfessionalHandler(professionalSvc, bookingSvc),
		Booking:      handlers.NewBookingHandler(bookingSvc, logger),
		Help:         handlers.NewHelpHandler(helpSvc),
		Assistant:    handlers.NewAssistantHandler(assistantSvc),
		Messaging:    handlers.NewMessagingHandler(messagingSvc),
		Referral:     handlers.NewReferralHandler(referralSvc),
		Payout:       handlers.NewPayoutHandler(payoutSvc),
		Admin:        handlers.NewAdminHandler(bookingSvc, payoutSvc, logger),
		Health:       &handlers.HealthHandler{},
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.NewRateLimiter(cfg.MaxRequestsPerMin).Middleware())
	routes.RegisterRoutes(router, handlerBundle, cfg.CORSAllowedOrigins)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if database.MongoClient != nil {
		_ = database.MongoClient.Disconnect(shutdownCtx)
	}
	if err := database.Close(database.DB); err != nil {
		logger.Warn("main: failed to close database", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// newNotifier returns FCM when credentials are configured and a logging
// notifier otherwise.
func newNotifier(ctx context.Context, profiles profileRepo.ProfileRepository, logger *zap.Logger) notification.NotificationService {
	creds := config.AppConfig.FirebaseCredentials
	if creds == "" {
		logger.Info("main: FIREBASE_CREDENTIALS not set, push notifications are logged only")
		return notification.LogNotificationService{Logger: logger}
	}
	client, err := notification.NewFCMClient(ctx, creds)
	if err != nil {
		logger.Warn("main: FCM unavailable, push notifications are logged only", zap.Error(err))
		return notification.LogNotificationService{Logger: logger}
	}
	return notification.NewFCMNotificationService(profiles, client, logger)
}

func newStorage(logger *zap.Logger) storage.StorageService {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" {
		logger.Info("main: Cloudinary not configured, avatar uploads are disabled")
		return nil
	}
	store, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, logger)
	if err != nil {
		logger.Warn("main: Cloudinary unavailable, avatar uploads are disabled", zap.Error(err))
		return nil
	}
	return store
}
