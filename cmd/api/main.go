package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gouache/gouache-api/internal/config"
	"github.com/gouache/gouache-api/internal/domain/artwork"
	"github.com/gouache/gouache-api/internal/domain/auth"
	"github.com/gouache/gouache-api/internal/domain/billing"
	"github.com/gouache/gouache-api/internal/domain/campaign"
	"github.com/gouache/gouache-api/internal/domain/order"
	"github.com/gouache/gouache-api/internal/domain/partner"
	"github.com/gouache/gouache-api/internal/domain/profile"
	"github.com/gouache/gouache-api/internal/middleware"
	"github.com/gouache/gouache-api/internal/pkg/database"
	"github.com/gouache/gouache-api/internal/pkg/email"
	"github.com/gouache/gouache-api/internal/pkg/imaging"
	"github.com/gouache/gouache-api/internal/pkg/jwt"
	"github.com/gouache/gouache-api/internal/pkg/response"
	"github.com/gouache/gouache-api/internal/pkg/storage"
	"github.com/gouache/gouache-api/internal/pkg/stripe"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Gouache API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, impression dedup falls back to the database index")
		redis = nil
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	stripeClient := stripe.NewClient(stripe.Config{
		APIKey:  cfg.StripeSecretKey,
		BaseURL: cfg.StripeBaseURL,
	})

	var emailService *email.Service
	if cfg.BillingReceiptEmails && cfg.SendGridAPIKey != "" {
		emailService = email.NewService(email.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		})
		defer emailService.Close()
	}

	// ---------- Repositories ----------
	userRepo := auth.NewUserRepository(db)
	profileRepo := profile.NewRepository(db)
	artworkRepo := artwork.NewRepository(db)
	orderRepo := order.NewRepository(db)
	partnerRepo := partner.NewRepository(db)
	campaignRepo := campaign.NewRepository(db)
	ledgerRepo := billing.NewRepository(db)

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService)
	trackingService := campaign.NewService(campaignRepo, redis)
	orderService := order.NewService(orderRepo, artworkRepo, stripeClient)

	var uploadService *artwork.UploadService
	if cfg.S3AccessKey != "" {
		store, err := storage.NewS3Storage(storage.Config{
			S3Endpoint:  cfg.S3Endpoint,
			S3Region:    cfg.S3Region,
			S3AccessKey: cfg.S3AccessKey,
			S3SecretKey: cfg.S3SecretKey,
			S3Bucket:    cfg.S3Bucket,
			S3PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		uploadService = artwork.NewUploadService(store, imaging.NewProcessor(imaging.DefaultConfig()))
	} else {
		log.Warn().Msg("Object storage not configured, artwork image uploads disabled")
	}

	var notifier billing.Notifier
	if emailService != nil {
		notifier = emailService
	}
	engine := billing.NewEngine(partnerRepo, campaignRepo, ledgerRepo, stripeClient, notifier, cfg.MinimumChargeCents)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	profileHandler := profile.NewHandler(profileRepo)
	artworkHandler := artwork.NewHandler(artworkRepo, uploadService, profileRepo)
	orderHandler := order.NewHandler(orderService, orderRepo)
	partnerHandler := partner.NewHandler(partnerRepo, cfg.DefaultCurrency)
	campaignHandler := campaign.NewHandler(campaignRepo, trackingService, partnerRepo)
	billingHandler := billing.NewHandler(engine, ledgerRepo, partnerRepo)

	// ---------- Middleware ----------
	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)
	requireArtist := middleware.RequireArtist()
	requirePartner := middleware.RequirePartner()
	requireAdmin := middleware.RequireAdmin()
	cronAuth := middleware.CronAuth(cfg.CronSecret)

	// ---------- Router ----------
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", auth.Routes(authHandler, authMiddleware))
		r.Mount("/profiles", profile.Routes(profileHandler, authMiddleware, requireArtist))
		r.Mount("/artworks", artwork.Routes(artworkHandler, authMiddleware, requireArtist))
		r.Mount("/orders", order.Routes(orderHandler, authMiddleware))
		r.Mount("/partners", partner.Routes(partnerHandler, authMiddleware))
		r.Mount("/campaigns", campaign.Routes(campaignHandler, chainMiddleware(authMiddleware, requirePartner)))
		r.Mount("/billing", billing.Routes(billingHandler, chainMiddleware(authMiddleware, requirePartner)))
		r.Mount("/", campaign.PublicRoutes(campaignHandler, optionalAuth))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Mount("/billing", billing.AdminRoutes(billingHandler, authMiddleware, requireAdmin))
		r.Mount("/orders", order.AdminRoutes(orderHandler, authMiddleware, requireAdmin))
	})

	r.Mount("/internal/billing", billing.CronRoutes(billingHandler, cronAuth))

	// ---------- Scheduler ----------
	if cfg.BillingCronEnabled {
		scheduler, err := billing.NewScheduler(engine, cfg.BillingSchedule)
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.BillingSchedule).Msg("Invalid billing schedule")
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Info().Str("schedule", cfg.BillingSchedule).Msg("In-process billing scheduler enabled")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func chainMiddleware(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
