package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gouache/gouache-api/internal/config"
	"github.com/gouache/gouache-api/internal/domain/billing"
	"github.com/gouache/gouache-api/internal/domain/campaign"
	"github.com/gouache/gouache-api/internal/domain/partner"
	"github.com/gouache/gouache-api/internal/pkg/database"
	"github.com/gouache/gouache-api/internal/pkg/stripe"
)

// One-shot settlement run for operators and external schedulers that
// prefer a process over an HTTP trigger.
func main() {
	partnerFlag := flag.String("partner", "", "limit the run to one partner id")
	forceFlag := flag.Bool("force", false, "charge even below the minimum amount")
	flag.Parse()

	cfg := config.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	stripeClient := stripe.NewClient(stripe.Config{
		APIKey:  cfg.StripeSecretKey,
		BaseURL: cfg.StripeBaseURL,
	})

	engine := billing.NewEngine(
		partner.NewRepository(db),
		campaign.NewRepository(db),
		billing.NewRepository(db),
		stripeClient,
		nil,
		cfg.MinimumChargeCents,
	)

	opts := billing.RunOptions{ForceCharge: *forceFlag}
	if *partnerFlag != "" {
		id, err := uuid.Parse(*partnerFlag)
		if err != nil {
			log.Fatal().Str("partner", *partnerFlag).Msg("Invalid partner id")
		}
		opts.PartnerID = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := engine.RunCycle(ctx, time.Now(), opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Billing run failed")
	}

	for _, outcome := range result.Partners {
		log.Info().
			Str("partner", outcome.CompanyName).
			Str("status", outcome.Status).
			Str("reason", outcome.Reason).
			Int64("amount_cents", outcome.AmountCents).
			Msg("Partner settled")
	}

	if result.Failed > 0 {
		os.Exit(1)
	}
}
