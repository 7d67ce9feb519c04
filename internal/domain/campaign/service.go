package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gouache/gouache-api/internal/pkg/fingerprint"
)

// Store is the persistence surface the tracking service needs
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error)
	RecordEvent(ctx context.Context, params EventParams) (*EventResult, error)
}

// Deduper is the optional fast path for impression dedup. *redis.Client
// satisfies it.
type Deduper interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Service applies click and impression events to campaign spend state
type Service struct {
	store Store
	dedup Deduper
}

// NewService creates the tracking service. redisClient may be nil; the
// database unique index remains the authoritative dedup layer.
func NewService(store Store, redisClient *redis.Client) *Service {
	s := &Service{store: store}
	if redisClient != nil {
		s.dedup = redisClient
	}
	return s
}

// TrackRequest identifies one ad event from the rendering UI
type TrackRequest struct {
	CampaignID uuid.UUID
	UserID     *uuid.UUID
	Signals    *fingerprint.Signals
	Placement  string
}

// ClickResult tells the caller where to navigate and whether tracking
// actually landed
type ClickResult struct {
	TargetURL   string
	Charged     bool
	Deactivated bool
	Recorded    bool
}

func resolveTracking(req TrackRequest) (string, bool) {
	if req.UserID != nil && *req.UserID != uuid.Nil {
		return req.UserID.String(), false
	}
	if req.Signals != nil {
		return fingerprint.Generate(*req.Signals), true
	}
	return fingerprint.Generate(fingerprint.Signals{}), true
}

// RecordClick records a click and returns the campaign's target URL.
// Clicks have no dedup layer; every invocation counts. A tracking failure
// after the campaign is resolved still returns the URL so the caller can
// navigate the user regardless.
func (s *Service) RecordClick(ctx context.Context, req TrackRequest) (*ClickResult, error) {
	c, err := s.store.GetByID(ctx, req.CampaignID)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			log.Debug().Str("campaign_id", req.CampaignID.String()).Msg("click for unknown campaign")
		}
		return nil, err
	}

	trackingID, isAnon := resolveTracking(req)

	result, err := s.store.RecordEvent(ctx, EventParams{
		CampaignID:  req.CampaignID,
		Event:       EventClick,
		TrackingID:  trackingID,
		IsAnonymous: isAnon,
		Placement:   req.Placement,
		Now:         time.Now(),
	})
	if err != nil {
		log.Error().Err(err).Str("campaign_id", req.CampaignID.String()).Msg("click tracking failed")
		return &ClickResult{TargetURL: c.TargetURL}, err
	}

	return &ClickResult{
		TargetURL:   result.TargetURL,
		Charged:     result.Update.ChargeAmount > 0,
		Deactivated: result.Update.Deactivate,
		Recorded:    true,
	}, nil
}

// RecordImpression records an ad view, at most once per viewer per
// campaign per calendar day. Duplicate-day impressions are fully
// suppressed, the raw impression counter included. An unknown campaign is
// a silent no-op: ad rendering must never fail because tracking did.
func (s *Service) RecordImpression(ctx context.Context, req TrackRequest) error {
	trackingID, isAnon := resolveTracking(req)
	now := time.Now()
	key := fmt.Sprintf("ad:imp:%s:%s:%s", req.CampaignID, trackingID, now.UTC().Format("2006-01-02"))

	if s.dedup != nil {
		// on redis errors fall through to the database index
		if n, err := s.dedup.Exists(ctx, key).Result(); err == nil && n > 0 {
			return nil
		}
	}

	_, err := s.store.RecordEvent(ctx, EventParams{
		CampaignID:  req.CampaignID,
		Event:       EventImpression,
		TrackingID:  trackingID,
		IsAnonymous: isAnon,
		Placement:   req.Placement,
		Now:         now,
	})
	if errors.Is(err, ErrCampaignNotFound) {
		log.Debug().Str("campaign_id", req.CampaignID.String()).Msg("impression for unknown campaign")
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Str("campaign_id", req.CampaignID.String()).Msg("impression tracking failed")
		return err
	}

	// Mark the key only after the write lands; a transient store failure
	// must not suppress the viewer's impression for the key's lifetime.
	if s.dedup != nil {
		if err := s.dedup.SetNX(ctx, key, 1, 48*time.Hour).Err(); err != nil {
			log.Debug().Err(err).Msg("impression dedup mark failed")
		}
	}
	return nil
}
