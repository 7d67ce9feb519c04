package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gouache/gouache-api/internal/pkg/fingerprint"
)

type fakeStore struct {
	campaigns map[uuid.UUID]*Campaign
	seen      map[string]bool
	recorded  []EventParams
	eventErr  error
}

func newFakeStore(campaigns ...*Campaign) *fakeStore {
	f := &fakeStore{
		campaigns: make(map[uuid.UUID]*Campaign),
		seen:      make(map[string]bool),
	}
	for _, c := range campaigns {
		f.campaigns[c.ID] = c
	}
	return f
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, ErrCampaignNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) RecordEvent(_ context.Context, params EventParams) (*EventResult, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	c, ok := f.campaigns[params.CampaignID]
	if !ok {
		return nil, ErrCampaignNotFound
	}

	if params.Event == EventImpression {
		key := fmt.Sprintf("%s|%s|%s", params.CampaignID, params.TrackingID, params.Now.UTC().Format("2006-01-02"))
		if f.seen[key] {
			return &EventResult{Duplicate: true}, nil
		}
		f.seen[key] = true
	}

	f.recorded = append(f.recorded, params)

	update := applySpend(c, params.Event, params.Now)
	c.Spent = update.Spent
	c.DailySpent = update.DailySpent
	if update.Deactivate {
		c.IsActive = false
	}
	if params.Event == EventClick {
		c.Clicks++
	} else {
		c.Impressions++
	}

	return &EventResult{TargetURL: c.TargetURL, Update: update}, nil
}

func testCampaign(model BillingModel) *Campaign {
	return &Campaign{
		ID:                uuid.New(),
		PartnerID:         uuid.New(),
		Name:              "spring show",
		TargetURL:         "https://example.com/gallery",
		BillingModel:      model,
		CostPerClick:      25,
		CostPerImpression: 3,
		IsActive:          true,
		LastSpentReset:    time.Now().UTC(),
	}
}

func anonRequest(campaignID uuid.UUID) TrackRequest {
	return TrackRequest{
		CampaignID: campaignID,
		Signals: &fingerprint.Signals{
			UserAgent:    "Mozilla/5.0",
			Language:     "en-US",
			ScreenWidth:  1920,
			ScreenHeight: 1080,
		},
		Placement: "feed",
	}
}

func TestRecordClickReturnsTargetURL(t *testing.T) {
	c := testCampaign(BillingModelCPC)
	store := newFakeStore(c)
	svc := NewService(store, nil)

	result, err := svc.RecordClick(context.Background(), anonRequest(c.ID))
	if err != nil {
		t.Fatalf("record click failed: %v", err)
	}
	if result.TargetURL != c.TargetURL {
		t.Fatalf("expected target url %q, got %q", c.TargetURL, result.TargetURL)
	}
	if !result.Recorded || !result.Charged {
		t.Fatalf("expected recorded charged click, got %+v", result)
	}
	if store.campaigns[c.ID].Spent != 25 {
		t.Fatalf("expected spent 25, got %d", store.campaigns[c.ID].Spent)
	}
}

func TestRecordClickUnknownCampaign(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	result, err := svc.RecordClick(context.Background(), anonRequest(uuid.New()))
	if !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

func TestRecordClickTrackingFailureStillNavigates(t *testing.T) {
	c := testCampaign(BillingModelCPC)
	store := newFakeStore(c)
	svc := NewService(store, nil)

	store.eventErr = errors.New("store unavailable")

	result, err := svc.RecordClick(context.Background(), anonRequest(c.ID))
	if err == nil {
		t.Fatal("expected tracking error to surface")
	}
	if result == nil || result.TargetURL != c.TargetURL {
		t.Fatalf("caller must still get the target url, got %+v", result)
	}
	if result.Recorded {
		t.Fatal("failed tracking must not claim to be recorded")
	}
}

func TestRecordClickUsesFingerprintWhenAnonymous(t *testing.T) {
	c := testCampaign(BillingModelCPC)
	store := newFakeStore(c)
	svc := NewService(store, nil)

	if _, err := svc.RecordClick(context.Background(), anonRequest(c.ID)); err != nil {
		t.Fatalf("record click failed: %v", err)
	}

	if len(store.recorded) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(store.recorded))
	}
	params := store.recorded[0]
	if !params.IsAnonymous || !strings.HasPrefix(params.TrackingID, "anon_") {
		t.Fatalf("expected anonymous fingerprint identity, got %+v", params)
	}
}

func TestRecordClickUsesUserIDWhenAuthenticated(t *testing.T) {
	c := testCampaign(BillingModelCPC)
	store := newFakeStore(c)
	svc := NewService(store, nil)

	userID := uuid.New()
	req := anonRequest(c.ID)
	req.UserID = &userID

	if _, err := svc.RecordClick(context.Background(), req); err != nil {
		t.Fatalf("record click failed: %v", err)
	}

	params := store.recorded[0]
	if params.IsAnonymous || params.TrackingID != userID.String() {
		t.Fatalf("expected user identity, got %+v", params)
	}
}

func TestRecordImpressionDedupSameDay(t *testing.T) {
	c := testCampaign(BillingModelCPM)
	store := newFakeStore(c)
	svc := NewService(store, nil)

	for i := 0; i < 3; i++ {
		if err := svc.RecordImpression(context.Background(), anonRequest(c.ID)); err != nil {
			t.Fatalf("impression %d failed: %v", i, err)
		}
	}

	got := store.campaigns[c.ID]
	if got.Spent != 3 {
		t.Fatalf("expected exactly one billed impression (3 cents), got spent=%d", got.Spent)
	}
	// Duplicate-day impressions are fully suppressed, raw counter included.
	if got.Impressions != 1 {
		t.Fatalf("expected impressions counter 1, got %d", got.Impressions)
	}
}

func TestRecordImpressionDistinctViewers(t *testing.T) {
	c := testCampaign(BillingModelCPM)
	store := newFakeStore(c)
	svc := NewService(store, nil)

	first := anonRequest(c.ID)
	second := anonRequest(c.ID)
	second.Signals.UserAgent = "Mozilla/5.0 (iPhone)"
	second.Signals.MaxTouchPoints = 5

	if err := svc.RecordImpression(context.Background(), first); err != nil {
		t.Fatalf("first impression failed: %v", err)
	}
	if err := svc.RecordImpression(context.Background(), second); err != nil {
		t.Fatalf("second impression failed: %v", err)
	}

	if got := store.campaigns[c.ID].Spent; got != 6 {
		t.Fatalf("two distinct viewers should bill twice, got spent=%d", got)
	}
}

type fakeDeduper struct {
	keys map[string]bool
}

func (f *fakeDeduper) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if f.keys[k] {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeDeduper) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if f.keys == nil {
		f.keys = make(map[string]bool)
	}
	set := !f.keys[key]
	f.keys[key] = true
	return redis.NewBoolResult(set, nil)
}

func TestImpressionDedupKeyMarkedOnlyAfterWrite(t *testing.T) {
	c := testCampaign(BillingModelCPM)
	store := newFakeStore(c)
	svc := NewService(store, nil)
	cache := &fakeDeduper{}
	svc.dedup = cache

	store.eventErr = errors.New("store unavailable")
	if err := svc.RecordImpression(context.Background(), anonRequest(c.ID)); err == nil {
		t.Fatal("expected the store failure to surface")
	}
	if len(cache.keys) != 0 {
		t.Fatalf("a failed write must not mark the dedup key, got %v", cache.keys)
	}

	// The same viewer retries once the store recovers.
	store.eventErr = nil
	if err := svc.RecordImpression(context.Background(), anonRequest(c.ID)); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := store.campaigns[c.ID].Spent; got != 3 {
		t.Fatalf("expected the retried impression to bill, got spent=%d", got)
	}
	if len(cache.keys) != 1 {
		t.Fatalf("expected one dedup key after a successful write, got %d", len(cache.keys))
	}

	recorded := len(store.recorded)
	if err := svc.RecordImpression(context.Background(), anonRequest(c.ID)); err != nil {
		t.Fatalf("deduped impression failed: %v", err)
	}
	if len(store.recorded) != recorded {
		t.Fatal("a cached duplicate must not reach the store")
	}
}

func TestRecordImpressionUnknownCampaignIsSilent(t *testing.T) {
	svc := NewService(newFakeStore(), nil)

	if err := svc.RecordImpression(context.Background(), anonRequest(uuid.New())); err != nil {
		t.Fatalf("unknown campaign must be a silent no-op, got %v", err)
	}
}

func TestClicksNotDedupedSameDay(t *testing.T) {
	c := testCampaign(BillingModelCPC)
	store := newFakeStore(c)
	svc := NewService(store, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordClick(context.Background(), anonRequest(c.ID)); err != nil {
			t.Fatalf("click %d failed: %v", i, err)
		}
	}

	got := store.campaigns[c.ID]
	if got.Clicks != 3 {
		t.Fatalf("clicks have no dedup layer, expected 3, got %d", got.Clicks)
	}
	if got.Spent != 75 {
		t.Fatalf("expected 3 billed clicks (75 cents), got spent=%d", got.Spent)
	}
}

func TestImpressionDoesNotChargeCPCCampaign(t *testing.T) {
	c := testCampaign(BillingModelCPC)
	store := newFakeStore(c)
	svc := NewService(store, nil)

	if err := svc.RecordImpression(context.Background(), anonRequest(c.ID)); err != nil {
		t.Fatalf("impression failed: %v", err)
	}

	got := store.campaigns[c.ID]
	if got.Spent != 0 {
		t.Fatalf("cpc campaign must not pay for impressions, got spent=%d", got.Spent)
	}
	if got.Impressions != 1 {
		t.Fatalf("raw impression counter still increments, got %d", got.Impressions)
	}
}

func TestClickDeactivatesAtBudgetCeiling(t *testing.T) {
	c := testCampaign(BillingModelCPC)
	c.CostPerClick = 10
	c.Spent = 95
	c.Budget = sql.NullInt64{Int64: 100, Valid: true}
	store := newFakeStore(c)
	svc := NewService(store, nil)

	result, err := svc.RecordClick(context.Background(), anonRequest(c.ID))
	if err != nil {
		t.Fatalf("record click failed: %v", err)
	}
	if !result.Deactivated {
		t.Fatal("expected deactivation to be reported")
	}

	got := store.campaigns[c.ID]
	if got.Spent != 100 {
		t.Fatalf("expected spent clamped to 100, got %d", got.Spent)
	}
	if got.IsActive {
		t.Fatal("expected campaign deactivated")
	}
}
