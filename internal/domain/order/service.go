package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gouache/gouache-api/internal/domain/artwork"
	"github.com/gouache/gouache-api/internal/pkg/stripe"
)

// ArtworkStore is the artwork surface checkout needs
type ArtworkStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*artwork.Artwork, error)
	SetStatus(ctx context.Context, id uuid.UUID, status artwork.Status) error
}

// OrderStore is the order persistence surface
type OrderStore interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status, paymentIntentID string) error
}

// PaymentGateway is the processor surface checkout needs. Checkout uses
// the authorize-then-capture split: funds are held at order placement
// and captured only at fulfillment.
type PaymentGateway interface {
	AuthorizePayment(ctx context.Context, req stripe.ChargeRequest) (*stripe.PaymentIntent, error)
	CapturePayment(ctx context.Context, intentID string) (*stripe.PaymentIntent, error)
	CancelPayment(ctx context.Context, intentID string) (*stripe.PaymentIntent, error)
}

// Service handles checkout business logic
type Service struct {
	orders   OrderStore
	artworks ArtworkStore
	gateway  PaymentGateway
}

// NewService creates order service
func NewService(orders OrderStore, artworks ArtworkStore, gateway PaymentGateway) *Service {
	return &Service{orders: orders, artworks: artworks, gateway: gateway}
}

// PlaceParams carries checkout input. The processor handles come from
// the frontend's card-collection flow.
type PlaceParams struct {
	ArtworkID        uuid.UUID
	StripeCustomerID string
	PaymentMethodID  string
}

// Place authorizes payment for an artwork and creates the order. Funds
// are held, not captured.
func (s *Service) Place(ctx context.Context, buyerID uuid.UUID, params PlaceParams) (*Order, error) {
	a, err := s.artworks.GetByID(ctx, params.ArtworkID)
	if err != nil {
		return nil, err
	}
	if a.Status != artwork.StatusPublished {
		return nil, artwork.ErrNotPurchasable
	}

	intent, err := s.gateway.AuthorizePayment(ctx, stripe.ChargeRequest{
		CustomerID:      params.StripeCustomerID,
		PaymentMethodID: params.PaymentMethodID,
		AmountCents:     a.PriceCents,
		Currency:        a.Currency,
		Description:     fmt.Sprintf("Gouache artwork: %s", a.Title),
		Metadata: map[string]string{
			"artwork_id": a.ID.String(),
			"buyer_id":   buyerID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o := &Order{
		ID:              uuid.New(),
		BuyerID:         buyerID,
		ArtworkID:       a.ID,
		AmountCents:     a.PriceCents,
		Currency:        a.Currency,
		Status:          StatusAuthorized,
		PaymentIntentID: sql.NullString{String: intent.ID, Valid: true},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		// The hold stays on the card; release it rather than orphan it.
		if _, cancelErr := s.gateway.CancelPayment(ctx, intent.ID); cancelErr != nil {
			log.Error().Err(cancelErr).Str("intent_id", intent.ID).Msg("Failed to release orphaned authorization")
		}
		return nil, err
	}

	return o, nil
}

// Fulfill captures the held funds and marks the artwork sold
func (s *Service) Fulfill(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusAuthorized {
		return nil, ErrInvalidTransition
	}

	if _, err := s.gateway.CapturePayment(ctx, o.PaymentIntentID.String); err != nil {
		return nil, err
	}

	if err := s.orders.SetStatus(ctx, o.ID, StatusPaid, ""); err != nil {
		return nil, err
	}
	if err := s.artworks.SetStatus(ctx, o.ArtworkID, artwork.StatusSold); err != nil {
		log.Error().Err(err).Str("artwork_id", o.ArtworkID.String()).Msg("Failed to mark artwork sold")
	}

	o.Status = StatusPaid
	return o, nil
}

// Cancel releases the hold and cancels the order
func (s *Service) Cancel(ctx context.Context, buyerID, orderID uuid.UUID) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != buyerID {
		return nil, ErrNotOrderOwner
	}
	if o.Status != StatusAuthorized {
		return nil, ErrInvalidTransition
	}

	if _, err := s.gateway.CancelPayment(ctx, o.PaymentIntentID.String); err != nil {
		return nil, err
	}

	if err := s.orders.SetStatus(ctx, o.ID, StatusCancelled, ""); err != nil {
		return nil, err
	}

	o.Status = StatusCancelled
	return o, nil
}
