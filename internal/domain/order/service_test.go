package order

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gouache/gouache-api/internal/domain/artwork"
	"github.com/gouache/gouache-api/internal/pkg/stripe"
)

type fakeArtworkStore struct {
	artworks map[uuid.UUID]*artwork.Artwork
	statuses map[uuid.UUID]artwork.Status
}

func (f *fakeArtworkStore) GetByID(_ context.Context, id uuid.UUID) (*artwork.Artwork, error) {
	a, ok := f.artworks[id]
	if !ok {
		return nil, artwork.ErrArtworkNotFound
	}
	return a, nil
}

func (f *fakeArtworkStore) SetStatus(_ context.Context, id uuid.UUID, status artwork.Status) error {
	if f.statuses == nil {
		f.statuses = make(map[uuid.UUID]artwork.Status)
	}
	f.statuses[id] = status
	return nil
}

type fakeOrderStore struct {
	orders    map[uuid.UUID]*Order
	createErr error
}

func (f *fakeOrderStore) Create(_ context.Context, o *Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.orders == nil {
		f.orders = make(map[uuid.UUID]*Order)
	}
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderStore) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) SetStatus(_ context.Context, id uuid.UUID, status Status, _ string) error {
	o, ok := f.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	return nil
}

type fakeGateway struct {
	authorized []string
	captured   []string
	cancelled  []string
	authErr    error
}

func (f *fakeGateway) AuthorizePayment(_ context.Context, req stripe.ChargeRequest) (*stripe.PaymentIntent, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	id := "pi_auth_" + uuid.NewString()[:8]
	f.authorized = append(f.authorized, id)
	return &stripe.PaymentIntent{ID: id, Status: "requires_capture", Amount: req.AmountCents}, nil
}

func (f *fakeGateway) CapturePayment(_ context.Context, intentID string) (*stripe.PaymentIntent, error) {
	f.captured = append(f.captured, intentID)
	return &stripe.PaymentIntent{ID: intentID, Status: "succeeded"}, nil
}

func (f *fakeGateway) CancelPayment(_ context.Context, intentID string) (*stripe.PaymentIntent, error) {
	f.cancelled = append(f.cancelled, intentID)
	return &stripe.PaymentIntent{ID: intentID, Status: "canceled"}, nil
}

func publishedArtwork() *artwork.Artwork {
	return &artwork.Artwork{
		ID:         uuid.New(),
		ArtistID:   uuid.New(),
		Title:      "Harbor at Dusk",
		PriceCents: 45000,
		Currency:   "usd",
		Status:     artwork.StatusPublished,
	}
}

func newCheckout(a *artwork.Artwork) (*Service, *fakeOrderStore, *fakeGateway) {
	orders := &fakeOrderStore{}
	gateway := &fakeGateway{}
	artworks := &fakeArtworkStore{artworks: map[uuid.UUID]*artwork.Artwork{a.ID: a}}
	return NewService(orders, artworks, gateway), orders, gateway
}

func TestPlaceAuthorizesWithoutCapturing(t *testing.T) {
	a := publishedArtwork()
	svc, _, gateway := newCheckout(a)

	o, err := svc.Place(context.Background(), uuid.New(), PlaceParams{
		ArtworkID: a.ID, StripeCustomerID: "cus_1", PaymentMethodID: "pm_1",
	})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}

	if o.Status != StatusAuthorized {
		t.Fatalf("expected authorized order, got %s", o.Status)
	}
	if o.AmountCents != 45000 {
		t.Fatalf("order amount must match artwork price, got %d", o.AmountCents)
	}
	if len(gateway.authorized) != 1 || len(gateway.captured) != 0 {
		t.Fatalf("expected hold without capture, got %d/%d", len(gateway.authorized), len(gateway.captured))
	}
}

func TestPlaceRejectsDraftArtwork(t *testing.T) {
	a := publishedArtwork()
	a.Status = artwork.StatusDraft
	svc, _, gateway := newCheckout(a)

	_, err := svc.Place(context.Background(), uuid.New(), PlaceParams{ArtworkID: a.ID})
	if !errors.Is(err, artwork.ErrNotPurchasable) {
		t.Fatalf("expected ErrNotPurchasable, got %v", err)
	}
	if len(gateway.authorized) != 0 {
		t.Fatal("must not authorize for an unpurchasable artwork")
	}
}

func TestPlaceReleasesHoldWhenOrderInsertFails(t *testing.T) {
	a := publishedArtwork()
	svc, orders, gateway := newCheckout(a)
	orders.createErr = errors.New("db down")

	_, err := svc.Place(context.Background(), uuid.New(), PlaceParams{
		ArtworkID: a.ID, StripeCustomerID: "cus_1", PaymentMethodID: "pm_1",
	})
	if err == nil {
		t.Fatal("expected place to fail")
	}
	if len(gateway.cancelled) != 1 {
		t.Fatalf("the orphaned hold must be released, got %d cancellations", len(gateway.cancelled))
	}
}

func TestFulfillCapturesAndMarksSold(t *testing.T) {
	a := publishedArtwork()
	orders := &fakeOrderStore{}
	gateway := &fakeGateway{}
	artworks := &fakeArtworkStore{artworks: map[uuid.UUID]*artwork.Artwork{a.ID: a}}
	svc := NewService(orders, artworks, gateway)

	o, err := svc.Place(context.Background(), uuid.New(), PlaceParams{
		ArtworkID: a.ID, StripeCustomerID: "cus_1", PaymentMethodID: "pm_1",
	})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}

	fulfilled, err := svc.Fulfill(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("fulfill failed: %v", err)
	}
	if fulfilled.Status != StatusPaid {
		t.Fatalf("expected paid order, got %s", fulfilled.Status)
	}
	if len(gateway.captured) != 1 {
		t.Fatalf("expected one capture, got %d", len(gateway.captured))
	}
	if artworks.statuses[a.ID] != artwork.StatusSold {
		t.Fatal("artwork must be marked sold")
	}
}

func TestFulfillRequiresAuthorizedOrder(t *testing.T) {
	a := publishedArtwork()
	svc, orders, _ := newCheckout(a)

	o := &Order{ID: uuid.New(), BuyerID: uuid.New(), ArtworkID: a.ID, Status: StatusCancelled}
	orders.orders = map[uuid.UUID]*Order{o.ID: o}

	if _, err := svc.Fulfill(context.Background(), o.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancelByStranger(t *testing.T) {
	a := publishedArtwork()
	svc, _, gateway := newCheckout(a)

	buyer := uuid.New()
	o, err := svc.Place(context.Background(), buyer, PlaceParams{
		ArtworkID: a.ID, StripeCustomerID: "cus_1", PaymentMethodID: "pm_1",
	})
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}

	if _, err := svc.Cancel(context.Background(), uuid.New(), o.ID); !errors.Is(err, ErrNotOrderOwner) {
		t.Fatalf("expected ErrNotOrderOwner, got %v", err)
	}
	if len(gateway.cancelled) != 0 {
		t.Fatal("a stranger must not release the hold")
	}

	cancelled, err := svc.Cancel(context.Background(), buyer, o.ID)
	if err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
}
