package stripe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChargePaymentMethodSuccess(t *testing.T) {
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk_test_123" {
			t.Errorf("missing api key header")
		}
		r.ParseForm()
		gotForm = map[string]string{
			"amount":         r.PostFormValue("amount"),
			"currency":       r.PostFormValue("currency"),
			"customer":       r.PostFormValue("customer"),
			"payment_method": r.PostFormValue("payment_method"),
			"confirm":        r.PostFormValue("confirm"),
			"off_session":    r.PostFormValue("off_session"),
			"meta_partner":   r.PostFormValue("metadata[partner_id]"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","status":"succeeded","amount":110,"currency":"usd"}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk_test_123", BaseURL: server.URL})

	intent, err := client.ChargePaymentMethod(context.Background(), ChargeRequest{
		CustomerID:      "cus_1",
		PaymentMethodID: "pm_1",
		AmountCents:     110,
		Currency:        "usd",
		Metadata:        map[string]string{"partner_id": "p-1"},
	})
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if intent.ID != "pi_123" {
		t.Fatalf("expected pi_123, got %s", intent.ID)
	}

	if gotForm["amount"] != "110" || gotForm["currency"] != "usd" {
		t.Fatalf("unexpected amount/currency: %v", gotForm)
	}
	if gotForm["confirm"] != "true" || gotForm["off_session"] != "true" {
		t.Fatalf("settlement charge must be confirmed off-session: %v", gotForm)
	}
	if gotForm["meta_partner"] != "p-1" {
		t.Fatalf("metadata not forwarded: %v", gotForm)
	}
}

func TestChargePaymentMethodDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds","message":"Your card was declined."}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk_test_123", BaseURL: server.URL})

	_, err := client.ChargePaymentMethod(context.Background(), ChargeRequest{
		CustomerID:      "cus_1",
		PaymentMethodID: "pm_1",
		AmountCents:     500,
	})
	if err == nil {
		t.Fatal("expected decline error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != "card_declined" || apiErr.DeclineCode != "insufficient_funds" {
		t.Fatalf("unexpected error detail: %+v", apiErr)
	}
}

func TestChargePaymentMethodValidation(t *testing.T) {
	client := NewClient(Config{APIKey: "sk_test_123"})

	if _, err := client.ChargePaymentMethod(context.Background(), ChargeRequest{
		CustomerID: "cus_1", PaymentMethodID: "pm_1", AmountCents: 0,
	}); err == nil {
		t.Fatal("expected error for zero amount")
	}

	if _, err := client.ChargePaymentMethod(context.Background(), ChargeRequest{
		AmountCents: 100,
	}); err == nil {
		t.Fatal("expected error for missing customer")
	}
}

func TestAuthorizeCaptureFlow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/payment_intents":
			r.ParseForm()
			if r.PostFormValue("capture_method") != "manual" {
				t.Errorf("authorize must use manual capture")
			}
			w.Write([]byte(`{"id":"pi_hold","status":"requires_capture","amount":2500,"currency":"usd"}`))
		case "/v1/payment_intents/pi_hold/capture":
			w.Write([]byte(`{"id":"pi_hold","status":"succeeded","amount":2500,"currency":"usd"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "sk_test_123", BaseURL: server.URL})

	hold, err := client.AuthorizePayment(context.Background(), ChargeRequest{
		CustomerID: "cus_1", PaymentMethodID: "pm_1", AmountCents: 2500,
	})
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if hold.Status != "requires_capture" {
		t.Fatalf("expected requires_capture, got %s", hold.Status)
	}

	captured, err := client.CapturePayment(context.Background(), hold.ID)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if captured.Status != "succeeded" {
		t.Fatalf("expected succeeded, got %s", captured.Status)
	}
}
