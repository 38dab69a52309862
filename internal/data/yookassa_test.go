package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"divination-bot/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

func testPaymentConf() *conf.Payment {
	return &conf.Payment{
		ShopID:    "shop-1",
		SecretKey: "sk-secret",
		ReturnURL: "https://t.me/test_bot",
	}
}

func TestKopecksToValue(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{6900, "69.00"},
		{14900, "149.00"},
		{49900, "499.00"},
		{105, "1.05"},
		{5, "0.05"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := kopecksToValue(tc.in); got != tc.want {
			t.Fatalf("kopecksToValue(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreatePaymentRequest(t *testing.T) {
	var captured struct {
		idempotenceKey string
		authOK         bool
		body           yooKassaCreateRequest
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payments" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		captured.idempotenceKey = r.Header.Get("Idempotence-Key")
		user, pass, ok := r.BasicAuth()
		captured.authOK = ok && user == "shop-1" && pass == "sk-secret"
		if err := json.NewDecoder(r.Body).Decode(&captured.body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(yooKassaPayment{
			ID:     "gw-123",
			Status: "pending",
			Confirmation: &yooKassaConfirmation{
				Type:            "redirect",
				ConfirmationURL: "https://yookassa.example/confirm/gw-123",
			},
		})
	}))
	defer srv.Close()

	logger := log.NewStdLogger(&strings.Builder{})
	c := newYooKassaClient(testPaymentConf(), &http.Client{Timeout: time.Second}, srv.URL, logger)

	intent, err := c.CreatePayment(context.Background(), 14900, "Гадание: 10 раскладов", "user@example.com", map[string]string{"user_id": "42"})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if intent.ID != "gw-123" || intent.ConfirmationURL != "https://yookassa.example/confirm/gw-123" {
		t.Fatalf("intent %+v", intent)
	}

	if captured.idempotenceKey == "" {
		t.Fatal("Idempotence-Key header missing")
	}
	if !captured.authOK {
		t.Fatal("basic auth credentials not sent")
	}
	if captured.body.Amount.Value != "149.00" || captured.body.Amount.Currency != "RUB" {
		t.Fatalf("amount %+v", captured.body.Amount)
	}
	if !captured.body.Capture {
		t.Fatal("capture must be requested")
	}
	if captured.body.Confirmation.Type != "redirect" || captured.body.Confirmation.ReturnURL != "https://t.me/test_bot" {
		t.Fatalf("confirmation %+v", captured.body.Confirmation)
	}
	if captured.body.Receipt == nil || captured.body.Receipt.Customer.Email != "user@example.com" {
		t.Fatalf("receipt %+v", captured.body.Receipt)
	}
	if captured.body.Metadata["user_id"] != "42" {
		t.Fatalf("metadata %+v", captured.body.Metadata)
	}
}

func TestCreatePaymentWithoutEmailSkipsReceipt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body yooKassaCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Receipt != nil {
			t.Error("receipt must be omitted without an email")
		}
		json.NewEncoder(w).Encode(yooKassaPayment{ID: "gw-1", Status: "pending"})
	}))
	defer srv.Close()

	logger := log.NewStdLogger(&strings.Builder{})
	c := newYooKassaClient(testPaymentConf(), &http.Client{Timeout: time.Second}, srv.URL, logger)
	if _, err := c.CreatePayment(context.Background(), 6900, "Гадание: 3 расклада", "", nil); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/gw-9" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(yooKassaPayment{
			ID:       "gw-9",
			Status:   "succeeded",
			Paid:     true,
			Metadata: map[string]string{"package_id": "pay_unlimited"},
		})
	}))
	defer srv.Close()

	logger := log.NewStdLogger(&strings.Builder{})
	c := newYooKassaClient(testPaymentConf(), &http.Client{Timeout: time.Second}, srv.URL, logger)

	p, err := c.GetPayment(context.Background(), "gw-9")
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if p.Status != "succeeded" || !p.Paid || p.Metadata["package_id"] != "pay_unlimited" {
		t.Fatalf("payment %+v", p)
	}
}

func TestGatewayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	logger := log.NewStdLogger(&strings.Builder{})
	c := newYooKassaClient(testPaymentConf(), &http.Client{Timeout: time.Second}, srv.URL, logger)
	if _, err := c.GetPayment(context.Background(), "gw-9"); err == nil {
		t.Fatal("non-2xx status must surface an error")
	}
}

func TestNewGatewayClientDisabledWithoutCredentials(t *testing.T) {
	logger := log.NewStdLogger(&strings.Builder{})
	if c := NewGatewayClient(&conf.Bootstrap{}, logger); c != nil {
		t.Fatal("missing credentials must disable the gateway")
	}
	if c := NewGatewayClient(&conf.Bootstrap{Payment: &conf.Payment{ShopID: "shop"}}, logger); c != nil {
		t.Fatal("partial credentials must disable the gateway")
	}
}
