package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/conf"
	"divination-bot/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

type stubPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*biz.Payment
	credits  int
}

func (r *stubPaymentRepo) CreatePayment(_ context.Context, p *biz.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.PaymentID] = &cp
	return nil
}

func (r *stubPaymentRepo) GetPayment(_ context.Context, paymentID string) (*biz.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *stubPaymentRepo) SucceedAndCredit(_ context.Context, paymentID string, paidUnits, unlimitedDays int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok || p.Status == constants.PaymentStatusSucceeded {
		return false, nil
	}
	p.Status = constants.PaymentStatusSucceeded
	now := time.Now()
	p.CompletedAt = &now
	r.credits++
	return true, nil
}

func (r *stubPaymentRepo) MarkCanceled(_ context.Context, paymentID string) error {
	return nil
}

func (r *stubPaymentRepo) creditCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.credits
}

type stubUserRepo struct{}

func (stubUserRepo) GetUser(context.Context, int64) (*biz.User, error)         { return nil, nil }
func (stubUserRepo) UpsertUser(context.Context, *biz.User) (bool, error)       { return false, nil }
func (stubUserRepo) SetEmail(context.Context, int64, string) error             { return nil }
func (stubUserRepo) SetBlocked(context.Context, int64, bool) error             { return nil }
func (stubUserRepo) SetDailyCardSubscribed(context.Context, int64, bool) error { return nil }
func (stubUserRepo) ListDailyCardRecipients(context.Context) ([]*biz.User, error) {
	return nil, nil
}

type stubConversionRepo struct{}

func (stubConversionRepo) SaveConversion(context.Context, *biz.Conversion) error { return nil }

func newWebhookFixture(t *testing.T) (*WebhookService, *stubPaymentRepo) {
	t.Helper()
	logger := log.NewStdLogger(&strings.Builder{})
	repo := &stubPaymentRepo{payments: map[string]*biz.Payment{
		"gw-1": {
			PaymentID: "gw-1",
			UserID:    42,
			PackageID: "pay_3_spreads",
			Amount:    6900,
			Status:    constants.PaymentStatusPending,
		},
	}}
	conv := biz.NewConversionUseCase(&conf.Bootstrap{}, stubConversionRepo{}, nil, logger)
	payment := biz.NewPaymentUseCase(repo, nil, stubUserRepo{}, conv, logger)
	return NewWebhookService(payment, logger), repo
}

func postWebhook(t *testing.T, svc *WebhookService, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/yookassa", strings.NewReader(body))
	rec := httptest.NewRecorder()
	svc.HandleYooKassa(rec, req)
	return rec
}

func TestWebhookMalformedBodyRejected(t *testing.T) {
	svc, _ := newWebhookFixture(t)

	if rec := postWebhook(t, svc, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body: status %d, want 400", rec.Code)
	}
	if rec := postWebhook(t, svc, "{not json"); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: status %d, want 400", rec.Code)
	}
}

func TestWebhookIrrelevantEventAccepted(t *testing.T) {
	svc, repo := newWebhookFixture(t)

	bodies := []string{
		`{"event":"payment.waiting_for_capture","object":{"id":"gw-1"}}`,
		`{"event":"refund.succeeded","object":{"id":"gw-1"}}`,
		`{"event":"payment.succeeded","object":{}}`,
		`{"something":"else"}`,
	}
	for _, body := range bodies {
		if rec := postWebhook(t, svc, body); rec.Code != http.StatusOK {
			t.Fatalf("body %s: status %d, want 200", body, rec.Code)
		}
	}
	if repo.creditCount() != 0 {
		t.Fatal("irrelevant events must not credit")
	}
}

func TestWebhookSuccessCreditsOnce(t *testing.T) {
	svc, repo := newWebhookFixture(t)
	body := `{"event":"payment.succeeded","object":{"id":"gw-1","status":"succeeded"}}`

	for i := 0; i < 3; i++ {
		if rec := postWebhook(t, svc, body); rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: status %d, want 200", i, rec.Code)
		}
	}
	if got := repo.creditCount(); got != 1 {
		t.Fatalf("credited %d times across retries, want 1", got)
	}
	p, _ := repo.GetPayment(context.Background(), "gw-1")
	if p.Status != constants.PaymentStatusSucceeded || p.CompletedAt == nil {
		t.Fatalf("payment not finalized: %+v", p)
	}
}

func TestWebhookUnknownPaymentAccepted(t *testing.T) {
	svc, repo := newWebhookFixture(t)
	body := `{"event":"payment.succeeded","object":{"id":"gw-unknown","status":"succeeded"}}`

	if rec := postWebhook(t, svc, body); rec.Code != http.StatusOK {
		t.Fatalf("unknown payment: status %d, want 200", rec.Code)
	}
	if repo.creditCount() != 0 {
		t.Fatal("unknown payment must not credit")
	}
}
