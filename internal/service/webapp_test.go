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

	"github.com/go-kratos/kratos/v2/log"
)

type stubSessionRepo struct {
	mu       sync.Mutex
	sessions map[int64]*biz.Session
}

func (r *stubSessionRepo) GetSession(_ context.Context, userID int64) (*biz.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *stubSessionRepo) SaveSession(_ context.Context, userID int64, s *biz.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[userID] = &cp
	return nil
}

func (r *stubSessionRepo) ClearSession(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

type stubPendingRepo struct {
	mu      sync.Mutex
	pending map[int64]string
}

func (r *stubPendingRepo) PutPendingQuestion(_ context.Context, userID int64, q string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[userID] = q
	return nil
}

func (r *stubPendingRepo) TakePendingQuestion(_ context.Context, userID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.pending[userID]
	delete(r.pending, userID)
	return q, nil
}

type stubBalanceRepo struct {
	mu   sync.Mutex
	free map[int64]int
}

func (r *stubBalanceRepo) GetBalance(_ context.Context, userID int64) (*biz.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.free[userID]
	if !ok {
		return nil, nil
	}
	return &biz.Balance{UserID: userID, FreeRemaining: n}, nil
}

func (r *stubBalanceRepo) CreateBalance(_ context.Context, userID int64) error { return nil }

func (r *stubBalanceRepo) Consume(_ context.Context, userID int64) (biz.Tier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.free[userID] > 0 {
		r.free[userID]--
		return biz.TierFree, nil
	}
	return biz.TierNone, nil
}

func (r *stubBalanceRepo) Credit(context.Context, int64, int, int) error { return nil }

type stubReadingRepo struct {
	mu     sync.Mutex
	nextID int64
}

func (r *stubReadingRepo) SaveReading(_ context.Context, reading *biz.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	reading.ID = r.nextID
	return nil
}

func (r *stubReadingRepo) GetReading(context.Context, int64) (*biz.Reading, error) {
	return nil, nil
}

func (r *stubReadingRepo) AppendInterpretation(context.Context, int64, string) error { return nil }

func (r *stubReadingRepo) ListByUser(context.Context, int64, int) ([]*biz.Reading, error) {
	return nil, nil
}

type stubInterpreter struct{}

func (stubInterpreter) Complete(context.Context, string, []biz.Turn) (string, error) {
	return "Карты благосклонны.", nil
}

type recordingReadingNotifier struct {
	mu        sync.Mutex
	delivered []int64
	paywalled []int64
}

func (n *recordingReadingNotifier) DeliverReading(_ context.Context, userID int64, _ *biz.ReadingOutcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, userID)
}

func (n *recordingReadingNotifier) NotifyPaywall(_ context.Context, userID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paywalled = append(n.paywalled, userID)
}

func (n *recordingReadingNotifier) deliveredCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.delivered)
}

func newWebAppFixture(t *testing.T) (*WebAppService, *stubBalanceRepo, *stubPendingRepo, *recordingReadingNotifier) {
	t.Helper()
	logger := log.NewStdLogger(&strings.Builder{})

	sessions := &stubSessionRepo{sessions: make(map[int64]*biz.Session)}
	pending := &stubPendingRepo{pending: make(map[int64]string)}
	balances := &stubBalanceRepo{free: map[int64]int{42: 1}}

	conv := biz.NewConversionUseCase(&conf.Bootstrap{}, stubConversionRepo{}, nil, logger)
	balance := biz.NewBalanceUseCase(balances, logger)
	readings := biz.NewReadingUseCase(&stubReadingRepo{}, logger)
	dialog := biz.NewDialogUseCase(sessions, pending, balance, readings, stubUserRepo{}, stubInterpreter{}, conv, logger)

	notifier := &recordingReadingNotifier{}
	return NewWebAppService(dialog, balance, notifier, logger), balances, pending, notifier
}

func postCards(t *testing.T, svc *WebAppService, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webapp/cards", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	svc.HandleCards(rec, req)
	return rec
}

func TestWebAppCardsValidation(t *testing.T) {
	svc, _, _, _ := newWebAppFixture(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed", "{nope"},
		{"missing user", `{"selected_cards":["fool","tower","sun"]}`},
		{"too few cards", `{"user_id":42,"selected_cards":["fool"]}`},
		{"too many cards", `{"user_id":42,"selected_cards":["fool","tower","sun","moon"]}`},
		{"no cards", `{"user_id":42}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := postCards(t, svc, tc.body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}
		})
	}
}

func TestWebAppCardsNoBalanceForbidden(t *testing.T) {
	svc, _, _, _ := newWebAppFixture(t)

	rec := postCards(t, svc, `{"user_id":999,"selected_cards":["fool","tower","sun"]}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", rec.Code)
	}
}

func TestWebAppCardsAcceptedAndDelivered(t *testing.T) {
	svc, _, pending, notifier := newWebAppFixture(t)
	pending.PutPendingQuestion(context.Background(), 42, "Как пройдёт неделя?")

	rec := postCards(t, svc, `{"user_id":42,"selected_cards":["fool","tower","sun"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body %s", rec.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for notifier.deliveredCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("reading never delivered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// The stashed question was consumed.
	if q, _ := pending.TakePendingQuestion(context.Background(), 42); q != "" {
		t.Fatalf("stashed question not consumed: %q", q)
	}
}

func TestWebAppCardsMethodHandling(t *testing.T) {
	svc, _, _, _ := newWebAppFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/webapp/cards", nil)
	rec := httptest.NewRecorder()
	svc.HandleCards(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("OPTIONS status %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("missing CORS header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/webapp/cards", nil)
	rec = httptest.NewRecorder()
	svc.HandleCards(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status %d, want 405", rec.Code)
	}
}
