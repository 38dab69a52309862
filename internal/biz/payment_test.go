package biz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"divination-bot/internal/conf"
	"divination-bot/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

// memPaymentRepo mirrors the transactional terminal-state check of the real
// store: only the first succeed call credits.
type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*Payment
	credits  int
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[string]*Payment)}
}

func (r *memPaymentRepo) CreatePayment(_ context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.PaymentID] = &cp
	return nil
}

func (r *memPaymentRepo) GetPayment(_ context.Context, paymentID string) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) SucceedAndCredit(_ context.Context, paymentID string, paidUnits, unlimitedDays int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok {
		return false, nil
	}
	if p.Status == constants.PaymentStatusSucceeded || p.Status == constants.PaymentStatusCanceled {
		return false, nil
	}
	p.Status = constants.PaymentStatusSucceeded
	now := time.Now()
	p.CompletedAt = &now
	r.credits++
	return true, nil
}

func (r *memPaymentRepo) MarkCanceled(_ context.Context, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[paymentID]; ok && p.Status == constants.PaymentStatusPending {
		p.Status = constants.PaymentStatusCanceled
	}
	return nil
}

func (r *memPaymentRepo) creditCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.credits
}

type fakeGateway struct {
	mu       sync.Mutex
	nextID   int
	statuses map[string]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: make(map[string]string)}
}

func (g *fakeGateway) CreatePayment(_ context.Context, amountKopecks int64, description, email string, metadata map[string]string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := fmt.Sprintf("gw-%d", g.nextID)
	g.statuses[id] = constants.PaymentStatusPending
	return &PaymentIntent{ID: id, ConfirmationURL: "https://pay.example/" + id}, nil
}

func (g *fakeGateway) GetPayment(_ context.Context, paymentID string) (*GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &GatewayPayment{ID: paymentID, Status: g.statuses[paymentID]}, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []int64
}

func (n *recordingNotifier) PaymentSucceeded(_ context.Context, userID int64, _ *Package) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, userID)
}

func (n *recordingNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func newPaymentFixture(t *testing.T) (*PaymentUseCase, *memPaymentRepo, *fakeGateway, *recordingNotifier) {
	t.Helper()
	logger := log.NewStdLogger(&strings.Builder{})
	repo := newMemPaymentRepo()
	gw := newFakeGateway()
	conv := NewConversionUseCase(&conf.Bootstrap{}, &memConversionRepo{}, nil, logger)
	uc := NewPaymentUseCase(repo, gw, newMemUserRepo(), conv, logger)
	n := &recordingNotifier{}
	uc.SetNotifier(n)
	return uc, repo, gw, n
}

func TestCreatePaymentPersistsIntent(t *testing.T) {
	uc, repo, _, _ := newPaymentFixture(t)
	ctx := context.Background()

	pkg := PackageByID("pay_10_spreads")
	p, url, err := uc.Create(ctx, 42, pkg, "user@example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if url == "" {
		t.Fatal("missing confirmation url")
	}
	stored, _ := repo.GetPayment(ctx, p.PaymentID)
	if stored == nil || stored.Status != constants.PaymentStatusPending {
		t.Fatalf("stored intent %+v", stored)
	}
	if stored.Amount != pkg.AmountKopecks || stored.PackageID != pkg.ID {
		t.Fatalf("intent fields mismatch: %+v", stored)
	}
}

func TestProcessSuccessCreditsExactlyOnce(t *testing.T) {
	uc, repo, _, notifier := newPaymentFixture(t)
	ctx := context.Background()

	pkg := PackageByID("pay_3_spreads")
	p, _, err := uc.Create(ctx, 42, pkg, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := uc.ProcessSuccess(ctx, p.PaymentID); err != nil {
			t.Fatalf("ProcessSuccess %d: %v", i, err)
		}
	}
	if got := repo.creditCount(); got != 1 {
		t.Fatalf("credited %d times, want 1", got)
	}
	if got := notifier.callCount(); got != 1 {
		t.Fatalf("notified %d times, want 1", got)
	}
}

func TestProcessSuccessConcurrentDuplicates(t *testing.T) {
	uc, repo, _, _ := newPaymentFixture(t)
	ctx := context.Background()

	p, _, err := uc.Create(ctx, 42, PackageByID("pay_unlimited"), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := uc.ProcessSuccess(ctx, p.PaymentID); err != nil {
				t.Errorf("ProcessSuccess: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := repo.creditCount(); got != 1 {
		t.Fatalf("credited %d times under concurrency, want 1", got)
	}
}

func TestProcessSuccessUnknownPaymentIsNoop(t *testing.T) {
	uc, repo, _, notifier := newPaymentFixture(t)

	if err := uc.ProcessSuccess(context.Background(), "gw-missing"); err != nil {
		t.Fatalf("unknown payment must be a no-op, got %v", err)
	}
	if repo.creditCount() != 0 || notifier.callCount() != 0 {
		t.Fatal("unknown payment must not credit or notify")
	}
}

func TestCheckStatusRoutesTerminalStates(t *testing.T) {
	uc, repo, gw, _ := newPaymentFixture(t)
	ctx := context.Background()

	p, _, err := uc.Create(ctx, 42, PackageByID("pay_3_spreads"), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status, err := uc.CheckStatus(ctx, p.PaymentID)
	if err != nil || status != constants.PaymentStatusPending {
		t.Fatalf("pending poll: %q, %v", status, err)
	}

	gw.mu.Lock()
	gw.statuses[p.PaymentID] = constants.PaymentStatusSucceeded
	gw.mu.Unlock()

	status, err = uc.CheckStatus(ctx, p.PaymentID)
	if err != nil || status != constants.PaymentStatusSucceeded {
		t.Fatalf("succeeded poll: %q, %v", status, err)
	}
	if repo.creditCount() != 1 {
		t.Fatal("poll path must credit through the shared success path")
	}

	p2, _, err := uc.Create(ctx, 42, PackageByID("pay_3_spreads"), "")
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	gw.mu.Lock()
	gw.statuses[p2.PaymentID] = constants.PaymentStatusCanceled
	gw.mu.Unlock()

	if _, err := uc.CheckStatus(ctx, p2.PaymentID); err != nil {
		t.Fatalf("canceled poll: %v", err)
	}
	stored, _ := repo.GetPayment(ctx, p2.PaymentID)
	if stored.Status != constants.PaymentStatusCanceled {
		t.Fatalf("intent not canceled: %+v", stored)
	}
}

func TestDedupSetIsBounded(t *testing.T) {
	uc, _, _, _ := newPaymentFixture(t)

	for i := 0; i < constants.WebhookDedupCap+10; i++ {
		uc.markSeen(fmt.Sprintf("gw-%d", i))
	}
	uc.mu.Lock()
	size := len(uc.seen)
	uc.mu.Unlock()
	if size > constants.WebhookDedupCap {
		t.Fatalf("dedup set grew to %d, cap is %d", size, constants.WebhookDedupCap)
	}
}

func TestPackageCatalog(t *testing.T) {
	if PackageByID("nope") != nil {
		t.Fatal("unknown package must be nil")
	}
	unlimited := PackageByID("pay_unlimited")
	if unlimited == nil || unlimited.UnlimitedDays != constants.UnlimitedPackageDays || unlimited.Readings != 0 {
		t.Fatalf("unlimited package misconfigured: %+v", unlimited)
	}
	three := PackageByID("pay_3_spreads")
	if three == nil || three.Readings != 3 || three.AmountRub() != 69 {
		t.Fatalf("3-spread package misconfigured: %+v", three)
	}
}
