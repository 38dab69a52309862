package biz

import (
	"context"
	"strconv"
	"sync"
	"time"

	"divination-bot/internal/constants"
	bizErrors "divination-bot/internal/errors"
	"divination-bot/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// Package is one purchasable readings bundle.
type Package struct {
	ID            string
	Title         string
	Readings      int // paid units credited; 0 for the unlimited package
	UnlimitedDays int // subscription days; 0 for unit packages
	AmountKopecks int64
}

// AmountRub returns the package price in whole rubles.
func (p *Package) AmountRub() float64 {
	return float64(p.AmountKopecks) / 100
}

// Packages is the purchase catalog, cheapest first.
var Packages = []Package{
	{ID: "pay_3_spreads", Title: "3 расклада", Readings: 3, AmountKopecks: 6900},
	{ID: "pay_10_spreads", Title: "10 раскладов", Readings: 10, AmountKopecks: 14900},
	{ID: "pay_20_spreads", Title: "20 раскладов", Readings: 20, AmountKopecks: 24900},
	{ID: "pay_30_spreads", Title: "30 раскладов", Readings: 30, AmountKopecks: 34900},
	{ID: "pay_unlimited", Title: "Безлимит на месяц", UnlimitedDays: constants.UnlimitedPackageDays, AmountKopecks: 49900},
}

// PackageByID looks up a catalog entry, or nil for unknown ids.
func PackageByID(id string) *Package {
	for i := range Packages {
		if Packages[i].ID == id {
			return &Packages[i]
		}
	}
	return nil
}

// Payment is a gateway payment intent domain object.
type Payment struct {
	PaymentID   string
	UserID      int64
	PackageID   string
	Amount      int64 // kopecks
	Status      string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// PaymentRepo is the payment intent data access interface.
type PaymentRepo interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	// SucceedAndCredit marks the intent succeeded and credits the balance in
	// one transaction. The row is locked and re-checked: an intent already in
	// a terminal state yields credited=false with no mutation. This is the
	// idempotency anchor; in-memory dedup is an optimization only.
	SucceedAndCredit(ctx context.Context, paymentID string, paidUnits, unlimitedDays int) (credited bool, err error)
	MarkCanceled(ctx context.Context, paymentID string) error
}

// PaymentIntent is the gateway's create-payment response.
type PaymentIntent struct {
	ID              string
	ConfirmationURL string
}

// GatewayPayment is the gateway's view of an intent.
type GatewayPayment struct {
	ID       string
	Status   string
	Paid     bool
	Metadata map[string]string
}

// GatewayClient talks to the payment gateway.
type GatewayClient interface {
	CreatePayment(ctx context.Context, amountKopecks int64, description, email string, metadata map[string]string) (*PaymentIntent, error)
	GetPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
}

// SuccessNotifier is told about a credited payment so the user can be
// messaged outside the request that triggered it.
type SuccessNotifier interface {
	PaymentSucceeded(ctx context.Context, userID int64, pkg *Package)
}

// PaymentUseCase drives the purchase flow and the idempotent success path.
type PaymentUseCase struct {
	repo     PaymentRepo
	gateway  GatewayClient
	users    UserRepo
	conv     *ConversionUseCase
	notifier SuccessNotifier
	metrics  *metrics.BotMetrics
	log      *log.Helper

	// Recently processed gateway ids. Bounded: cleared wholesale once it
	// exceeds the cap. Best effort across restarts; the DB transition is the
	// source of truth.
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewPaymentUseCase creates the payment use case.
func NewPaymentUseCase(repo PaymentRepo, gateway GatewayClient, users UserRepo, conv *ConversionUseCase, logger log.Logger) *PaymentUseCase {
	return &PaymentUseCase{
		repo:    repo,
		gateway: gateway,
		users:   users,
		conv:    conv,
		metrics: metrics.GetMetrics(),
		log:     log.NewHelper(logger),
		seen:    make(map[string]struct{}),
	}
}

// SetNotifier wires the outbound notifier after construction (the notifier
// itself depends on this use case).
func (uc *PaymentUseCase) SetNotifier(n SuccessNotifier) {
	uc.notifier = n
}

// Enabled reports whether a gateway client is configured.
func (uc *PaymentUseCase) Enabled() bool {
	return uc.gateway != nil
}

// Create opens a payment intent with the gateway and persists it locally.
func (uc *PaymentUseCase) Create(ctx context.Context, userID int64, pkg *Package, email string) (*Payment, string, error) {
	if uc.gateway == nil {
		return nil, "", bizErrors.ErrGatewayUnavailable
	}
	metadata := map[string]string{
		"user_id":    strconv.FormatInt(userID, 10),
		"package_id": pkg.ID,
		"email":      email,
	}
	intent, err := uc.gateway.CreatePayment(ctx, pkg.AmountKopecks, "Гадание: "+pkg.Title, email, metadata)
	if err != nil {
		uc.log.Errorf("create payment for user %d pkg %s: %v", userID, pkg.ID, err)
		return nil, "", bizErrors.ErrGatewayUnavailable
	}
	p := &Payment{
		PaymentID: intent.ID,
		UserID:    userID,
		PackageID: pkg.ID,
		Amount:    pkg.AmountKopecks,
		Status:    constants.PaymentStatusPending,
		Email:     email,
	}
	if err := uc.repo.CreatePayment(ctx, p); err != nil {
		return nil, "", err
	}
	uc.metrics.PaymentsCreatedTotal.Inc()
	return p, intent.ConfirmationURL, nil
}

// CheckStatus polls the gateway for the intent and processes a success.
// Returns the gateway status string.
func (uc *PaymentUseCase) CheckStatus(ctx context.Context, paymentID string) (string, error) {
	if uc.gateway == nil {
		return "", bizErrors.ErrGatewayUnavailable
	}
	gp, err := uc.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		uc.log.Errorf("poll payment %s: %v", paymentID, err)
		return "", bizErrors.ErrGatewayUnavailable
	}
	switch gp.Status {
	case constants.PaymentStatusSucceeded:
		if err := uc.ProcessSuccess(ctx, paymentID); err != nil {
			return gp.Status, err
		}
	case constants.PaymentStatusCanceled:
		if err := uc.repo.MarkCanceled(ctx, paymentID); err != nil {
			uc.log.Errorf("mark payment %s canceled: %v", paymentID, err)
		}
	}
	return gp.Status, nil
}

// ProcessSuccess is the single idempotent success path shared by the webhook
// and the polling button. A payment id processed twice credits once. Missing
// payment or unknown package is a logged no-op.
func (uc *PaymentUseCase) ProcessSuccess(ctx context.Context, paymentID string) error {
	if uc.alreadySeen(paymentID) {
		uc.log.Infof("payment %s already in dedup set, skipping", paymentID)
		return nil
	}

	p, err := uc.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if p == nil {
		uc.log.Warnf("success notification for unknown payment %s", paymentID)
		return nil
	}
	if p.Status == constants.PaymentStatusSucceeded {
		uc.markSeen(paymentID)
		return nil
	}
	pkg := PackageByID(p.PackageID)
	if pkg == nil {
		uc.log.Errorf("payment %s references unknown package %s", paymentID, p.PackageID)
		return nil
	}

	credited, err := uc.repo.SucceedAndCredit(ctx, paymentID, pkg.Readings, pkg.UnlimitedDays)
	if err != nil {
		return err
	}
	uc.markSeen(paymentID)
	if !credited {
		uc.log.Infof("payment %s already credited, skipping", paymentID)
		return nil
	}

	uc.metrics.PaymentsSucceededTotal.Inc()
	uc.metrics.PaymentAmountTotal.WithLabelValues(pkg.ID).Add(pkg.AmountRub())
	uc.log.Infof("payment %s credited: user=%d package=%s", paymentID, p.UserID, pkg.ID)

	clientID := ""
	if u, err := uc.users.GetUser(ctx, p.UserID); err == nil && u != nil {
		clientID = u.ClientID
	}
	uc.conv.Record(&Conversion{
		UserID:    p.UserID,
		ClientID:  clientID,
		Type:      constants.ConversionPurchase,
		Value:     pkg.AmountRub(),
		PackageID: pkg.ID,
	})

	if uc.notifier != nil {
		uc.notifier.PaymentSucceeded(ctx, p.UserID, pkg)
	}
	return nil
}

// Get returns the local payment intent, or nil when unknown.
func (uc *PaymentUseCase) Get(ctx context.Context, paymentID string) (*Payment, error) {
	return uc.repo.GetPayment(ctx, paymentID)
}

func (uc *PaymentUseCase) alreadySeen(paymentID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.seen[paymentID]
	return ok
}

func (uc *PaymentUseCase) markSeen(paymentID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if len(uc.seen) >= constants.WebhookDedupCap {
		uc.seen = make(map[string]struct{})
	}
	uc.seen[paymentID] = struct{}{}
}
