package biz

import (
	"context"
	"time"

	"divination-bot/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// Tier is the balance category funding a reading.
type Tier string

const (
	TierUnlimited Tier = "unlimited"
	TierFree      Tier = "free"
	TierPaid      Tier = "paid"
	TierNone      Tier = "none"
)

// Balance is the per-user credits domain object.
type Balance struct {
	UserID         int64
	FreeRemaining  int
	PaidRemaining  int
	UnlimitedUntil *time.Time
	TotalUsed      int
	UpdatedAt      time.Time
}

// ResolveTier picks the tier that would fund the next reading:
// unlimited wins while the subscription is active, then free, then paid.
func ResolveTier(b *Balance, now time.Time) Tier {
	if b == nil {
		return TierNone
	}
	if b.UnlimitedUntil != nil && b.UnlimitedUntil.After(now) {
		return TierUnlimited
	}
	if b.FreeRemaining > 0 {
		return TierFree
	}
	if b.PaidRemaining > 0 {
		return TierPaid
	}
	return TierNone
}

// BalanceRepo is the balance data access interface.
type BalanceRepo interface {
	GetBalance(ctx context.Context, userID int64) (*Balance, error)
	// CreateBalance initializes the row with the free allotment; no-op if present.
	CreateBalance(ctx context.Context, userID int64) error
	// Consume funds one reading inside a locked transaction. The tier is
	// re-resolved under the row lock; TierNone with a nil error means no tier
	// was available and nothing was mutated.
	Consume(ctx context.Context, userID int64) (Tier, error)
	// Credit applies a purchased package: paidUnits > 0 adds paid readings,
	// unlimitedDays > 0 extends the subscription from now.
	Credit(ctx context.Context, userID int64, paidUnits, unlimitedDays int) error
}

// BalanceUseCase is the balance business logic.
type BalanceUseCase struct {
	repo    BalanceRepo
	metrics *metrics.BotMetrics
	log     *log.Helper
}

// NewBalanceUseCase creates the balance use case.
func NewBalanceUseCase(repo BalanceRepo, logger log.Logger) *BalanceUseCase {
	return &BalanceUseCase{
		repo:    repo,
		metrics: metrics.GetMetrics(),
		log:     log.NewHelper(logger),
	}
}

// Get returns the user's balance, or nil when no row exists.
func (uc *BalanceUseCase) Get(ctx context.Context, userID int64) (*Balance, error) {
	return uc.repo.GetBalance(ctx, userID)
}

// Ensure lazily creates the balance row for users that somehow miss it.
func (uc *BalanceUseCase) Ensure(ctx context.Context, userID int64) (*Balance, error) {
	b, err := uc.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}
	if err := uc.repo.CreateBalance(ctx, userID); err != nil {
		return nil, err
	}
	return uc.repo.GetBalance(ctx, userID)
}

// CanConsume reports whether a reading can be funded and by which tier.
// This is advisory only; Consume re-checks under the row lock.
func (uc *BalanceUseCase) CanConsume(ctx context.Context, userID int64) (bool, Tier, error) {
	b, err := uc.repo.GetBalance(ctx, userID)
	if err != nil {
		return false, TierNone, err
	}
	tier := ResolveTier(b, time.Now())
	return tier != TierNone, tier, nil
}

// Consume funds one reading. Returns the tier actually charged, or TierNone
// when no tier was available at decrement time.
func (uc *BalanceUseCase) Consume(ctx context.Context, userID int64) (Tier, error) {
	tier, err := uc.repo.Consume(ctx, userID)
	if err != nil {
		return TierNone, err
	}
	uc.metrics.ConsumeTotal.WithLabelValues(string(tier)).Inc()
	return tier, nil
}

// Credit applies a purchased package to the balance.
func (uc *BalanceUseCase) Credit(ctx context.Context, userID int64, paidUnits, unlimitedDays int) error {
	return uc.repo.Credit(ctx, userID, paidUnits, unlimitedDays)
}
