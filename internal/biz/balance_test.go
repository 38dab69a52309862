package biz

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"divination-bot/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
)

func TestResolveTierOrdering(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	cases := []struct {
		name string
		b    *Balance
		want Tier
	}{
		{"nil balance", nil, TierNone},
		{"empty", &Balance{}, TierNone},
		{"free only", &Balance{FreeRemaining: 2}, TierFree},
		{"paid only", &Balance{PaidRemaining: 5}, TierPaid},
		{"free beats paid", &Balance{FreeRemaining: 1, PaidRemaining: 5}, TierFree},
		{"unlimited beats all", &Balance{FreeRemaining: 1, PaidRemaining: 5, UnlimitedUntil: &future}, TierUnlimited},
		{"expired unlimited falls through", &Balance{PaidRemaining: 2, UnlimitedUntil: &past}, TierPaid},
		{"expired unlimited empty rest", &Balance{UnlimitedUntil: &past}, TierNone},
		{"negative guards", &Balance{FreeRemaining: -1, PaidRemaining: -1}, TierNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveTier(tc.b, now); got != tc.want {
				t.Fatalf("ResolveTier(%+v) = %s, want %s", tc.b, got, tc.want)
			}
		})
	}
}

func TestEnsureCreatesWithFreeAllotment(t *testing.T) {
	logger := log.NewStdLogger(&strings.Builder{})
	repo := newMemBalanceRepo()
	uc := NewBalanceUseCase(repo, logger)
	ctx := context.Background()

	b, err := uc.Ensure(ctx, 1)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if b.FreeRemaining != constants.InitialFreeReadings {
		t.Fatalf("fresh balance free=%d, want %d", b.FreeRemaining, constants.InitialFreeReadings)
	}

	// Second call must not reset an existing balance.
	if _, err := uc.Consume(ctx, 1); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	b, err = uc.Ensure(ctx, 1)
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if b.FreeRemaining != constants.InitialFreeReadings-1 {
		t.Fatalf("Ensure reset the balance: %+v", b)
	}
}

func TestConcurrentConsumeNeverOverdraws(t *testing.T) {
	logger := log.NewStdLogger(&strings.Builder{})
	repo := newMemBalanceRepo()
	uc := NewBalanceUseCase(repo, logger)
	ctx := context.Background()
	const userID = int64(7)

	repo.balances[userID] = &Balance{UserID: userID, FreeRemaining: 2, PaidRemaining: 3}

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan Tier, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tier, err := uc.Consume(ctx, userID)
			if err != nil {
				t.Errorf("Consume: %v", err)
				return
			}
			results <- tier
		}()
	}
	wg.Wait()
	close(results)

	counts := map[Tier]int{}
	for tier := range results {
		counts[tier]++
	}
	if counts[TierFree] != 2 || counts[TierPaid] != 3 {
		t.Fatalf("charged tiers %v, want 2 free and 3 paid", counts)
	}
	if counts[TierNone] != workers-5 {
		t.Fatalf("expected %d refusals, got %d", workers-5, counts[TierNone])
	}

	b, _ := repo.GetBalance(ctx, userID)
	if b.FreeRemaining != 0 || b.PaidRemaining != 0 {
		t.Fatalf("counters went past zero: %+v", b)
	}
	if b.TotalUsed != 5 {
		t.Fatalf("total used %d, want 5", b.TotalUsed)
	}
}

func TestCreditUnlimitedSetsExpiry(t *testing.T) {
	logger := log.NewStdLogger(&strings.Builder{})
	repo := newMemBalanceRepo()
	uc := NewBalanceUseCase(repo, logger)
	ctx := context.Background()

	if err := uc.Credit(ctx, 2, 0, constants.UnlimitedPackageDays); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	b, _ := repo.GetBalance(ctx, 2)
	if b.UnlimitedUntil == nil {
		t.Fatal("unlimited expiry not set")
	}
	if until := time.Until(*b.UnlimitedUntil); until < 29*24*time.Hour || until > 31*24*time.Hour {
		t.Fatalf("expiry %v out of the expected window", until)
	}
	if ok, tier, _ := uc.CanConsume(ctx, 2); !ok || tier != TierUnlimited {
		t.Fatalf("CanConsume after unlimited credit: ok=%v tier=%s", ok, tier)
	}
}
