package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/constants"
	"divination-bot/internal/data/model"
	bizErrors "divination-bot/internal/errors"
	"divination-bot/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// balanceRepo balance data access
type balanceRepo struct {
	data    *Data
	sync    *redsync.Redsync
	metrics *metrics.BotMetrics
	log     *log.Helper
}

// NewBalanceRepo creates the balance repo.
func NewBalanceRepo(data *Data, sync *redsync.Redsync, logger log.Logger) biz.BalanceRepo {
	return &balanceRepo{
		data:    data,
		sync:    sync,
		metrics: metrics.GetMetrics(),
		log:     log.NewHelper(logger),
	}
}

// GetBalance returns the balance row, or nil when missing.
func (r *balanceRepo) GetBalance(ctx context.Context, userID int64) (*biz.Balance, error) {
	var m model.UserBalance
	if err := r.data.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toBalance(&m), nil
}

// CreateBalance initializes the row with the free allotment; no-op when the
// row already exists.
func (r *balanceRepo) CreateBalance(ctx context.Context, userID int64) error {
	m := model.UserBalance{
		UserID:        userID,
		FreeRemaining: constants.InitialFreeReadings,
	}
	return r.data.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m).Error
}

// Consume funds one reading. A per-user distributed lock is taken as a belt
// over the row lock; the tier is re-resolved under FOR UPDATE and exactly one
// mutation is applied. TierNone with a nil error means nothing was available
// and nothing changed.
func (r *balanceRepo) Consume(ctx context.Context, userID int64) (biz.Tier, error) {
	lockKey := fmt.Sprintf("%s%d", constants.RedisKeyConsumeLock, userID)
	if r.sync != nil {
		mutex := r.sync.NewMutex(lockKey, redsync.WithExpiry(5*time.Second))
		if err := mutex.Lock(); err != nil {
			r.log.Errorf("acquire consume lock for user %d: %v", userID, err)
			r.metrics.LockAcquireTotal.WithLabelValues(constants.ResultFailed).Inc()
			return biz.TierNone, bizErrors.ErrConsumeLockFailed
		}
		r.metrics.LockAcquireTotal.WithLabelValues(constants.ResultSuccess).Inc()
		defer func() {
			if ok, err := mutex.Unlock(); !ok || err != nil {
				r.log.Warnf("release consume lock for user %d: %v", userID, err)
			}
		}()
	}

	var tier biz.Tier
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.UserBalance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Missing row: initialize lazily and fund from the fresh free
			// allotment.
			m = model.UserBalance{
				UserID:        userID,
				FreeRemaining: constants.InitialFreeReadings,
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		tier = biz.ResolveTier(toBalance(&m), time.Now())
		switch tier {
		case biz.TierUnlimited:
			return tx.Model(&m).
				Update("total_used", gorm.Expr("total_used + 1")).Error
		case biz.TierFree:
			return tx.Model(&m).Updates(map[string]interface{}{
				"free_remaining": gorm.Expr("free_remaining - 1"),
				"total_used":     gorm.Expr("total_used + 1"),
			}).Error
		case biz.TierPaid:
			return tx.Model(&m).Updates(map[string]interface{}{
				"paid_remaining": gorm.Expr("paid_remaining - 1"),
				"total_used":     gorm.Expr("total_used + 1"),
			}).Error
		default:
			return nil
		}
	})
	if err != nil {
		return biz.TierNone, err
	}
	return tier, nil
}

// Credit applies a purchased package inside a locked transaction.
func (r *balanceRepo) Credit(ctx context.Context, userID int64, paidUnits, unlimitedDays int) error {
	return r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.UserBalance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			m = model.UserBalance{UserID: userID}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if unlimitedDays > 0 {
			until := time.Now().AddDate(0, 0, unlimitedDays)
			return tx.Model(&m).Update("unlimited_until", until).Error
		}
		return tx.Model(&m).
			Update("paid_remaining", gorm.Expr("paid_remaining + ?", paidUnits)).Error
	})
}

func toBalance(m *model.UserBalance) *biz.Balance {
	return &biz.Balance{
		UserID:         m.UserID,
		FreeRemaining:  m.FreeRemaining,
		PaidRemaining:  m.PaidRemaining,
		UnlimitedUntil: m.UnlimitedUntil,
		TotalUsed:      m.TotalUsed,
		UpdatedAt:      m.UpdatedAt,
	}
}
