package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepo payment intent data access
type paymentRepo struct {
	data *Data
	log  *log.Helper
}

// NewPaymentRepo creates the payment repo.
func NewPaymentRepo(data *Data, logger log.Logger) biz.PaymentRepo {
	return &paymentRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreatePayment persists a new pending intent.
func (r *paymentRepo) CreatePayment(ctx context.Context, p *biz.Payment) error {
	metadata, _ := json.Marshal(map[string]string{
		"package_id": p.PackageID,
		"email":      p.Email,
	})
	m := model.Payment{
		PaymentID: p.PaymentID,
		UserID:    p.UserID,
		PackageID: p.PackageID,
		Amount:    p.Amount,
		Status:    model.PaymentStatusPending,
		Email:     p.Email,
		Metadata:  string(metadata),
	}
	return r.data.db.WithContext(ctx).Create(&m).Error
}

// GetPayment returns the intent by gateway id, or nil when unknown.
func (r *paymentRepo) GetPayment(ctx context.Context, paymentID string) (*biz.Payment, error) {
	var m model.Payment
	if err := r.data.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPayment(&m), nil
}

// SucceedAndCredit marks the intent succeeded and credits the balance in one
// transaction. The intent row is locked and re-checked, so a payment id
// processed twice credits exactly once regardless of in-memory state.
func (r *paymentRepo) SucceedAndCredit(ctx context.Context, paymentID string, paidUnits, unlimitedDays int) (bool, error) {
	credited := false
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_id = ?", paymentID).
			First(&p).Error; err != nil {
			return err
		}
		if p.Status == model.PaymentStatusSucceeded {
			r.log.Infof("payment %s already succeeded", paymentID)
			return nil
		}

		now := time.Now()
		if err := tx.Model(&p).Updates(map[string]interface{}{
			"status":       model.PaymentStatusSucceeded,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}

		var b model.UserBalance
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", p.UserID).
			First(&b).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b = model.UserBalance{UserID: p.UserID}
			if err := tx.Create(&b).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if unlimitedDays > 0 {
			until := now.AddDate(0, 0, unlimitedDays)
			if err := tx.Model(&b).Update("unlimited_until", until).Error; err != nil {
				return err
			}
		} else if err := tx.Model(&b).
			Update("paid_remaining", gorm.Expr("paid_remaining + ?", paidUnits)).Error; err != nil {
			return err
		}

		credited = true
		return nil
	})
	return credited, err
}

// MarkCanceled moves a pending intent to its canceled terminal state.
func (r *paymentRepo) MarkCanceled(ctx context.Context, paymentID string) error {
	return r.data.db.WithContext(ctx).Model(&model.Payment{}).
		Where("payment_id = ? AND status = ?", paymentID, model.PaymentStatusPending).
		Update("status", model.PaymentStatusCanceled).Error
}

func toPayment(m *model.Payment) *biz.Payment {
	return &biz.Payment{
		PaymentID:   m.PaymentID,
		UserID:      m.UserID,
		PackageID:   m.PackageID,
		Amount:      m.Amount,
		Status:      m.Status,
		Email:       m.Email,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		CompletedAt: m.CompletedAt,
	}
}
