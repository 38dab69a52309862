package data

import (
	"context"
	"errors"

	"divination-bot/internal/biz"
	"divination-bot/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pendingQuestionRepo webapp handoff data access
type pendingQuestionRepo struct {
	data *Data
	log  *log.Helper
}

// NewPendingQuestionRepo creates the pending question repo.
func NewPendingQuestionRepo(data *Data, logger log.Logger) biz.PendingQuestionRepo {
	return &pendingQuestionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// PutPendingQuestion stores (or replaces) the user's stashed question.
func (r *pendingQuestionRepo) PutPendingQuestion(ctx context.Context, userID int64, question string) error {
	m := model.PendingQuestion{
		UserID:   userID,
		Question: question,
	}
	return r.data.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"question", "created_at"}),
		}).
		Create(&m).Error
}

// TakePendingQuestion reads and deletes the stashed question in one
// transaction; returns "" when absent.
func (r *pendingQuestionRepo) TakePendingQuestion(ctx context.Context, userID int64) (string, error) {
	question := ""
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.PendingQuestion
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		question = m.Question
		return tx.Delete(&m).Error
	})
	return question, err
}
