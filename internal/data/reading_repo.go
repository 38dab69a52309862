package data

import (
	"context"
	"errors"

	"divination-bot/internal/biz"
	"divination-bot/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// readingRepo divination record data access
type readingRepo struct {
	data *Data
	log  *log.Helper
}

// NewReadingRepo creates the reading repo.
func NewReadingRepo(data *Data, logger log.Logger) biz.ReadingRepo {
	return &readingRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// SaveReading persists a new reading and fills its ID.
func (r *readingRepo) SaveReading(ctx context.Context, reading *biz.Reading) error {
	m := model.Divination{
		UserID:         reading.UserID,
		DivinationType: reading.Type,
		Question:       reading.Question,
		SelectedCards:  model.CardList(reading.Cards),
		Interpretation: reading.Interpretation,
		IsFree:         reading.IsFree,
	}
	if err := r.data.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	reading.ID = m.ID
	reading.CreatedAt = m.CreatedAt
	return nil
}

// GetReading returns a reading, or nil when missing.
func (r *readingRepo) GetReading(ctx context.Context, id int64) (*biz.Reading, error) {
	var m model.Divination
	if err := r.data.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toReading(&m), nil
}

// AppendInterpretation appends follow-up text to the interpretation field.
func (r *readingRepo) AppendInterpretation(ctx context.Context, id int64, text string) error {
	return r.data.db.WithContext(ctx).Model(&model.Divination{}).
		Where("id = ?", id).
		Update("interpretation", gorm.Expr("interpretation || ?", text)).Error
}

// ListByUser returns the user's readings, newest first.
func (r *readingRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]*biz.Reading, error) {
	var ms []model.Divination
	q := r.data.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*biz.Reading, 0, len(ms))
	for i := range ms {
		out = append(out, toReading(&ms[i]))
	}
	return out, nil
}

func toReading(m *model.Divination) *biz.Reading {
	return &biz.Reading{
		ID:             m.ID,
		UserID:         m.UserID,
		Type:           m.DivinationType,
		Question:       m.Question,
		Cards:          []string(m.SelectedCards),
		Interpretation: m.Interpretation,
		IsFree:         m.IsFree,
		CreatedAt:      m.CreatedAt,
	}
}
