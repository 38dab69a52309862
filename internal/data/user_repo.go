package data

import (
	"context"
	"errors"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

// userRepo user data access
type userRepo struct {
	data *Data
	log  *log.Helper
}

// NewUserRepo creates the user repo.
func NewUserRepo(data *Data, logger log.Logger) biz.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetUser returns the user row, or nil when unknown.
func (r *userRepo) GetUser(ctx context.Context, userID int64) (*biz.User, error) {
	var m model.User
	if err := r.data.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toUser(&m), nil
}

// UpsertUser inserts the user on first contact, otherwise refreshes the
// identity fields and the last-active timestamp.
func (r *userRepo) UpsertUser(ctx context.Context, u *biz.User) (bool, error) {
	var existing model.User
	err := r.data.db.WithContext(ctx).Where("user_id = ?", u.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m := model.User{
			UserID:              u.UserID,
			Username:            u.Username,
			FirstName:           u.FirstName,
			LastName:            u.LastName,
			LanguageCode:        u.LanguageCode,
			DailyCardSubscribed: true,
			UTMSource:           u.UTMSource,
			UTMCampaign:         u.UTMCampaign,
			UTMContent:          u.UTMContent,
			UTMMedium:           u.UTMMedium,
			UTMTerm:             u.UTMTerm,
			ClientID:            u.ClientID,
		}
		if err := r.data.db.WithContext(ctx).Create(&m).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	updates := map[string]interface{}{
		"username":       u.Username,
		"first_name":     u.FirstName,
		"last_name":      u.LastName,
		"language_code":  u.LanguageCode,
		"is_blocked":     false,
		"last_active_at": time.Now(),
	}
	if err := r.data.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", u.UserID).
		Updates(updates).Error; err != nil {
		return false, err
	}
	return false, nil
}

// SetEmail stores the receipt email.
func (r *userRepo) SetEmail(ctx context.Context, userID int64, email string) error {
	return r.data.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("email", email).Error
}

// SetBlocked flips the blocked flag.
func (r *userRepo) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	return r.data.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("is_blocked", blocked).Error
}

// SetDailyCardSubscribed toggles the daily push subscription.
func (r *userRepo) SetDailyCardSubscribed(ctx context.Context, userID int64, subscribed bool) error {
	return r.data.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("daily_card_subscribed", subscribed).Error
}

// ListDailyCardRecipients returns non-blocked subscribed users.
func (r *userRepo) ListDailyCardRecipients(ctx context.Context) ([]*biz.User, error) {
	var ms []model.User
	if err := r.data.db.WithContext(ctx).
		Where("daily_card_subscribed = ? AND is_blocked = ?", true, false).
		Order("user_id").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*biz.User, 0, len(ms))
	for i := range ms {
		out = append(out, toUser(&ms[i]))
	}
	return out, nil
}

func toUser(m *model.User) *biz.User {
	return &biz.User{
		UserID:              m.UserID,
		Username:            m.Username,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		LanguageCode:        m.LanguageCode,
		Email:               m.Email,
		IsBlocked:           m.IsBlocked,
		DailyCardSubscribed: m.DailyCardSubscribed,
		UTMSource:           m.UTMSource,
		UTMCampaign:         m.UTMCampaign,
		UTMContent:          m.UTMContent,
		UTMMedium:           m.UTMMedium,
		UTMTerm:             m.UTMTerm,
		ClientID:            m.ClientID,
		CreatedAt:           m.CreatedAt,
		LastActiveAt:        m.LastActiveAt,
	}
}
