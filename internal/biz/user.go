package biz

import (
	"context"
	"time"

	"divination-bot/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// User is the chat platform user domain object.
type User struct {
	UserID              int64
	Username            string
	FirstName           string
	LastName            string
	LanguageCode        string
	Email               string
	IsBlocked           bool
	DailyCardSubscribed bool
	UTMSource           string
	UTMCampaign         string
	UTMContent          string
	UTMMedium           string
	UTMTerm             string
	ClientID            string
	CreatedAt           time.Time
	LastActiveAt        time.Time
}

// UserRepo is the user data access interface.
type UserRepo interface {
	GetUser(ctx context.Context, userID int64) (*User, error)
	// UpsertUser inserts or refreshes the row; created reports whether the
	// user was seen for the first time.
	UpsertUser(ctx context.Context, u *User) (created bool, err error)
	SetEmail(ctx context.Context, userID int64, email string) error
	SetBlocked(ctx context.Context, userID int64, blocked bool) error
	SetDailyCardSubscribed(ctx context.Context, userID int64, subscribed bool) error
	// ListDailyCardRecipients returns non-blocked subscribed users.
	ListDailyCardRecipients(ctx context.Context) ([]*User, error)
}

// UserUseCase is the user lifecycle business logic.
type UserUseCase struct {
	repo        UserRepo
	balanceRepo BalanceRepo
	conv        *ConversionUseCase
	log         *log.Helper
}

// NewUserUseCase creates the user use case.
func NewUserUseCase(repo UserRepo, balanceRepo BalanceRepo, conv *ConversionUseCase, logger log.Logger) *UserUseCase {
	return &UserUseCase{
		repo:        repo,
		balanceRepo: balanceRepo,
		conv:        conv,
		log:         log.NewHelper(logger),
	}
}

// Touch upserts the user on every contact. First contact also initializes the
// balance and records a registration conversion.
func (uc *UserUseCase) Touch(ctx context.Context, u *User) (*User, error) {
	if u.ClientID == "" {
		u.ClientID = uuid.New().String()
	}
	created, err := uc.repo.UpsertUser(ctx, u)
	if err != nil {
		return nil, err
	}
	stored, err := uc.repo.GetUser(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = u
	}
	if created {
		if err := uc.balanceRepo.CreateBalance(ctx, u.UserID); err != nil {
			uc.log.Errorf("create balance for new user %d: %v", u.UserID, err)
		}
		uc.conv.Record(&Conversion{
			UserID:   u.UserID,
			ClientID: stored.ClientID,
			Type:     constants.ConversionRegistration,
		})
		uc.log.Infof("registered user %d (@%s)", u.UserID, u.Username)
	}
	return stored, nil
}

// Get returns the user, or nil when unknown.
func (uc *UserUseCase) Get(ctx context.Context, userID int64) (*User, error) {
	return uc.repo.GetUser(ctx, userID)
}

// SaveEmail stores a validated email for payment receipts.
func (uc *UserUseCase) SaveEmail(ctx context.Context, userID int64, email string) error {
	return uc.repo.SetEmail(ctx, userID, email)
}

// MarkBlocked records that the user blocked the bot; the daily push skips them.
func (uc *UserUseCase) MarkBlocked(ctx context.Context, userID int64) error {
	return uc.repo.SetBlocked(ctx, userID, true)
}

// SetDailyCardSubscribed toggles the daily push subscription.
func (uc *UserUseCase) SetDailyCardSubscribed(ctx context.Context, userID int64, subscribed bool) error {
	return uc.repo.SetDailyCardSubscribed(ctx, userID, subscribed)
}

// DailyCardRecipients returns the daily push audience.
func (uc *UserUseCase) DailyCardRecipients(ctx context.Context) ([]*User, error) {
	return uc.repo.ListDailyCardRecipients(ctx)
}
