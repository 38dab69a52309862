package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Reading is one completed divination with its interpretation.
type Reading struct {
	ID             int64
	UserID         int64
	Type           string
	Question       string
	Cards          []string
	Interpretation string
	IsFree         bool
	CreatedAt      time.Time
}

// ReadingRepo is the reading data access interface.
type ReadingRepo interface {
	// SaveReading persists a new reading and fills its ID.
	SaveReading(ctx context.Context, r *Reading) error
	GetReading(ctx context.Context, id int64) (*Reading, error)
	// AppendInterpretation appends follow-up text to the interpretation field.
	AppendInterpretation(ctx context.Context, id int64, text string) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Reading, error)
}

// ReadingUseCase is the reading persistence business logic.
type ReadingUseCase struct {
	repo ReadingRepo
	log  *log.Helper
}

// NewReadingUseCase creates the reading use case.
func NewReadingUseCase(repo ReadingRepo, logger log.Logger) *ReadingUseCase {
	return &ReadingUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// Save persists a completed reading.
func (uc *ReadingUseCase) Save(ctx context.Context, r *Reading) error {
	return uc.repo.SaveReading(ctx, r)
}

// Get returns a reading by id, or nil when missing.
func (uc *ReadingUseCase) Get(ctx context.Context, id int64) (*Reading, error) {
	return uc.repo.GetReading(ctx, id)
}

// AppendFollowUp appends a follow-up exchange to the stored interpretation.
func (uc *ReadingUseCase) AppendFollowUp(ctx context.Context, id int64, question, answer string) error {
	return uc.repo.AppendInterpretation(ctx, id, "\n\nВопрос: "+question+"\nОтвет: "+answer)
}

// History returns the user's most recent readings, newest first.
func (uc *ReadingUseCase) History(ctx context.Context, userID int64, limit int) ([]*Reading, error) {
	return uc.repo.ListByUser(ctx, userID, limit)
}
