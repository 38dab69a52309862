package biz

import (
	"context"
	"time"

	"divination-bot/internal/constants"
	"divination-bot/internal/deck"
	bizErrors "divination-bot/internal/errors"
	"divination-bot/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// TypeChoiceOutcome reports what follows a divination type choice.
type TypeChoiceOutcome int

const (
	// OutcomeAskQuestion no question yet, ask for one
	OutcomeAskQuestion TypeChoiceOutcome = iota
	// OutcomeReady question already pending, proceed to the draw
	OutcomeReady
)

// ReadingItem is one drawn card/hexagram as presented to the user.
type ReadingItem struct {
	Position string
	Name     string
}

// ReadingOutcome is the result of a completed draw.
type ReadingOutcome struct {
	Reading *Reading
	Tier    Tier
	Answer  string
	Items   []ReadingItem
}

// FollowUpOutcome is the result of a follow-up message.
type FollowUpOutcome struct {
	LimitReached bool
	Answer       string
	Remaining    int
}

// DialogUseCase drives the divination conversation state machine. Sessions
// live in the session store keyed by user id; a missing session is idle.
type DialogUseCase struct {
	sessions SessionRepo
	pending  PendingQuestionRepo
	balance  *BalanceUseCase
	readings *ReadingUseCase
	users    UserRepo
	interp   Interpreter
	conv     *ConversionUseCase
	metrics  *metrics.BotMetrics
	log      *log.Helper
}

// NewDialogUseCase creates the dialogue use case.
func NewDialogUseCase(
	sessions SessionRepo,
	pending PendingQuestionRepo,
	balance *BalanceUseCase,
	readings *ReadingUseCase,
	users UserRepo,
	interp Interpreter,
	conv *ConversionUseCase,
	logger log.Logger,
) *DialogUseCase {
	return &DialogUseCase{
		sessions: sessions,
		pending:  pending,
		balance:  balance,
		readings: readings,
		users:    users,
		interp:   interp,
		conv:     conv,
		metrics:  metrics.GetMetrics(),
		log:      log.NewHelper(logger),
	}
}

// Current returns the user's session, nil when idle.
func (uc *DialogUseCase) Current(ctx context.Context, userID int64) (*Session, error) {
	return uc.sessions.GetSession(ctx, userID)
}

// Cancel clears the session, returning the user to idle.
func (uc *DialogUseCase) Cancel(ctx context.Context, userID int64) error {
	return uc.sessions.ClearSession(ctx, userID)
}

// SaveSession persists a session mutated by the caller, refreshing its TTL.
func (uc *DialogUseCase) SaveSession(ctx context.Context, userID int64, s *Session) error {
	return uc.sessions.SaveSession(ctx, userID, s)
}

// StartQuestion captures free text sent from idle as the pending question and
// moves to choosing_type.
func (uc *DialogUseCase) StartQuestion(ctx context.Context, userID int64, question string) error {
	return uc.sessions.SaveSession(ctx, userID, &Session{
		State:    StateChoosingType,
		Question: question,
	})
}

// StartTypeChoice opens a session with no question yet (menu entry point).
func (uc *DialogUseCase) StartTypeChoice(ctx context.Context, userID int64) error {
	return uc.sessions.SaveSession(ctx, userID, &Session{State: StateChoosingType})
}

// ChooseType records the divination type. When a question is already pending
// the caller proceeds straight to the draw, otherwise to question capture.
func (uc *DialogUseCase) ChooseType(ctx context.Context, userID int64, divinationType string) (TypeChoiceOutcome, *Session, error) {
	s, err := uc.sessions.GetSession(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	if s == nil {
		s = &Session{}
	}
	s.DivinationType = divinationType
	if s.Question == "" {
		s.State = StateAwaitingQuestion
		if err := uc.sessions.SaveSession(ctx, userID, s); err != nil {
			return 0, nil, err
		}
		return OutcomeAskQuestion, s, nil
	}
	s.State = StateChoosingType
	if err := uc.sessions.SaveSession(ctx, userID, s); err != nil {
		return 0, nil, err
	}
	return OutcomeReady, s, nil
}

// SetQuestion stores the question typed in awaiting_question.
func (uc *DialogUseCase) SetQuestion(ctx context.Context, userID int64, question string) (*Session, error) {
	s, err := uc.sessions.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &Session{State: StateAwaitingQuestion}
	}
	s.Question = question
	if err := uc.sessions.SaveSession(ctx, userID, s); err != nil {
		return nil, err
	}
	return s, nil
}

// BeginCardSelection switches a tarot session to manual card picking.
func (uc *DialogUseCase) BeginCardSelection(ctx context.Context, userID int64) (*Session, error) {
	s, err := uc.sessions.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = &Session{DivinationType: constants.DivinationTypeTarot}
	}
	s.State = StateSelectingCards
	s.SelectedCards = nil
	if err := uc.sessions.SaveSession(ctx, userID, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ToggleCard adds or removes a card from the selection set. Adding a fourth
// card is refused: added=false with the set unchanged.
func (uc *DialogUseCase) ToggleCard(ctx context.Context, userID int64, cardID string) (*Session, bool, error) {
	s, err := uc.sessions.GetSession(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if s == nil || s.State != StateSelectingCards {
		return nil, false, nil
	}
	for i, id := range s.SelectedCards {
		if id == cardID {
			s.SelectedCards = append(s.SelectedCards[:i], s.SelectedCards[i+1:]...)
			if err := uc.sessions.SaveSession(ctx, userID, s); err != nil {
				return nil, false, err
			}
			return s, true, nil
		}
	}
	if len(s.SelectedCards) >= constants.TarotSpreadSize {
		return s, false, nil
	}
	s.SelectedCards = append(s.SelectedCards, cardID)
	if err := uc.sessions.SaveSession(ctx, userID, s); err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// ConfirmCards completes manual selection; requires exactly a full spread.
func (uc *DialogUseCase) ConfirmCards(ctx context.Context, userID int64) (*ReadingOutcome, error) {
	s, err := uc.sessions.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s == nil || len(s.SelectedCards) != constants.TarotSpreadSize {
		return nil, bizErrors.ErrInvalidSelection
	}
	return uc.PerformReading(ctx, userID, constants.DivinationTypeTarot, s.Question, s.SelectedCards)
}

// PerformReading runs the draw pipeline: availability check, draw, generation,
// consumption, persistence. Balance is consumed only after the generation call
// succeeds; a generation failure leaves both balance and session untouched.
// cardIDs nil means a uniform random draw.
func (uc *DialogUseCase) PerformReading(ctx context.Context, userID int64, divinationType, question string, cardIDs []string) (*ReadingOutcome, error) {
	start := time.Now()

	ok, _, err := uc.balance.CanConsume(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		uc.paywall(ctx, userID)
		return nil, bizErrors.ErrNoBalance
	}

	var (
		ids    []string
		items  []ReadingItem
		prompt string
	)
	if divinationType == constants.DivinationTypeIChing {
		h := deck.DrawHexagram()
		ids = []string{h.ID()}
		items = []ReadingItem{{Name: h.Name}}
		prompt = BuildIChingPrompt(question, h)
	} else {
		var cards []deck.Card
		if len(cardIDs) == 0 {
			cards = deck.DrawCards(constants.TarotSpreadSize)
		} else {
			for _, id := range cardIDs {
				c, found := deck.CardByID(id)
				if !found {
					return nil, bizErrors.ErrInvalidSelection
				}
				cards = append(cards, c)
			}
		}
		for i, c := range cards {
			pos := ""
			if i < len(deck.SpreadPositions) {
				pos = deck.SpreadPositions[i]
			}
			ids = append(ids, c.ID)
			items = append(items, ReadingItem{Position: pos, Name: c.Name})
		}
		prompt = BuildTarotPrompt(question, cards)
	}

	system := SystemPrompt(divinationType)
	answer, err := uc.interp.Complete(ctx, system, []Turn{{Role: RoleUser, Content: prompt}})
	if err != nil {
		uc.log.Errorf("generate %s reading for user %d: %v", divinationType, userID, err)
		return nil, bizErrors.ErrGeneratorUnavailable
	}

	tier, err := uc.balance.Consume(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tier == TierNone {
		// Lost the race between the availability check and the locked
		// decrement: the reading is not delivered.
		uc.log.Warnf("balance drained under user %d between check and consume", userID)
		uc.paywall(ctx, userID)
		return nil, bizErrors.ErrNoBalance
	}

	reading := &Reading{
		UserID:         userID,
		Type:           divinationType,
		Question:       question,
		Cards:          ids,
		Interpretation: answer,
		IsFree:         tier == TierFree,
	}
	if err := uc.readings.Save(ctx, reading); err != nil {
		uc.log.Errorf("persist reading for user %d: %v", userID, err)
	}

	uc.conv.Record(&Conversion{
		UserID:         userID,
		ClientID:       uc.clientID(ctx, userID),
		Type:           constants.ConversionServiceUsage,
		DivinationType: divinationType,
	})

	if err := uc.sessions.SaveSession(ctx, userID, &Session{
		State:          StateChatting,
		Question:       question,
		DivinationType: divinationType,
		IsFree:         tier == TierFree,
		ReadingID:      reading.ID,
		History: []Turn{
			{Role: RoleUser, Content: prompt},
			{Role: RoleAssistant, Content: answer},
		},
	}); err != nil {
		uc.log.Errorf("seed chatting session for user %d: %v", userID, err)
	}

	uc.metrics.ReadingsTotal.WithLabelValues(divinationType, string(tier)).Inc()
	uc.metrics.ReadingDuration.WithLabelValues(divinationType).Observe(time.Since(start).Seconds())

	return &ReadingOutcome{
		Reading: reading,
		Tier:    tier,
		Answer:  answer,
		Items:   items,
	}, nil
}

// FollowUp handles a message sent in chatting. Once the quota is spent the
// session is cleared without calling the generator.
func (uc *DialogUseCase) FollowUp(ctx context.Context, userID int64, text string) (*FollowUpOutcome, error) {
	s, err := uc.sessions.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.State != StateChatting {
		return nil, nil
	}
	limit := s.FollowUpLimit()
	if s.FollowUps >= limit {
		if err := uc.sessions.ClearSession(ctx, userID); err != nil {
			uc.log.Errorf("clear exhausted session for user %d: %v", userID, err)
		}
		return &FollowUpOutcome{LimitReached: true}, nil
	}

	turns := append(append([]Turn{}, s.History...), Turn{Role: RoleUser, Content: text})
	answer, err := uc.interp.Complete(ctx, SystemPrompt(s.DivinationType), turns)
	if err != nil {
		// The counter does not advance on failure.
		uc.log.Errorf("follow-up for user %d: %v", userID, err)
		return nil, bizErrors.ErrGeneratorUnavailable
	}

	s.History = append(turns, Turn{Role: RoleAssistant, Content: answer})
	s.FollowUps++
	if err := uc.sessions.SaveSession(ctx, userID, s); err != nil {
		return nil, err
	}
	if s.ReadingID != 0 {
		if err := uc.readings.AppendFollowUp(ctx, s.ReadingID, text, answer); err != nil {
			uc.log.Errorf("append follow-up to reading %d: %v", s.ReadingID, err)
		}
	}
	uc.metrics.FollowUpsTotal.Inc()
	return &FollowUpOutcome{
		Answer:    answer,
		Remaining: limit - s.FollowUps,
	}, nil
}

// StashQuestion stores the pending question before handing off to the browser
// card-selection surface.
func (uc *DialogUseCase) StashQuestion(ctx context.Context, userID int64, question string) error {
	return uc.pending.PutPendingQuestion(ctx, userID, question)
}

// TakeStashedQuestion consumes the pending question left for the browser flow.
func (uc *DialogUseCase) TakeStashedQuestion(ctx context.Context, userID int64) (string, error) {
	return uc.pending.TakePendingQuestion(ctx, userID)
}

func (uc *DialogUseCase) paywall(ctx context.Context, userID int64) {
	uc.conv.Record(&Conversion{
		UserID:   userID,
		ClientID: uc.clientID(ctx, userID),
		Type:     constants.ConversionPaywallReached,
	})
	if err := uc.sessions.ClearSession(ctx, userID); err != nil {
		uc.log.Errorf("clear session on paywall for user %d: %v", userID, err)
	}
}

func (uc *DialogUseCase) clientID(ctx context.Context, userID int64) string {
	u, err := uc.users.GetUser(ctx, userID)
	if err != nil || u == nil {
		return ""
	}
	return u.ClientID
}
