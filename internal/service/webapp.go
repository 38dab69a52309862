package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"divination-bot/internal/biz"
	"divination-bot/internal/constants"
	bizErrors "divination-bot/internal/errors"

	kratosErrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

const defaultWebAppQuestion = "Что меня ждёт в ближайшее время?"

// ReadingNotifier delivers browser-initiated reading results back to the chat.
type ReadingNotifier interface {
	DeliverReading(ctx context.Context, userID int64, out *biz.ReadingOutcome)
	NotifyPaywall(ctx context.Context, userID int64)
}

// WebAppService receives card selections from the browser surface.
type WebAppService struct {
	dialog   *biz.DialogUseCase
	balance  *biz.BalanceUseCase
	notifier ReadingNotifier
	log      *log.Helper
}

// NewWebAppService creates the card-selection endpoint handler.
func NewWebAppService(dialog *biz.DialogUseCase, balance *biz.BalanceUseCase, notifier ReadingNotifier, logger log.Logger) *WebAppService {
	return &WebAppService{dialog: dialog, balance: balance, notifier: notifier, log: log.NewHelper(logger)}
}

type cardsRequest struct {
	UserID        int64    `json:"user_id"`
	SelectedCards []string `json:"selected_cards"`
}

// HandleCards validates a browser selection and kicks off the reading. The
// response returns immediately; generation runs in the background and the
// result lands in the chat.
func (s *WebAppService) HandleCards(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	if req.UserID == 0 || len(req.SelectedCards) != constants.TarotSpreadSize {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and exactly 3 selected_cards are required"})
		return
	}

	ok, _, err := s.balance.CanConsume(r.Context(), req.UserID)
	if err != nil {
		s.log.Errorf("balance check for user %d: %v", req.UserID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "no readings left"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	go s.run(req.UserID, req.SelectedCards)
}

// run completes the reading outside the request lifecycle.
func (s *WebAppService) run(userID int64, cardIDs []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	question, err := s.dialog.TakeStashedQuestion(ctx, userID)
	if err != nil {
		s.log.Warnf("take stashed question for user %d: %v", userID, err)
	}
	if question == "" {
		question = defaultWebAppQuestion
	}

	out, err := s.dialog.PerformReading(ctx, userID, constants.DivinationTypeTarot, question, cardIDs)
	if err != nil {
		if kratosErrors.Is(err, bizErrors.ErrNoBalance) {
			s.notifier.NotifyPaywall(ctx, userID)
			return
		}
		s.log.Errorf("browser reading for user %d: %v", userID, err)
		return
	}
	s.notifier.DeliverReading(ctx, userID, out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
