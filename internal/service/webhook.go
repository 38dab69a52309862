package service

import (
	"encoding/json"
	"io"
	"net/http"

	"divination-bot/internal/biz"
	"divination-bot/internal/constants"
	"divination-bot/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// webhookEvent is the gateway's notification envelope. Only the fields the
// bot acts on are decoded.
type webhookEvent struct {
	Type   string `json:"type"`
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"object"`
}

// WebhookService handles payment gateway notifications.
type WebhookService struct {
	payment *biz.PaymentUseCase
	log     *log.Helper
}

// NewWebhookService creates the webhook handler.
func NewWebhookService(payment *biz.PaymentUseCase, logger log.Logger) *WebhookService {
	return &WebhookService{payment: payment, log: log.NewHelper(logger)}
}

// HandleYooKassa accepts gateway notifications. Only a structurally invalid
// request gets a 400; recognized but irrelevant events and internal failures
// both answer 200 so the gateway does not retry forever.
func (s *WebhookService) HandleYooKassa(w http.ResponseWriter, r *http.Request) {
	m := metrics.GetMetrics()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		if m != nil {
			m.WebhookEventsTotal.WithLabelValues(constants.ResultFailed).Inc()
		}
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		if m != nil {
			m.WebhookEventsTotal.WithLabelValues(constants.ResultFailed).Inc()
		}
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	if ev.Event != "payment.succeeded" || ev.Object.ID == "" {
		s.log.Debugf("ignored webhook event %q", ev.Event)
		if m != nil {
			m.WebhookEventsTotal.WithLabelValues(constants.ResultIgnored).Inc()
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.payment.ProcessSuccess(r.Context(), ev.Object.ID); err != nil {
		// The gateway retries on non-2xx; crediting is idempotent, but a
		// persistent failure would just hammer us, so log and accept.
		s.log.Errorf("process webhook for payment %s: %v", ev.Object.ID, err)
		if m != nil {
			m.WebhookEventsTotal.WithLabelValues(constants.ResultFailed).Inc()
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	if m != nil {
		m.WebhookEventsTotal.WithLabelValues(constants.ResultSuccess).Inc()
	}
	w.WriteHeader(http.StatusOK)
}
