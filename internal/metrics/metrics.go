package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BotMetrics groups the divination bot's prometheus collectors.
type BotMetrics struct {
	// Reading pipeline
	ReadingsTotal   *prometheus.CounterVec   // completed readings (by type, tier)
	ReadingDuration *prometheus.HistogramVec // draw-to-reply latency (by type)
	FollowUpsTotal  prometheus.Counter       // answered follow-up messages

	// Balance
	ConsumeTotal     *prometheus.CounterVec // consume attempts (by tier/result)
	LockAcquireTotal *prometheus.CounterVec // consumption lock attempts (by result)

	// Payments
	PaymentsCreatedTotal   prometheus.Counter
	PaymentsSucceededTotal prometheus.Counter
	PaymentAmountTotal     *prometheus.CounterVec // credited amount in RUB (by package)
	WebhookEventsTotal     *prometheus.CounterVec // webhook outcomes (by result)

	// Interpretation generator
	GeneratorRequestsTotal *prometheus.CounterVec // LLM calls (by result)
	GeneratorDuration      prometheus.Histogram

	// Analytics queue
	ConversionsQueuedTotal  prometheus.Counter
	ConversionsDroppedTotal prometheus.Counter

	// Daily push
	DailyCardsSentTotal *prometheus.CounterVec // pushes (by result)
}

// NewBotMetrics registers and returns the collectors.
func NewBotMetrics() *BotMetrics {
	return &BotMetrics{
		ReadingsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "divination_readings_total",
				Help: "Total number of completed readings",
			},
			[]string{"type", "tier"},
		),
		ReadingDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "divination_reading_duration_seconds",
				Help:    "Duration of the draw-generate-persist pipeline",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		FollowUpsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "divination_follow_ups_total",
				Help: "Total number of answered follow-up messages",
			},
		),

		ConsumeTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "divination_consume_total",
				Help: "Total number of balance consume attempts",
			},
			[]string{"tier"},
		),
		LockAcquireTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "divination_consume_lock_acquire_total",
				Help: "Total number of consumption lock acquisition attempts",
			},
			[]string{"result"},
		),

		PaymentsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "divination_payments_created_total",
				Help: "Total number of payment intents created",
			},
		),
		PaymentsSucceededTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "divination_payments_succeeded_total",
				Help: "Total number of payments credited",
			},
		),
		PaymentAmountTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "divination_payment_amount_rub_total",
				Help: "Total credited payment amount in RUB",
			},
			[]string{"package"},
		),
		WebhookEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "divination_webhook_events_total",
				Help: "Total number of gateway webhook deliveries",
			},
			[]string{"result"}, // result: success/ignored/duplicate/failed
		),

		GeneratorRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "divination_generator_requests_total",
				Help: "Total number of interpretation generator calls",
			},
			[]string{"result"},
		),
		GeneratorDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "divination_generator_duration_seconds",
				Help:    "Duration of interpretation generator calls",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),

		ConversionsQueuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "divination_conversions_queued_total",
				Help: "Total number of conversion events accepted into the queue",
			},
		),
		ConversionsDroppedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "divination_conversions_dropped_total",
				Help: "Total number of conversion events dropped on queue overflow",
			},
		),

		DailyCardsSentTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "divination_daily_cards_sent_total",
				Help: "Total number of daily card pushes",
			},
			[]string{"result"}, // result: success/failed
		),
	}
}

// Global metrics instance.
var defaultMetrics *BotMetrics

// InitMetrics initializes the global instance.
func InitMetrics() {
	defaultMetrics = NewBotMetrics()
}

// GetMetrics returns the global instance, initializing it on first use.
func GetMetrics() *BotMetrics {
	if defaultMetrics == nil {
		InitMetrics()
	}
	return defaultMetrics
}
