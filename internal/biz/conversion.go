package biz

import (
	"context"

	"divination-bot/internal/conf"
	"divination-bot/internal/constants"
	"divination-bot/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// Conversion is an append-only funnel event.
type Conversion struct {
	UserID         int64
	ClientID       string
	Type           string
	Value          float64
	Currency       string
	PackageID      string
	DivinationType string
	Metadata       map[string]string
}

// ConversionRepo is the conversion data access interface.
type ConversionRepo interface {
	SaveConversion(ctx context.Context, c *Conversion) error
}

// AnalyticsPinger forwards a conversion to the external analytics counter.
// Implementations must apply their own short timeout.
type AnalyticsPinger interface {
	SendHit(ctx context.Context, c *Conversion) error
}

// ConversionUseCase records funnel events through a bounded queue consumed by
// a single background worker. Record never blocks the calling flow; events
// are dropped (with a counter) when the queue is full.
type ConversionUseCase struct {
	repo    ConversionRepo
	pinger  AnalyticsPinger // nil when analytics pings are disabled
	queue   chan *Conversion
	metrics *metrics.BotMetrics
	log     *log.Helper
}

// NewConversionUseCase creates the recorder with its work queue.
func NewConversionUseCase(c *conf.Bootstrap, repo ConversionRepo, pinger AnalyticsPinger, logger log.Logger) *ConversionUseCase {
	size := constants.ConversionQueueCap
	if c.Analytics != nil && c.Analytics.QueueSize > 0 {
		size = c.Analytics.QueueSize
	}
	return &ConversionUseCase{
		repo:    repo,
		pinger:  pinger,
		queue:   make(chan *Conversion, size),
		metrics: metrics.GetMetrics(),
		log:     log.NewHelper(logger),
	}
}

// Record enqueues a conversion event, dropping it when the queue is full.
func (uc *ConversionUseCase) Record(c *Conversion) {
	if c.Currency == "" {
		c.Currency = "RUB"
	}
	select {
	case uc.queue <- c:
		uc.metrics.ConversionsQueuedTotal.Inc()
	default:
		uc.metrics.ConversionsDroppedTotal.Inc()
		uc.log.Warnf("conversion queue full, dropping %s event for user %d", c.Type, c.UserID)
	}
}

// Run consumes the queue until ctx is canceled. Failures are logged and the
// event is dropped; nothing is retried.
func (uc *ConversionUseCase) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-uc.queue:
			uc.process(ctx, c)
		}
	}
}

func (uc *ConversionUseCase) process(ctx context.Context, c *Conversion) {
	if err := uc.repo.SaveConversion(ctx, c); err != nil {
		uc.log.Errorf("save %s conversion for user %d: %v", c.Type, c.UserID, err)
	}
	if uc.pinger == nil {
		return
	}
	if err := uc.pinger.SendHit(ctx, c); err != nil {
		uc.log.Warnf("analytics hit %s for user %d: %v", c.Type, c.UserID, err)
	}
}
