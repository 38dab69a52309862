package server

import (
	"context"

	"divination-bot/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

// AnalyticsServer runs the conversion queue worker as a kratos transport
// server so it shares the application lifecycle.
type AnalyticsServer struct {
	conv *biz.ConversionUseCase
	log  *log.Helper

	cancel context.CancelFunc
	done   chan struct{}
}

// NewAnalyticsServer creates the conversion worker server.
func NewAnalyticsServer(conv *biz.ConversionUseCase, logger log.Logger) *AnalyticsServer {
	return &AnalyticsServer{
		conv: conv,
		log:  log.NewHelper(logger),
		done: make(chan struct{}),
	}
}

// Start launches the queue worker.
func (s *AnalyticsServer) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.log.Info("conversion worker started")
	go func() {
		defer close(s.done)
		s.conv.Run(workerCtx)
	}()
	return nil
}

// Stop shuts the worker down; queued events not yet processed are dropped.
func (s *AnalyticsServer) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	s.log.Info("conversion worker stopped")
	return nil
}
