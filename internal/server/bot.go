package server

import (
	"context"

	"divination-bot/internal/bot"

	"github.com/go-kratos/kratos/v2/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotServer runs the long-polling update loop as a kratos transport server.
type BotServer struct {
	api     *tgbotapi.BotAPI
	handler *bot.Handler
	log     *log.Helper

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBotServer creates the polling server.
func NewBotServer(api *tgbotapi.BotAPI, handler *bot.Handler, logger log.Logger) *BotServer {
	return &BotServer{
		api:     api,
		handler: handler,
		log:     log.NewHelper(logger),
		done:    make(chan struct{}),
	}
}

// Start launches the update loop in the background. Updates are handled
// one at a time; ordering within a conversation matters more than throughput
// at this bot's scale.
func (s *BotServer) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := s.api.GetUpdatesChan(cfg)

	s.log.Info("bot polling started")
	go func() {
		defer close(s.done)
		for {
			select {
			case <-loopCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				s.handler.HandleUpdate(loopCtx, update)
			}
		}
	}()
	return nil
}

// Stop halts polling and waits for the in-flight update to finish.
func (s *BotServer) Stop(ctx context.Context) error {
	s.log.Info("bot polling stopping")
	s.api.StopReceivingUpdates()
	if s.cancel != nil {
		s.cancel()
	}
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return nil
}
