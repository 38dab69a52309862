package server

import (
	"divination-bot/internal/conf"
	"divination-bot/internal/service"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHTTPServer exposes the webhook, the browser card endpoint, health and
// metrics.
func NewHTTPServer(
	c *conf.Bootstrap,
	webhook *service.WebhookService,
	webapp *service.WebAppService,
	health *service.HealthService,
) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Server != nil && c.Server.HTTP != nil {
		if c.Server.HTTP.Network != "" {
			opts = append(opts, http.Network(c.Server.HTTP.Network))
		}
		if c.Server.HTTP.Addr != "" {
			opts = append(opts, http.Address(c.Server.HTTP.Addr))
		}
		if c.Server.HTTP.Timeout != "" {
			opts = append(opts, http.Timeout(c.Server.HTTP.Timeout.AsDuration()))
		}
	}
	srv := http.NewServer(opts...)
	srv.HandleFunc("/webhook/yookassa", webhook.HandleYooKassa)
	srv.HandleFunc("/api/webapp/cards", webapp.HandleCards)
	srv.HandleFunc("/health", health.HandleHealth)
	srv.Handle("/metrics", promhttp.Handler())
	return srv
}
