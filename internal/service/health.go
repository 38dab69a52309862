package service

import (
	"context"
	"net/http"

	"github.com/go-kratos/kratos/v2/log"
)

// Pinger reports storage liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthService answers liveness probes.
type HealthService struct {
	pinger Pinger
	log    *log.Helper
}

// NewHealthService creates the health endpoint handler.
func NewHealthService(pinger Pinger, logger log.Logger) *HealthService {
	return &HealthService{pinger: pinger, log: log.NewHelper(logger)}
}

// HandleHealth answers 200 when storage is reachable, 503 otherwise.
func (s *HealthService) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		s.log.Warnf("health check: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
