package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/api/metrics"
	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

const defaultInsertTimeout = 5 * time.Second

// AuditRecorder writes every event to the audit trail. Each insert is bounded
// by timeout so a stalled database cannot hold a worker indefinitely.
type AuditRecorder struct {
	repo    ports.SessionEventRepository
	timeout time.Duration
}

func NewAuditRecorder(repo ports.SessionEventRepository) *AuditRecorder {
	return &AuditRecorder{repo: repo, timeout: defaultInsertTimeout}
}

func (a *AuditRecorder) Handle(ctx context.Context, ev domain.SessionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.repo.Insert(ctx, ev)
}

// Observer counts and logs events.
type Observer struct {
	log zerolog.Logger
}

func NewObserver(log zerolog.Logger) *Observer {
	return &Observer{log: log}
}

func (o *Observer) Handle(_ context.Context, ev domain.SessionEvent) error {
	metrics.SessionEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	o.log.Debug().
		Str("session_id", ev.SessionID).
		Str("user_id", ev.UserID).
		Str("kind", string(ev.Kind)).
		Str("role", string(ev.Role)).
		Msg("session changed")
	return nil
}
