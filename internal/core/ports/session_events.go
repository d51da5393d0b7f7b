package ports

import (
	"context"

	"github.com/prbusiness/dashboard/internal/core/domain"
)

// SessionEventPublisher fans session changes out to subscribers.
type SessionEventPublisher interface {
	Publish(event domain.SessionEvent)
}

// SessionEventHandler reacts to one session change.
type SessionEventHandler interface {
	Handle(ctx context.Context, event domain.SessionEvent) error
}

// SessionEventRepository persists the session audit trail.
type SessionEventRepository interface {
	Insert(ctx context.Context, event domain.SessionEvent) error
	// ListByUser returns the most recent events of userID, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.SessionEvent, error)
}
