package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prbusiness/dashboard/internal/core/domain"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

const sessionEventsCollection = "session_events"

var _ ports.SessionEventRepository = (*SessionEventRepository)(nil)

// SessionEventRepository implements ports.SessionEventRepository using MongoDB.
type SessionEventRepository struct {
	coll *mongo.Collection
}

// NewSessionEventRepository creates a new SessionEventRepository.
func NewSessionEventRepository(db *mongo.Database) *SessionEventRepository {
	return &SessionEventRepository{coll: db.Collection(sessionEventsCollection)}
}

type sessionEventDoc struct {
	SessionID    string    `bson:"session_id"`
	UserID       string    `bson:"user_id,omitempty"`
	Kind         string    `bson:"kind"`
	Role         string    `bson:"role,omitempty"`
	PreviousRole string    `bson:"previous_role,omitempty"`
	At           time.Time `bson:"at"`
	RecordedAt   time.Time `bson:"recorded_at"`
}

// EnsureIndexes creates the index the history query relies on.
func (r *SessionEventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create session event index: %w", err)
	}
	return nil
}

// Insert appends an event to the audit trail.
func (r *SessionEventRepository) Insert(ctx context.Context, ev domain.SessionEvent) error {
	doc := sessionEventDoc{
		SessionID:    ev.SessionID,
		UserID:       ev.UserID,
		Kind:         string(ev.Kind),
		Role:         string(ev.Role),
		PreviousRole: string(ev.PreviousRole),
		At:           ev.At.UTC(),
		RecordedAt:   time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}

// ListByUser returns the newest events of userID first.
func (r *SessionEventRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SessionEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find session events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []sessionEventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode session events: %w", err)
	}

	out := make([]domain.SessionEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.SessionEvent{
			SessionID:    d.SessionID,
			UserID:       d.UserID,
			Kind:         domain.SessionEventKind(d.Kind),
			Role:         domain.Role(d.Role),
			PreviousRole: domain.Role(d.PreviousRole),
			At:           d.At.UTC(),
		})
	}
	return out, nil
}
