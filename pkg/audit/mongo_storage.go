package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoStorage appends events to a MongoDB collection, for deployments that
// keep the audit trail in a document store instead of the relational
// database.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage creates storage backed by the given collection.
func NewMongoStorage(coll *mongo.Collection) *MongoStorage {
	if coll == nil {
		panic("audit: collection cannot be nil")
	}
	return &MongoStorage{coll: coll}
}

type mongoEvent struct {
	ID        string         `bson:"_id"`
	AccountID *string        `bson:"account_id,omitempty"`
	Action    string         `bson:"action"`
	IP        string         `bson:"ip,omitempty"`
	UserAgent string         `bson:"user_agent,omitempty"`
	Success   bool           `bson:"success"`
	Reason    string         `bson:"reason,omitempty"`
	Metadata  map[string]any `bson:"metadata,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
}

// Store inserts all events in one InsertMany call.
func (m *MongoStorage) Store(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]any, len(events))
	for i, e := range events {
		doc := mongoEvent{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			IP:        e.IP,
			UserAgent: e.UserAgent,
			Success:   e.Success,
			Reason:    e.Reason,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
		}
		if e.AccountID != nil {
			id := e.AccountID.String()
			doc.AccountID = &id
		}
		docs[i] = doc
	}

	_, err := m.coll.InsertMany(ctx, docs)
	return err
}
