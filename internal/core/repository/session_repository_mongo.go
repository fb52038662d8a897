package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/duynhne/forum-service/internal/core/domain"
)

// sessionDocument is the BSON shape of a session in MongoDB.
type sessionDocument struct {
	ID        string    `bson:"_id"`
	TokenHash string    `bson:"token_hash"`
	UserID    int       `bson:"user_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoSessionRepository implements domain.SessionRepository using a MongoDB collection.
type MongoSessionRepository struct {
	coll *mongo.Collection
}

// NewSessionRepository creates a new MongoSessionRepository on coll.
func NewSessionRepository(coll *mongo.Collection) *MongoSessionRepository {
	return &MongoSessionRepository{coll: coll}
}

// EnsureIndexes creates the unique token index and the TTL index that lets
// MongoDB purge expired sessions on its own.
func (r *MongoSessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("token_hash_unique"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		},
	})
	if err != nil {
		return fmt.Errorf("create session indexes: %w", err)
	}
	return nil
}

// Create stores a new session.
func (r *MongoSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	doc := sessionDocument{
		ID:        session.ID,
		TokenHash: session.TokenHash,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt.UTC(),
		CreatedAt: session.CreatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByTokenHash returns the session stored under tokenHash.
// Returns (nil, nil) when the token does not match any session.
func (r *MongoSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var doc sessionDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "token_hash", Value: tokenHash}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	return &domain.Session{
		ID:        doc.ID,
		TokenHash: doc.TokenHash,
		UserID:    doc.UserID,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// DeleteByTokenHash removes the session stored under tokenHash.
func (r *MongoSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.D{{Key: "token_hash", Value: tokenHash}}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
