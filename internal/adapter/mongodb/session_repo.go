package mongodb

import (
	"context"
	"errors"
	"time"

	"tasklist/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type sessionDoc struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Username  string    `bson:"username"`
	Expires   time.Time `bson:"expires"`
	CreatedAt time.Time `bson:"createdAt"`
}

// SessionRepo implements domain.SessionRepository on a Store. Documents are
// keyed by token and carry a TTL-indexed expires field.
type SessionRepo struct {
	coll *mongo.Collection
}

var _ domain.SessionRepository = (*SessionRepo)(nil)

// NewSessionRepo creates a session repository on the store's sessions
// collection.
func NewSessionRepo(s *Store) *SessionRepo {
	return &SessionRepo{coll: s.db.Collection(sessionsCollection)}
}

// Create stores a session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	doc := sessionDoc{
		Token:     s.Token,
		UserID:    s.UserID,
		Username:  s.Username,
		Expires:   s.ExpiresAt.UTC(),
		CreatedAt: createdAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return wrapErr("create session", err)
	}
	return nil
}

// GetByToken retrieves a session by token. The TTL monitor runs about once a
// minute, so expired documents may still be returned; callers check expiry.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var doc sessionDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": token}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, wrapErr("get session", err)
	}
	return &domain.Session{
		Token:     doc.Token,
		UserID:    doc.UserID,
		Username:  doc.Username,
		ExpiresAt: doc.Expires,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return wrapErr("delete session", err)
	}
	return nil
}

// DeleteExpired deletes all expired sessions without waiting for the TTL
// monitor.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"expires": bson.M{"$lte": time.Now().UTC()}}); err != nil {
		return wrapErr("delete expired sessions", err)
	}
	return nil
}
