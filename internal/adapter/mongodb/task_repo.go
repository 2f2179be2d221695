package mongodb

import (
	"context"
	"errors"
	"time"

	"tasklist/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	UserID    string             `bson:"userId"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d taskDoc) toDomain() domain.Task {
	return domain.Task{ID: d.ID.Hex(), Title: d.Title, OwnerID: d.UserID, CreatedAt: d.CreatedAt}
}

// TaskRepo implements domain.TaskRepository on a Store.
type TaskRepo struct {
	coll *mongo.Collection
}

var _ domain.TaskRepository = (*TaskRepo)(nil)

// NewTaskRepo creates a task repository on the store's tasks collection.
func NewTaskRepo(s *Store) *TaskRepo {
	return &TaskRepo{coll: s.db.Collection(tasksCollection)}
}

// ListByOwner returns the owner's tasks ordered by ObjectID, which follows
// insertion order.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	cur, err := r.coll.Find(ctx, bson.M{"userId": ownerID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, wrapErr("list tasks", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapErr("list tasks", err)
	}

	out := make([]domain.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Create inserts a task.
func (r *TaskRepo) Create(ctx context.Context, ownerID, title string) (*domain.Task, error) {
	doc := taskDoc{
		ID:        primitive.NewObjectID(),
		Title:     title,
		UserID:    ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, wrapErr("create task", err)
	}
	t := doc.toDomain()
	return &t, nil
}

// GetByID returns a task regardless of owner.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetOwned returns a task only if ownerID owns it.
func (r *TaskRepo) GetOwned(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "userId": ownerID})
}

// UpdateTitle renames a task matched by id and owner.
func (r *TaskRepo) UpdateTitle(ctx context.Context, id, ownerID, title string) (bool, error) {
	oid, ok := parseID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "userId": ownerID},
		bson.M{"$set": bson.M{"title": title}},
	)
	if err != nil {
		return false, wrapErr("update task", err)
	}
	return res.MatchedCount > 0, nil
}

// Delete removes a task matched by id and owner.
func (r *TaskRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	oid, ok := parseID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "userId": ownerID})
	if err != nil {
		return false, wrapErr("delete task", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *TaskRepo) findOne(ctx context.Context, filter bson.M) (*domain.Task, error) {
	var doc taskDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("find task", err)
	}
	t := doc.toDomain()
	return &t, nil
}
