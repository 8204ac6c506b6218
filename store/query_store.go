package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storefront/api/apperr"
	"storefront/api/database"
	"storefront/api/models"
)

// QueryStore persists customer order inquiries.
type QueryStore struct {
	coll *mongo.Collection
}

func NewQueryStore(db *database.MongoDB, log *zap.Logger) *QueryStore {
	s := &QueryStore{coll: db.Collection("queries")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn("Failed to create query indexes", zap.Error(err))
	}
	return s
}

func (s *QueryStore) CreateQuery(ctx context.Context, q *models.Query) (*models.Query, error) {
	now := time.Now().UTC()
	q.ID = primitive.NewObjectID()
	q.CreatedAt = now
	q.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, q); err != nil {
		return nil, storeError("Failed to create query", fmt.Errorf("insert query: %w", err))
	}
	return q, nil
}

// ListQueries returns newest first.
func (s *QueryStore) ListQueries(ctx context.Context) ([]models.Query, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, storeError("Failed to fetch queries", fmt.Errorf("find queries: %w", err))
	}
	defer cursor.Close(ctx)

	queries := []models.Query{}
	if err := cursor.All(ctx, &queries); err != nil {
		return nil, storeError("Failed to fetch queries", fmt.Errorf("decode queries: %w", err))
	}
	return queries, nil
}

func (s *QueryStore) GetQuery(ctx context.Context, id string) (*models.Query, error) {
	oid, err := objectID(id, "Query not found")
	if err != nil {
		return nil, err
	}

	var q models.Query
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Query not found")
		}
		return nil, storeError("Failed to fetch query", fmt.Errorf("find query %s: %w", id, err))
	}
	return &q, nil
}

func (s *QueryStore) UpdateQueryStatus(ctx context.Context, id, status string) (*models.Query, error) {
	oid, err := objectID(id, "Query not found")
	if err != nil {
		return nil, err
	}

	var updated models.Query
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Query not found")
		}
		return nil, storeError("Failed to update query", fmt.Errorf("update query %s: %w", id, err))
	}
	return &updated, nil
}

// DeleteQuery returns the removed document.
func (s *QueryStore) DeleteQuery(ctx context.Context, id string) (*models.Query, error) {
	oid, err := objectID(id, "Query not found")
	if err != nil {
		return nil, err
	}

	var deleted models.Query
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&deleted); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Query not found")
		}
		return nil, storeError("Failed to delete query", fmt.Errorf("delete query %s: %w", id, err))
	}
	return &deleted, nil
}
