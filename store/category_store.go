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

	"storefront/api/apperr"
	"storefront/api/database"
	"storefront/api/models"
)

type CategoryStore struct {
	coll *mongo.Collection
}

func NewCategoryStore(db *database.MongoDB) *CategoryStore {
	return &CategoryStore{coll: db.Collection("categories")}
}

// objectID treats a malformed id like an unknown one.
func objectID(id, notFound string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(notFound)
	}
	return oid, nil
}

func (s *CategoryStore) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	now := time.Now().UTC()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, category); err != nil {
		return nil, storeError("Failed to create category", fmt.Errorf("insert category: %w", err))
	}
	return category, nil
}

func (s *CategoryStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, storeError("Failed to list categories", fmt.Errorf("find categories: %w", err))
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, storeError("Failed to list categories", fmt.Errorf("decode categories: %w", err))
	}
	return categories, nil
}

func (s *CategoryStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	oid, err := objectID(id, "Category not found")
	if err != nil {
		return nil, err
	}

	var category models.Category
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Category not found")
		}
		return nil, storeError("Failed to get category", fmt.Errorf("find category %s: %w", id, err))
	}
	return &category, nil
}

func (s *CategoryStore) UpdateCategory(ctx context.Context, id string, input models.CategoryInput) (*models.Category, error) {
	oid, err := objectID(id, "Category not found")
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}

	var updated models.Category
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Category not found")
		}
		return nil, storeError("Failed to update category", fmt.Errorf("update category %s: %w", id, err))
	}
	return &updated, nil
}

func (s *CategoryStore) DeleteCategory(ctx context.Context, id string) error {
	oid, err := objectID(id, "Category not found")
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeError("Failed to delete category", fmt.Errorf("delete category %s: %w", id, err))
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Category not found")
	}
	return nil
}
