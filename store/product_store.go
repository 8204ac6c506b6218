package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
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

type ProductStore struct {
	coll *mongo.Collection
}

// NewProductStore creates the store and makes sure the filter indexes exist.
func NewProductStore(db *database.MongoDB, log *zap.Logger) *ProductStore {
	s := &ProductStore{coll: db.Collection("products")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "discountedPrice", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn("Failed to create product indexes", zap.Error(err))
	}

	return s
}

// populateCategory joins the referenced category into categoryDoc.
var populateCategory = []bson.M{
	{"$lookup": bson.M{
		"from":         "categories",
		"localField":   "category",
		"foreignField": "_id",
		"as":           "categoryDoc",
	}},
	{"$unwind": bson.M{"path": "$categoryDoc", "preserveNullAndEmptyArrays": true}},
}

func (s *ProductStore) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, product); err != nil {
		return nil, storeError("Failed to create product", fmt.Errorf("insert product: %w", err))
	}
	return product, nil
}

func productMatch(f models.ProductFilter) bson.M {
	match := bson.M{}
	if f.CategoryID != nil {
		match["category"] = *f.CategoryID
	}
	if f.NameContains != "" {
		match["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.NameContains), Options: "i"}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		match["discountedPrice"] = price
	}
	return match
}

func (s *ProductStore) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	pipeline := append([]bson.M{
		{"$match": productMatch(filter)},
		{"$sort": bson.M{"createdAt": -1}},
	}, populateCategory...)

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeError("Failed to list products", fmt.Errorf("aggregate products: %w", err))
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, storeError("Failed to list products", fmt.Errorf("decode products: %w", err))
	}
	return products, nil
}

func (s *ProductStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id, "Product not found")
	if err != nil {
		return nil, err
	}

	pipeline := append([]bson.M{{"$match": bson.M{"_id": oid}}}, populateCategory...)
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeError("Failed to get product", fmt.Errorf("aggregate product %s: %w", id, err))
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, storeError("Failed to get product", err)
		}
		return nil, apperr.NotFound("Product not found")
	}
	var product models.Product
	if err := cursor.Decode(&product); err != nil {
		return nil, storeError("Failed to get product", fmt.Errorf("decode product %s: %w", id, err))
	}
	return &product, nil
}

// productUpdate builds a $set document from the fields present in input.
func productUpdate(input models.ProductInput) (bson.M, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.OriginalPrice != nil {
		set["originalPrice"] = *input.OriginalPrice
	}
	if input.DiscountedPrice != nil {
		set["discountedPrice"] = *input.DiscountedPrice
	}
	if input.Ratings != nil {
		set["ratings"] = *input.Ratings
	}
	if input.InStock != nil {
		set["inStock"] = *input.InStock
	}
	if input.Details != nil {
		set["details"] = *input.Details
	}
	if input.Category != nil {
		oid, err := primitive.ObjectIDFromHex(*input.Category)
		if err != nil {
			return nil, apperr.Validation("Invalid category")
		}
		set["category"] = oid
	}
	if input.Thumbnail != nil {
		set["thumbnail"] = *input.Thumbnail
	}
	if input.Images != nil {
		set["images"] = input.Images
	}
	if input.Sizes != nil {
		set["sizes"] = input.Sizes
	}
	if input.Colors != nil {
		set["colors"] = input.Colors
	}
	if input.Label != nil {
		set["label"] = *input.Label
	}
	if input.Featured != nil {
		set["featured"] = *input.Featured
	}
	if input.IsActive != nil {
		set["isActive"] = *input.IsActive
	}
	return set, nil
}

func (s *ProductStore) UpdateProduct(ctx context.Context, id string, input models.ProductInput) (*models.Product, error) {
	oid, err := objectID(id, "Product not found")
	if err != nil {
		return nil, err
	}
	set, err := productUpdate(input)
	if err != nil {
		return nil, err
	}

	var updated models.Product
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, storeError("Failed to update product", fmt.Errorf("update product %s: %w", id, err))
	}
	return &updated, nil
}

func (s *ProductStore) DeleteProduct(ctx context.Context, id string) error {
	oid, err := objectID(id, "Product not found")
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeError("Failed to delete product", fmt.Errorf("delete product %s: %w", id, err))
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}
