package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type Image struct {
	PublicID string `json:"public_id" bson:"public_id"`
	URL      string `json:"url" bson:"url"`
}

type ProductDetails struct {
	Materials        string   `json:"materials,omitempty" bson:"materials,omitempty"`
	CareInstructions []string `json:"careInstructions,omitempty" bson:"careInstructions,omitempty"`
	Features         []string `json:"features,omitempty" bson:"features,omitempty"`
}

type Size struct {
	Size string `json:"size" bson:"size"`
}

type Color struct {
	Name string `json:"name" bson:"name"`
}

// Product is stored with a category reference; reads populate Category.
type Product struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description" bson:"description"`
	Thumbnail       Image              `json:"thumbnail" bson:"thumbnail"`
	Images          []Image            `json:"images" bson:"images"`
	OriginalPrice   float64            `json:"originalPrice" bson:"originalPrice"`
	DiscountedPrice *float64           `json:"discountedPrice,omitempty" bson:"discountedPrice,omitempty"`
	Ratings         float64            `json:"ratings" bson:"ratings"`
	InStock         bool               `json:"inStock" bson:"inStock"`
	Label           string             `json:"label" bson:"label"`
	Featured        bool               `json:"featured" bson:"featured"`
	Details         ProductDetails     `json:"details" bson:"details"`
	Sizes           []Size             `json:"sizes" bson:"sizes"`
	Colors          []Color            `json:"colors" bson:"colors"`
	CategoryID      primitive.ObjectID `json:"categoryId" bson:"category"`
	Category        *Category          `json:"category,omitempty" bson:"categoryDoc,omitempty"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductInput is the body of create and update requests. Pointer fields
// distinguish "absent" from zero values for partial updates.
type ProductInput struct {
	Name            *string         `json:"name"`
	Description     *string         `json:"description"`
	OriginalPrice   *float64        `json:"originalPrice"`
	DiscountedPrice *float64        `json:"discountedPrice"`
	Ratings         *float64        `json:"ratings"`
	InStock         *bool           `json:"inStock"`
	Details         *ProductDetails `json:"details"`
	Category        *string         `json:"category"`
	Thumbnail       *Image          `json:"thumbnail"`
	Images          []Image         `json:"images"`
	Sizes           []Size          `json:"sizes"`
	Colors          []Color         `json:"colors"`
	Label           *string         `json:"label"`
	Featured        *bool           `json:"featured"`
	IsActive        *bool           `json:"isActive"`
}

type ProductFilter struct {
	CategoryID   *primitive.ObjectID
	NameContains string
	MinPrice     *float64
	MaxPrice     *float64
}
