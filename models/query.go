package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	QueryStatusPending   = "pending"
	QueryStatusConfirmed = "confirmed"
	QueryStatusShipped   = "shipped"
	QueryStatusDelivered = "delivered"
	QueryStatusCancelled = "cancelled"
)

var QueryStatuses = []string{
	QueryStatusPending,
	QueryStatusConfirmed,
	QueryStatusShipped,
	QueryStatusDelivered,
	QueryStatusCancelled,
}

func IsValidQueryStatus(s string) bool {
	for _, v := range QueryStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Customer struct {
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email" bson:"email"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`
}

type OrderItem struct {
	ProductID   primitive.ObjectID `json:"productId" bson:"productId"`
	ProductName string             `json:"productName" bson:"productName"`
	Size        string             `json:"size,omitempty" bson:"size,omitempty"`
	Color       string             `json:"color,omitempty" bson:"color,omitempty"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	Price       float64            `json:"price" bson:"price"`
	Thumbnail   string             `json:"thumbnail" bson:"thumbnail"`
}

type Order struct {
	Items       []OrderItem `json:"items" bson:"items"`
	TotalAmount float64     `json:"totalAmount" bson:"totalAmount"`
	ItemCount   int         `json:"itemCount" bson:"itemCount"`
}

// Query is a customer order inquiry.
type Query struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Customer          Customer           `json:"customer" bson:"customer"`
	Order             Order              `json:"order" bson:"order"`
	AdditionalMessage string             `json:"additionalMessage" bson:"additionalMessage"`
	Status            string             `json:"status" bson:"status"`
	Timestamp         time.Time          `json:"timestamp" bson:"timestamp"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreateQueryRequest struct {
	Customer          *Customer  `json:"customer"`
	Order             *Order     `json:"order"`
	AdditionalMessage string     `json:"additionalMessage"`
	Timestamp         *time.Time `json:"timestamp"`
}

type UpdateQueryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}
