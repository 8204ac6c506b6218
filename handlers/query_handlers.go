package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/api/apperr"
	"storefront/api/mailer"
	"storefront/api/models"
)

type QueryStore interface {
	CreateQuery(ctx context.Context, q *models.Query) (*models.Query, error)
	ListQueries(ctx context.Context) ([]models.Query, error)
	GetQuery(ctx context.Context, id string) (*models.Query, error)
	UpdateQueryStatus(ctx context.Context, id, status string) (*models.Query, error)
	DeleteQuery(ctx context.Context, id string) (*models.Query, error)
}

type QueryHandlers struct {
	store       QueryStore
	mail        mailer.Mailer
	notifyTo    string
	mailTimeout time.Duration
	log         *zap.Logger
}

// NewQueryHandlers sends a notice of each new query to notifyTo; an empty
// notifyTo disables it.
func NewQueryHandlers(store QueryStore, mail mailer.Mailer, notifyTo string, log *zap.Logger) *QueryHandlers {
	return &QueryHandlers{
		store:       store,
		mail:        mail,
		notifyTo:    notifyTo,
		mailTimeout: 30 * time.Second,
		log:         log,
	}
}

const itemFieldsMessage = "Each order item needs productId, productName, quantity, price and thumbnail"

func validateQuery(req models.CreateQueryRequest) error {
	cu := req.Customer
	if cu == nil || cu.Name == "" || cu.Email == "" || cu.Phone == "" || cu.Address == "" {
		return apperr.Validation("Customer details are required")
	}
	o := req.Order
	if o == nil || len(o.Items) == 0 || o.TotalAmount == 0 || o.ItemCount == 0 {
		return apperr.Validation("Order details are required")
	}
	for _, it := range o.Items {
		if it.ProductID.IsZero() || it.ProductName == "" || it.Quantity <= 0 || it.Price == 0 || it.Thumbnail == "" {
			return apperr.Validation(itemFieldsMessage)
		}
	}
	return nil
}

func (h *QueryHandlers) CreateQuery(c *gin.Context) {
	var req models.CreateQueryRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := validateQuery(req); err != nil {
		respondError(c, h.log, err)
		return
	}

	q := &models.Query{
		Customer:          *req.Customer,
		Order:             *req.Order,
		AdditionalMessage: req.AdditionalMessage,
		Status:            models.QueryStatusPending,
		Timestamp:         time.Now().UTC(),
	}
	if req.Timestamp != nil {
		q.Timestamp = req.Timestamp.UTC()
	}

	created, err := h.store.CreateQuery(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if h.notifyTo != "" {
		go h.notify(*created)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Query created", "query": created})
}

// notify runs detached from the request; failures are only logged.
func (h *QueryHandlers) notify(q models.Query) {
	ctx, cancel := context.WithTimeout(context.Background(), h.mailTimeout)
	defer cancel()

	msg, err := mailer.QueryNotice(h.notifyTo, &q)
	if err == nil {
		err = h.mail.Send(ctx, msg)
	}
	if err != nil {
		h.log.Error("Failed to send query notification", zap.String("query_id", q.ID.Hex()), zap.Error(err))
	}
}

func (h *QueryHandlers) ListQueries(c *gin.Context) {
	queries, err := h.store.ListQueries(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, queries)
}

func (h *QueryHandlers) GetQuery(c *gin.Context) {
	q, err := h.store.GetQuery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QueryHandlers) UpdateQueryStatus(c *gin.Context) {
	var req models.UpdateQueryStatusRequest
	if err := bindRequired(c, &req, "Invalid status value"); err != nil {
		respondError(c, h.log, err)
		return
	}
	if !models.IsValidQueryStatus(req.Status) {
		respondError(c, h.log, apperr.Validation("Invalid status value"))
		return
	}

	updated, err := h.store.UpdateQueryStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *QueryHandlers) DeleteQuery(c *gin.Context) {
	deleted, err := h.store.DeleteQuery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Query deleted successfully", "deletedQuery": deleted})
}
