package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/api/apperr"
	"storefront/api/models"
)

type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, input models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type ProductHandlers struct {
	products   ProductStore
	categories CategoryStore
	log        *zap.Logger
}

func NewProductHandlers(products ProductStore, categories CategoryStore, log *zap.Logger) *ProductHandlers {
	return &ProductHandlers{products: products, categories: categories, log: log}
}

// newProduct checks a create request field by field, in the order the
// storefront admin reports errors, and fills defaults.
func (h *ProductHandlers) newProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if in.Name == nil || *in.Name == "" || in.Description == nil || *in.Description == "" ||
		in.OriginalPrice == nil || *in.OriginalPrice == 0 {
		return nil, apperr.Validation("Name, description, and originalPrice are required")
	}

	if in.Category == nil {
		return nil, apperr.Validation("Invalid category")
	}
	category, err := h.categories.GetCategory(ctx, *in.Category)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation("Invalid category")
		}
		return nil, err
	}

	if in.Thumbnail == nil || in.Thumbnail.PublicID == "" || in.Thumbnail.URL == "" {
		return nil, apperr.Validation("Thumbnail is required")
	}
	if len(in.Images) == 0 {
		return nil, apperr.Validation("At least one image is required")
	}
	if err := validateVariants(in); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:            *in.Name,
		Description:     *in.Description,
		Thumbnail:       *in.Thumbnail,
		Images:          in.Images,
		OriginalPrice:   *in.OriginalPrice,
		DiscountedPrice: in.DiscountedPrice,
		CategoryID:      category.ID,
		Sizes:           in.Sizes,
		Colors:          in.Colors,
		InStock:         true,
	}
	if in.Ratings != nil {
		p.Ratings = *in.Ratings
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if in.Details != nil {
		p.Details = *in.Details
	}
	if in.Label != nil {
		p.Label = *in.Label
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if p.Sizes == nil {
		p.Sizes = []models.Size{}
	}
	if p.Colors == nil {
		p.Colors = []models.Color{}
	}
	return p, nil
}

func validateVariants(in models.ProductInput) error {
	for _, s := range in.Sizes {
		if s.Size == "" {
			return apperr.Validation("Sizes must be an array of objects with a 'size' field")
		}
	}
	for _, col := range in.Colors {
		if col.Name == "" {
			return apperr.Validation("Colors must be an array of objects with a 'name' field")
		}
	}
	return nil
}

func (h *ProductHandlers) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}

	product, err := h.newProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	created, err := h.products.CreateProduct(c.Request.Context(), product)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func parseProductFilter(c *gin.Context) (models.ProductFilter, error) {
	f := models.ProductFilter{NameContains: c.Query("productName")}

	if id := c.Query("categoryId"); id != "" {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return f, apperr.InvalidArgument("Invalid categoryId")
		}
		f.CategoryID = &oid
	}
	for param, dst := range map[string]**float64{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, apperr.InvalidArgument("Invalid " + param)
		}
		*dst = &v
	}
	return f, nil
}

func (h *ProductHandlers) ListProducts(c *gin.Context) {
	filter, err := parseProductFilter(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	products, err := h.products.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandlers) GetProduct(c *gin.Context) {
	product, err := h.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) UpdateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := validateVariants(input); err != nil {
		respondError(c, h.log, err)
		return
	}

	updated, err := h.products.UpdateProduct(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ProductHandlers) DeleteProduct(c *gin.Context) {
	if err := h.products.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
