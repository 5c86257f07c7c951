package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vietfood/internal/domain"
)

type productQuery struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

func (h *handlers) getProduct(c *gin.Context) {
	var in productQuery
	if err := c.ShouldBindJSON(&in); err != nil || (in.ID == "" && in.Slug == "") {
		respondError(c, http.StatusBadRequest, "id or slug is required")
		return
	}

	ctx := c.Request.Context()
	var (
		product *domain.Product
		err     error
	)
	if in.ID != "" {
		product, err = h.deps.Catalog.FetchProduct(ctx, in.ID)
	} else {
		product, err = h.deps.Catalog.FetchBySlug(ctx, in.Slug)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		h.logger.Error("fetch product", zap.String("id", in.ID), zap.String("slug", in.Slug), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to fetch product")
		return
	}
	if err != nil || product == nil || !product.IsActive {
		respondError(c, http.StatusNotFound, "product not found")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"product": product.WithActiveVariants()})
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.Catalog.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("list products", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to list products")
		return
	}
	for i := range products {
		products[i] = products[i].WithActiveVariants()
	}
	respondOK(c, http.StatusOK, gin.H{"products": products})
}
