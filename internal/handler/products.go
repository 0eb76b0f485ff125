package handler

import (
	"net/http"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apierror"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/middleware"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductsHandler struct{ svc service.CatalogService }

func NewProductsHandler(svc service.CatalogService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// Create godoc
// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body dto.CreateProductRequest true "Product"
// @Success  201 {object} dto.ProductResponse
// @Failure  409 {object} apierror.APIError
// @Router   /v1/products [post]
func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary  Get a product by id
// @Tags     products
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Product UUID"
// @Success  200 {object} dto.ProductResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByBarcode godoc
// @Summary  Look up a product by barcode
// @Tags     products
// @Produce  json
// @Security BearerAuth
// @Param    barcode path string true "Barcode"
// @Success  200 {object} dto.ProductResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/products/barcode/{barcode} [get]
func (h *ProductsHandler) GetByBarcode(c *gin.Context) {
	resp, err := h.svc.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary  List products
// @Tags     products
// @Produce  json
// @Security BearerAuth
// @Param    barcode query string false "Exact barcode"
// @Param    name    query string false "Name substring"
// @Param    active  query string false "'' (active only) | false | all"
// @Param    page    query int    false "Page (default 1)"
// @Param    limit   query int    false "Page size (default 50)"
// @Success  200 {object} dto.ProductListResponse
// @Router   /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list products"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListLowStock godoc
// @Summary  List products at or below their minimum stock
// @Tags     products
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} dto.ProductResponse
// @Router   /v1/products/low-stock [get]
func (h *ProductsHandler) ListLowStock(c *gin.Context) {
	resp, err := h.svc.ListLowStock(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list low stock"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary  Update a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string                   true "Product UUID"
// @Param    body body dto.UpdateProductRequest true "Fields to change"
// @Success  200 {object} dto.ProductResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/products/{id} [put]
func (h *ProductsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdjustStock godoc
// @Summary      Adjust stock manually
// @Description  Applies a signed delta under a row lock and records an ADJUST stock movement.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Product UUID"
// @Param        body body dto.AdjustStockRequest true "Delta and reason"
// @Success      200  {object} dto.ProductResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/products/{id}/stock [post]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	userID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.AdjustStock(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListStockMovements godoc
// @Summary  List stock ledger entries
// @Tags     products
// @Produce  json
// @Security BearerAuth
// @Param    product_id query string false "Product UUID"
// @Param    type       query string false "OUT | IN | ADJUST"
// @Param    page       query int    false "Page (default 1)"
// @Param    limit      query int    false "Page size (default 100)"
// @Success  200 {object} dto.StockMovementListResponse
// @Router   /v1/stock-movements [get]
func (h *ProductsHandler) ListStockMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListStockMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary  Deactivate a product
// @Tags     products
// @Security BearerAuth
// @Param    id path string true "Product UUID"
// @Success  204
// @Failure  404 {object} apierror.APIError
// @Router   /v1/products/{id} [delete]
func (h *ProductsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivate godoc
// @Summary  Reactivate a product
// @Tags     products
// @Security BearerAuth
// @Param    id path string true "Product UUID"
// @Success  204
// @Failure  404 {object} apierror.APIError
// @Router   /v1/products/{id}/reactivate [post]
func (h *ProductsHandler) Reactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	if err := h.svc.Reactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
