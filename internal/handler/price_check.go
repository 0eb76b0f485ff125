package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const priceCacheTTL = 30 * time.Second

// PriceCheckHandler serves the public price-check terminals. Results are
// cached briefly in redis so that barcode scans do not hit the database
// on every lookup.
type PriceCheckHandler struct {
	svc service.CatalogService
	rdb *redis.Client
}

func NewPriceCheckHandler(svc service.CatalogService, rdb *redis.Client) *PriceCheckHandler {
	return &PriceCheckHandler{svc: svc, rdb: rdb}
}

// Check godoc
// @Summary      Public price check by barcode
// @Tags         public
// @Produce      json
// @Param        barcode path string true "Barcode"
// @Success      200 {object} dto.PriceCheckResponse
// @Failure      404 {object} apierror.APIError
// @Router       /public/price-check/{barcode} [get]
func (h *PriceCheckHandler) Check(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "price:" + barcode

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.PriceCheckResponse
			if json.Unmarshal(cached, &resp) == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	product, err := h.svc.GetByBarcode(ctx, barcode)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.PriceCheckResponse{
		Name:  product.Name,
		Price: product.Price,
		Stock: product.Stock,
	}

	if h.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := h.rdb.Set(ctx, cacheKey, payload, priceCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("barcode", barcode).Msg("price cache write failed")
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}
