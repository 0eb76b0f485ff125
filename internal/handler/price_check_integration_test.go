//go:build integration

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apperr"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// countingCatalog records lookups so the test can tell a cache hit from a
// database round trip.
type countingCatalog struct {
	service.CatalogService
	lookups  int
	products map[string]dto.ProductResponse
}

func (c *countingCatalog) GetByBarcode(_ context.Context, barcode string) (*dto.ProductResponse, error) {
	c.lookups++
	p, ok := c.products[barcode]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &p, nil
}

func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)
	return goredis.NewClient(opts)
}

func TestPriceCheckCachesLookups(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := startRedis(t)
	t.Cleanup(func() { _ = rdb.Close() })

	catalog := &countingCatalog{products: map[string]dto.ProductResponse{
		"7891000100103": {
			ID:    uuid.NewString(),
			Name:  "Leite Integral 1L",
			Price: decimal.RequireFromString("5.49"),
			Stock: 12,
		},
	}}
	h := NewPriceCheckHandler(catalog, rdb)

	r := gin.New()
	r.GET("/public/price-check/:barcode", h.Check)

	get := func(barcode string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/public/price-check/"+barcode, nil)
		r.ServeHTTP(w, req)
		return w
	}

	w := get("7891000100103")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, catalog.lookups)

	// Second scan is served from redis without touching the catalog.
	w = get("7891000100103")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, catalog.lookups)
	assert.Contains(t, w.Body.String(), "Leite Integral 1L")

	// The cached entry expires.
	require.NoError(t, rdb.Del(context.Background(), "price:7891000100103").Err())
	w = get("7891000100103")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, catalog.lookups)

	w = get("0000000000000")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
