package service

import (
	"context"
	"testing"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apperr"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture(products ...*model.Product) (CatalogService, *stubProductRepo, *stubStockMovementRepo) {
	productRepo := newStubProductRepo(products...)
	stockRepo := &stubStockMovementRepo{}
	return NewCatalogService(productRepo, stockRepo), productRepo, stockRepo
}

func TestCatalogCreate(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Barcode: "7891000100103",
		Name:    "Leite Integral 1L",
		Price:   dec("5.49"),
		Stock:   24,
	})
	require.NoError(t, err)
	assert.Equal(t, "Leite Integral 1L", resp.Name)
	assert.True(t, resp.Active)
}

func TestCatalogCreateRejectsNonPositivePrice(t *testing.T) {
	svc, _, _ := newCatalogFixture()

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Barcode: "7891000100103",
		Name:    "Gratis",
		Price:   dec("0"),
	})
	require.Error(t, err)
}

func TestCatalogGetByBarcode(t *testing.T) {
	p := product("Cafe Torrado 500g", "16.90", 5)
	p.Barcode = "7891031404706"
	svc, _, _ := newCatalogFixture(p)

	resp, err := svc.GetByBarcode(context.Background(), "7891031404706")
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), resp.ID)

	_, err = svc.GetByBarcode(context.Background(), "0000000000000")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCatalogGetByBarcodeSkipsInactive(t *testing.T) {
	p := product("Descontinuado", "2.00", 0)
	p.Barcode = "7891910000197"
	p.Active = false
	svc, _, _ := newCatalogFixture(p)

	_, err := svc.GetByBarcode(context.Background(), "7891910000197")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCatalogListLowStock(t *testing.T) {
	low := product("Acucar Refinado 1kg", "4.29", 2)
	low.MinStock = 5
	ok := product("Arroz Branco 5kg", "24.50", 30)
	ok.MinStock = 5
	svc, _, _ := newCatalogFixture(low, ok)

	resp, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, low.ID.String(), resp[0].ID)
}

func TestCatalogUpdate(t *testing.T) {
	p := product("Leite", "5.00", 10)
	svc, repo, _ := newCatalogFixture(p)

	name := "Leite Integral 1L"
	price := dec("5.99")
	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Name:  &name,
		Price: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Name)
	assert.True(t, resp.Price.Equal(price))
	assert.Equal(t, 10, resp.Stock, "update must not touch stock")

	stored, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, name, stored.Name)
}

func TestCatalogAdjustStockPositive(t *testing.T) {
	p := product("Leite Integral 1L", "5.49", 10)
	svc, _, stockRepo := newCatalogFixture(p)
	userID := uuid.New()

	resp, err := svc.AdjustStock(context.Background(), p.ID, userID, dto.AdjustStockRequest{
		Delta:  15,
		Reason: "delivery received",
	})
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Stock)
	assert.Equal(t, 25, p.Stock)

	require.Len(t, stockRepo.movements, 1)
	mov := stockRepo.movements[0]
	assert.Equal(t, model.StockMovementAdjust, mov.Type)
	assert.Equal(t, 15, mov.Quantity)
	assert.Equal(t, 10, mov.StockBefore)
	assert.Equal(t, 25, mov.StockAfter)
	require.NotNil(t, mov.UserID)
	assert.Equal(t, userID, *mov.UserID)
}

func TestCatalogAdjustStockNegative(t *testing.T) {
	p := product("Leite Integral 1L", "5.49", 10)
	svc, _, stockRepo := newCatalogFixture(p)

	resp, err := svc.AdjustStock(context.Background(), p.ID, uuid.New(), dto.AdjustStockRequest{
		Delta:  -4,
		Reason: "breakage",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Stock)
	require.Len(t, stockRepo.movements, 1)
	assert.Equal(t, -4, stockRepo.movements[0].Quantity)
}

func TestCatalogAdjustStockCannotGoNegative(t *testing.T) {
	p := product("Leite Integral 1L", "5.49", 3)
	svc, _, stockRepo := newCatalogFixture(p)

	_, err := svc.AdjustStock(context.Background(), p.ID, uuid.New(), dto.AdjustStockRequest{
		Delta:  -5,
		Reason: "miscount",
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 3, p.Stock)
	assert.Empty(t, stockRepo.movements)
}

func TestCatalogListStockMovements(t *testing.T) {
	p := product("Leite Integral 1L", "5.49", 10)
	other := product("Cafe Torrado 500g", "16.90", 10)
	svc, _, _ := newCatalogFixture(p, other)

	_, err := svc.AdjustStock(context.Background(), p.ID, uuid.New(), dto.AdjustStockRequest{
		Delta: 5, Reason: "delivery",
	})
	require.NoError(t, err)
	_, err = svc.AdjustStock(context.Background(), other.ID, uuid.New(), dto.AdjustStockRequest{
		Delta: -2, Reason: "breakage",
	})
	require.NoError(t, err)

	all, err := svc.ListStockMovements(context.Background(), dto.StockMovementFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	filtered, err := svc.ListStockMovements(context.Background(), dto.StockMovementFilter{
		ProductID: p.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, filtered.Data, 1)
	assert.Equal(t, p.ID.String(), filtered.Data[0].ProductID)

	_, err = svc.ListStockMovements(context.Background(), dto.StockMovementFilter{
		ProductID: "not-a-uuid",
	})
	require.Error(t, err)
}

func TestCatalogDeactivateReactivate(t *testing.T) {
	p := product("Leite Integral 1L", "5.49", 10)
	svc, _, _ := newCatalogFixture(p)

	require.NoError(t, svc.Deactivate(context.Background(), p.ID))
	assert.False(t, p.Active)

	require.NoError(t, svc.Reactivate(context.Background(), p.ID))
	assert.True(t, p.Active)

	require.ErrorIs(t, svc.Deactivate(context.Background(), uuid.New()), apperr.ErrNotFound)
}
