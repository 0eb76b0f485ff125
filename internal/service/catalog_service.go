package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apperr"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService covers catalog reads for the POS plus the management CRUD.
// Stock is never edited directly here: manual corrections go through
// AdjustStock so every change lands in the stock ledger.
type CatalogService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	ListLowStock(ctx context.Context) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, userID uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	ListStockMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type catalogService struct {
	repo      repository.ProductRepository
	stockRepo repository.StockMovementRepository
}

func NewCatalogService(repo repository.ProductRepository, stockRepo repository.StockMovementRepository) CatalogService {
	return &catalogService{repo: repo, stockRepo: stockRepo}
}

func (s *catalogService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("price must be positive: %w", apperr.ErrInvalidArgument)
	}
	p := &model.Product{
		Barcode:   req.Barcode,
		SKU:       req.SKU,
		Name:      req.Name,
		Price:     req.Price,
		CostPrice: req.CostPrice,
		Stock:     req.Stock,
		MinStock:  req.MinStock,
		Active:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return productToResponse(p), nil
}

func (s *catalogService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("barcode %s: %w", barcode, apperr.ErrNotFound)
	}
	return productToResponse(p), nil
}

func (s *catalogService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *catalogService) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return items, nil
}

func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	if req.Barcode != nil {
		p.Barcode = *req.Barcode
	}
	if req.SKU != nil {
		p.SKU = req.SKU
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

// AdjustStock applies a manual correction under the same locking discipline
// as a sale and records an ADJUST movement.
func (s *catalogService) AdjustStock(ctx context.Context, id uuid.UUID, userID uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	var adjusted *model.Product
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
		}
		if req.Delta < 0 {
			if err := s.repo.DecrementStockTx(tx, id, -req.Delta); err != nil {
				return fmt.Errorf("product %q: %w", p.Name, err)
			}
		} else {
			if err := s.repo.RestoreStockTx(tx, id, req.Delta); err != nil {
				return err
			}
		}

		actor := userID
		mov := &model.StockMovement{
			ProductID:   id,
			Type:        model.StockMovementAdjust,
			Quantity:    req.Delta,
			StockBefore: p.Stock,
			StockAfter:  p.Stock + req.Delta,
			Reason:      req.Reason,
			UserID:      &actor,
		}
		if err := s.stockRepo.CreateTx(tx, mov); err != nil {
			return err
		}

		p.Stock += req.Delta
		adjusted = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return productToResponse(adjusted), nil
}

func (s *catalogService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *catalogService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return s.repo.Reactivate(ctx, id)
}

// ListStockMovements pages through the stock ledger, newest first.
func (s *catalogService) ListStockMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	repoFilter := repository.StockMovementFilter{
		Type:  filter.Type,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.ProductID != "" {
		pid, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", apperr.ErrInvalidArgument)
		}
		repoFilter.ProductID = &pid
	}
	if repoFilter.Page < 1 {
		repoFilter.Page = 1
	}
	if repoFilter.Limit < 1 {
		repoFilter.Limit = 100
	}

	movements, total, err := s.stockRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, *stockMovementToResponse(&movements[i]))
	}
	return &dto.StockMovementListResponse{
		Data:  items,
		Total: total,
		Page:  repoFilter.Page,
		Limit: repoFilter.Limit,
	}, nil
}

func stockMovementToResponse(m *model.StockMovement) *dto.StockMovementResponse {
	resp := &dto.StockMovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		Type:        m.Type,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reason:      m.Reason,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
	if m.ReferenceID != nil {
		ref := m.ReferenceID.String()
		resp.ReferenceID = &ref
	}
	if m.UserID != nil {
		uid := m.UserID.String()
		resp.UserID = &uid
	}
	return resp
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID.String(),
		Barcode:   p.Barcode,
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price,
		CostPrice: p.CostPrice,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		Active:    p.Active,
	}
}
