package service

import (
	"context"
	"errors"
	"time"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apperr"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. With a nil *gorm.DB the services run their
// transaction bodies directly, so the stubs see every call the real
// repositories would.

type stubProductRepo struct {
	products     map[uuid.UUID]*model.Product
	decrementErr error
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	m := make(map[uuid.UUID]*model.Product, len(products))
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		m[p.ID] = p
	}
	return &stubProductRepo{products: m}
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode && p.Active {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock <= p.MinStock {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	if r.decrementErr != nil {
		return r.decrementErr
	}
	p, ok := r.products[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if p.Stock < qty {
		return apperr.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *stubProductRepo) RestoreStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return apperr.ErrNotFound
	}
	p.Stock += qty
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubSaleRepo struct {
	sales     map[uuid.UUID]*model.Sale
	createErr error
	// staleReads > 0 makes FindByID report COMPLETED regardless of the
	// stored status, modelling a canceller whose unlocked pre-check read
	// the sale before a concurrent cancel committed.
	staleReads int
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if r.createErr != nil {
		return r.createErr
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *s
	if r.staleReads > 0 {
		r.staleReads--
		cp.Status = model.SaleStatusCompleted
	}
	return &cp, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) TransitionStatusTx(_ *gorm.DB, id uuid.UUID, from, to string) error {
	s, ok := r.sales[id]
	if !ok || s.Status != from {
		return apperr.ErrConflict
	}
	s.Status = to
	return nil
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

type stubSessionRepo struct {
	sessions  map[uuid.UUID]*model.RegisterSession
	movements []model.CashMovement
	// duplicateOnCreate simulates losing the auto-open race: the first create
	// fails with a unique violation and the winner's session appears.
	duplicateOnCreate *model.RegisterSession
	// staleOpenReads > 0 makes FindByID report OPEN regardless of the stored
	// status, modelling a closer whose pre-check read before a concurrent
	// close committed.
	staleOpenReads int
}

func newStubSessionRepo(sessions ...*model.RegisterSession) *stubSessionRepo {
	m := make(map[uuid.UUID]*model.RegisterSession, len(sessions))
	for _, s := range sessions {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		m[s.ID] = s
	}
	return &stubSessionRepo{sessions: m}
}

func (r *stubSessionRepo) create(s *model.RegisterSession) error {
	if r.duplicateOnCreate != nil {
		winner := r.duplicateOnCreate
		r.duplicateOnCreate = nil
		if winner.ID == uuid.Nil {
			winner.ID = uuid.New()
		}
		r.sessions[winner.ID] = winner
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range r.sessions {
		if existing.CashierID == s.CashierID && existing.Status == model.SessionOpen {
			return gorm.ErrDuplicatedKey
		}
	}
	s.ID = uuid.New()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *stubSessionRepo) CreateSession(_ context.Context, s *model.RegisterSession) error {
	return r.create(s)
}

func (r *stubSessionRepo) CreateSessionTx(_ *gorm.DB, s *model.RegisterSession) error {
	return r.create(s)
}

func (r *stubSessionRepo) findOpen(cashierID uuid.UUID) (*model.RegisterSession, error) {
	for _, s := range r.sessions {
		if s.CashierID == cashierID && s.Status == model.SessionOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *stubSessionRepo) FindOpenByCashier(_ context.Context, cashierID uuid.UUID) (*model.RegisterSession, error) {
	return r.findOpen(cashierID)
}

func (r *stubSessionRepo) FindOpenByCashierTx(_ *gorm.DB, cashierID uuid.UUID) (*model.RegisterSession, error) {
	return r.findOpen(cashierID)
}

func (r *stubSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *s
	if r.staleOpenReads > 0 {
		r.staleOpenReads--
		cp.Status = model.SessionOpen
	}
	return &cp, nil
}

func (r *stubSessionRepo) List(_ context.Context, _, _ int) ([]model.RegisterSession, int64, error) {
	out := make([]model.RegisterSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSessionRepo) CloseSession(_ context.Context, s *model.RegisterSession) error {
	stored, ok := r.sessions[s.ID]
	if !ok || stored.Status != model.SessionOpen {
		return apperr.ErrAlreadyClosed
	}
	stored.Status = model.SessionClosed
	stored.ClosingBalance = s.ClosingBalance
	stored.ClosedAt = s.ClosedAt
	stored.Notes = s.Notes
	return nil
}

func (r *stubSessionRepo) CreateMovement(_ context.Context, m *model.CashMovement) error {
	m.ID = uuid.New()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubSessionRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	m.ID = uuid.New()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubSessionRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var out []model.CashMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubSessionRepo) SumMovements(_ context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			sum = sum.Add(m.Amount)
		}
	}
	return sum, nil
}

var _ repository.SessionRepository = (*stubSessionRepo)(nil)

type stubStockMovementRepo struct {
	movements []model.StockMovement
	createErr error
}

func (r *stubStockMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	return r.CreateTx(nil, m)
}

func (r *stubStockMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if r.createErr != nil {
		return r.createErr
	}
	m.ID = uuid.New()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubStockMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.StockMovementRepository = (*stubStockMovementRepo)(nil)

var errStubFailure = errors.New("stub failure")
