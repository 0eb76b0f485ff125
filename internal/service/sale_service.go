package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apperr"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// paymentTolerance absorbs rounding on the payment side: a sale is accepted
// when payments + 0.001 >= total. Overpayment is change for the customer and
// is never refunded from the drawer ledger.
var paymentTolerance = decimal.New(1, -3)

type SaleService interface {
	// FinalizeSale runs the whole sale as one transaction: validate lines,
	// lock and decrement stock, bind (or auto-open) the cashier's session,
	// persist the sale aggregate and append the ledger entries. Not
	// idempotent — resubmitting creates a second sale.
	FinalizeSale(ctx context.Context, cashierID uuid.UUID, req dto.FinalizeSaleRequest) (*dto.SaleResponse, error)
	// CancelSale restores stock and writes compensating ledger entries.
	CancelSale(ctx context.Context, id uuid.UUID, reason string) error
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	sessionRepo repository.SessionRepository
	stockRepo   repository.StockMovementRepository
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	sessionRepo repository.SessionRepository,
	stockRepo repository.StockMovementRepository,
) SaleService {
	return &saleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		sessionRepo: sessionRepo,
		stockRepo:   stockRepo,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *saleService) FinalizeSale(ctx context.Context, cashierID uuid.UUID, req dto.FinalizeSaleRequest) (*dto.SaleResponse, error) {
	if cashierID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("sale must contain at least one line: %w", apperr.ErrInvalidArgument)
	}
	if req.DiscountAmount.IsNegative() {
		return nil, fmt.Errorf("sale discount must not be negative: %w", apperr.ErrInvalidDiscount)
	}

	lineIDs := make([]uuid.UUID, len(req.Lines))
	for i, line := range req.Lines {
		pid, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id %q: %w", line.ProductID, apperr.ErrInvalidArgument)
		}
		if line.Discount.IsNegative() {
			return nil, fmt.Errorf("line discount must not be negative: %w", apperr.ErrInvalidDiscount)
		}
		lineIDs[i] = pid
	}

	paymentTotal := decimal.Zero
	for _, pay := range req.Payments {
		if !pay.Amount.IsPositive() {
			return nil, fmt.Errorf("payment amount must be positive")
		}
		paymentTotal = paymentTotal.Add(pay.Amount)
	}

	var sale model.Sale
	var change decimal.Decimal

	txErr := runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		session, err := s.ensureOpenSession(tx, cashierID)
		if err != nil {
			return err
		}

		// Lock the touched product rows in deterministic id order so that
		// concurrent multi-line sales cannot deadlock; sales on disjoint
		// products do not block each other.
		locked, err := s.lockProducts(tx, lineIDs)
		if err != nil {
			return err
		}

		// remaining tracks stock consumption across lines of the same product.
		remaining := make(map[uuid.UUID]int, len(locked))
		for id, p := range locked {
			remaining[id] = p.Stock
		}

		total := decimal.Zero
		lines := make([]model.SaleLine, 0, len(req.Lines))
		for i, lineReq := range req.Lines {
			p := locked[lineIDs[i]]

			if remaining[p.ID] < lineReq.Quantity {
				return fmt.Errorf("product %q has %d in stock, %d requested: %w",
					p.Name, p.Stock, lineReq.Quantity, apperr.ErrInsufficientStock)
			}
			remaining[p.ID] -= lineReq.Quantity

			gross := p.Price.Mul(decimal.NewFromInt(int64(lineReq.Quantity)))
			if lineReq.Discount.GreaterThan(gross) {
				return fmt.Errorf("line discount %s exceeds line gross %s for %q: %w",
					lineReq.Discount, gross, p.Name, apperr.ErrInvalidDiscount)
			}
			lineTotal := gross.Sub(lineReq.Discount)
			total = total.Add(lineTotal)

			// Snapshot name and price: the sale must render identically even
			// if the catalog entry is edited later.
			lines = append(lines, model.SaleLine{
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitPrice:   p.Price,
				Quantity:    lineReq.Quantity,
				Discount:    lineReq.Discount,
				Total:       lineTotal,
			})
		}

		if req.DiscountAmount.GreaterThan(total) {
			return fmt.Errorf("sale discount %s exceeds gross total %s: %w",
				req.DiscountAmount, total, apperr.ErrInvalidDiscount)
		}
		saleTotal := total.Sub(req.DiscountAmount)

		if paymentTotal.Add(paymentTolerance).LessThan(saleTotal) {
			return fmt.Errorf("payments %s do not cover sale total %s: %w",
				paymentTotal, saleTotal, apperr.ErrInsufficientPayment)
		}
		change = paymentTotal.Sub(saleTotal)
		if change.IsNegative() {
			change = decimal.Zero
		}

		// Decrement per product (lines of the same product aggregated). The
		// repository re-checks stock >= qty at decrement time under the row
		// lock taken above.
		for _, id := range distinctInOrder(lineIDs) {
			qty := locked[id].Stock - remaining[id]
			if err := s.productRepo.DecrementStockTx(tx, id, qty); err != nil {
				if errors.Is(err, apperr.ErrInsufficientStock) {
					return fmt.Errorf("product %q: %w", locked[id].Name, err)
				}
				return err
			}
		}

		sale = model.Sale{
			CashierID:      cashierID,
			SessionID:      session.ID,
			TotalAmount:    saleTotal,
			DiscountAmount: req.DiscountAmount,
			DiscountReason: req.DiscountReason,
			Status:         model.SaleStatusCompleted,
			Lines:          lines,
			Payments:       make([]model.Payment, 0, len(req.Payments)),
		}
		for _, pay := range req.Payments {
			sale.Payments = append(sale.Payments, model.Payment{Method: pay.Method, Amount: pay.Amount})
		}
		if err := s.saleRepo.CreateTx(tx, &sale); err != nil {
			return err
		}

		// One OUT movement per line. StockBefore/After follow the per-product
		// consumption so the ledger reads as a consistent sequence.
		consumed := make(map[uuid.UUID]int, len(locked))
		for _, line := range sale.Lines {
			before := locked[line.ProductID].Stock - consumed[line.ProductID]
			consumed[line.ProductID] += line.Quantity
			ref := sale.ID
			actor := cashierID
			mov := &model.StockMovement{
				ProductID:   line.ProductID,
				Type:        model.StockMovementOut,
				Quantity:    -line.Quantity,
				StockBefore: before,
				StockAfter:  before - line.Quantity,
				Reason:      "sale",
				ReferenceID: &ref,
				UserID:      &actor,
			}
			if err := s.stockRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		// One cash movement per CASH payment; card, PIX and transfer payments
		// do not touch the physical drawer.
		for _, pay := range sale.Payments {
			if pay.Method != model.PaymentCash {
				continue
			}
			ref := sale.ID
			mov := &model.CashMovement{
				SessionID:   session.ID,
				Type:        model.CashMovementSale,
				Amount:      pay.Amount,
				ReferenceID: &ref,
			}
			if err := s.sessionRepo.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("cashier_id", cashierID.String()).
		Str("total", sale.TotalAmount.String()).
		Int("lines", len(sale.Lines)).
		Msg("sale finalized")

	resp := saleToResponse(&sale)
	resp.Change = change
	return resp, nil
}

// ensureOpenSession finds the cashier's OPEN session or auto-opens one with
// opening balance 0; a sale never fails for lack of an explicit cash-open.
// The partial unique index serializes concurrent opens — a loser re-reads the
// winner's session and attaches to it.
func (s *saleService) ensureOpenSession(tx *gorm.DB, cashierID uuid.UUID) (*model.RegisterSession, error) {
	session, err := s.sessionRepo.FindOpenByCashierTx(tx, cashierID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	session = &model.RegisterSession{
		CashierID:      cashierID,
		Status:         model.SessionOpen,
		OpeningBalance: decimal.Zero,
		OpenedAt:       time.Now(),
	}
	createErr := s.sessionRepo.CreateSessionTx(tx, session)
	if createErr == nil {
		return session, nil
	}
	if errors.Is(createErr, gorm.ErrDuplicatedKey) {
		// Lost the open race — attach to the winner's session.
		if session, err = s.sessionRepo.FindOpenByCashierTx(tx, cashierID); err == nil {
			return session, nil
		}
		return nil, fmt.Errorf("concurrent session open: %w", apperr.ErrConflict)
	}
	return nil, createErr
}

// lockProducts resolves and row-locks every distinct product, sorted by id.
// Inactive products are not sellable and report as not found.
func (s *saleService) lockProducts(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Product, error) {
	ordered := distinctSorted(ids)
	locked := make(map[uuid.UUID]*model.Product, len(ordered))
	for _, id := range ordered {
		p, err := s.productRepo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
			}
			return nil, err
		}
		if !p.Active {
			return nil, fmt.Errorf("product %q is inactive: %w", p.Name, apperr.ErrNotFound)
		}
		locked[id] = p
	}
	return locked, nil
}

func (s *saleService) CancelSale(ctx context.Context, id uuid.UUID, reason string) error {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("sale %s: %w", id, apperr.ErrNotFound)
	}
	if sale.Status != model.SaleStatusCompleted {
		return fmt.Errorf("sale is %s, only completed sales can be cancelled: %w",
			sale.Status, apperr.ErrConflict)
	}

	return runTx(ctx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		// Guarded COMPLETED→CANCELLED flip first. The pre-check above reads
		// without a lock, so two cancellers can both see COMPLETED; the loser
		// matches zero rows here and bails before touching stock or ledgers.
		if err := s.saleRepo.TransitionStatusTx(tx, id, model.SaleStatusCompleted, model.SaleStatusCancelled); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				return fmt.Errorf("sale already cancelled: %w", err)
			}
			return err
		}

		// Restore stock per line and append compensating IN movements. The
		// original OUT entries are never touched.
		for _, line := range sale.Lines {
			p, err := s.productRepo.FindByIDForUpdateTx(tx, line.ProductID)
			if err != nil {
				return err
			}
			if err := s.productRepo.RestoreStockTx(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			ref := sale.ID
			mov := &model.StockMovement{
				ProductID:   line.ProductID,
				Type:        model.StockMovementIn,
				Quantity:    line.Quantity,
				StockBefore: p.Stock,
				StockAfter:  p.Stock + line.Quantity,
				Reason:      fmt.Sprintf("sale cancelled: %s", reason),
				ReferenceID: &ref,
			}
			if err := s.stockRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		// Inverse cash movements, cash payments only.
		for _, pay := range sale.Payments {
			if pay.Method != model.PaymentCash {
				continue
			}
			ref := sale.ID
			cancelReason := reason
			mov := &model.CashMovement{
				SessionID:   sale.SessionID,
				Type:        model.CashMovementCancel,
				Amount:      pay.Amount.Neg(),
				Reason:      &cancelReason,
				ReferenceID: &ref,
			}
			if err := s.sessionRepo.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", id, apperr.ErrNotFound)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func distinctSorted(ids []uuid.UUID) []uuid.UUID {
	out := distinctInOrder(ids)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && lessUUID(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func distinctInOrder(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func lessUUID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(s.Lines))
	for _, line := range s.Lines {
		lines = append(lines, dto.SaleLineResponse{
			ProductID:   line.ProductID.String(),
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Discount:    line.Discount,
			Total:       line.Total,
		})
	}
	payments := make([]dto.PaymentRequest, 0, len(s.Payments))
	for _, p := range s.Payments {
		payments = append(payments, dto.PaymentRequest{Method: p.Method, Amount: p.Amount})
	}
	return &dto.SaleResponse{
		ID:             s.ID.String(),
		CashierID:      s.CashierID.String(),
		SessionID:      s.SessionID.String(),
		Lines:          lines,
		Payments:       payments,
		TotalAmount:    s.TotalAmount,
		DiscountAmount: s.DiscountAmount,
		DiscountReason: s.DiscountReason,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
	}
}
