package repository

import (
	"context"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apperr"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, s *model.RegisterSession) error
	// CreateSessionTx inserts inside the sale transaction (auto-open path).
	// The partial unique index on (cashier_id) WHERE status='OPEN' serializes
	// concurrent opens; losers see gorm.ErrDuplicatedKey.
	CreateSessionTx(tx *gorm.DB, s *model.RegisterSession) error
	FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*model.RegisterSession, error)
	FindOpenByCashierTx(tx *gorm.DB, cashierID uuid.UUID) (*model.RegisterSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error)
	List(ctx context.Context, page, limit int) ([]model.RegisterSession, int64, error)
	// CloseSession flips OPEN→CLOSED and records the declared balance in one
	// guarded update. Zero matched rows means another writer closed it first;
	// callers get ErrAlreadyClosed.
	CloseSession(ctx context.Context, s *model.RegisterSession) error

	// Cash ledger — append only, no update or delete.
	CreateMovement(ctx context.Context, m *model.CashMovement) error
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)
	SumMovements(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) CreateSession(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sessionRepo) CreateSessionTx(tx *gorm.DB, s *model.RegisterSession) error {
	return tx.Create(s).Error
}

func (r *sessionRepo) FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*model.RegisterSession, error) {
	return findOpen(r.db.WithContext(ctx), cashierID)
}

func (r *sessionRepo) FindOpenByCashierTx(tx *gorm.DB, cashierID uuid.UUID) (*model.RegisterSession, error) {
	return findOpen(tx, cashierID)
}

func findOpen(db *gorm.DB, cashierID uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := db.Where("cashier_id = ? AND status = ?", cashierID, model.SessionOpen).First(&s).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).Preload("Movements").First(&s, id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &s, nil
}

func (r *sessionRepo) List(ctx context.Context, page, limit int) ([]model.RegisterSession, int64, error) {
	var sessions []model.RegisterSession
	var total int64

	q := r.db.WithContext(ctx).Model(&model.RegisterSession{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("opened_at DESC").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}

func (r *sessionRepo) CloseSession(ctx context.Context, s *model.RegisterSession) error {
	res := r.db.WithContext(ctx).Model(&model.RegisterSession{}).
		Where("id = ? AND status = ?", s.ID, model.SessionOpen).
		Updates(map[string]interface{}{
			"status":          model.SessionClosed,
			"closing_balance": s.ClosingBalance,
			"closed_at":       s.ClosedAt,
			"notes":           s.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrAlreadyClosed
	}
	return nil
}

func (r *sessionRepo) CreateMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *sessionRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *sessionRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

// SumMovements totals the cash ledger for a session. Used by the session
// report to compute the expected drawer; the close itself never reconciles.
func (r *sessionRepo) SumMovements(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.CashMovement{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
