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
	"gorm.io/gorm"
)

type SessionService interface {
	// Open fails with AlreadyOpen when the cashier already has an OPEN session.
	Open(ctx context.Context, cashierID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	// Close records the declared closing balance without reconciling it
	// against the cash ledger; the report carries the expected drawer so
	// reporting can compare.
	Close(ctx context.Context, id uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error)
	FindOpen(ctx context.Context, cashierID uuid.UUID) (*dto.SessionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	List(ctx context.Context, page, limit int) (*dto.SessionListResponse, error)
	// RecordMovement appends a manual drawer movement to an open session.
	RecordMovement(ctx context.Context, req dto.CashMovementRequest) error
}

type sessionService struct {
	repo repository.SessionRepository
}

func NewSessionService(repo repository.SessionRepository) SessionService {
	return &sessionService{repo: repo}
}

func (s *sessionService) Open(ctx context.Context, cashierID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if cashierID == uuid.Nil {
		return nil, apperr.ErrUnauthenticated
	}
	if _, err := s.repo.FindOpenByCashier(ctx, cashierID); err == nil {
		return nil, fmt.Errorf("cashier already has an open session: %w", apperr.ErrAlreadyOpen)
	}

	session := &model.RegisterSession{
		CashierID:      cashierID,
		Status:         model.SessionOpen,
		OpeningBalance: req.OpeningBalance,
		Notes:          req.Notes,
		OpenedAt:       time.Now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		// The partial unique index catches the race the pre-check missed.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("cashier already has an open session: %w", apperr.ErrAlreadyOpen)
		}
		return nil, err
	}
	return s.buildResponse(ctx, session)
}

func (s *sessionService) Close(ctx context.Context, id uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
	}
	if session.Status != model.SessionOpen {
		return nil, fmt.Errorf("session %s: %w", id, apperr.ErrAlreadyClosed)
	}

	now := time.Now()
	closing := req.ClosingBalance
	session.Status = model.SessionClosed
	session.ClosingBalance = &closing
	session.ClosedAt = &now
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	// The guarded update carries the OPEN check into the write itself, so a
	// concurrent close that raced past the pre-check above still loses here.
	if err := s.repo.CloseSession(ctx, session); err != nil {
		if errors.Is(err, apperr.ErrAlreadyClosed) {
			return nil, fmt.Errorf("session %s: %w", id, apperr.ErrAlreadyClosed)
		}
		return nil, err
	}
	return s.buildResponse(ctx, session)
}

func (s *sessionService) FindOpen(ctx context.Context, cashierID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindOpenByCashier(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, session)
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
	}
	return s.buildResponse(ctx, session)
}

func (s *sessionService) List(ctx context.Context, page, limit int) (*dto.SessionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessions, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, *sessionToResponse(&sessions[i]))
	}
	return &dto.SessionListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *sessionService) RecordMovement(ctx context.Context, req dto.CashMovementRequest) error {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return fmt.Errorf("invalid session_id: %w", apperr.ErrInvalidArgument)
	}
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", sessionID, apperr.ErrNotFound)
	}
	if session.Status != model.SessionOpen {
		return fmt.Errorf("session %s: %w", sessionID, apperr.ErrAlreadyClosed)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("movement amount must be positive: %w", apperr.ErrInvalidArgument)
	}

	amount := req.Amount
	if req.Type == model.CashMovementManualOut {
		amount = amount.Neg()
	}
	reason := req.Reason
	return s.repo.CreateMovement(ctx, &model.CashMovement{
		SessionID: sessionID,
		Type:      req.Type,
		Amount:    amount,
		Reason:    &reason,
	})
}

// buildResponse attaches the expected drawer balance (opening + cash ledger).
func (s *sessionService) buildResponse(ctx context.Context, session *model.RegisterSession) (*dto.SessionResponse, error) {
	resp := sessionToResponse(session)
	sum, err := s.repo.SumMovements(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	expected := session.OpeningBalance.Add(sum)
	resp.ExpectedBalance = &expected
	return resp, nil
}

func sessionToResponse(session *model.RegisterSession) *dto.SessionResponse {
	movs := make([]dto.CashMovementResponse, 0, len(session.Movements))
	for _, m := range session.Movements {
		mov := dto.CashMovementResponse{
			ID:        m.ID.String(),
			Type:      m.Type,
			Amount:    m.Amount,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			mov.ReferenceID = &ref
		}
		movs = append(movs, mov)
	}

	resp := &dto.SessionResponse{
		ID:             session.ID.String(),
		CashierID:      session.CashierID.String(),
		Status:         session.Status,
		OpeningBalance: session.OpeningBalance,
		ClosingBalance: session.ClosingBalance,
		Notes:          session.Notes,
		Movements:      movs,
		OpenedAt:       session.OpenedAt.Format(time.RFC3339),
	}
	if session.ClosedAt != nil {
		t := session.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}
