package service

import (
	"context"
	"testing"
	"time"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apperr"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionOpen(t *testing.T) {
	repo := newStubSessionRepo()
	svc := NewSessionService(repo)
	cashierID := uuid.New()

	resp, err := svc.Open(context.Background(), cashierID, dto.OpenSessionRequest{
		OpeningBalance: dec("150.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionOpen, resp.Status)
	assert.True(t, resp.OpeningBalance.Equal(dec("150.00")))
	require.NotNil(t, resp.ExpectedBalance)
	assert.True(t, resp.ExpectedBalance.Equal(dec("150.00")))
}

func TestSessionOpenTwiceFails(t *testing.T) {
	repo := newStubSessionRepo()
	svc := NewSessionService(repo)
	cashierID := uuid.New()

	_, err := svc.Open(context.Background(), cashierID, dto.OpenSessionRequest{})
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), cashierID, dto.OpenSessionRequest{})
	require.ErrorIs(t, err, apperr.ErrAlreadyOpen)
}

func TestSessionOpenDifferentCashiers(t *testing.T) {
	repo := newStubSessionRepo()
	svc := NewSessionService(repo)

	_, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{})
	require.NoError(t, err)
	_, err = svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{})
	require.NoError(t, err)
}

func TestSessionClose(t *testing.T) {
	repo := newStubSessionRepo()
	svc := NewSessionService(repo)

	opened, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		OpeningBalance: dec("100.00"),
	})
	require.NoError(t, err)
	id, _ := uuid.Parse(opened.ID)

	// The declared balance is recorded as-is even when it disagrees with the
	// ledger; reconciliation is a reporting concern.
	closed, err := svc.Close(context.Background(), id, dto.CloseSessionRequest{
		ClosingBalance: dec("95.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionClosed, closed.Status)
	require.NotNil(t, closed.ClosingBalance)
	assert.True(t, closed.ClosingBalance.Equal(dec("95.00")))
	require.NotNil(t, closed.ExpectedBalance)
	assert.True(t, closed.ExpectedBalance.Equal(dec("100.00")))
	assert.NotNil(t, closed.ClosedAt)
}

func TestSessionCloseTwiceFails(t *testing.T) {
	repo := newStubSessionRepo()
	svc := NewSessionService(repo)

	opened, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{})
	require.NoError(t, err)
	id, _ := uuid.Parse(opened.ID)

	_, err = svc.Close(context.Background(), id, dto.CloseSessionRequest{})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), id, dto.CloseSessionRequest{})
	require.ErrorIs(t, err, apperr.ErrAlreadyClosed)
}

func TestSessionCloseConcurrentLoserGetsAlreadyClosed(t *testing.T) {
	repo := newStubSessionRepo()
	svc := NewSessionService(repo)

	opened, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{OpeningBalance: dec("100.00")})
	require.NoError(t, err)
	id, _ := uuid.Parse(opened.ID)

	closed, err := svc.Close(context.Background(), id, dto.CloseSessionRequest{ClosingBalance: dec("95.00")})
	require.NoError(t, err)

	// A second closer read the session before the first one committed, so
	// its pre-check still sees OPEN. The guarded update must reject it so
	// the recorded closing balance is never overwritten.
	repo.staleOpenReads = 1
	_, err = svc.Close(context.Background(), id, dto.CloseSessionRequest{ClosingBalance: dec("999.99")})
	require.ErrorIs(t, err, apperr.ErrAlreadyClosed)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, model.SessionClosed, got.Status)
	require.NotNil(t, got.ClosingBalance)
	assert.True(t, got.ClosingBalance.Equal(*closed.ClosingBalance), "first closer's balance must stand")
	assert.True(t, got.ClosingBalance.Equal(dec("95.00")))
}

func TestSessionCloseNotFound(t *testing.T) {
	svc := NewSessionService(newStubSessionRepo())
	_, err := svc.Close(context.Background(), uuid.New(), dto.CloseSessionRequest{})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSessionExpectedBalanceFollowsLedger(t *testing.T) {
	repo := newStubSessionRepo()
	svc := NewSessionService(repo)
	cashierID := uuid.New()

	opened, err := svc.Open(context.Background(), cashierID, dto.OpenSessionRequest{
		OpeningBalance: dec("50.00"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.RecordMovement(context.Background(), dto.CashMovementRequest{
		SessionID: opened.ID,
		Type:      model.CashMovementManualIn,
		Amount:    dec("30.00"),
		Reason:    "change replenishment",
	}))
	require.NoError(t, svc.RecordMovement(context.Background(), dto.CashMovementRequest{
		SessionID: opened.ID,
		Type:      model.CashMovementManualOut,
		Amount:    dec("10.00"),
		Reason:    "supplier payout",
	}))

	current, err := svc.FindOpen(context.Background(), cashierID)
	require.NoError(t, err)
	require.NotNil(t, current.ExpectedBalance)
	assert.True(t, current.ExpectedBalance.Equal(dec("70.00")), "expected = %s", current.ExpectedBalance)
}

func TestSessionRecordMovementOnClosedFails(t *testing.T) {
	repo := newStubSessionRepo()
	svc := NewSessionService(repo)

	session := &model.RegisterSession{
		ID:        uuid.New(),
		CashierID: uuid.New(),
		Status:    model.SessionClosed,
		OpenedAt:  time.Now(),
	}
	repo.sessions[session.ID] = session

	err := svc.RecordMovement(context.Background(), dto.CashMovementRequest{
		SessionID: session.ID.String(),
		Type:      model.CashMovementManualIn,
		Amount:    dec("5.00"),
		Reason:    "late deposit",
	})
	require.ErrorIs(t, err, apperr.ErrAlreadyClosed)
}

func TestSessionRecordMovementRejectsNonPositive(t *testing.T) {
	repo := newStubSessionRepo()
	svc := NewSessionService(repo)

	opened, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{})
	require.NoError(t, err)

	err = svc.RecordMovement(context.Background(), dto.CashMovementRequest{
		SessionID: opened.ID,
		Type:      model.CashMovementManualIn,
		Amount:    dec("0"),
		Reason:    "noop",
	})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
}
