package handler

import (
	"net/http"
	"strconv"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apierror"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/middleware"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionsHandler struct{ svc service.SessionService }

func NewSessionsHandler(svc service.SessionService) *SessionsHandler {
	return &SessionsHandler{svc: svc}
}

// Open godoc
// @Summary      Open a register session
// @Description  A cashier may have at most one open session. Opening while one exists returns 409.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.OpenSessionRequest true "Opening balance"
// @Success      201  {object} dto.SessionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sessions [post]
func (h *SessionsHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	cashierID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Open(c.Request.Context(), cashierID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary      Close a register session
// @Description  Records the counted closing balance. The response carries the expected balance for reconciliation.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Session UUID"
// @Param        body body dto.CloseSessionRequest true "Counted closing balance"
// @Success      200  {object} dto.SessionResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sessions/{id}/close [post]
func (h *SessionsHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Current godoc
// @Summary  Get the caller's open session
// @Tags     sessions
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} dto.SessionResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/sessions/current [get]
func (h *SessionsHandler) Current(c *gin.Context) {
	claims := middleware.GetClaims(c)
	cashierID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.FindOpen(c.Request.Context(), cashierID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary  Get a session by id
// @Tags     sessions
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Session UUID"
// @Success  200 {object} dto.SessionResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/sessions/{id} [get]
func (h *SessionsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary  List register sessions
// @Tags     sessions
// @Produce  json
// @Security BearerAuth
// @Param    page  query int false "Page (default 1)"
// @Param    limit query int false "Page size (default 50)"
// @Success  200 {object} dto.SessionListResponse
// @Router   /v1/sessions [get]
func (h *SessionsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to list sessions"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordMovement godoc
// @Summary      Record a manual cash movement
// @Description  Appends a MANUAL_IN or MANUAL_OUT entry to an open session's cash ledger.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CashMovementRequest true "Movement"
// @Success      201
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sessions/movements [post]
func (h *SessionsHandler) RecordMovement(c *gin.Context) {
	var req dto.CashMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RecordMovement(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}
