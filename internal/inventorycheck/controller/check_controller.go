package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bloomstock/internal/commons"
	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
	apperrors "bloomstock/internal/errors"
)

type CheckService interface {
	CreateCheckSession(ctx context.Context, companyID int, auditor, comment string, lines []dto.CheckLineInput) (*domain.InventoryCheckSession, error)
	GetSession(ctx context.Context, sessionID uint, companyID int) (*domain.InventoryCheckSession, error)
	ApplySession(ctx context.Context, sessionID uint, companyID int) (*dto.ApplySessionResult, error)
}

type CheckController struct {
	service CheckService
	logger  *zap.Logger
}

func NewCheckController(service CheckService, logger *zap.Logger) *CheckController {
	return &CheckController{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /inventory-checks.
func (c *CheckController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateCheckSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}

	if err := commons.ValidateStruct(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}

	session, err := c.service.CreateCheckSession(r.Context(), req.CompanyID, req.Auditor, req.Comment, req.Lines)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionDTO(session))
}

// Get handles GET /inventory-checks/{sessionId}?companyId=N.
func (c *CheckController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	sessionID, companyID, ok := c.sessionParams(w, traceID, r)
	if !ok {
		return
	}

	session, err := c.service.GetSession(r.Context(), sessionID, companyID)
	if err != nil {
		c.handleServiceError(w, traceID, err, c.logger)
		return
	}

	writeJSON(w, http.StatusOK, toSessionDTO(session))
}

// Apply handles POST /inventory-checks/{sessionId}/apply?companyId=N.
func (c *CheckController) Apply(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	sessionID, companyID, ok := c.sessionParams(w, traceID, r)
	if !ok {
		return
	}

	result, err := c.service.ApplySession(r.Context(), sessionID, companyID)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (c *CheckController) sessionParams(w http.ResponseWriter, traceID string, r *http.Request) (uint, int, bool) {
	sessionID, err := strconv.ParseUint(chi.URLParam(r, "sessionId"), 10, 64)
	if err != nil || sessionID == 0 {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "sessionId must be a positive integer", nil)
		return 0, 0, false
	}

	companyID, err := strconv.Atoi(r.URL.Query().Get("companyId"))
	if err != nil || companyID <= 0 {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "companyId must be a positive integer", nil)
		return 0, 0, false
	}

	return uint(sessionID), companyID, true
}

func (c *CheckController) handleServiceError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if nf, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", nf.Message, nil)
		return
	}
	if ce, ok := apperrors.IsConflictError(err); ok {
		writeError(w, traceID, http.StatusConflict, "CONFLICT", ce.Message, nil)
		return
	}
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}

	logger.Error("inventory check operation failed", zap.Error(err))
	writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "inventory check operation failed", nil)
}

func toSessionDTO(session *domain.InventoryCheckSession) dto.CheckSessionDTO {
	out := dto.CheckSessionDTO{
		ID:        session.ID,
		CompanyID: session.CompanyID,
		Auditor:   session.Auditor,
		Comment:   session.Comment,
		Status:    session.Status,
		AppliedAt: session.AppliedAt,
		CreatedAt: session.CreatedAt,
	}
	for _, line := range session.Lines {
		out.Lines = append(out.Lines, dto.CheckLineDTO{
			ComponentID:     line.ComponentID,
			CurrentQuantity: line.CurrentQuantity,
			ActualQuantity:  line.ActualQuantity,
			Difference:      line.Difference,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, traceID string, status int, code, message string, details []apperrors.ValidationDetail) {
	writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}
