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
	"bloomstock/internal/dto"
	apperrors "bloomstock/internal/errors"
)

type ReserveUseCase interface {
	ReserveForOrder(ctx context.Context, orderID uint, companyID int, lines []dto.OrderLine) (*dto.ReserveResult, error)
	ReleaseReservations(ctx context.Context, orderID uint) (*dto.ReleaseResult, error)
}

type Janitor interface {
	SweepExpiredReservations(ctx context.Context, maxAgeHours int, dryRun bool) (*dto.SweepReport, error)
	Stats(ctx context.Context) (*dto.ReservationStats, error)
}

type ReservationController struct {
	useCase ReserveUseCase
	janitor Janitor
	logger  *zap.Logger
}

func NewReservationController(useCase ReserveUseCase, janitor Janitor, logger *zap.Logger) *ReservationController {
	return &ReservationController{
		useCase: useCase,
		janitor: janitor,
		logger:  logger,
	}
}

// Reserve handles POST /orders/{orderId}/reservations. The response is
// all-or-nothing: 201 with the written rows, or 409 with the availability
// report when the order cannot be fully covered.
func (c *ReservationController) Reserve(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.orderIDParam(w, traceID, r)
	if !ok {
		return
	}

	var req dto.ReserveRequest
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

	result, err := c.useCase.ReserveForOrder(r.Context(), orderID, req.CompanyID, req.Lines)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	status := http.StatusCreated
	if !result.Reserved {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ReserveResponse{
		TraceID:   traceID,
		Result:    result,
		Timestamp: time.Now().UTC(),
	})
}

// Release handles DELETE /orders/{orderId}/reservations. Unconditional and
// idempotent; releasing an order with nothing held returns zero rows.
func (c *ReservationController) Release(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.orderIDParam(w, traceID, r)
	if !ok {
		return
	}

	result, err := c.useCase.ReleaseReservations(r.Context(), orderID)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Sweep handles POST /reservations/sweep, the operator-triggered janitor run.
func (c *ReservationController) Sweep(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SweepRequest
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

	report, err := c.janitor.SweepExpiredReservations(r.Context(), req.MaxAgeHours, req.DryRun)
	if err != nil {
		c.handleServiceError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Stats handles GET /reservations/stats.
func (c *ReservationController) Stats(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	stats, err := c.janitor.Stats(r.Context())
	if err != nil {
		c.handleServiceError(w, traceID, err, c.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (c *ReservationController) orderIDParam(w http.ResponseWriter, traceID string, r *http.Request) (uint, bool) {
	orderID, err := strconv.ParseUint(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil || orderID == 0 {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "orderId must be a positive integer", nil)
		return 0, false
	}
	return uint(orderID), true
}

func (c *ReservationController) handleServiceError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if nf, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", nf.Message, nil)
		return
	}
	if ce, ok := apperrors.IsConflictError(err); ok {
		writeError(w, traceID, http.StatusConflict, "CONFLICT", ce.Message, nil)
		return
	}
	if de, ok := apperrors.IsDeadlockError(err); ok {
		// Retryable: the client may resubmit the same request.
		writeError(w, traceID, http.StatusConflict, "DEADLOCK", de.Message, nil)
		return
	}
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}

	logger.Error("reservation operation failed", zap.Error(err))
	writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "reservation operation failed", nil)
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
