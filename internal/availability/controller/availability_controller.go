package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bloomstock/internal/commons"
	"bloomstock/internal/dto"
	apperrors "bloomstock/internal/errors"
)

type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, companyID int, lines []dto.OrderLine) (*dto.AvailabilityReport, error)
}

type AvailabilityController struct {
	service AvailabilityChecker
	logger  *zap.Logger
}

func NewAvailabilityController(service AvailabilityChecker, logger *zap.Logger) *AvailabilityController {
	return &AvailabilityController{
		service: service,
		logger:  logger,
	}
}

func (c *AvailabilityController) Check(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CheckAvailabilityRequest
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

	report, err := c.service.CheckAvailability(r.Context(), req.CompanyID, req.Lines)
	if err != nil {
		logger.Error("availability check failed", zap.Error(err))
		writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "availability check failed", nil)
		return
	}

	writeJSON(w, http.StatusOK, report)
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
