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

type StockLedger interface {
	ApplyMovement(ctx context.Context, input dto.MovementInput) (*domain.StockMovement, error)
	ListMovements(ctx context.Context, componentID int, limit int) ([]domain.StockMovement, error)
	ListLowStock(ctx context.Context, companyID int) ([]domain.Component, error)
}

type StockController struct {
	ledger StockLedger
	logger *zap.Logger
}

func NewStockController(ledger StockLedger, logger *zap.Logger) *StockController {
	return &StockController{
		ledger: ledger,
		logger: logger,
	}
}

// RecordDelivery handles POST /components/{componentId}/deliveries.
func (c *StockController) RecordDelivery(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	componentID, ok := c.componentIDParam(w, traceID, r)
	if !ok {
		return
	}

	var req dto.DeliveryRequest
	if !c.decodeAndValidate(w, traceID, r, &req) {
		return
	}

	movement, err := c.ledger.ApplyMovement(r.Context(), dto.MovementInput{
		ComponentID:    componentID,
		CompanyID:      req.CompanyID,
		Kind:           domain.MovementDelivery,
		QuantityChange: req.Quantity,
		Description:    req.Description,
	})
	if err != nil {
		c.handleServiceError(w, traceID, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMovementDTO(movement))
}

// RecordSale handles POST /components/{componentId}/sales. Consumption outside
// of an order is allowed; fulfillment flows pass the originating order id.
func (c *StockController) RecordSale(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	componentID, ok := c.componentIDParam(w, traceID, r)
	if !ok {
		return
	}

	var req dto.SaleRequest
	if !c.decodeAndValidate(w, traceID, r, &req) {
		return
	}

	movement, err := c.ledger.ApplyMovement(r.Context(), dto.MovementInput{
		ComponentID:    componentID,
		CompanyID:      req.CompanyID,
		Kind:           domain.MovementSale,
		QuantityChange: -req.Quantity,
		Description:    req.Description,
		OrderID:        req.OrderID,
	})
	if err != nil {
		c.handleServiceError(w, traceID, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMovementDTO(movement))
}

// RecordWriteOff handles POST /components/{componentId}/write-offs.
func (c *StockController) RecordWriteOff(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	componentID, ok := c.componentIDParam(w, traceID, r)
	if !ok {
		return
	}

	var req dto.WriteOffRequest
	if !c.decodeAndValidate(w, traceID, r, &req) {
		return
	}

	movement, err := c.ledger.ApplyMovement(r.Context(), dto.MovementInput{
		ComponentID:    componentID,
		CompanyID:      req.CompanyID,
		Kind:           domain.MovementWriteOff,
		QuantityChange: -req.Quantity,
		Description:    req.Reason,
	})
	if err != nil {
		c.handleServiceError(w, traceID, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMovementDTO(movement))
}

// RecordPriceChange handles POST /components/{componentId}/price-changes.
func (c *StockController) RecordPriceChange(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	componentID, ok := c.componentIDParam(w, traceID, r)
	if !ok {
		return
	}

	var req dto.PriceChangeRequest
	if !c.decodeAndValidate(w, traceID, r, &req) {
		return
	}

	movement, err := c.ledger.ApplyMovement(r.Context(), dto.MovementInput{
		ComponentID:    componentID,
		CompanyID:      req.CompanyID,
		Kind:           domain.MovementPriceChange,
		NewCostPrice:   req.NewCostPrice,
		NewRetailPrice: req.NewRetailPrice,
	})
	if err != nil {
		c.handleServiceError(w, traceID, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMovementDTO(movement))
}

// ListMovements handles GET /components/{componentId}/movements.
func (c *StockController) ListMovements(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	componentID, ok := c.componentIDParam(w, traceID, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	movements, err := c.ledger.ListMovements(r.Context(), componentID, limit)
	if err != nil {
		c.handleServiceError(w, traceID, err)
		return
	}

	dtos := make([]dto.MovementDTO, 0, len(movements))
	for i := range movements {
		dtos = append(dtos, toMovementDTO(&movements[i]))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// ListLowStock handles GET /components/low-stock?companyId=N.
func (c *StockController) ListLowStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	companyID, err := strconv.Atoi(r.URL.Query().Get("companyId"))
	if err != nil || companyID <= 0 {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "companyId must be a positive integer", nil)
		return
	}

	components, err := c.ledger.ListLowStock(r.Context(), companyID)
	if err != nil {
		c.handleServiceError(w, traceID, err)
		return
	}

	dtos := make([]dto.LowStockComponentDTO, 0, len(components))
	for _, comp := range components {
		dtos = append(dtos, dto.LowStockComponentDTO{
			ComponentID: comp.ID,
			Name:        comp.Name,
			Quantity:    comp.Quantity,
			MinQuantity: comp.MinQuantity,
		})
	}

	writeJSON(w, http.StatusOK, dtos)
}

func (c *StockController) componentIDParam(w http.ResponseWriter, traceID string, r *http.Request) (int, bool) {
	componentID, err := strconv.Atoi(chi.URLParam(r, "componentId"))
	if err != nil || componentID <= 0 {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "componentId must be a positive integer", nil)
		return 0, false
	}
	return componentID, true
}

func (c *StockController) decodeAndValidate(w http.ResponseWriter, traceID string, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		c.logger.Warn("invalid JSON body", zap.String("traceId", traceID), zap.Error(err))
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return false
	}

	if err := commons.ValidateStruct(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return false
	}

	return true
}

func (c *StockController) handleServiceError(w http.ResponseWriter, traceID string, err error) {
	if nf, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", nf.Message, nil)
		return
	}
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}
	if ie, ok := apperrors.IsInvariantError(err); ok {
		writeError(w, traceID, http.StatusConflict, "INVARIANT_VIOLATION", ie.Message, nil)
		return
	}

	c.logger.Error("stock operation failed", zap.String("traceId", traceID), zap.Error(err))
	writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "stock operation failed", nil)
}

func toMovementDTO(m *domain.StockMovement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:             m.ID,
		ComponentID:    m.ComponentID,
		Kind:           string(m.Kind),
		QuantityChange: m.QuantityChange,
		BalanceAfter:   m.BalanceAfter,
		Description:    m.Description,
		OrderID:        m.OrderID,
		CreatedAt:      m.CreatedAt,
	}
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
