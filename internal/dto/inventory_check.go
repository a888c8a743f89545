package dto

import "time"

type CheckLineInput struct {
	ComponentID    int `json:"componentId" validate:"gt=0"`
	ActualQuantity int `json:"actualQuantity" validate:"gte=0"`
}

type CreateCheckSessionRequest struct {
	CompanyID int              `json:"companyId" validate:"gt=0"`
	Auditor   string           `json:"auditor" validate:"required"`
	Comment   string           `json:"comment"`
	Lines     []CheckLineInput `json:"lines" validate:"required,min=1,dive"`
}

type CheckSessionDTO struct {
	ID        uint           `json:"id"`
	CompanyID int            `json:"companyId"`
	Auditor   string         `json:"auditor"`
	Comment   string         `json:"comment,omitempty"`
	Status    string         `json:"status"`
	AppliedAt *time.Time     `json:"appliedAt,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Lines     []CheckLineDTO `json:"lines"`
}

type CheckLineDTO struct {
	ComponentID     int `json:"componentId"`
	CurrentQuantity int `json:"currentQuantity"`
	ActualQuantity  int `json:"actualQuantity"`
	Difference      int `json:"difference"`
}

type ApplySessionResult struct {
	SessionID        uint `json:"sessionId"`
	MovementsApplied int  `json:"movementsApplied"`
}
