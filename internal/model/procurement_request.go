package model

import (
	"strconv"
	"time"

	"procurement/internal/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request status values. Pending is the only initial state; rejected,
// delivered and cancelled are terminal.
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusPOCreated = "po_created"
	RequestStatusDelivered = "delivered"
	RequestStatusCancelled = "cancelled"
)

// Priority values
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidPriority reports whether p is a known priority
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// DefaultUnit is used when a line item omits its unit label
const DefaultUnit = "pcs"

// RequestNumberPrefix is the prefix of human-readable request numbers
const RequestNumberPrefix = "REQ"

// ProcurementRequest is a purchase request moving through approval to delivery
type ProcurementRequest struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestNumber      string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	Title              string          `gorm:"type:varchar(255);not null"`
	Description        string          `gorm:"type:text;not null"`
	Items              []RequestItem   `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	TotalEstimatedCost decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RequesterID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Requester          *User           `gorm:"foreignKey:RequesterID"`
	Department         string          `gorm:"type:varchar(255);not null;index"`
	Status             string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	Priority           string          `gorm:"type:varchar(10);not null;default:'medium';index"`
	ApprovedBy         *uuid.UUID      `gorm:"type:uuid"`
	Approver           *User           `gorm:"foreignKey:ApprovedBy"`
	ApprovedAt         *time.Time
	RejectedBy         *uuid.UUID `gorm:"type:uuid"`
	Rejecter           *User      `gorm:"foreignKey:RejectedBy"`
	RejectedAt         *time.Time
	RejectionReason    string     `gorm:"type:text"`
	PurchaseOrderID    *uuid.UUID `gorm:"type:uuid"`
	Notes              string     `gorm:"type:text"`
	CreatedAt          time.Time  `gorm:"index"`
	UpdatedAt          time.Time
}

// TableName keeps the collection name used by the rest of the system
func (ProcurementRequest) TableName() string {
	return "requests"
}

// RequestItem is a line item of a ProcurementRequest
type RequestItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position       int             `gorm:"not null"`
	Name           string          `gorm:"type:varchar(255);not null"`
	Quantity       int             `gorm:"not null"`
	EstimatedPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Unit           string          `gorm:"type:varchar(30);not null;default:'pcs'"`
}

// LineTotal is quantity times estimated price
func (i RequestItem) LineTotal() decimal.Decimal {
	return i.EstimatedPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewProcurementRequest builds a pending request owned by requester. The
// department is copied from the requester and the total is derived from items.
func NewProcurementRequest(requester *User, title, description, priority, notes string, items []RequestItem) (*ProcurementRequest, error) {
	if len(items) == 0 {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "items", Message: "at least one item is required"})
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "priority", Message: "must be one of low, medium, high, urgent"})
	}

	normalized := make([]RequestItem, len(items))
	for i, item := range items {
		if item.Quantity < 1 {
			return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: itemField(i, "quantity"), Message: "must be at least 1"})
		}
		if item.EstimatedPrice.IsNegative() {
			return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: itemField(i, "estimated_price"), Message: "must not be negative"})
		}
		if item.Unit == "" {
			item.Unit = DefaultUnit
		}
		item.Position = i
		normalized[i] = item
	}

	req := &ProcurementRequest{
		Title:       title,
		Description: description,
		Items:       normalized,
		RequesterID: requester.ID,
		Department:  requester.Department,
		Status:      RequestStatusPending,
		Priority:    priority,
		Notes:       notes,
	}
	req.TotalEstimatedCost = EstimatedTotal(req.Items)
	return req, nil
}

// EstimatedTotal sums quantity times estimated price across items
func EstimatedTotal(items []RequestItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Approve moves a pending request to approved
func (r *ProcurementRequest) Approve(by uuid.UUID, at time.Time) error {
	if r.Status != RequestStatusPending {
		return apperror.InvalidState("Request cannot be approved in current status")
	}
	r.Status = RequestStatusApproved
	r.ApprovedBy = &by
	r.ApprovedAt = &at
	return nil
}

// Reject moves a pending request to rejected
func (r *ProcurementRequest) Reject(by uuid.UUID, at time.Time, reason string) error {
	if r.Status != RequestStatusPending {
		return apperror.InvalidState("Request cannot be rejected in current status")
	}
	r.Status = RequestStatusRejected
	r.RejectedBy = &by
	r.RejectedAt = &at
	r.RejectionReason = reason
	return nil
}

// CanAcceptPurchaseOrder checks the preconditions of AttachPurchaseOrder
// without mutating the request.
func (r *ProcurementRequest) CanAcceptPurchaseOrder() error {
	if r.Status != RequestStatusApproved {
		return apperror.InvalidState("Can only create PO for approved requests")
	}
	if r.PurchaseOrderID != nil {
		return apperror.ErrAlreadyHasPO
	}
	return nil
}

// AttachPurchaseOrder links poID and moves the request to po_created
func (r *ProcurementRequest) AttachPurchaseOrder(poID uuid.UUID) error {
	if err := r.CanAcceptPurchaseOrder(); err != nil {
		return err
	}
	r.Status = RequestStatusPOCreated
	r.PurchaseOrderID = &poID
	return nil
}

// MarkDelivered follows the linked purchase order into delivered
func (r *ProcurementRequest) MarkDelivered() error {
	if r.Status != RequestStatusPOCreated {
		return apperror.InvalidState("Request cannot be marked delivered in current status")
	}
	r.Status = RequestStatusDelivered
	return nil
}

func itemField(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}
