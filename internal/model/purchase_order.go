package model

import (
	"strconv"
	"time"

	"procurement/internal/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase order status values. Only created and delivered are reachable
// through the API today; sent, confirmed and cancelled are modelled for
// supplier-side integrations.
const (
	POStatusCreated   = "created"
	POStatusSent      = "sent"
	POStatusConfirmed = "confirmed"
	POStatusDelivered = "delivered"
	POStatusCancelled = "cancelled"
)

// PONumberPrefix is the prefix of human-readable purchase order numbers
const PONumberPrefix = "PO"

// Supplier is stored inline on the purchase order
type Supplier struct {
	Name    string `gorm:"type:varchar(255);not null"`
	Contact string `gorm:"type:varchar(255)"`
	Email   string `gorm:"type:varchar(255)"`
	Address string `gorm:"type:text"`
}

// PurchaseOrder is issued against exactly one approved ProcurementRequest
type PurchaseOrder struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PONumber     string              `gorm:"column:po_number;type:varchar(20);uniqueIndex;not null"`
	RequestID    uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	Request      *ProcurementRequest `gorm:"foreignKey:RequestID"`
	Supplier     Supplier            `gorm:"embedded;embeddedPrefix:supplier_"`
	Items        []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Tax          decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal   decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	Status       string              `gorm:"type:varchar(20);not null;default:'created';index"`
	CreatedBy    uuid.UUID           `gorm:"type:uuid;not null"`
	Creator      *User               `gorm:"foreignKey:CreatedBy"`
	DeliveryDate *time.Time
	DeliveredAt  *time.Time
	DeliveredBy  *uuid.UUID `gorm:"type:uuid"`
	Deliverer    *User      `gorm:"foreignKey:DeliveredBy"`
	Notes        string     `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"index"`
	UpdatedAt    time.Time
}

// PurchaseOrderItem is a priced line of a PurchaseOrder
type PurchaseOrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position        int             `gorm:"not null"`
	Name            string          `gorm:"type:varchar(255);not null"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Unit            string          `gorm:"type:varchar(30);not null;default:'pcs'"`
}

// NewPurchaseOrder builds a created purchase order for requestID. Item totals,
// TotalAmount and GrandTotal are always derived here.
func NewPurchaseOrder(requestID, createdBy uuid.UUID, supplier Supplier, items []PurchaseOrderItem, tax decimal.Decimal, deliveryDate *time.Time, notes string) (*PurchaseOrder, error) {
	if supplier.Name == "" {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "supplier.name", Message: "is required"})
	}
	if len(items) == 0 {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "items", Message: "at least one item is required"})
	}
	if tax.IsNegative() {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "tax", Message: "must not be negative"})
	}

	priced := make([]PurchaseOrderItem, len(items))
	for i, item := range items {
		field := "items[" + strconv.Itoa(i) + "]."
		if item.Quantity < 1 {
			return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: field + "quantity", Message: "must be at least 1"})
		}
		if item.UnitPrice.IsNegative() {
			return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: field + "unit_price", Message: "must not be negative"})
		}
		if item.Unit == "" {
			item.Unit = DefaultUnit
		}
		item.Position = i
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		priced[i] = item
	}

	po := &PurchaseOrder{
		RequestID:    requestID,
		Supplier:     supplier,
		Items:        priced,
		Tax:          tax,
		Status:       POStatusCreated,
		CreatedBy:    createdBy,
		DeliveryDate: deliveryDate,
		Notes:        notes,
	}
	po.TotalAmount, po.GrandTotal = OrderTotals(po.Items, tax)
	return po, nil
}

// OrderTotals returns the sum of item totals and that sum plus tax
func OrderTotals(items []PurchaseOrderItem, tax decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total, total.Add(tax)
}

// MarkDelivered records delivery by the given user
func (po *PurchaseOrder) MarkDelivered(by uuid.UUID, at time.Time) error {
	if po.Status == POStatusDelivered {
		return apperror.ErrAlreadyDelivered
	}
	po.Status = POStatusDelivered
	po.DeliveredAt = &at
	po.DeliveredBy = &by
	return nil
}
