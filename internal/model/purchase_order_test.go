package model

import (
	"errors"
	"testing"
	"time"

	"procurement/internal/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPurchaseOrderTotals(t *testing.T) {
	tests := []struct {
		name       string
		items      []PurchaseOrderItem
		tax        decimal.Decimal
		total      string
		grandTotal string
	}{
		{
			name:       "single item no tax",
			items:      []PurchaseOrderItem{{Name: "Paper", Quantity: 10, UnitPrice: decimal.RequireFromString("7.5")}},
			tax:        decimal.Zero,
			total:      "75",
			grandTotal: "75",
		},
		{
			name: "several items with tax",
			items: []PurchaseOrderItem{
				{Name: "Desk", Quantity: 2, UnitPrice: decimal.NewFromInt(250)},
				{Name: "Lamp", Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
			},
			tax:        decimal.RequireFromString("55.5"),
			total:      "559.97",
			grandTotal: "615.47",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po, err := NewPurchaseOrder(uuid.New(), uuid.New(), Supplier{Name: "Acme"}, tt.items, tt.tax, nil, "")
			require.NoError(t, err)

			assert.True(t, decimal.RequireFromString(tt.total).Equal(po.TotalAmount), "total %s", po.TotalAmount)
			assert.True(t, decimal.RequireFromString(tt.grandTotal).Equal(po.GrandTotal), "grand total %s", po.GrandTotal)
			for _, item := range po.Items {
				assert.True(t, item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Equal(item.TotalPrice))
			}
			assert.Equal(t, POStatusCreated, po.Status)
		})
	}
}

func TestNewPurchaseOrderIgnoresSuppliedTotals(t *testing.T) {
	items := []PurchaseOrderItem{{Name: "Paper", Quantity: 2, UnitPrice: decimal.NewFromInt(3), TotalPrice: decimal.NewFromInt(999)}}

	po, err := NewPurchaseOrder(uuid.New(), uuid.New(), Supplier{Name: "Acme"}, items, decimal.Zero, nil, "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6).Equal(po.Items[0].TotalPrice))
	assert.True(t, decimal.NewFromInt(6).Equal(po.TotalAmount))
}

func TestNewPurchaseOrderValidation(t *testing.T) {
	valid := []PurchaseOrderItem{{Name: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}

	tests := []struct {
		name     string
		supplier Supplier
		items    []PurchaseOrderItem
		tax      decimal.Decimal
		field    string
	}{
		{name: "missing supplier name", supplier: Supplier{}, items: valid, field: "supplier.name"},
		{name: "no items", supplier: Supplier{Name: "Acme"}, field: "items"},
		{name: "negative tax", supplier: Supplier{Name: "Acme"}, items: valid, tax: decimal.NewFromInt(-1), field: "tax"},
		{name: "zero quantity", supplier: Supplier{Name: "Acme"}, items: []PurchaseOrderItem{{Name: "A", Quantity: 0, UnitPrice: decimal.NewFromInt(1)}}, field: "items[0].quantity"},
		{name: "negative unit price", supplier: Supplier{Name: "Acme"}, items: []PurchaseOrderItem{{Name: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(-2)}}, field: "items[0].unit_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPurchaseOrder(uuid.New(), uuid.New(), tt.supplier, tt.items, tt.tax, nil, "")
			appErr, ok := apperror.As(err)
			require.True(t, ok)
			require.Len(t, appErr.Fields, 1)
			assert.Equal(t, tt.field, appErr.Fields[0].Field)
		})
	}
}

func TestPurchaseOrderMarkDelivered(t *testing.T) {
	po, err := NewPurchaseOrder(uuid.New(), uuid.New(), Supplier{Name: "Acme"},
		[]PurchaseOrderItem{{Name: "A", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}, decimal.Zero, nil, "")
	require.NoError(t, err)

	by := uuid.New()
	at := time.Now()
	require.NoError(t, po.MarkDelivered(by, at))
	assert.Equal(t, POStatusDelivered, po.Status)
	assert.Equal(t, by, *po.DeliveredBy)
	assert.Equal(t, at, *po.DeliveredAt)

	err = po.MarkDelivered(uuid.New(), time.Now())
	assert.True(t, errors.Is(err, apperror.ErrAlreadyDelivered))
	assert.Equal(t, by, *po.DeliveredBy)
}
