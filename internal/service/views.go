package service

import (
	"time"

	"procurement/internal/model"

	"github.com/google/uuid"
)

// UserSummary is the short form of a user embedded in other responses
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
}

type RequestItemResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	EstimatedPrice float64   `json:"estimated_price"`
	Unit           string    `json:"unit"`
}

type RequestResponse struct {
	ID                 uuid.UUID             `json:"id"`
	RequestNumber      string                `json:"request_number"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Items              []RequestItemResponse `json:"items"`
	TotalEstimatedCost float64               `json:"total_estimated_cost"`
	RequesterID        uuid.UUID             `json:"requester_id"`
	Requester          *UserSummary          `json:"requester,omitempty"`
	Department         string                `json:"department"`
	Status             string                `json:"status"`
	Priority           string                `json:"priority"`
	ApprovedBy         *uuid.UUID            `json:"approved_by"`
	Approver           *UserSummary          `json:"approver,omitempty"`
	ApprovedAt         *time.Time            `json:"approved_at"`
	RejectedBy         *uuid.UUID            `json:"rejected_by"`
	Rejecter           *UserSummary          `json:"rejecter,omitempty"`
	RejectedAt         *time.Time            `json:"rejected_at"`
	RejectionReason    string                `json:"rejection_reason,omitempty"`
	PurchaseOrderID    *uuid.UUID            `json:"purchase_order_id"`
	Notes              string                `json:"notes,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// RequestSummary is the short form of a request embedded in a purchase order
type RequestSummary struct {
	ID            uuid.UUID `json:"id"`
	RequestNumber string    `json:"request_number"`
	Title         string    `json:"title"`
	Department    string    `json:"department"`
	Status        string    `json:"status"`
}

type SupplierResponse struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

type PurchaseOrderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	TotalPrice float64   `json:"total_price"`
	Unit       string    `json:"unit"`
}

type PurchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	PONumber     string                      `json:"po_number"`
	RequestID    uuid.UUID                   `json:"request_id"`
	Request      *RequestSummary             `json:"request,omitempty"`
	Supplier     SupplierResponse            `json:"supplier"`
	Items        []PurchaseOrderItemResponse `json:"items"`
	TotalAmount  float64                     `json:"total_amount"`
	Tax          float64                     `json:"tax"`
	GrandTotal   float64                     `json:"grand_total"`
	Status       string                      `json:"status"`
	CreatedBy    uuid.UUID                   `json:"created_by"`
	Creator      *UserSummary                `json:"creator,omitempty"`
	DeliveryDate *time.Time                  `json:"delivery_date"`
	DeliveredAt  *time.Time                  `json:"delivered_at"`
	DeliveredBy  *uuid.UUID                  `json:"delivered_by"`
	Deliverer    *UserSummary                `json:"deliverer,omitempty"`
	Notes        string                      `json:"notes,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func toUserSummary(user *model.User) *UserSummary {
	if user == nil {
		return nil
	}
	return &UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, Department: user.Department}
}

func toRequestResponse(req *model.ProcurementRequest) RequestResponse {
	items := make([]RequestItemResponse, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, RequestItemResponse{
			ID:             item.ID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			EstimatedPrice: item.EstimatedPrice.InexactFloat64(),
			Unit:           item.Unit,
		})
	}

	return RequestResponse{
		ID:                 req.ID,
		RequestNumber:      req.RequestNumber,
		Title:              req.Title,
		Description:        req.Description,
		Items:              items,
		TotalEstimatedCost: req.TotalEstimatedCost.InexactFloat64(),
		RequesterID:        req.RequesterID,
		Requester:          toUserSummary(req.Requester),
		Department:         req.Department,
		Status:             req.Status,
		Priority:           req.Priority,
		ApprovedBy:         req.ApprovedBy,
		Approver:           toUserSummary(req.Approver),
		ApprovedAt:         req.ApprovedAt,
		RejectedBy:         req.RejectedBy,
		Rejecter:           toUserSummary(req.Rejecter),
		RejectedAt:         req.RejectedAt,
		RejectionReason:    req.RejectionReason,
		PurchaseOrderID:    req.PurchaseOrderID,
		Notes:              req.Notes,
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
	}
}

func toPurchaseOrderResponse(po *model.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, 0, len(po.Items))
	for _, item := range po.Items {
		items = append(items, PurchaseOrderItemResponse{
			ID:         item.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.InexactFloat64(),
			TotalPrice: item.TotalPrice.InexactFloat64(),
			Unit:       item.Unit,
		})
	}

	res := PurchaseOrderResponse{
		ID:        po.ID,
		PONumber:  po.PONumber,
		RequestID: po.RequestID,
		Supplier: SupplierResponse{
			Name:    po.Supplier.Name,
			Contact: po.Supplier.Contact,
			Email:   po.Supplier.Email,
			Address: po.Supplier.Address,
		},
		Items:        items,
		TotalAmount:  po.TotalAmount.InexactFloat64(),
		Tax:          po.Tax.InexactFloat64(),
		GrandTotal:   po.GrandTotal.InexactFloat64(),
		Status:       po.Status,
		CreatedBy:    po.CreatedBy,
		Creator:      toUserSummary(po.Creator),
		DeliveryDate: po.DeliveryDate,
		DeliveredAt:  po.DeliveredAt,
		DeliveredBy:  po.DeliveredBy,
		Deliverer:    toUserSummary(po.Deliverer),
		Notes:        po.Notes,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
	if po.Request != nil {
		res.Request = &RequestSummary{
			ID:            po.Request.ID,
			RequestNumber: po.Request.RequestNumber,
			Title:         po.Request.Title,
			Department:    po.Request.Department,
			Status:        po.Request.Status,
		}
	}
	return res
}
