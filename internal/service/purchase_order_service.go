package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"procurement/internal/apperror"
	"procurement/internal/model"
	"procurement/internal/policy"
	"procurement/internal/repository"
	"procurement/internal/sequence"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type SupplierInput struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

type PurchaseOrderItemInput struct {
	Name      string          `json:"name" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Unit      string          `json:"unit"`
}

// CreatePurchaseOrderInput is the body of create-po. DeliveryDate accepts
// either a calendar date (2006-01-02) or an RFC 3339 timestamp.
type CreatePurchaseOrderInput struct {
	Supplier     SupplierInput            `json:"supplier"`
	Items        []PurchaseOrderItemInput `json:"items" binding:"required,min=1,dive"`
	Tax          decimal.Decimal          `json:"tax"`
	DeliveryDate string                   `json:"delivery_date"`
	Notes        string                   `json:"notes"`
}

type PurchaseOrderQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=created sent confirmed delivered cancelled"`
}

// --- Interface ---

type PurchaseOrderService interface {
	CreatePurchaseOrder(ctx context.Context, actor policy.Principal, requestID uuid.UUID, input CreatePurchaseOrderInput) (*PurchaseOrderResponse, error)
	MarkDelivered(ctx context.Context, actor policy.Principal, id uuid.UUID) (*PurchaseOrderResponse, error)
	ListPurchaseOrders(ctx context.Context, actor policy.Principal, query PurchaseOrderQuery, page, limit int) ([]PurchaseOrderResponse, int64, error)
	GetPurchaseOrder(ctx context.Context, actor policy.Principal, id uuid.UUID) (*PurchaseOrderResponse, error)
}

type purchaseOrderService struct {
	poRepo      repository.PurchaseOrderRepository
	requestRepo repository.RequestRepository
	numbers     *sequence.Generator
	txManager   repository.TransactionManager
	notifier    Notifier
	now         func() time.Time
}

func NewPurchaseOrderService(
	poRepo repository.PurchaseOrderRepository,
	requestRepo repository.RequestRepository,
	numbers *sequence.Generator,
	txManager repository.TransactionManager,
	notifier Notifier,
) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:      poRepo,
		requestRepo: requestRepo,
		numbers:     numbers,
		txManager:   txManager,
		notifier:    notifierOrNoop(notifier),
		now:         time.Now,
	}
}

// --- Implementation ---

// CreatePurchaseOrder issues a PO for an approved request. The request row is
// locked for the duration so it can only ever receive one PO.
func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, actor policy.Principal, requestID uuid.UUID, input CreatePurchaseOrderInput) (*PurchaseOrderResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreatePurchaseOrder, nil); err != nil {
		return nil, err
	}

	deliveryDate, err := parseDeliveryDate(input.DeliveryDate)
	if err != nil {
		return nil, err
	}

	items := make([]model.PurchaseOrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, model.PurchaseOrderItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Unit:      item.Unit,
		})
	}
	supplier := model.Supplier{
		Name:    strings.TrimSpace(input.Supplier.Name),
		Contact: input.Supplier.Contact,
		Email:   input.Supplier.Email,
		Address: input.Supplier.Address,
	}

	var po *model.PurchaseOrder
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.requestRepo.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			return lookupError(findErr, "Request")
		}
		if checkErr := req.CanAcceptPurchaseOrder(); checkErr != nil {
			return checkErr
		}

		var buildErr error
		po, buildErr = model.NewPurchaseOrder(req.ID, actor.UserID, supplier, items, input.Tax, deliveryDate, input.Notes)
		if buildErr != nil {
			return buildErr
		}

		number, numErr := s.numbers.Next(txCtx, model.PONumberPrefix)
		if numErr != nil {
			return numErr
		}
		po.PONumber = number

		if createErr := s.poRepo.Create(txCtx, po); createErr != nil {
			return fmt.Errorf("failed to create purchase order: %w", createErr)
		}

		if attachErr := req.AttachPurchaseOrder(po.ID); attachErr != nil {
			return attachErr
		}
		if updateErr := s.requestRepo.Update(txCtx, req); updateErr != nil {
			return fmt.Errorf("failed to link purchase order to request: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res, err := s.reload(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	publish(s.notifier, EventPurchaseOrderCreated, res)
	return res, nil
}

// MarkDelivered records delivery and moves the linked request to delivered
// in the same transaction.
func (s *purchaseOrderService) MarkDelivered(ctx context.Context, actor policy.Principal, id uuid.UUID) (*PurchaseOrderResponse, error) {
	if err := policy.Authorize(actor, policy.ActionMarkDelivered, nil); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		po, findErr := s.poRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			return lookupError(findErr, "Purchase order")
		}
		if deliverErr := po.MarkDelivered(actor.UserID, s.now()); deliverErr != nil {
			return deliverErr
		}
		if updateErr := s.poRepo.Update(txCtx, po); updateErr != nil {
			return fmt.Errorf("failed to update purchase order: %w", updateErr)
		}

		req, reqErr := s.requestRepo.FindByIDForUpdate(txCtx, po.RequestID)
		if reqErr != nil {
			return lookupError(reqErr, "Request")
		}
		if deliverErr := req.MarkDelivered(); deliverErr != nil {
			return deliverErr
		}
		if updateErr := s.requestRepo.Update(txCtx, req); updateErr != nil {
			return fmt.Errorf("failed to update request: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	publish(s.notifier, EventPurchaseOrderDelivered, res)
	return res, nil
}

func (s *purchaseOrderService) ListPurchaseOrders(ctx context.Context, actor policy.Principal, query PurchaseOrderQuery, page, limit int) ([]PurchaseOrderResponse, int64, error) {
	if err := policy.Authorize(actor, policy.ActionReadPurchaseOrder, nil); err != nil {
		return nil, 0, err
	}

	orders, total, err := s.poRepo.List(ctx, repository.PurchaseOrderFilter{Status: query.Status}, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	result := make([]PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		result = append(result, toPurchaseOrderResponse(&orders[i]))
	}
	return result, total, nil
}

func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, actor policy.Principal, id uuid.UUID) (*PurchaseOrderResponse, error) {
	if err := policy.Authorize(actor, policy.ActionReadPurchaseOrder, nil); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *purchaseOrderService) reload(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Purchase order")
	}
	res := toPurchaseOrderResponse(po)
	return &res, nil
}

func parseDeliveryDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.Validation("Validation failed", apperror.FieldError{
		Field:   "delivery_date",
		Message: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp",
	})
}
