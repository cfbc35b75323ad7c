package service

import (
	"context"
	"fmt"
	"time"

	"procurement/internal/model"
	"procurement/internal/policy"
	"procurement/internal/repository"
	"procurement/internal/sequence"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RequestItemInput struct {
	Name           string          `json:"name" binding:"required"`
	Quantity       int             `json:"quantity" binding:"required,min=1"`
	EstimatedPrice decimal.Decimal `json:"estimated_price"`
	Unit           string          `json:"unit"`
}

type CreateRequestInput struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description" binding:"required"`
	Items       []RequestItemInput `json:"items" binding:"required,min=1,dive"`
	Priority    string             `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Notes       string             `json:"notes"`
}

type RejectRequestInput struct {
	RejectionReason string `json:"rejection_reason"`
}

// RequestQuery holds the optional list filters taken from the query string
type RequestQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=pending approved rejected po_created delivered cancelled"`
	Department string `form:"department"`
	Priority   string `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

// --- Interface ---

type RequestService interface {
	CreateRequest(ctx context.Context, actor policy.Principal, input CreateRequestInput) (*RequestResponse, error)
	ListRequests(ctx context.Context, actor policy.Principal, query RequestQuery, page, limit int) ([]RequestResponse, int64, error)
	GetRequest(ctx context.Context, actor policy.Principal, id uuid.UUID) (*RequestResponse, error)
	ApproveRequest(ctx context.Context, actor policy.Principal, id uuid.UUID) (*RequestResponse, error)
	RejectRequest(ctx context.Context, actor policy.Principal, id uuid.UUID, input RejectRequestInput) (*RequestResponse, error)
}

type requestService struct {
	repo      repository.RequestRepository
	numbers   *sequence.Generator
	txManager repository.TransactionManager
	notifier  Notifier
	now       func() time.Time
}

func NewRequestService(
	repo repository.RequestRepository,
	numbers *sequence.Generator,
	txManager repository.TransactionManager,
	notifier Notifier,
) RequestService {
	return &requestService{
		repo:      repo,
		numbers:   numbers,
		txManager: txManager,
		notifier:  notifierOrNoop(notifier),
		now:       time.Now,
	}
}

// --- Implementation ---

func (s *requestService) CreateRequest(ctx context.Context, actor policy.Principal, input CreateRequestInput) (*RequestResponse, error) {
	if err := policy.Authorize(actor, policy.ActionCreateRequest, nil); err != nil {
		return nil, err
	}

	items := make([]model.RequestItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, model.RequestItem{
			Name:           item.Name,
			Quantity:       item.Quantity,
			EstimatedPrice: item.EstimatedPrice,
			Unit:           item.Unit,
		})
	}

	requester := &model.User{ID: actor.UserID, Department: actor.Department}
	req, err := model.NewProcurementRequest(requester, input.Title, input.Description, input.Priority, input.Notes, items)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := s.numbers.Next(txCtx, model.RequestNumberPrefix)
		if numErr != nil {
			return numErr
		}
		req.RequestNumber = number

		if createErr := s.repo.Create(txCtx, req); createErr != nil {
			return fmt.Errorf("failed to create request: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res, err := s.reload(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	publish(s.notifier, EventRequestCreated, res)
	return res, nil
}

func (s *requestService) ListRequests(ctx context.Context, actor policy.Principal, query RequestQuery, page, limit int) ([]RequestResponse, int64, error) {
	scope := policy.RequestScope(actor, query.Department)
	filter := repository.RequestFilter{
		RequesterID: scope.RequesterID,
		Department:  scope.Department,
		Status:      query.Status,
		Priority:    query.Priority,
	}

	requests, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}

	result := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, toRequestResponse(&requests[i]))
	}
	return result, total, nil
}

func (s *requestService) GetRequest(ctx context.Context, actor policy.Principal, id uuid.UUID) (*RequestResponse, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Request")
	}

	if err := policy.Authorize(actor, policy.ActionReadRequest, requestResource(req)); err != nil {
		return nil, err
	}

	res := toRequestResponse(req)
	return &res, nil
}

// ApproveRequest reports a missing request first, then a wrong status, and
// only then a department mismatch.
func (s *requestService) ApproveRequest(ctx context.Context, actor policy.Principal, id uuid.UUID) (*RequestResponse, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.repo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			return lookupError(findErr, "Request")
		}
		if req.Status != model.RequestStatusPending {
			return req.Approve(actor.UserID, s.now())
		}
		if authErr := policy.Authorize(actor, policy.ActionApproveRequest, requestResource(req)); authErr != nil {
			return authErr
		}

		if approveErr := req.Approve(actor.UserID, s.now()); approveErr != nil {
			return approveErr
		}
		if updateErr := s.repo.Update(txCtx, req); updateErr != nil {
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
	publish(s.notifier, EventRequestApproved, res)
	return res, nil
}

func (s *requestService) RejectRequest(ctx context.Context, actor policy.Principal, id uuid.UUID, input RejectRequestInput) (*RequestResponse, error) {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, findErr := s.repo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			return lookupError(findErr, "Request")
		}
		if req.Status != model.RequestStatusPending {
			return req.Reject(actor.UserID, s.now(), input.RejectionReason)
		}
		if authErr := policy.Authorize(actor, policy.ActionRejectRequest, requestResource(req)); authErr != nil {
			return authErr
		}

		if rejectErr := req.Reject(actor.UserID, s.now(), input.RejectionReason); rejectErr != nil {
			return rejectErr
		}
		if updateErr := s.repo.Update(txCtx, req); updateErr != nil {
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
	publish(s.notifier, EventRequestRejected, res)
	return res, nil
}

func (s *requestService) reload(ctx context.Context, id uuid.UUID) (*RequestResponse, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Request")
	}
	res := toRequestResponse(req)
	return &res, nil
}

func requestResource(req *model.ProcurementRequest) *policy.Resource {
	return &policy.Resource{OwnerID: req.RequesterID, Department: req.Department}
}
