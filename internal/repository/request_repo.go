package repository

import (
	"context"

	"procurement/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows a request listing. RequesterID and Department come
// from the caller's policy scope; Status and Priority from query parameters.
type RequestFilter struct {
	RequesterID *uuid.UUID
	Department  string
	Status      string
	Priority    string
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.ProcurementRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error)
	List(ctx context.Context, filter RequestFilter, page, limit int) ([]model.ProcurementRequest, int64, error)
	Update(ctx context.Context, req *model.ProcurementRequest) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (r *requestRepository) Create(ctx context.Context, req *model.ProcurementRequest) error {
	return GetDB(ctx, r.db).Omit("Requester", "Approver", "Rejecter").Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	var req model.ProcurementRequest
	if err := GetDB(ctx, r.db).
		Preload("Items", orderedItems).
		Preload("Requester").
		Preload("Approver").
		Preload("Rejecter").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate locks the request row for the rest of the transaction.
// Relations are not loaded.
func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProcurementRequest, error) {
	var req model.ProcurementRequest
	if err := forUpdate(GetDB(ctx, r.db)).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter, page, limit int) ([]model.ProcurementRequest, int64, error) {
	var requests []model.ProcurementRequest
	var total int64

	query := GetDB(ctx, r.db).Model(&model.ProcurementRequest{})
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items", orderedItems).
		Preload("Requester").
		Preload("Approver").
		Preload("Rejecter").
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Update saves the request's own columns. Items are immutable after creation.
func (r *requestRepository) Update(ctx context.Context, req *model.ProcurementRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(req).Error
}
