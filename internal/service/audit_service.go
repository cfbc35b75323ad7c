package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"procurement/internal/config"
	"procurement/internal/metrics"
	"procurement/internal/model"
	"procurement/internal/policy"
	"procurement/internal/repository"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const defaultAuditTimeout = 5 * time.Second

// AuditEntry is one successful state-changing call to be recorded
type AuditEntry struct {
	Action     string
	EntityType string
	EntityID   string
	Actor      policy.Principal
	Changes    any
	Method     string
	Path       string
	StatusCode int
	IPAddress  string
	UserAgent  string
}

type AuditQuery struct {
	Action     string `form:"action"`
	EntityType string `form:"entity_type" binding:"omitempty,oneof=user request purchase_order"`
	EntityID   string `form:"entity_id"`
	UserID     string `form:"user_id" binding:"omitempty,uuid"`
}

type AuditService interface {
	// Record writes entry in the background. It never blocks on the store
	// and never reports failure to the caller.
	Record(ctx context.Context, entry AuditEntry)
	// Wait blocks until in-flight writes have finished
	Wait()
	ListAuditLogs(ctx context.Context, actor policy.Principal, filter repository.AuditFilter, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	repo    repository.AuditRepository
	logger  log.FieldLogger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAuditService(repo repository.AuditRepository, logger log.FieldLogger) AuditService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &auditService{repo: repo, logger: logger, timeout: defaultAuditTimeout}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	// detach so the write survives the request finishing
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		err := s.write(writeCtx, entry)
		metrics.AuditWrite(err)
		if err != nil {
			config.LogError(s.logger, "audit", "Record", "failed to write audit log", log.Fields{
				"action":      entry.Action,
				"entity_type": entry.EntityType,
				"entity_id":   entry.EntityID,
				"user_id":     entry.Actor.UserID.String(),
			}, err)
		}
	}()
}

func (s *auditService) write(ctx context.Context, entry AuditEntry) error {
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("failed to encode changes: %w", err)
	}

	return s.repo.Log(ctx, &model.AuditLog{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		UserID:     entry.Actor.UserID,
		UserName:   entry.Actor.Name,
		UserRole:   entry.Actor.Role,
		Changes:    datatypes.JSON(changes),
		Method:     entry.Method,
		Path:       entry.Path,
		StatusCode: entry.StatusCode,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	})
}

func (s *auditService) Wait() {
	s.wg.Wait()
}

func (s *auditService) ListAuditLogs(ctx context.Context, actor policy.Principal, filter repository.AuditFilter, page, limit int) ([]model.AuditLog, int64, error) {
	if err := policy.Authorize(actor, policy.ActionReadAuditLogs, nil); err != nil {
		return nil, 0, err
	}

	logs, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
