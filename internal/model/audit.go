package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audited actions
const (
	ActionCreateRequest       = "create_request"
	ActionApproveRequest      = "approve_request"
	ActionRejectRequest       = "reject_request"
	ActionCreatePurchaseOrder = "create_purchase_order"
	ActionMarkDelivered       = "mark_delivered"
	ActionUpdateUser          = "update_user"
	ActionDeleteUser          = "delete_user"
)

// Audited entity types
const (
	EntityUser          = "user"
	EntityRequest       = "request"
	EntityPurchaseOrder = "purchase_order"
)

// AuditLog is an append-only record of a successful state-changing call
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action     string         `gorm:"type:varchar(50);not null;index:idx_audit_action_created" json:"action"`
	EntityType string         `gorm:"type:varchar(20);not null" json:"entity_type"`
	EntityID   string         `gorm:"type:varchar(64);not null;index:idx_audit_entity_created" json:"entity_id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_user_created" json:"user_id"`
	UserName   string         `gorm:"type:varchar(255);not null" json:"user_name"`
	UserRole   string         `gorm:"type:varchar(20);not null" json:"user_role"`
	Changes    datatypes.JSON `gorm:"type:jsonb" json:"changes"`
	Method     string         `gorm:"type:varchar(10)" json:"method"`
	Path       string         `gorm:"type:varchar(255)" json:"path"`
	StatusCode int            `json:"status_code"`
	IPAddress  string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent  string         `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time      `gorm:"index:idx_audit_action_created;index:idx_audit_entity_created;index:idx_audit_user_created" json:"created_at"`
}
