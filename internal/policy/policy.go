// Package policy decides which principal may perform which action on which
// resource. It has no I/O; callers load the resource and pass in what matters.
package policy

import (
	"procurement/internal/apperror"
	"procurement/internal/model"

	"github.com/google/uuid"
)

// Principal is the authenticated caller
type Principal struct {
	UserID     uuid.UUID
	Name       string
	Email      string
	Role       string
	Department string
}

// IsAdmin reports whether the principal holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

type Action string

const (
	ActionCreateRequest       Action = "request:create"
	ActionReadRequest         Action = "request:read"
	ActionApproveRequest      Action = "request:approve"
	ActionRejectRequest       Action = "request:reject"
	ActionCreatePurchaseOrder Action = "purchase_order:create"
	ActionReadPurchaseOrder   Action = "purchase_order:read"
	ActionMarkDelivered       Action = "purchase_order:mark_delivered"
	ActionManageUsers         Action = "user:manage"
	ActionReadAuditLogs       Action = "audit:read"
	ActionManageOwnProfile    Action = "profile:manage"
)

// Resource carries the ownership attributes checked by Authorize. A nil
// resource is valid for actions that are not tied to a record.
type Resource struct {
	OwnerID    uuid.UUID
	Department string
}

// Authorize returns nil when p may perform action on res, and a Forbidden
// error otherwise.
func Authorize(p Principal, action Action, res *Resource) error {
	switch action {
	case ActionCreateRequest, ActionManageOwnProfile:
		return nil

	case ActionReadRequest:
		if res == nil {
			return forbidden()
		}
		switch p.Role {
		case model.RoleAdmin, model.RoleProcurement:
			return nil
		case model.RoleDeptHead:
			if res.Department == p.Department {
				return nil
			}
		case model.RoleRequester:
			if res.OwnerID == p.UserID {
				return nil
			}
		}
		return forbidden()

	case ActionApproveRequest, ActionRejectRequest:
		if p.Role == model.RoleAdmin {
			return nil
		}
		if p.Role != model.RoleDeptHead || res == nil {
			return forbidden()
		}
		if res.Department != p.Department {
			return apperror.Forbidden("You can only review requests from your department")
		}
		return nil

	case ActionCreatePurchaseOrder, ActionReadPurchaseOrder, ActionMarkDelivered:
		if p.Role == model.RoleAdmin || p.Role == model.RoleProcurement {
			return nil
		}
		return forbidden()

	case ActionManageUsers, ActionReadAuditLogs:
		if p.Role == model.RoleAdmin {
			return nil
		}
		return forbidden()
	}

	return forbidden()
}

// Scope narrows a request listing. A nil RequesterID or empty Department
// means no restriction on that attribute.
type Scope struct {
	RequesterID *uuid.UUID
	Department  string
}

// RequestScope returns the listing scope for p. department is the filter the
// caller asked for; it is honored only for roles that can see every request.
func RequestScope(p Principal, department string) Scope {
	switch p.Role {
	case model.RoleAdmin, model.RoleProcurement:
		return Scope{Department: department}
	case model.RoleDeptHead:
		return Scope{Department: p.Department}
	default:
		id := p.UserID
		return Scope{RequesterID: &id}
	}
}

func forbidden() error {
	return apperror.Forbidden("Access denied")
}
