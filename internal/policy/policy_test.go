package policy

import (
	"testing"

	"procurement/internal/apperror"
	"procurement/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principal(role, department string) Principal {
	return Principal{UserID: uuid.New(), Name: role, Role: role, Department: department}
}

func TestAuthorize(t *testing.T) {
	requester := principal(model.RoleRequester, "Operations")
	otherRequester := principal(model.RoleRequester, "Operations")
	opsHead := principal(model.RoleDeptHead, "Operations")
	itHead := principal(model.RoleDeptHead, "IT")
	procurement := principal(model.RoleProcurement, "Procurement")
	admin := principal(model.RoleAdmin, "Administration")

	opsRequest := &Resource{OwnerID: requester.UserID, Department: "Operations"}

	tests := []struct {
		name    string
		p       Principal
		action  Action
		res     *Resource
		allowed bool
	}{
		{"anyone creates requests", requester, ActionCreateRequest, nil, true},
		{"anyone manages own profile", procurement, ActionManageOwnProfile, nil, true},

		{"requester reads own request", requester, ActionReadRequest, opsRequest, true},
		{"requester cannot read others request", otherRequester, ActionReadRequest, opsRequest, false},
		{"dept head reads own department", opsHead, ActionReadRequest, opsRequest, true},
		{"dept head cannot read other department", itHead, ActionReadRequest, opsRequest, false},
		{"procurement reads any request", procurement, ActionReadRequest, opsRequest, true},
		{"admin reads any request", admin, ActionReadRequest, opsRequest, true},

		{"dept head approves own department", opsHead, ActionApproveRequest, opsRequest, true},
		{"dept head cannot approve other department", itHead, ActionApproveRequest, opsRequest, false},
		{"dept head rejects own department", opsHead, ActionRejectRequest, opsRequest, true},
		{"admin approves anything", admin, ActionApproveRequest, opsRequest, true},
		{"requester cannot approve own request", requester, ActionApproveRequest, opsRequest, false},
		{"procurement cannot reject", procurement, ActionRejectRequest, opsRequest, false},

		{"procurement creates purchase orders", procurement, ActionCreatePurchaseOrder, nil, true},
		{"admin creates purchase orders", admin, ActionCreatePurchaseOrder, nil, true},
		{"dept head cannot create purchase orders", opsHead, ActionCreatePurchaseOrder, nil, false},
		{"requester cannot read purchase orders", requester, ActionReadPurchaseOrder, nil, false},
		{"procurement marks delivered", procurement, ActionMarkDelivered, nil, true},
		{"requester cannot mark delivered", requester, ActionMarkDelivered, nil, false},

		{"admin manages users", admin, ActionManageUsers, nil, true},
		{"procurement cannot manage users", procurement, ActionManageUsers, nil, false},
		{"admin reads audit logs", admin, ActionReadAuditLogs, nil, true},
		{"dept head cannot read audit logs", opsHead, ActionReadAuditLogs, nil, false},

		{"unknown action is denied", admin, Action("nope"), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.action, tt.res)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
		})
	}
}

func TestRequestScope(t *testing.T) {
	requester := principal(model.RoleRequester, "Operations")
	head := principal(model.RoleDeptHead, "Operations")

	tests := []struct {
		name       string
		p          Principal
		department string
		expected   Scope
	}{
		{"requester sees only own", requester, "IT", Scope{RequesterID: &requester.UserID}},
		{"dept head forced to own department", head, "IT", Scope{Department: "Operations"}},
		{"procurement may filter", principal(model.RoleProcurement, "Procurement"), "IT", Scope{Department: "IT"}},
		{"admin unfiltered", principal(model.RoleAdmin, "Administration"), "", Scope{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RequestScope(tt.p, tt.department))
		})
	}
}
