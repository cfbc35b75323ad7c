package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"procurement/internal/apperror"
	"procurement/internal/model"
	"procurement/internal/policy"
	"procurement/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserEnv() (UserService, *fakeUserRepo, TokenService) {
	repo := newFakeUserRepo()
	tokens := NewTokenService("test-secret", time.Hour)
	return NewUserService(repo, tokens), repo, tokens
}

func register(t *testing.T, svc UserService, email, password, role, department string) *AuthResponse {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterRequest{
		Email:      email,
		Password:   password,
		Name:       "User " + email,
		Role:       role,
		Department: department,
	})
	require.NoError(t, err)
	return res
}

func adminPrincipal(t *testing.T, svc UserService) policy.Principal {
	t.Helper()
	admin := register(t, svc, "admin@ella.com", "admin123", model.RoleAdmin, "Administration")
	p, err := svc.ResolvePrincipal(context.Background(), admin.User.ID)
	require.NoError(t, err)
	return p
}

func TestRegister(t *testing.T) {
	svc, repo, tokens := newUserEnv()

	res := register(t, svc, "  Ella@Ella.com ", "ella123", "", "")
	assert.Equal(t, "ella@ella.com", res.User.Email)
	assert.Equal(t, model.RoleRequester, res.User.Role)
	assert.Equal(t, "", res.User.Department)
	assert.True(t, res.User.Active)

	stored, err := repo.GetByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "ella123", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)

	subject, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserEnv()
	register(t, svc, "ella@ella.com", "ella123", "", "Operations")

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ELLA@ella.com", Password: "other123", Name: "Other"})
	assert.True(t, errors.Is(err, apperror.ErrDuplicateEmail))
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus())
}

func TestLogin(t *testing.T) {
	svc, _, _ := newUserEnv()
	register(t, svc, "ella@ella.com", "ella123", "", "Operations")
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		expected error
	}{
		{"valid credentials", "ella@ella.com", "ella123", nil},
		{"email is case insensitive", "Ella@Ella.com", "ella123", nil},
		{"wrong password", "ella@ella.com", "nope", apperror.ErrInvalidCredentials},
		{"unknown email", "ghost@ella.com", "ella123", apperror.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, LoginRequest{Email: tt.email, Password: tt.password})
			if tt.expected == nil {
				require.NoError(t, err)
				assert.NotEmpty(t, res.Token)
				return
			}
			assert.True(t, errors.Is(err, tt.expected))
			assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
		})
	}
}

func TestDeactivatedUserCannotAuthenticate(t *testing.T) {
	svc, _, _ := newUserEnv()
	ctx := context.Background()
	admin := adminPrincipal(t, svc)
	user := register(t, svc, "john.doe@ella.com", "john123", "", "IT")

	deactivated, err := svc.Deactivate(ctx, admin, user.User.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	_, err = svc.Login(ctx, LoginRequest{Email: "john.doe@ella.com", Password: "john123"})
	assert.True(t, errors.Is(err, apperror.ErrAccountDisabled))

	_, err = svc.ResolvePrincipal(ctx, user.User.ID)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	// the record is kept
	kept, err := svc.GetUser(ctx, admin, user.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "john.doe@ella.com", kept.Email)
}

func TestResolvePrincipal(t *testing.T) {
	svc, _, _ := newUserEnv()
	user := register(t, svc, "depthead@ella.com", "dept123", model.RoleDeptHead, "Operations")

	p, err := svc.ResolvePrincipal(context.Background(), user.User.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.Principal{
		UserID:     user.User.ID,
		Name:       user.User.Name,
		Email:      "depthead@ella.com",
		Role:       model.RoleDeptHead,
		Department: "Operations",
	}, p)

	_, err = svc.ResolvePrincipal(context.Background(), uuid.New())
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newUserEnv()
	ctx := context.Background()
	user := register(t, svc, "ella@ella.com", "ella123", "", "Operations")
	p, err := svc.ResolvePrincipal(ctx, user.User.ID)
	require.NoError(t, err)

	name := "Ella Updated"
	res, err := svc.UpdateProfile(ctx, p, UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ella Updated", res.Name)
	assert.Equal(t, "Operations", res.Department)
	assert.Equal(t, model.RoleRequester, res.Role)

	dept := "Finance"
	res, err = svc.UpdateProfile(ctx, p, UpdateProfileRequest{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Ella Updated", res.Name)
	assert.Equal(t, "Finance", res.Department)
}

func TestAdminUpdateUser(t *testing.T) {
	svc, _, _ := newUserEnv()
	ctx := context.Background()
	admin := adminPrincipal(t, svc)
	user := register(t, svc, "ella@ella.com", "ella123", "", "Operations")

	role := model.RoleDeptHead
	res, err := svc.AdminUpdateUser(ctx, admin, user.User.ID, AdminUpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, model.RoleDeptHead, res.Role)
	assert.Equal(t, "Operations", res.Department)
	assert.Equal(t, user.User.Name, res.Name)

	empty := ""
	inactive := false
	res, err = svc.AdminUpdateUser(ctx, admin, user.User.ID, AdminUpdateUserRequest{Name: &empty, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, user.User.Name, res.Name)
	assert.False(t, res.Active)

	bogus := "superuser"
	_, err = svc.AdminUpdateUser(ctx, admin, user.User.ID, AdminUpdateUserRequest{Role: &bogus})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.AdminUpdateUser(ctx, admin, uuid.New(), AdminUpdateUserRequest{Role: &role})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestUserAdministrationIsAdminOnly(t *testing.T) {
	svc, _, _ := newUserEnv()
	ctx := context.Background()
	user := register(t, svc, "procurement@ella.com", "proc123", model.RoleProcurement, "Procurement")
	other := register(t, svc, "ella@ella.com", "ella123", "", "Operations")
	p, err := svc.ResolvePrincipal(ctx, user.User.ID)
	require.NoError(t, err)

	_, _, err = svc.ListUsers(ctx, p, repository.UserFilter{}, 1, 10)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	_, err = svc.GetUser(ctx, p, other.User.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	_, err = svc.Deactivate(ctx, p, other.User.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	self, err := svc.GetUser(ctx, p, user.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "procurement@ella.com", self.Email)
}

func TestListUsersFilters(t *testing.T) {
	svc, _, _ := newUserEnv()
	ctx := context.Background()
	admin := adminPrincipal(t, svc)
	register(t, svc, "ella@ella.com", "ella123", "", "Operations")
	john := register(t, svc, "john.doe@ella.com", "john123", "", "IT")
	register(t, svc, "procurement@ella.com", "proc123", model.RoleProcurement, "Procurement")

	_, err := svc.Deactivate(ctx, admin, john.User.ID)
	require.NoError(t, err)

	active := true
	inactive := false
	tests := []struct {
		name     string
		filter   repository.UserFilter
		expected int64
	}{
		{"all", repository.UserFilter{}, 4},
		{"requesters", repository.UserFilter{Role: model.RoleRequester}, 2},
		{"active requesters", repository.UserFilter{Role: model.RoleRequester, Active: &active}, 1},
		{"inactive", repository.UserFilter{Active: &inactive}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := svc.ListUsers(ctx, admin, tt.filter, 1, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, total)
			assert.Len(t, users, int(tt.expected))
		})
	}
}
