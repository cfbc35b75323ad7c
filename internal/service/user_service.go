package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement/internal/apperror"
	"procurement/internal/model"
	"procurement/internal/policy"
	"procurement/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Name       string `json:"name" binding:"required"`
	Role       string `json:"role" binding:"omitempty,oneof=requester dept_head procurement admin"`
	Department string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1"`
	Department *string `json:"department"`
}

type AdminUpdateUserRequest struct {
	Name       *string `json:"name"`
	Role       *string `json:"role" binding:"omitempty,oneof=requester dept_head procurement admin"`
	Department *string `json:"department"`
	Active     *bool   `json:"active"`
}

// UserResponse is the only outward representation of a user
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GetUser(ctx context.Context, actor policy.Principal, id uuid.UUID) (*UserResponse, error)
	UpdateProfile(ctx context.Context, actor policy.Principal, req UpdateProfileRequest) (*UserResponse, error)
	AdminUpdateUser(ctx context.Context, actor policy.Principal, id uuid.UUID, req AdminUpdateUserRequest) (*UserResponse, error)
	Deactivate(ctx context.Context, actor policy.Principal, id uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, actor policy.Principal, filter repository.UserFilter, page, limit int) ([]UserResponse, int64, error)
	ResolvePrincipal(ctx context.Context, id uuid.UUID) (policy.Principal, error)
}

type userService struct {
	repo   repository.UserRepository
	tokens TokenService
}

func NewUserService(repo repository.UserRepository, tokens TokenService) UserService {
	return &userService{repo: repo, tokens: tokens}
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
		Active:     user.Active,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperror.ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleRequester
	}
	if !model.ValidRole(role) {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "role", Message: "must be one of requester, dept_head, procurement, admin"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		Department:   strings.TrimSpace(req.Department),
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.authResponse(user)
}

// Login checks the account state before the password, so a disabled account
// is reported as such even when the password is wrong.
func (s *userService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Active {
		return nil, apperror.ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *userService) authResponse(user *model.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: toUserResponse(user), Token: token}, nil
}

// GetUser returns the actor's own record, or any record for an admin
func (s *userService) GetUser(ctx context.Context, actor policy.Principal, id uuid.UUID) (*UserResponse, error) {
	if actor.UserID != id {
		if err := policy.Authorize(actor, policy.ActionManageUsers, nil); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User")
	}
	res := toUserResponse(user)
	return &res, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor policy.Principal, req UpdateProfileRequest) (*UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionManageOwnProfile, nil); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, lookupError(err, "User")
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Department != nil {
		user.Department = strings.TrimSpace(*req.Department)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	res := toUserResponse(user)
	return &res, nil
}

func (s *userService) AdminUpdateUser(ctx context.Context, actor policy.Principal, id uuid.UUID, req AdminUpdateUserRequest) (*UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionManageUsers, nil); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User")
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		if !model.ValidRole(*req.Role) {
			return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "role", Message: "must be one of requester, dept_head, procurement, admin"})
		}
		user.Role = *req.Role
	}
	if req.Department != nil {
		user.Department = strings.TrimSpace(*req.Department)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	res := toUserResponse(user)
	return &res, nil
}

// Deactivate flips active off; the record and everything referencing it stay
func (s *userService) Deactivate(ctx context.Context, actor policy.Principal, id uuid.UUID) (*UserResponse, error) {
	if err := policy.Authorize(actor, policy.ActionManageUsers, nil); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User")
	}

	user.Active = false
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to deactivate user: %w", err)
	}
	res := toUserResponse(user)
	return &res, nil
}

func (s *userService) ListUsers(ctx context.Context, actor policy.Principal, filter repository.UserFilter, page, limit int) ([]UserResponse, int64, error) {
	if err := policy.Authorize(actor, policy.ActionManageUsers, nil); err != nil {
		return nil, 0, err
	}

	users, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}
	return responses, total, nil
}

// ResolvePrincipal reloads the user behind a session. Missing and inactive
// accounts are treated as unauthenticated.
func (s *userService) ResolvePrincipal(ctx context.Context, id uuid.UUID) (policy.Principal, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Principal{}, apperror.Unauthenticated("User not found")
		}
		return policy.Principal{}, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		return policy.Principal{}, apperror.ErrAccountDisabled
	}

	return policy.Principal{
		UserID:     user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
	}, nil
}
