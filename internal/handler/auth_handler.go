package handler

import (
	"net/http"
	"time"

	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users        service.UserService
	auth         gin.HandlerFunc
	tokenTTL     time.Duration
	secureCookie bool
}

// NewAuthHandler sets up the routing dependencies for auth endpoints.
// auth is the authentication stage guarding the profile routes.
func NewAuthHandler(users service.UserService, auth gin.HandlerFunc, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	useJSONFieldNames()
	return &AuthHandler{users: users, auth: auth, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

// RegisterRoutes binds the endpoints to the /api group
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/auth")
	group.POST("/register", h.Register)
	group.POST("/login", h.Login)
	group.POST("/logout", h.Logout)

	group.GET("/profile", h.auth, h.GetProfile)
	group.PUT("/profile", h.auth, h.UpdateProfile)
}

// Register creates an account and signs it in
// @Summary      Register user
// @Description  Creates an account. Role defaults to requester.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration"
// @Success      201      {object}  response.Response{data=service.AuthResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		response.Abort(c, err)
		return
	}

	middleware.SetTokenCookie(c, res.Token, h.tokenTTL, h.secureCookie)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, res))
}

// Login authenticates by email and password
// @Summary      Login user
// @Description  Authenticates a user by email and password, returning a JWT token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.AuthResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		response.Abort(c, err)
		return
	}

	middleware.SetTokenCookie(c, res.Token, h.tokenTTL, h.secureCookie)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Logout clears the session cookie
// @Summary      Logout user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.secureCookie)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// GetProfile returns the authenticated user
// @Summary      Get profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object{user=service.UserResponse}}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), actor, actor.UserID)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"user": user}))
}

// UpdateProfile changes the caller's name or department
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateProfileRequest  true  "Profile fields"
// @Success      200      {object}  response.Response{data=object{user=service.UserResponse}}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req service.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), actor, req)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"user": user}))
}
