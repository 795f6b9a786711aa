package http

import (
	"errors"
	"net/http"
	"time"

	"girlfanz/pkg/logger"
	"girlfanz/pkg/middleware"
	"girlfanz/services/auth/internal/entity"
	"girlfanz/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *logger.Logger
}

func NewAuthHandler(authUseCase usecase.AuthUseCase, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=fan creator"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AgeVerificationRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	AvatarURL     string     `json:"avatar_url"`
	Role          string     `json:"role"`
	AgeVerified   bool       `json:"age_verified"`
	AgeVerifiedAt *time.Time `json:"age_verified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type SubscriptionResponse struct {
	ViewerID  string     `json:"viewer_id"`
	CreatorID string     `json:"creator_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type SubscriptionsResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	Count         int                    `json:"count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Register godoc
// @Summary      Register
// @Description  Create a fan or creator account and return an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "InvalidRequest", Message: err.Error()})
		return
	}

	user, token, err := h.authUseCase.Register(c.Request.Context(), req.Email, req.Username, req.Password, entity.UserRole(req.Role))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Login godoc
// @Summary      Login
// @Description  Exchange email and password for an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "InvalidRequest", Message: err.Error()})
		return
	}

	user, token, err := h.authUseCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: toUserResponse(user)})
}

// Me godoc
// @Summary      Current user
// @Description  Profile of the authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUseCase.GetUser(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// SetAgeVerification godoc
// @Summary      Set age verification
// @Description  Record the outcome of the external age verification flow (admin only)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Param        request body AgeVerificationRequest true "Verification outcome"
// @Success      200  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{user_id}/age-verification [put]
func (h *AuthHandler) SetAgeVerification(c *gin.Context) {
	ids, ok := pathIDs(c, "user_id")
	if !ok {
		return
	}

	var req AgeVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "InvalidRequest", Message: err.Error()})
		return
	}

	user, err := h.authUseCase.SetAgeVerification(c.Request.Context(), ids[0], *req.Verified)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// GetSubscriptions godoc
// @Summary      List subscriptions
// @Description  Active subscriptions of a user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Success      200  {object}  SubscriptionsResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users/{user_id}/subscriptions [get]
func (h *AuthHandler) GetSubscriptions(c *gin.Context) {
	ids, ok := pathIDs(c, "user_id")
	if !ok {
		return
	}

	subscriptions, err := h.authUseCase.GetSubscriptions(c.Request.Context(), actor(c), ids[0])
	if err != nil {
		h.writeError(c, err)
		return
	}

	response := SubscriptionsResponse{
		Subscriptions: make([]SubscriptionResponse, len(subscriptions)),
		Count:         len(subscriptions),
	}
	for i, s := range subscriptions {
		response.Subscriptions[i] = toSubscriptionResponse(s)
	}
	c.JSON(http.StatusOK, response)
}

// Subscribe godoc
// @Summary      Subscribe
// @Description  Subscribe a user to a creator
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Param        creator_id path string true "Creator ID"
// @Success      200  {object}  SubscriptionResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{user_id}/subscriptions/{creator_id} [post]
func (h *AuthHandler) Subscribe(c *gin.Context) {
	ids, ok := pathIDs(c, "user_id", "creator_id")
	if !ok {
		return
	}

	subscription, err := h.authUseCase.Subscribe(c.Request.Context(), actor(c), ids[0], ids[1])
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubscriptionResponse(subscription))
}

// Unsubscribe godoc
// @Summary      Unsubscribe
// @Description  Remove a subscription
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Param        creator_id path string true "Creator ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{user_id}/subscriptions/{creator_id} [delete]
func (h *AuthHandler) Unsubscribe(c *gin.Context) {
	ids, ok := pathIDs(c, "user_id", "creator_id")
	if !ok {
		return
	}

	if err := h.authUseCase.Unsubscribe(c.Request.Context(), actor(c), ids[0], ids[1]); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Unsubscribed"})
}

// pathIDs reads UUID path parameters and answers 400 for a malformed one.
func pathIDs(c *gin.Context, names ...string) ([]string, bool) {
	ids := make([]string, len(names))
	for i, name := range names {
		id := c.Param(name)
		if _, err := uuid.Parse(id); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "InvalidRequest", Message: name + " must be a UUID"})
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

func actor(c *gin.Context) usecase.Actor {
	return usecase.Actor{
		ID:   c.GetString(middleware.ContextUserID),
		Role: entity.UserRole(c.GetString(middleware.ContextUserRole)),
	}
}

func (h *AuthHandler) writeError(c *gin.Context, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, entity.ErrEmailTaken), errors.Is(err, entity.ErrUsernameTaken):
		status, code = http.StatusConflict, "Conflict"
	case errors.Is(err, entity.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "InvalidCredentials"
	case errors.Is(err, entity.ErrAccountDisabled), errors.Is(err, entity.ErrForbidden):
		status, code = http.StatusForbidden, "Forbidden"
	case errors.Is(err, entity.ErrUserNotFound), errors.Is(err, entity.ErrSubscriptionNotFound):
		status, code = http.StatusNotFound, "NotFound"
	case errors.Is(err, entity.ErrInvalidRole), errors.Is(err, entity.ErrSelfSubscription), errors.Is(err, entity.ErrNotACreator):
		status, code = http.StatusBadRequest, "InvalidRequest"
	default:
		h.logger.Error("Request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "InternalServerError", Message: "Internal server error"})
		return
	}

	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}

func toUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		AvatarURL:     u.AvatarURL,
		Role:          string(u.Role),
		AgeVerified:   u.AgeVerified,
		AgeVerifiedAt: u.AgeVerifiedAt,
		CreatedAt:     u.CreatedAt,
	}
}

func toSubscriptionResponse(s *entity.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ViewerID:  s.ViewerID,
		CreatorID: s.CreatorID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}
