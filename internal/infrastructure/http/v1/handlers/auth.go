package handlers

import (
	"github.com/gin-gonic/gin"

	"gelateria/internal/core/appctx"
	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/domain/auth"
	"gelateria/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Register(c.Request.Context(), auth.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     auth.Role(req.Role),
		Phone:    req.Phone,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.RegisterData{
		User:            result.User,
		MailSent:        result.MailSent,
		VerificationURL: result.VerificationURL,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewLoginData(result))
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return
	}

	userID, err := id.Parse(user.UserID)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid user context"))
		return
	}

	u, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, u)
}

// Logout handles POST /api/auth/logout. Tokens are stateless; the
// client drops its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Success(c, "logged out")
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		h.Error(c, err)
		return
	}

	if result.DevMode && result.URL != "" {
		h.OK(c, gin.H{"resetUrl": result.URL})
		return
	}
	h.Success(c, "if the email exists, a reset link was sent")
}

// ResetPassword handles PUT /api/auth/reset-password/:token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewLoginData(result))
}

// VerifyEmail handles GET /api/auth/verify-email/:token.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	result, err := h.service.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewLoginData(result))
}

// ResendVerification handles POST /api/auth/resend-verification.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		h.Error(c, err)
		return
	}

	if result.DevMode && result.URL != "" {
		h.OK(c, gin.H{"verificationUrl": result.URL})
		return
	}
	h.Success(c, "verification email sent")
}

// CreateFirstAdmin handles POST /api/auth/create-first-admin. Succeeds
// only while no admin exists.
func (h *AuthHandler) CreateFirstAdmin(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	registered, login, err := h.service.CreateFirstAdmin(c.Request.Context(), auth.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	if login != nil {
		h.Created(c, dto.NewLoginData(login))
		return
	}
	h.Created(c, dto.RegisterData{
		User:            registered.User,
		MailSent:        registered.MailSent,
		VerificationURL: registered.VerificationURL,
	})
}

// CreateUser handles POST /api/auth/create-user (admin only). Users
// created this way are verified immediately.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), auth.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     auth.Role(req.Role),
		Phone:    req.Phone,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, user)
}

// ListUsers handles GET /api/auth/users (admin only).
func (h *AuthHandler) ListUsers(c *gin.Context) {
	filter := auth.UserFilter{
		Search: c.Query("search"),
		Role:   auth.Role(c.Query("role")),
		Page:   h.ParseIntQuery(c, "page", 1),
		Limit:  h.ParseIntQuery(c, "limit", 10),
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.UserListData{Users: users, Total: total})
}
