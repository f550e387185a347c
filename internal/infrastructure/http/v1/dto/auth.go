package dto

import (
	"time"

	"gelateria/internal/domain/auth"
)

// RegisterRequest for user self-registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

// LoginRequest for credential login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest completes the password reset flow.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ResendVerificationRequest re-issues the verification email.
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

// LoginData is the payload of a successful login.
type LoginData struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *auth.User `json:"user"`
}

// NewLoginData builds the login payload.
func NewLoginData(result *auth.LoginResult) LoginData {
	return LoginData{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	}
}

// RegisterData is the payload of a successful registration.
type RegisterData struct {
	User     *auth.User `json:"user"`
	MailSent bool       `json:"mailSent"`

	// VerificationURL is only populated in dev mode, when no real
	// mail transport is configured
	VerificationURL string `json:"verificationUrl,omitempty"`
}

// UserListData is the payload of the user listing.
type UserListData struct {
	Users []auth.User `json:"users"`
	Total int         `json:"total"`
}
