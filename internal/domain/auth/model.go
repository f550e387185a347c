// Package auth provides authentication and authorization domain logic.
package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
)

// Role represents a user role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendedor Role = "vendedor"
	RoleCliente  Role = "cliente"
)

// Valid reports whether the role is a known one.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendedor, RoleCliente:
		return true
	}
	return false
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// User represents a system user.
type User struct {
	ID           id.ID  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role"`
	Phone        string `db:"phone" json:"phone,omitempty"`

	EmailVerified           bool       `db:"email_verified" json:"emailVerified"`
	EmailVerificationToken  string     `db:"email_verification_token" json:"-"`
	EmailVerificationExpire *time.Time `db:"email_verification_expire" json:"-"`
	ResetPasswordToken      string     `db:"reset_password_token" json:"-"`
	ResetPasswordExpire     *time.Time `db:"reset_password_expire" json:"-"`

	LastLoginAt *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	Version     int        `db:"version" json:"version"`
}

// NewUser creates a new user with the default role.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           id.New(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         RoleCliente,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// Validate validates user data.
func (u *User) Validate(ctx context.Context) error {
	if strings.TrimSpace(u.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if u.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if !emailPattern.MatchString(u.Email) {
		return apperror.NewValidation("email is invalid").WithDetail("field", "email")
	}
	if !u.Role.Valid() {
		return apperror.NewValidation("role must be admin, vendedor or cliente").
			WithDetail("field", "role")
	}
	return nil
}

// CanLogin checks if the user can log in.
func (u *User) CanLogin() error {
	if !u.EmailVerified {
		return apperror.NewForbidden("email not verified")
	}
	return nil
}

// SetVerificationToken stores the hashed verification token with expiry.
func (u *User) SetVerificationToken(tokenHash string, ttl time.Duration) {
	expire := time.Now().Add(ttl)
	u.EmailVerificationToken = tokenHash
	u.EmailVerificationExpire = &expire
}

// ClearVerificationToken drops any pending verification token.
func (u *User) ClearVerificationToken() {
	u.EmailVerificationToken = ""
	u.EmailVerificationExpire = nil
}

// SetResetToken stores the hashed reset token with expiry.
func (u *User) SetResetToken(tokenHash string, ttl time.Duration) {
	expire := time.Now().Add(ttl)
	u.ResetPasswordToken = tokenHash
	u.ResetPasswordExpire = &expire
}

// ClearResetToken drops any pending reset token.
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
}

// MarkVerified marks the email as verified and clears the token.
func (u *User) MarkVerified() {
	u.EmailVerified = true
	u.ClearVerificationToken()
}

// RecordLogin stamps the last successful login.
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest for user registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// RegisterResult is the outcome of a registration.
type RegisterResult struct {
	User *User
	// VerificationURL is set only when the mailer runs in dev mode.
	VerificationURL string
	// MailSent reports whether the verification email went out.
	MailSent bool
}

// LoginResult bundles the authenticated user with the issued token.
type LoginResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}
