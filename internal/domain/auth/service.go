// Package auth provides authentication and authorization domain logic.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/core/tx"
	"gelateria/pkg/logger"
)

// Mailer sends account emails. Implementations must not block requests on
// slow SMTP servers longer than their own timeout.
type Mailer interface {
	// SendVerificationEmail sends the email-verification link for the raw token.
	SendVerificationEmail(ctx context.Context, to, token string) (MailResult, error)

	// SendPasswordResetEmail sends the password-reset link for the raw token.
	SendPasswordResetEmail(ctx context.Context, to, token string) (MailResult, error)
}

// MailResult reports how a message was delivered.
type MailResult struct {
	// DevMode is true when no SMTP server is configured and the link was
	// only logged.
	DevMode bool
	// URL is the action link, exposed to the caller in dev mode only.
	URL string
}

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength    int
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration
	// RequireAdminVerification forces the first admin through email
	// verification instead of auto-login.
	RequireAdminVerification bool
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PasswordMinLength:    6,
		VerificationTokenTTL: 24 * time.Hour,
		ResetTokenTTL:        10 * time.Minute,
	}
}

// Service provides authentication and authorization logic.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	mailer     Mailer
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	mailer Mailer,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		mailer:     mailer,
		config:     config,
	}
}

func (s *Service) validatePassword(password string) error {
	if len(password) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register registers a new user. The account stays unverified until the
// emailed token is confirmed; a mail delivery failure does not fail the
// registration, it only clears the pending token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", req.Email)
	}

	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := NewUser(req.Name, req.Email, passwordHash)
	user.Phone = req.Phone
	if req.Role != "" {
		user.Role = req.Role
	}
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	rawToken, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}
	user.SetVerificationToken(hashToken(rawToken), s.config.VerificationTokenTTL)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	result := &RegisterResult{User: user}
	mail, err := s.mailer.SendVerificationEmail(ctx, user.Email, rawToken)
	if err != nil {
		logger.Error(ctx, "failed to send verification email",
			"user_id", user.ID,
			"error", err)
		user.ClearVerificationToken()
		if uerr := s.userRepo.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to clear verification token", "error", uerr)
		}
	} else {
		result.MailSent = true
		if mail.DevMode {
			result.VerificationURL = mail.URL
		}
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"email", user.Email,
		"role", user.Role)

	return result, nil
}

// Login authenticates a user and returns a signed token. Unknown email and
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		logger.Warn(ctx, "failed login attempt", "email", creds.Email)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"role", user.Role)

	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return user, nil
}

// CreateFirstAdmin creates the bootstrap administrator. It fails once any
// admin exists. Depending on configuration the admin either logs in right
// away or goes through email verification like everyone else.
func (s *Service) CreateFirstAdmin(ctx context.Context, req RegisterRequest) (*RegisterResult, *LoginResult, error) {
	hasAdmin, err := s.userRepo.ExistsByRole(ctx, RoleAdmin)
	if err != nil {
		return nil, nil, fmt.Errorf("check admin exists: %w", err)
	}
	if hasAdmin {
		return nil, nil, apperror.NewConflict("an administrator already exists")
	}

	if err := s.validatePassword(req.Password); err != nil {
		return nil, nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, nil, apperror.NewConflict("email already registered").WithDetail("email", req.Email)
	}

	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	admin := NewUser(req.Name, req.Email, passwordHash)
	admin.Role = RoleAdmin
	admin.Phone = req.Phone
	admin.EmailVerified = !s.config.RequireAdminVerification
	if err := admin.Validate(ctx); err != nil {
		return nil, nil, err
	}

	var rawToken string
	if s.config.RequireAdminVerification {
		rawToken, err = generateRandomToken(32)
		if err != nil {
			return nil, nil, fmt.Errorf("generate verification token: %w", err)
		}
		admin.SetVerificationToken(hashToken(rawToken), s.config.VerificationTokenTTL)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, admin)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create admin: %w", err)
	}

	logger.Info(ctx, "first admin created", "user_id", admin.ID, "email", admin.Email)

	result := &RegisterResult{User: admin}
	if s.config.RequireAdminVerification {
		mail, merr := s.mailer.SendVerificationEmail(ctx, admin.Email, rawToken)
		if merr != nil {
			logger.Error(ctx, "failed to send verification email", "user_id", admin.ID, "error", merr)
			admin.ClearVerificationToken()
			if uerr := s.userRepo.Update(ctx, admin); uerr != nil {
				logger.Warn(ctx, "failed to clear verification token", "error", uerr)
			}
		} else {
			result.MailSent = true
			if mail.DevMode {
				result.VerificationURL = mail.URL
			}
		}
		return result, nil, nil
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(admin)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}
	return result, &LoginResult{User: admin, Token: token, ExpiresAt: expiresAt}, nil
}

// CreateUser creates a user on behalf of an administrator. Accounts created
// this way are verified immediately.
func (s *Service) CreateUser(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Role != "" && !req.Role.Valid() {
		return nil, apperror.NewValidation("role must be admin, vendedor or cliente").
			WithDetail("field", "role")
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", req.Email)
	}

	passwordHash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := NewUser(req.Name, req.Email, passwordHash)
	user.Phone = req.Phone
	user.EmailVerified = true
	if req.Role != "" {
		user.Role = req.Role
	}
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user created by admin",
		"user_id", user.ID,
		"role", user.Role)

	return user, nil
}

// ListUsers lists users with filtering.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.userRepo.List(ctx, filter)
}

// ForgotPassword starts the password reset flow. The response never reveals
// whether the email is registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) (*MailResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Pretend success for unknown addresses.
		return &MailResult{}, nil
	}

	rawToken, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	user.SetResetToken(hashToken(rawToken), s.config.ResetTokenTTL)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("save reset token: %w", err)
	}

	mail, err := s.mailer.SendPasswordResetEmail(ctx, user.Email, rawToken)
	if err != nil {
		user.ClearResetToken()
		if uerr := s.userRepo.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to clear reset token", "error", uerr)
		}
		return nil, apperror.NewInternal(err).WithDetail("operation", "send_reset_email")
	}

	logger.Info(ctx, "password reset requested", "user_id", user.ID)
	return &mail, nil
}

// ResetPassword sets a new password for a valid, unexpired reset token and
// logs the user in. The token is single-use.
func (s *Service) ResetPassword(ctx context.Context, rawToken, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByResetToken(ctx, hashToken(rawToken), time.Now())
	if err != nil {
		return nil, apperror.NewValidation("reset token is invalid or expired")
	}

	if err := s.validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash
	user.ClearResetToken()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "password reset completed", "user_id", user.ID)
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyEmail confirms an email address using the token from the
// verification link and logs the user in.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) (*LoginResult, error) {
	user, err := s.userRepo.GetByVerificationToken(ctx, hashToken(rawToken), time.Now())
	if err != nil {
		return nil, apperror.NewValidation("verification token is invalid or expired")
	}

	user.MarkVerified()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("verify email: %w", err)
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "email verified", "user_id", user.ID)
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ResendVerification issues a fresh verification token. The response never
// reveals whether the email is registered.
func (s *Service) ResendVerification(ctx context.Context, email string) (*MailResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return &MailResult{}, nil
	}

	if user.EmailVerified {
		return nil, apperror.NewValidation("email is already verified")
	}

	rawToken, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}
	user.SetVerificationToken(hashToken(rawToken), s.config.VerificationTokenTTL)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("save verification token: %w", err)
	}

	mail, err := s.mailer.SendVerificationEmail(ctx, user.Email, rawToken)
	if err != nil {
		user.ClearVerificationToken()
		if uerr := s.userRepo.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to clear verification token", "error", uerr)
		}
		return nil, apperror.NewInternal(err).WithDetail("operation", "send_verification_email")
	}

	return &mail, nil
}

// hashToken creates SHA256 hash of a token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
