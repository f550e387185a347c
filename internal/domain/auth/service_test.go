package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
)

type memUserRepo struct {
	users map[id.ID]*User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[id.ID]*User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *memUserRepo) GetByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	for _, u := range r.users {
		if u.EmailVerificationToken == tokenHash &&
			u.EmailVerificationExpire != nil && now.Before(*u.EmailVerificationExpire) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", "verification token")
}

func (r *memUserRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	for _, u := range r.users {
		if u.ResetPasswordToken == tokenHash &&
			u.ResetPasswordExpire != nil && now.Before(*u.ResetPasswordExpire) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", "reset token")
}

func (r *memUserRepo) Update(ctx context.Context, user *User) error {
	if _, ok := r.users[user.ID]; !ok {
		return apperror.NewNotFound("user", user.ID.String())
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) List(ctx context.Context, filter UserFilter) ([]User, int, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) ExistsByRole(ctx context.Context, role Role) (bool, error) {
	for _, u := range r.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubMailer struct {
	fail      bool
	lastToken string
	sent      int
}

func (m *stubMailer) SendVerificationEmail(ctx context.Context, to, token string) (MailResult, error) {
	if m.fail {
		return MailResult{}, errors.New("smtp unavailable")
	}
	m.lastToken = token
	m.sent++
	return MailResult{DevMode: true, URL: "http://localhost/verify/" + token}, nil
}

func (m *stubMailer) SendPasswordResetEmail(ctx context.Context, to, token string) (MailResult, error) {
	if m.fail {
		return MailResult{}, errors.New("smtp unavailable")
	}
	m.lastToken = token
	m.sent++
	return MailResult{DevMode: true, URL: "http://localhost/reset/" + token}, nil
}

func newTestAuthService(repo *memUserRepo, mailer *stubMailer) *Service {
	return NewService(
		repo,
		passTxManager{},
		NewJWTService(DefaultJWTConfig("test-secret")),
		mailer,
		DefaultServiceConfig(),
	)
}

func TestRegisterAndVerifyAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	mailer := &stubMailer{}
	svc := newTestAuthService(repo, mailer)

	result, err := svc.Register(ctx, RegisterRequest{
		Name:     "Joana",
		Email:    "Joana@Example.com",
		Password: "sorvete123",
	})
	require.NoError(t, err)
	assert.True(t, result.MailSent)
	assert.False(t, result.User.EmailVerified)
	assert.Equal(t, "joana@example.com", result.User.Email)
	assert.Equal(t, RoleCliente, result.User.Role)

	// Login before verification is refused.
	_, err = svc.Login(ctx, Credentials{Email: "joana@example.com", Password: "sorvete123"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	// Verify with the emailed token, then login works.
	login, err := svc.VerifyEmail(ctx, mailer.lastToken)
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.True(t, login.User.EmailVerified)

	login, err = svc.Login(ctx, Credentials{Email: "joana@example.com", Password: "sorvete123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.NotNil(t, repo.users[login.User.ID].LastLoginAt)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newMemUserRepo(), &stubMailer{})

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "B", Email: "A@B.com", Password: "123456"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newTestAuthService(newMemUserRepo(), &stubMailer{})

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@b.com", Password: "123"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRegisterMailFailureClearsTokenButSucceeds(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	svc := newTestAuthService(repo, &stubMailer{fail: true})

	result, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)
	assert.False(t, result.MailSent)

	stored := repo.users[result.User.ID]
	assert.Empty(t, stored.EmailVerificationToken)
	assert.Nil(t, stored.EmailVerificationExpire)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	mailer := &stubMailer{}
	svc := newTestAuthService(repo, mailer)

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)
	_, err = svc.VerifyEmail(ctx, mailer.lastToken)
	require.NoError(t, err)

	// Wrong password and unknown email produce the same error.
	_, err = svc.Login(ctx, Credentials{Email: "a@b.com", Password: "wrong"})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)

	_, err = svc.Login(ctx, Credentials{Email: "nobody@b.com", Password: "123456"})
	require.Error(t, err)
	appErr, _ = apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestCreateFirstAdminOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	svc := newTestAuthService(repo, &stubMailer{})

	result, login, err := svc.CreateFirstAdmin(ctx, RegisterRequest{
		Name: "Dona Gelata", Email: "admin@gelateria.com", Password: "admin123",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, result.User.Role)
	// Verification is not required by default, so the admin logs in right away.
	require.NotNil(t, login)
	assert.NotEmpty(t, login.Token)
	assert.True(t, result.User.EmailVerified)

	_, _, err = svc.CreateFirstAdmin(ctx, RegisterRequest{
		Name: "Intruso", Email: "other@gelateria.com", Password: "admin123",
	})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestCreateUserByAdminIsVerified(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	svc := newTestAuthService(repo, &stubMailer{})

	user, err := svc.CreateUser(ctx, RegisterRequest{
		Name: "Atendente", Email: "atendente@gelateria.com", Password: "venda123",
		Role: RoleVendedor,
	})
	require.NoError(t, err)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, RoleVendedor, user.Role)

	login, err := svc.Login(ctx, Credentials{Email: "atendente@gelateria.com", Password: "venda123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}

func TestCreateUserInvalidRole(t *testing.T) {
	svc := newTestAuthService(newMemUserRepo(), &stubMailer{})

	_, err := svc.CreateUser(context.Background(), RegisterRequest{
		Name: "X", Email: "x@y.com", Password: "123456", Role: "gerente",
	})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	mailer := &stubMailer{}
	svc := newTestAuthService(repo, mailer)

	user, err := svc.CreateUser(ctx, RegisterRequest{
		Name: "A", Email: "a@b.com", Password: "oldpass",
	})
	require.NoError(t, err)

	mail, err := svc.ForgotPassword(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, mail.DevMode)
	resetToken := mailer.lastToken

	login, err := svc.ResetPassword(ctx, resetToken, "newpass1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, login.User.ID)

	// Old password no longer works, new one does, token is single-use.
	_, err = svc.Login(ctx, Credentials{Email: "a@b.com", Password: "oldpass"})
	require.Error(t, err)
	_, err = svc.Login(ctx, Credentials{Email: "a@b.com", Password: "newpass1"})
	require.NoError(t, err)
	_, err = svc.ResetPassword(ctx, resetToken, "another1")
	require.Error(t, err)
}

func TestForgotPasswordUnknownEmailPretendsSuccess(t *testing.T) {
	mailer := &stubMailer{}
	svc := newTestAuthService(newMemUserRepo(), mailer)

	mail, err := svc.ForgotPassword(context.Background(), "ghost@b.com")
	require.NoError(t, err)
	assert.False(t, mail.DevMode)
	assert.Zero(t, mailer.sent)
}

func TestResendVerification(t *testing.T) {
	ctx := context.Background()
	repo := newMemUserRepo()
	mailer := &stubMailer{}
	svc := newTestAuthService(repo, mailer)

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@b.com", Password: "123456"})
	require.NoError(t, err)
	firstToken := mailer.lastToken

	_, err = svc.ResendVerification(ctx, "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, firstToken, mailer.lastToken)

	// The old token no longer verifies, the fresh one does.
	_, err = svc.VerifyEmail(ctx, firstToken)
	require.Error(t, err)
	_, err = svc.VerifyEmail(ctx, mailer.lastToken)
	require.NoError(t, err)

	// Already verified now.
	_, err = svc.ResendVerification(ctx, "a@b.com")
	require.Error(t, err)
}
