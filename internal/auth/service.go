// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/mail"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidOAuthState  = errors.New("invalid or expired oauth state")
)

const (
	DefaultRoleID = 3

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type UserInfo struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	PhoneNumber  *string
	RoleID       int64
	IsSuspended  bool
	AuthProvider string
	CreatedAt    time.Time
}

type NewAccount struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	PhoneNumber  *string
	RoleID       int64
	AuthProvider string
}

// UserProvider is implemented by the user service. CreateAccount must create
// the user and its first basket atomically.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	CreateAccount(ctx context.Context, acct NewAccount) (*UserInfo, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetResetToken(ctx context.Context, id int64, digest string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, digest, passwordHash string) error
}

type OAuthStates interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) (bool, error)
}

type ServiceConfig struct {
	FrontendURL      string
	ResetTokenExpire time.Duration
}

type Service struct {
	users       UserProvider
	jwt         *JWTManager
	mailer      mail.Sender
	google      IdentityProvider
	states      OAuthStates
	frontendURL string
	resetTTL    time.Duration
	now         func() time.Time
}

func NewService(
	users UserProvider,
	jwt *JWTManager,
	mailer mail.Sender,
	cfg ServiceConfig,
) *Service {
	return &Service{
		users:       users,
		jwt:         jwt,
		mailer:      mailer,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		resetTTL:    cfg.ResetTokenExpire,
		now:         time.Now,
	}
}

// WithGoogle enables federated login.
func (s *Service) WithGoogle(provider IdentityProvider, states OAuthStates) *Service {
	s.google = provider
	s.states = states
	return s
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.VerifyPasswordTimingSafe(req.Password, "")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !core.VerifyPasswordTimingSafe(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if user.IsSuspended {
		return nil, core.SuspendedError()
	}

	if core.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user.ID, req.Password)
	}

	return s.issue(user)
}

func (s *Service) upgradeHash(ctx context.Context, userID int64, password string) {
	newHash, err := core.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, userID, newHash)
	}
	if err != nil {
		slog.Warn("password rehash failed", "user_id", userID, "error", err)
	}
}

// Register creates a local account. RoleID is applied only when
// allowRoleAssignment is set, otherwise the customer role is used.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	allowRoleAssignment bool,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roleID := int64(DefaultRoleID)
	if allowRoleAssignment && req.RoleID != nil {
		roleID = *req.RoleID
	}

	user, err := s.users.CreateAccount(ctx, NewAccount{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        normalizeEmail(req.Email),
		PasswordHash: passwordHash,
		PhoneNumber:  req.PhoneNumber,
		RoleID:       roleID,
		AuthProvider: ProviderLocal,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return s.issue(user)
}

func (s *Service) GoogleEnabled() bool {
	return s.google != nil && s.states != nil
}

func (s *Service) GoogleAuthURL(ctx context.Context) (string, error) {
	if !s.GoogleEnabled() {
		return "", googleDisabledError()
	}

	state, err := s.states.Issue(ctx)
	if err != nil {
		return "", err
	}
	return s.google.AuthCodeURL(state), nil
}

// GoogleCallback finishes the code flow and returns the frontend URL the
// browser should be redirected to. The token travels in the query string.
func (s *Service) GoogleCallback(ctx context.Context, state, code string) (string, error) {
	if !s.GoogleEnabled() {
		return "", googleDisabledError()
	}

	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return "", err
	}
	if !ok || code == "" {
		return "", ErrInvalidOAuthState
	}

	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			return "", core.UnauthorizedError("google account has no verified email")
		}
		return "", core.NewAppError(err, "google sign-in failed", http.StatusBadGateway, "OAUTH_FAILED")
	}

	user, err := s.users.GetByEmail(ctx, profile.Email)
	switch {
	case errors.Is(err, core.ErrNotFound):
		user, err = s.users.CreateAccount(ctx, NewAccount{
			FirstName:    firstNonEmpty(profile.GivenName, profile.Name, "Google"),
			LastName:     firstNonEmpty(profile.FamilyName, "User"),
			Email:        profile.Email,
			PasswordHash: core.OAuthPasswordSentinel,
			RoleID:       DefaultRoleID,
			AuthProvider: ProviderGoogle,
		})
		if errors.Is(err, core.ErrDuplicateKey) {
			return "", core.ConflictError("an account with this email cannot sign in with google")
		}
		if err != nil {
			return "", fmt.Errorf("create google account: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("get user: %w", err)
	}

	if user.IsSuspended {
		return s.frontendURL + "/login?error=suspended", nil
	}

	issued, err := s.jwt.CreateAccessToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("create access token: %w", err)
	}

	return s.frontendURL + "/auth/callback?token=" + url.QueryEscape(issued.Token), nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID int64,
	oldPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if !core.VerifyPasswordTimingSafe(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ForgotPassword never reports whether the email is registered. Mail
// delivery failures are logged only.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	raw, digest, err := core.GenerateResetToken()
	if err != nil {
		return err
	}

	if err := s.users.SetResetToken(ctx, user.ID, digest, s.now().Add(s.resetTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := s.frontendURL + "/reset-password?token=" + url.QueryEscape(raw)
	msg := mail.Message{
		To:      user.Email,
		Subject: "Reset your Avocado password",
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n\n"+
				"If you did not ask for this, you can ignore this email.\n",
			user.FirstName, s.resetTTL, link,
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Warn("password reset mail failed", "user_id", user.ID, "error", err)
	}

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	newHash, err := core.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.users.ResetPassword(ctx, core.HashToken(token), newHash)
	if errors.Is(err, core.ErrNotFound) {
		return ErrInvalidResetToken
	}
	return err
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) issue(user *UserInfo) (*AuthResponse, error) {
	issued, err := s.jwt.CreateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User:      toUserResponse(user),
		Token:     issued.Token,
		TokenType: "Bearer",
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

func googleDisabledError() *core.AppError {
	return core.NewAppError(
		nil,
		"google sign-in is not configured",
		http.StatusServiceUnavailable,
		"OAUTH_DISABLED",
	)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
