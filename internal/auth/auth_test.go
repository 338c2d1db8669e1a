// AngelaMos | 2026
// auth_test.go

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avocado-market/avocado-api/internal/config"
	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/mail"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[int64]*UserInfo
	nextID  int64
	baskets map[int64]int
	resets  map[string]int64
	expiry  map[string]time.Time
	now     func() time.Time
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:    map[int64]*UserInfo{},
		baskets: map[int64]int{},
		resets:  map[string]int64{},
		expiry:  map[string]time.Time{},
		now:     time.Now,
	}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get by email: %w", core.ErrNotFound)
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("get: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) CreateAccount(_ context.Context, acct NewAccount) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == acct.Email {
			return nil, fmt.Errorf("create: %w", core.ErrDuplicateKey)
		}
	}
	f.nextID++
	u := &UserInfo{
		ID:           f.nextID,
		FirstName:    acct.FirstName,
		LastName:     acct.LastName,
		Email:        acct.Email,
		PasswordHash: acct.PasswordHash,
		PhoneNumber:  acct.PhoneNumber,
		RoleID:       acct.RoleID,
		AuthProvider: acct.AuthProvider,
		CreatedAt:    time.Now(),
	}
	f.byID[u.ID] = u
	f.baskets[u.ID]++
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, id int64, digest string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets[digest] = id
	f.expiry[digest] = expiresAt
	return nil
}

func (f *fakeUsers) ResetPassword(_ context.Context, digest, hash string) error {
	f.mu.Lock()
	id, ok := f.resets[digest]
	exp := f.expiry[digest]
	f.mu.Unlock()
	if !ok || !exp.After(f.now()) {
		return fmt.Errorf("reset: %w", core.ErrNotFound)
	}
	delete(f.resets, digest)
	return f.UpdatePassword(context.Background(), id, hash)
}

type captureMailer struct {
	sent []mail.Message
	err  error
}

func (c *captureMailer) Send(_ context.Context, msg mail.Message) error {
	c.sent = append(c.sent, msg)
	return c.err
}

type fakeGoogle struct {
	profile *GoogleProfile
	err     error
}

func (g fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (g fakeGoogle) Exchange(context.Context, string) (*GoogleProfile, error) {
	return g.profile, g.err
}

func newJWT(t *testing.T, expire time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		AccessTokenExpire: expire,
	})
	require.NoError(t, err)
	return m
}

func newTestService(t *testing.T) (*Service, *fakeUsers, *captureMailer) {
	t.Helper()
	users := newFakeUsers()
	mailer := &captureMailer{}
	svc := NewService(users, newJWT(t, time.Hour), mailer, ServiceConfig{
		FrontendURL:      "http://shop.test/",
		ResetTokenExpire: time.Hour,
	})
	return svc, users, mailer
}

func registerReq(email string) RegisterRequest {
	return RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "password123",
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := newJWT(t, time.Hour)

	issued, err := m.CreateAccessToken(77)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := m.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(77), claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
}

func TestJWTExpired(t *testing.T) {
	m := newJWT(t, -time.Minute)

	issued, err := m.CreateAccessToken(1)
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestJWTWrongSecret(t *testing.T) {
	issued, err := newJWT(t, time.Hour).CreateAccessToken(1)
	require.NoError(t, err)

	other, err := NewJWTManager(config.JWTConfig{Secret: "another-secret", AccessTokenExpire: time.Hour})
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(context.Background(), issued.Token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = other.VerifyAccessToken(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestRegisterCreatesUserAndBasket(t *testing.T) {
	svc, users, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), registerReq("  Ada@Example.com "), false)
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, int64(DefaultRoleID), resp.User.RoleID)
	assert.Equal(t, 1, users.baskets[resp.User.ID])

	claims, err := svc.jwt.VerifyAccessToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegisterRoleOnlyWhenAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)
	role := int64(2)

	req := registerReq("a@example.com")
	req.RoleID = &role
	resp, err := svc.Register(context.Background(), req, false)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultRoleID), resp.User.RoleID)

	req = registerReq("b@example.com")
	req.RoleID = &role
	resp, err = svc.Register(context.Background(), req, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.User.RoleID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), registerReq("dup@example.com"), false)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq("DUP@example.com"), false)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerReq("user@example.com"), false)
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "USER@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)

	_, err = svc.Login(ctx, LoginRequest{Email: "user@example.com", Password: "nope-nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.byID[reg.User.ID].IsSuspended = true
	_, err = svc.Login(ctx, LoginRequest{Email: "user@example.com", Password: "password123"})
	assert.ErrorIs(t, err, core.ErrUserSuspended)
}

func TestLoginRejectsOAuthOnlyAccount(t *testing.T) {
	svc, users, _ := newTestService(t)

	_, err := users.CreateAccount(context.Background(), NewAccount{
		Email:        "g@example.com",
		PasswordHash: core.OAuthPasswordSentinel,
		RoleID:       DefaultRoleID,
		AuthProvider: ProviderGoogle,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "g@example.com", Password: core.OAuthPasswordSentinel})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerReq("c@example.com"), false)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, reg.User.ID, "wrong-old", "newpassword1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, reg.User.ID, "password123", "newpassword1"))

	_, err = svc.Login(ctx, LoginRequest{Email: "c@example.com", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("r@example.com"), false)
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "nobody@example.com"))
	assert.Empty(t, mailer.sent)

	require.NoError(t, svc.ForgotPassword(ctx, "r@example.com"))
	require.Len(t, mailer.sent, 1)

	body := mailer.sent[0].TextBody
	idx := strings.Index(body, "http://shop.test/reset-password?token=")
	require.GreaterOrEqual(t, idx, 0)
	link := strings.Fields(body[idx:])[0]
	u, err := url.Parse(link)
	require.NoError(t, err)
	token := u.Query().Get("token")

	assert.ErrorIs(t, svc.ResetPassword(ctx, "bogus", "freshpass123"), ErrInvalidResetToken)
	require.NoError(t, svc.ResetPassword(ctx, token, "freshpass123"))
	assert.ErrorIs(t, svc.ResetPassword(ctx, token, "again12345"), ErrInvalidResetToken)

	_, err = svc.Login(ctx, LoginRequest{Email: "r@example.com", Password: "freshpass123"})
	assert.NoError(t, err)
}

func TestForgotPasswordSwallowsMailFailure(t *testing.T) {
	svc, _, mailer := newTestService(t)
	mailer.err = errors.New("smtp down")

	_, err := svc.Register(context.Background(), registerReq("m@example.com"), false)
	require.NoError(t, err)

	assert.NoError(t, svc.ForgotPassword(context.Background(), "m@example.com"))
}

func newGoogleService(t *testing.T, g fakeGoogle) (*Service, *fakeUsers, *StateStore) {
	t.Helper()
	svc, users, _ := newTestService(t)
	mr := miniredis.RunT(t)
	states := NewStateStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 10*time.Minute)
	svc.WithGoogle(g, states)
	return svc, users, states
}

func TestGoogleCallbackCreatesAccountOnce(t *testing.T) {
	svc, users, states := newGoogleService(t, fakeGoogle{profile: &GoogleProfile{
		Email: "gina@example.com", EmailVerified: true, GivenName: "Gina",
	}})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		state, err := states.Issue(ctx)
		require.NoError(t, err)

		target, err := svc.GoogleCallback(ctx, state, "code")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(target, "http://shop.test/auth/callback?token="))
	}

	u, err := users.GetByEmail(ctx, "gina@example.com")
	require.NoError(t, err)
	assert.Equal(t, core.OAuthPasswordSentinel, u.PasswordHash)
	assert.Equal(t, ProviderGoogle, u.AuthProvider)
	assert.Equal(t, "User", u.LastName)
	assert.Equal(t, 1, users.baskets[u.ID])
}

func TestGoogleCallbackStateIsSingleUse(t *testing.T) {
	svc, _, states := newGoogleService(t, fakeGoogle{profile: &GoogleProfile{
		Email: "x@example.com", EmailVerified: true,
	}})
	ctx := context.Background()

	_, err := svc.GoogleCallback(ctx, "never-issued", "code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)

	state, err := states.Issue(ctx)
	require.NoError(t, err)
	_, err = svc.GoogleCallback(ctx, state, "code")
	require.NoError(t, err)

	_, err = svc.GoogleCallback(ctx, state, "code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)
}

func TestGoogleCallbackSuspendedRedirect(t *testing.T) {
	svc, users, states := newGoogleService(t, fakeGoogle{profile: &GoogleProfile{
		Email: "s@example.com", EmailVerified: true,
	}})
	ctx := context.Background()

	u, err := users.CreateAccount(ctx, NewAccount{Email: "s@example.com", PasswordHash: "x", RoleID: 3})
	require.NoError(t, err)
	users.byID[u.ID].IsSuspended = true

	state, err := states.Issue(ctx)
	require.NoError(t, err)

	target, err := svc.GoogleCallback(ctx, state, "code")
	require.NoError(t, err)
	assert.Equal(t, "http://shop.test/login?error=suspended", target)
}

func TestGoogleDisabled(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GoogleAuthURL(context.Background())
	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.StatusCode)
}

func TestLoginHandlerGenericMessage(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, nil)

	for _, email := range []string{"ghost@example.com", "ghost2@example.com"} {
		body, _ := json.Marshal(LoginRequest{Email: email, Password: "whatever1"})
		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var resp core.Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Invalid email or password", resp.Error.Message)
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, nil)

	body := `{"first_name":"A","email":"not-an-email","password":"short"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPasswordHandlerAlwaysOK(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, nil)

	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, httptest.NewRequest(
		http.MethodPost,
		"/api/auth/forgot-password",
		strings.NewReader(`{"email":"unknown@example.com"}`),
	))

	assert.Equal(t, http.StatusOK, rec.Code)
}
