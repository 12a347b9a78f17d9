package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"hris-auth/internal/data/entity"
	"hris-auth/internal/data/repository"
	"hris-auth/internal/usecase"
	"hris-auth/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type stubUsers struct {
	mu      sync.Mutex
	user    entity.User
	lookups int
	writes  int
}

func (s *stubUsers) match(ok bool) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if !ok {
		return nil, nil
	}
	u := s.user
	return &u, nil
}

func (s *stubUsers) FindByEmployeeNumber(_ context.Context, n string) (*entity.User, error) {
	return s.match(n == s.user.EmployeeNumber)
}

func (s *stubUsers) FindByEmail(_ context.Context, e string) (*entity.User, error) {
	return s.match(e == s.user.Email)
}

func (s *stubUsers) FindByEmailAndEmployeeNumber(_ context.Context, e, n string) (*entity.User, error) {
	return s.match(e == s.user.Email && n == s.user.EmployeeNumber)
}

func (s *stubUsers) FindByEmailOrEmployeeNumber(_ context.Context, e, n string) (*entity.User, error) {
	return s.match(e == s.user.Email || n == s.user.EmployeeNumber)
}

func (s *stubUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return s.write(id, hash, false)
}

func (s *stubUsers) UpdatePasswordAndClearDefault(_ context.Context, id uuid.UUID, hash string) error {
	return s.write(id, hash, true)
}

func (s *stubUsers) write(id uuid.UUID, hash string, clearDefault bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if id != s.user.ID {
		return repository.ErrUserNotFound
	}
	s.user.PasswordHash = hash
	if clearDefault {
		s.user.IsDefaultPassword = false
	}
	return nil
}

type outbox struct {
	mu    sync.Mutex
	codes []string
}

func (o *outbox) SendCode(_ context.Context, _, code string, _ entity.CodePurpose) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes = append(o.codes, code)
	return nil
}

func (o *outbox) last() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codes[len(o.codes)-1]
}

type captchaStub struct{ accept string }

func (c captchaStub) Verify(_ context.Context, token, _ string) (bool, error) {
	return token == c.accept, nil
}

type testApp struct {
	router   http.Handler
	users    *stubUsers
	outbox   *outbox
	login    *repository.MemoryCodeRegistry
	recovery *repository.MemoryCodeRegistry
	config   *utils.Config
}

const (
	email    = "e100@example.com"
	number   = "E100"
	password = "correct"
)

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	app := &testApp{
		users: &stubUsers{user: entity.User{
			Base:              entity.Base{ID: uuid.New()},
			EmployeeNumber:    number,
			Email:             email,
			PasswordHash:      hash,
			Role:              entity.RoleStaff,
			IsDefaultPassword: true,
			Person:            entity.Person{FirstName: "Juan", LastName: "Dela Cruz"},
		}},
		outbox:   &outbox{},
		login:    repository.NewMemoryCodeRegistry(),
		recovery: repository.NewMemoryCodeRegistry(),
		config: &utils.Config{
			App:      utils.AppConfig{AllowedOrigins: []string{"*"}},
			JWT:      utils.JWTConfig{Secret: "test-secret", ExpiryHours: 10},
			OTP:      utils.OTPConfig{ExpiryMinutes: 15},
			Password: utils.PasswordConfig{BcryptCost: bcrypt.MinCost, MinLength: 6},
		},
	}

	repo := &repository.Repository{User: app.users, LoginCodes: app.login, RecoveryCodes: app.recovery}
	app.router = Wiring(repo, app.config, usecase.Dependencies{
		Notifier: app.outbox,
		Captcha:  captchaStub{accept: "human"},
		Hasher:   hasher,
	}, zap.NewNop()).Router

	return app
}

func (a *testApp) post(t *testing.T, path string, body any, token string) (int, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func (a *testApp) token(t *testing.T, claimsEmail string) string {
	t.Helper()
	tok, err := utils.GenerateToken(utils.Claims{EmployeeNumber: number, Email: claimsEmail}, []byte(a.config.JWT.Secret), time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func TestTwoFactorLoginFlow(t *testing.T) {
	app := newTestApp(t)

	status, body := app.post(t, "/login", map[string]string{"employeeNumber": number, "password": password}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, email, body["email"])
	assert.Equal(t, "Juan Dela Cruz", body["fullName"])

	status, _ = app.post(t, "/send-2fa-code", map[string]string{"email": email, "employeeNumber": number}, "")
	require.Equal(t, http.StatusOK, status)

	entry, err := app.login.Get(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Regexp(t, `^[1-9][0-9]{5}$`, entry.Code)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), entry.ExpiresAt, 5*time.Second)

	wrong := "100000"
	if entry.Code == wrong {
		wrong = "100001"
	}
	status, body = app.post(t, "/verify-2fa-code", map[string]string{"email": email, "code": wrong}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid code", body["error"])

	status, body = app.post(t, "/verify-2fa-code", map[string]string{"email": email, "code": app.outbox.last()}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["verified"])

	status, body = app.post(t, "/complete-2fa-login", map[string]string{"email": email, "employeeNumber": number}, "")
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, true, body["isDefaultPassword"])
	assert.Equal(t, "staff", body["role"])

	claims, err := utils.ParseToken(body["token"].(string), []byte(app.config.JWT.Secret))
	require.NoError(t, err)
	assert.Equal(t, email, claims.Email)
}

func TestLogin_BadCredentials(t *testing.T) {
	app := newTestApp(t)

	for _, body := range []map[string]string{
		{"employeeNumber": number, "password": "wrong"},
		{"employeeNumber": "E999", "password": password},
	} {
		status, out := app.post(t, "/login", body, "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid employee number or password", out["error"])
	}
}

func TestForgotPassword_RejectedCaptchaSkipsLookup(t *testing.T) {
	app := newTestApp(t)

	status, body := app.post(t, "/forgot-password", map[string]string{"email": email, "recaptchaToken": "robot"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
	assert.Zero(t, app.users.lookups)
	assert.Zero(t, app.recovery.Len())
	assert.Empty(t, app.outbox.codes)
}

func TestResetPassword_WithoutVerification(t *testing.T) {
	app := newTestApp(t)

	status, body := app.post(t, "/reset-password", map[string]string{
		"email":           email,
		"newPassword":     "brand-new",
		"confirmPassword": "brand-new",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid or expired session.", body["error"])
	assert.Zero(t, app.users.writes)
}

func TestCompleteTwoFactorLogin_WithoutVerification(t *testing.T) {
	app := newTestApp(t)

	status, body := app.post(t, "/complete-2fa-login", map[string]string{"email": email, "employeeNumber": number}, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, usecase.ErrNoSession.Error(), body["error"])

	status, _ = app.post(t, "/send-2fa-code", map[string]string{"email": email, "employeeNumber": number}, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = app.post(t, "/complete-2fa-login", map[string]string{"email": email, "employeeNumber": number}, "")
	assert.Equal(t, http.StatusNotFound, status, "issued but unverified")
}

func TestRoutes_ValidationMessagesComeFromService(t *testing.T) {
	app := newTestApp(t)

	status, body := app.post(t, "/send-2fa-code", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed: email: Invalid email format; employeeNumber: This field is required", body["error"])
	assert.Zero(t, app.users.lookups)

	token := app.token(t, email)
	status, body = app.post(t, "/send-password-change-code", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, status, "missing email is a validation failure, not a mismatch")
	assert.Equal(t, "Validation failed: email: This field is required", body["error"])
}

func TestResetPassword_OverlongPassword(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.post(t, "/forgot-password", map[string]string{"email": email, "recaptchaToken": "human"}, "")
	require.Equal(t, http.StatusOK, status)
	status, _ = app.post(t, "/verify-reset-code", map[string]string{"email": email, "code": app.outbox.last()}, "")
	require.Equal(t, http.StatusOK, status)

	overlong := strings.Repeat("p", 80)
	status, body := app.post(t, "/reset-password", map[string]string{
		"email":           email,
		"newPassword":     overlong,
		"confirmPassword": overlong,
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password must be at most 72 bytes", body["error"])
	assert.Zero(t, app.users.writes)
}

func TestPasswordResetFlow(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.post(t, "/forgot-password", map[string]string{"email": email, "recaptchaToken": "human"}, "")
	require.Equal(t, http.StatusOK, status)

	status, body := app.post(t, "/verify-reset-code", map[string]string{"email": email, "code": app.outbox.last()}, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, app.users.user.ID.String(), body["userId"])

	status, body = app.post(t, "/reset-password", map[string]string{
		"email":           email,
		"newPassword":     "brand-new",
		"confirmPassword": "brand-new",
	}, "")
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, 1, app.users.writes)

	status, body = app.post(t, "/verify-reset-code", map[string]string{"email": email, "code": app.outbox.last()}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, usecase.ErrNoCodeFound.Error(), body["error"])
}

func TestCompletePasswordChange_TooShort(t *testing.T) {
	app := newTestApp(t)

	status, body := app.post(t, "/complete-password-change", map[string]string{
		"email":           email,
		"newPassword":     "12345",
		"confirmPassword": "12345",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password must be at least 6 characters", body["error"])
	assert.Zero(t, app.users.writes)
	assert.Zero(t, app.users.lookups)
}

func TestSendTwoFactorCode_LastCodeWins(t *testing.T) {
	app := newTestApp(t)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body := strings.NewReader(`{"email":"` + email + `","employeeNumber":"` + number + `"}`)
			app.router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/send-2fa-code", body))
		}()
	}
	wg.Wait()

	entry, err := app.login.Get(context.Background(), email)
	require.NoError(t, err)
	require.Len(t, app.outbox.codes, 2)

	for _, code := range app.outbox.codes {
		if code == entry.Code {
			continue
		}
		status, _ := app.post(t, "/verify-2fa-code", map[string]string{"email": email, "code": code}, "")
		assert.Equal(t, http.StatusBadRequest, status)
	}
	status, _ := app.post(t, "/verify-2fa-code", map[string]string{"email": email, "code": entry.Code}, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestPasswordChangeFlow_Authenticated(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, email)

	status, _ := app.post(t, "/verify-current-password", map[string]string{"email": email, "currentPassword": password}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := app.post(t, "/verify-current-password", map[string]string{"email": email, "currentPassword": password}, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["verified"])

	status, _ = app.post(t, "/send-password-change-code", map[string]string{"email": email}, token)
	require.Equal(t, http.StatusOK, status)

	status, _ = app.post(t, "/verify-password-change-code", map[string]string{"email": email, "code": app.outbox.last()}, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = app.post(t, "/complete-password-change", map[string]string{
		"email":           email,
		"newPassword":     "longer-secret",
		"confirmPassword": "longer-secret",
	}, "")
	require.Equal(t, http.StatusOK, status)
	assert.False(t, app.users.user.IsDefaultPassword)
}

func TestAuthenticatedRoutes_RejectOtherUsersEmail(t *testing.T) {
	app := newTestApp(t)
	token := app.token(t, "someone-else@example.com")

	status, body := app.post(t, "/send-password-change-code", map[string]string{"email": email}, token)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, usecase.ErrEmailMismatch.Error(), body["error"])
	assert.Empty(t, app.outbox.codes)
}

func TestRoutes_RejectMalformedBody(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())
}

func TestResponses_NeverLeakPasswordHash(t *testing.T) {
	app := newTestApp(t)
	hash := app.users.user.PasswordHash

	for _, path := range []string{"/login", "/send-2fa-code", "/verify-2fa-code", "/complete-2fa-login"} {
		raw, _ := json.Marshal(map[string]string{"employeeNumber": number, "password": password, "email": email, "code": app.lastCodeOrEmpty()})
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)

		assert.NotContains(t, rec.Body.String(), hash, path)
		assert.NotContains(t, rec.Body.String(), fmt.Sprintf("%q", password), path)
	}
}

func (a *testApp) lastCodeOrEmpty() string {
	a.outbox.mu.Lock()
	defer a.outbox.mu.Unlock()
	if len(a.outbox.codes) == 0 {
		return "000000"
	}
	return a.outbox.codes[len(a.outbox.codes)-1]
}

func TestOperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	app.post(t, "/login", map[string]string{"employeeNumber": number, "password": password}, "")

	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hris_auth_logins_total")
	assert.Contains(t, rec.Body.String(), `route="/login"`)
}
