package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"iskacare/clinic-api/db"
	"iskacare/clinic-api/internal"
	"iskacare/clinic-api/internal/codes"
	"iskacare/clinic-api/internal/service"
	"iskacare/clinic-api/internal/store"
	"iskacare/clinic-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type outbox struct {
	mu    sync.Mutex
	codes map[string]string
	fail  bool
}

func (o *outbox) SendVerificationCode(_ context.Context, to, code string, _ time.Duration) error {
	return o.put(to, code)
}

func (o *outbox) SendPasswordResetCode(_ context.Context, to, code string, _ time.Duration) error {
	return o.put(to, code)
}

func (o *outbox) put(to, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fail {
		return errors.New("mail server down")
	}

	o.codes[to] = code
	return nil
}

func (o *outbox) code(to string) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.codes[to]
}

type testApp struct {
	router *gin.Engine
	mail   *outbox
}

func newTestApp(t *testing.T, rateLimit float64) *testApp {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)

	accounts := store.NewAccounts(conn)
	mem := codes.NewMemoryStore(time.Hour)
	t.Cleanup(func() { mem.Close() })

	mail := &outbox{codes: map[string]string{}}
	tokens := security.NewTokenIssuer("test-secret", time.Hour)

	d := &internal.Deps{
		DB:       conn,
		Accounts: accounts,
		Tokens:   tokens,
		Auth: service.NewAuthService(service.AuthServiceOpts{
			Accounts: accounts,
			Signup:   codes.NewIssuer(mem),
			Reset:    codes.NewIssuer(codes.NewAccountStore(accounts)),
			Mailer:   mail,
			Argon: &security.ArgonHash{
				Memory:      1024,
				Iterations:  1,
				Parallelism: 1,
				SaltLength:  16,
				KeyLength:   32,
			},
			Tokens: tokens,
		}),
	}

	router, _ := NewRouter(d, RouterConfig{
		CORS:        []string{"http://localhost:5173"},
		RateLimit:   rateLimit,
		MaxBodySize: 1 << 20,
	})

	return &testApp{router: router, mail: mail}
}

type reply struct {
	code int
	body map[string]any
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) reply {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	r := reply{code: w.Code}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r.body), w.Body.String())
	}

	return r
}

// signUp registers an account through the HTTP flow and returns its token
func (a *testApp) signUp(t *testing.T, email, username, password, role string) string {
	t.Helper()

	r := a.do(t, http.MethodPost, "/api/auth/send-verification", gin.H{"email": email}, "")
	require.Equal(t, http.StatusOK, r.code, r.body)

	r = a.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email":            email,
		"username":         username,
		"password":         password,
		"role":             role,
		"verificationCode": a.mail.code(email),
	}, "")
	require.Equal(t, http.StatusCreated, r.code, r.body)

	r = a.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, r.code, r.body)

	return r.body["token"].(string)
}

func TestHeartbeat(t *testing.T) {
	a := newTestApp(t, 1000)

	req := httptest.NewRequest(http.MethodHead, "/api/heartbeat", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegistrationFlow(t *testing.T) {
	a := newTestApp(t, 1000)

	r := a.do(t, http.MethodPost, "/api/auth/send-verification", gin.H{"email": "alice@x.com"}, "")
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Verification code sent to your email", r.body["message"])
	assert.Equal(t, float64(600), r.body["expiresIn"])

	code := a.mail.code("alice@x.com")
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	r = a.do(t, http.MethodPost, "/api/auth/verify-code", gin.H{"email": "alice@x.com", "code": wrong}, "")
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "Invalid verification code", r.body["message"])
	assert.NotEmpty(t, r.body["requestID"])

	r = a.do(t, http.MethodPost, "/api/auth/verify-code", gin.H{"email": "alice@x.com", "code": code}, "")
	assert.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Code verified successfully", r.body["message"])

	r = a.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email":            "alice@x.com",
		"username":         "alice",
		"password":         "pw123456",
		"verificationCode": code,
	}, "")
	require.Equal(t, http.StatusCreated, r.code)
	assert.Equal(t, "Registration successful", r.body["message"])

	user := r.body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@x.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotEmpty(t, user["id"])
	assert.NotContains(t, user, "passwordHash")

	r = a.do(t, http.MethodPost, "/api/auth/send-verification", gin.H{"email": "alice@x.com"}, "")
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "Email already registered", r.body["message"])
}

func TestLoginAndSession(t *testing.T) {
	a := newTestApp(t, 1000)
	token := a.signUp(t, "alice@x.com", "alice", "pw123456", "")

	r := a.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "Invalid credentials", r.body["message"])

	r = a.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "alice", r.body["user"].(map[string]any)["username"])

	r = a.do(t, http.MethodGet, "/api/validate", nil, token)
	assert.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "user", r.body["role"])

	r = a.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, r.code)
}

func TestLoginSetsCookie(t *testing.T) {
	a := newTestApp(t, 1000)
	a.signUp(t, "alice@x.com", "alice", "pw123456", "")

	body, _ := json.Marshal(gin.H{"username": "alice", "password": "pw123456"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			found = true
			assert.True(t, c.HttpOnly)
			assert.Equal(t, 3600, c.MaxAge)
		}
	}
	assert.True(t, found)
}

func TestAccountsStaffOnly(t *testing.T) {
	a := newTestApp(t, 1000)

	userToken := a.signUp(t, "alice@x.com", "alice", "pw123456", "user")
	staffToken := a.signUp(t, "nurse@x.com", "nurse", "pw123456", "staff")

	r := a.do(t, http.MethodGet, "/api/accounts", nil, userToken)
	assert.Equal(t, http.StatusForbidden, r.code)

	r = a.do(t, http.MethodGet, "/api/accounts?limit=10", nil, staffToken)
	require.Equal(t, http.StatusOK, r.code)
	assert.Len(t, r.body["users"], 2)

	r = a.do(t, http.MethodGet, "/api/accounts?limit=0", nil, staffToken)
	assert.Equal(t, http.StatusBadRequest, r.code)
}

func TestPasswordResetFlow(t *testing.T) {
	a := newTestApp(t, 1000)
	a.signUp(t, "alice@x.com", "alice", "pw123456", "")

	r := a.do(t, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "nouser@x.com"}, "")
	assert.Equal(t, http.StatusNotFound, r.code)
	assert.Equal(t, "User not found with this email", r.body["message"])

	r = a.do(t, http.MethodPost, "/api/auth/reset-password", gin.H{
		"email": "nouser@x.com", "code": "123456", "newPassword": "newpass1",
	}, "")
	assert.Equal(t, http.StatusNotFound, r.code)
	assert.Equal(t, "User not found", r.body["message"])

	r = a.do(t, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "alice@x.com"}, "")
	require.Equal(t, http.StatusOK, r.code)
	assert.Equal(t, "Password reset code sent to your email", r.body["message"])
	assert.Equal(t, float64(600), r.body["expiresIn"])
	first := a.mail.code("alice@x.com")

	r = a.do(t, http.MethodPost, "/api/auth/resend-reset", gin.H{"email": "alice@x.com"}, "")
	require.Equal(t, http.StatusOK, r.code)
	code := a.mail.code("alice@x.com")

	if first != code {
		r = a.do(t, http.MethodPost, "/api/auth/reset-password", gin.H{
			"email": "alice@x.com", "code": first, "newPassword": "newpass1",
		}, "")
		assert.Equal(t, http.StatusBadRequest, r.code)
		assert.Equal(t, "Invalid verification code", r.body["message"])
	}

	r = a.do(t, http.MethodPost, "/api/auth/reset-password", gin.H{
		"email": "alice@x.com", "code": code, "newPassword": "newpass1",
	}, "")
	require.Equal(t, http.StatusOK, r.code)

	r = a.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "newpass1"}, "")
	assert.Equal(t, http.StatusOK, r.code)
}

func TestDeliveryFailure(t *testing.T) {
	a := newTestApp(t, 1000)
	a.mail.fail = true

	r := a.do(t, http.MethodPost, "/api/auth/send-verification", gin.H{"email": "a@b.com"}, "")
	assert.Equal(t, http.StatusInternalServerError, r.code)
	assert.Equal(t, "Failed to send verification email. Please try again.", r.body["message"])
}

func TestInvalidBody(t *testing.T) {
	a := newTestApp(t, 1000)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestOversizedChunkedBody(t *testing.T) {
	a := newTestApp(t, 1000)

	body := `{"username":"` + strings.Repeat("x", 2<<20) + `","password":"pw123456"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Request body size exceeds limit")
}

func TestAuthRateLimit(t *testing.T) {
	a := newTestApp(t, 1)

	// Burst is twice the rate
	for range 2 {
		r := a.do(t, http.MethodPost, "/api/auth/verify-code", gin.H{"email": "a@b.com", "code": "123456"}, "")
		assert.Equal(t, http.StatusBadRequest, r.code)
	}

	r := a.do(t, http.MethodPost, "/api/auth/verify-code", gin.H{"email": "a@b.com", "code": "123456"}, "")
	assert.Equal(t, http.StatusTooManyRequests, r.code)
}
