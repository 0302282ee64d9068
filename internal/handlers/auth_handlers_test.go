package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/HimanshuSagar02/RCR-backend/internal/handlers"
	"github.com/HimanshuSagar02/RCR-backend/internal/middlewares"
	"github.com/HimanshuSagar02/RCR-backend/internal/models"
	"github.com/HimanshuSagar02/RCR-backend/internal/repository"
	"github.com/HimanshuSagar02/RCR-backend/internal/routes"
	"github.com/HimanshuSagar02/RCR-backend/internal/services"
	"github.com/HimanshuSagar02/RCR-backend/internal/utils"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return errors.New("duplicate key")
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID.Hex() == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) Sample(_ context.Context, limit int64) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, *u)
	}
	return out, nil
}

type fakeMailer struct {
	mu      sync.Mutex
	lastOTP string
}

func (m *fakeMailer) SendOTP(_ context.Context, _, _, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOTP = otp
	return nil
}

func (m *fakeMailer) otp() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOTP
}

type testEnv struct {
	app  *fiber.App
	repo *fakeUserRepo
	mail *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	tokens := utils.NewTokenManager("test-secret", 7*24*time.Hour)
	svc := services.NewAuthService(repo, mail, nil, tokens, 5*time.Minute, 0, 4, zap.NewNop())
	h := handlers.NewHandler(svc, zap.NewNop(), false, 7*24*time.Hour)

	app := fiber.New()
	routes.Setup(app, h, nil, tokens, repo)
	return &testEnv{app: app, repo: repo, mail: mail}
}

func (e *testEnv) post(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middlewares.CookieName {
			return c
		}
	}
	return nil
}

func TestSignUpEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/auth/signup", fiber.Map{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "secret1",
		"role":     "student",
		"class":    "10th",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie, "signup must establish a session")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	body := decode(t, resp)
	assert.Equal(t, "asha@example.com", body["email"])
	assert.Equal(t, "pending", body["status"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword, "response must never contain the password digest")
}

func TestSignUpStudentWithoutClass(t *testing.T) {
	env := newTestEnv(t)
	resp := env.post(t, "/api/auth/signup", fiber.Map{
		"email":    "kid@example.com",
		"password": "secret1",
		"role":     "student",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t,
		"Class/Grade is mandatory for students. Please select 9th, 10th, 11th, 12th, or NEET Dropper",
		decode(t, resp)["message"])
}

func seedApproved(t *testing.T, env *testEnv, email, password string) {
	t.Helper()
	u := &models.User{Email: email, Role: models.RoleTeacher, Status: models.StatusApproved}
	if password != "" {
		digest, err := utils.HashPassword(password, 4)
		require.NoError(t, err)
		u.Password = digest
	}
	require.NoError(t, env.repo.Create(context.Background(), u))
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	seedApproved(t, env, "a@b.com", "secret1")

	resp := env.post(t, "/api/auth/login", fiber.Map{"email": "a@b.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, sessionCookie(resp))

	resp = env.post(t, "/api/auth/login", fiber.Map{"email": "a@b.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Incorrect password", decode(t, resp)["message"])
	assert.Nil(t, sessionCookie(resp))
}

func TestLoginNeedsPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	seedApproved(t, env, "a@b.com", "")

	resp := env.post(t, "/api/auth/login", fiber.Map{"email": "a@b.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["needsPasswordReset"])
}

func TestLoginStatusGate(t *testing.T) {
	env := newTestEnv(t)
	digest, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)
	require.NoError(t, env.repo.Create(context.Background(), &models.User{
		Email: "p@b.com", Password: digest, Role: models.RoleTeacher, Status: models.StatusPending,
	}))

	resp := env.post(t, "/api/auth/login", fiber.Map{"email": "p@b.com", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Account pending approval by admin", decode(t, resp)["message"])
	assert.Nil(t, sessionCookie(resp))
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp := env.post(t, "/api/auth/logout", fiber.Map{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value, "logout must clear the session cookie")
}

func TestGoogleEndpointNewStudent(t *testing.T) {
	env := newTestEnv(t)
	resp := env.post(t, "/api/auth/google", fiber.Map{
		"email": "g@b.com",
		"class": "9th",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, sessionCookie(resp), "google signups are logged in immediately")

	body := decode(t, resp)
	assert.Equal(t, "student", body["role"])
	assert.Equal(t, "approved", body["status"])
}

func TestSendOTPEndpointUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	resp := env.post(t, "/api/auth/send-otp", fiber.Map{"email": "ghost@b.com"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", decode(t, resp)["message"])
}

func TestVerifyOTPEndpointExpired(t *testing.T) {
	env := newTestEnv(t)
	past := time.Now().Add(-time.Minute)
	require.NoError(t, env.repo.Create(context.Background(), &models.User{
		Email: "late@b.com", Role: models.RoleTeacher, Status: models.StatusApproved,
		ResetOTP: "1234", OTPExpires: &past,
	}))

	resp := env.post(t, "/api/auth/verify-otp", fiber.Map{"email": "late@b.com", "otp": "1234"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "OTP has expired. Please request a new OTP.", decode(t, resp)["message"])
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	seedApproved(t, env, "flow@b.com", "oldpass1")

	resp := env.post(t, "/api/auth/send-otp", fiber.Map{"email": "flow@b.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	otp := env.mail.otp()
	require.Len(t, otp, 4)

	resp = env.post(t, "/api/auth/verify-otp", fiber.Map{"email": "flow@b.com", "otp": otp})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.post(t, "/api/auth/reset-password", fiber.Map{"email": "flow@b.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Password Reset Successfully", decode(t, resp)["message"])

	// New password works, old one does not.
	resp = env.post(t, "/api/auth/login", fiber.Map{"email": "flow@b.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.post(t, "/api/auth/login", fiber.Map{"email": "flow@b.com", "password": "oldpass1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The spent OTP cannot authorize a second reset.
	resp = env.post(t, "/api/auth/verify-otp", fiber.Map{"email": "flow@b.com", "otp": otp})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No OTP found. Please request a new OTP.", decode(t, resp)["message"])
	resp = env.post(t, "/api/auth/reset-password", fiber.Map{"email": "flow@b.com", "password": "another1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	seedApproved(t, env, "me@b.com", "secret1")

	login := env.post(t, "/api/auth/login", fiber.Map{"email": "me@b.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, login.StatusCode)
	cookie := sessionCookie(login)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "me@b.com", decode(t, resp)["email"])

	req = httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
