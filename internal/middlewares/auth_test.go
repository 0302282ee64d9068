package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HimanshuSagar02/RCR-backend/internal/models"
	"github.com/HimanshuSagar02/RCR-backend/internal/repository"
	"github.com/HimanshuSagar02/RCR-backend/internal/utils"
)

const testSecret = "test-secret"

type fakeUserRepo struct {
	users map[string]*models.User // keyed by ID hex
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.users[u.ID.Hex()] = u
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	f.users[u.ID.Hex()] = u
	return nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) Sample(_ context.Context, _ int64) ([]models.User, error) {
	return nil, nil
}

func newAuthApp(t *testing.T) (*fiber.App, *utils.TokenManager) {
	t.Helper()
	tokens := utils.NewTokenManager(testSecret, time.Hour)
	app := fiber.New()
	app.Get("/protected", RequireAuth(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userId": c.Locals(UserIDKey)})
	})
	return app, tokens
}

func doGet(t *testing.T, app *fiber.App, path, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: cookie})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func message(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	msg, _ := body["message"].(string)
	return msg
}

func TestRequireAuthNoCookie(t *testing.T) {
	app, _ := newAuthApp(t)
	resp := doGet(t, app, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication required. Please login.", message(t, resp))
}

func TestRequireAuthExpired(t *testing.T) {
	app, _ := newAuthApp(t)
	expired := utils.NewTokenManager(testSecret, -time.Minute)
	token, err := expired.Generate("user-123")
	require.NoError(t, err)

	resp := doGet(t, app, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token expired. Please login again.", message(t, resp))
}

func TestRequireAuthInvalid(t *testing.T) {
	app, _ := newAuthApp(t)
	other := utils.NewTokenManager("other-secret", time.Hour)
	token, err := other.Generate("user-123")
	require.NoError(t, err)

	for _, cookie := range []string{"garbage", token} {
		resp := doGet(t, app, "/protected", cookie)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid token. Please login again.", message(t, resp))
	}
}

func TestRequireAuthMissingUserID(t *testing.T) {
	app, _ := newAuthApp(t)
	claims := &utils.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	resp := doGet(t, app, "/protected", signed)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token format", message(t, resp))
}

func TestRequireAuthValid(t *testing.T) {
	app, tokens := newAuthApp(t)
	token, err := tokens.Generate("user-123")
	require.NoError(t, err)

	resp := doGet(t, app, "/protected", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user-123", body["userId"])
}

func TestRequireRoles(t *testing.T) {
	tokens := utils.NewTokenManager(testSecret, time.Hour)
	repo := &fakeUserRepo{users: map[string]*models.User{}}

	admin := &models.User{ID: primitive.NewObjectID(), Email: "a@x.com", Role: models.RoleAdmin}
	student := &models.User{ID: primitive.NewObjectID(), Email: "s@x.com", Role: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), admin))
	require.NoError(t, repo.Create(context.Background(), student))

	app := fiber.New()
	app.Get("/admin-only", RequireAuth(tokens), RequireRoles(repo, models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	adminToken, err := tokens.Generate(admin.ID.Hex())
	require.NoError(t, err)
	studentToken, err := tokens.Generate(student.ID.Hex())
	require.NoError(t, err)
	ghostToken, err := tokens.Generate(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	resp := doGet(t, app, "/admin-only", adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doGet(t, app, "/admin-only", studentToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doGet(t, app, "/admin-only", ghostToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
