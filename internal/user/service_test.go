package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

func newTestService(t *testing.T) *UserService {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := userrepo.NewUserRepo(db)
	require.NoError(t, store.EnsureTable(context.Background()))
	return NewUserService(store, NewBcryptHasher(bcrypt.MinCost), zap.NewNop().Sugar())
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.Create(context.Background(), " Jane ", "  Jane@X.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)
	assert.Equal(t, "jane@x.com", u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, svc.hasher.Verify("secret123", u.PasswordHash))
}

func TestUserServiceCreateConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Jane", "jane@x.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Jane Again", "JANE@x.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailConflict)
}

func TestUserServiceGetAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, "Jane", "jane@x.com", "secret123")
	require.NoError(t, err)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Get(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrUserNotFound)
}

func newTestRouter(svc *UserService) http.Handler {
	h := NewHandler(svc, zap.NewNop().Sugar())
	r := chi.NewRouter()
	r.Post("/users", h.Create)
	r.Get("/users", h.List)
	r.Get("/users/{id}", h.Get)
	r.Delete("/users/{id}", h.Delete)
	return r
}

func asUser(req *http.Request, id string) *http.Request {
	return req.WithContext(entity.NewContext(req.Context(), &entity.Principal{ID: id}))
}

func TestHandler(t *testing.T) {
	svc := newTestService(t)
	router := newTestRouter(svc)

	t.Run("create never returns the hash", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Jane","email":"jane@x.com","password":"secret123"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"email":"jane@x.com"`)
		assert.Contains(t, body, `"createdAt"`)
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "$2a$")
	})

	t.Run("create duplicate is 409", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"Jane","email":"jane@x.com","password":"secret123"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("create validates body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"","email":"nope","password":"123"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "name is required")
		assert.Contains(t, body, "email must be a valid email")
		assert.Contains(t, body, "password must be at least 6 characters")
	})

	t.Run("get rejects non uuid", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get unknown is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/3f1c1c3e-8a4f-4d5e-9c61-0c7b8a2f6d11", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "jane@x.com")
	})

	t.Run("create rejects blank name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"   ","email":"blank@x.com","password":"secret123"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "name must not be blank")
		_, err := svc.store.GetByEmail(context.Background(), "blank@x.com")
		assert.ErrorIs(t, err, userrepo.ErrNotFound)
	})

	t.Run("create rejects password over 72 bytes", func(t *testing.T) {
		body := `{"name":"Long","email":"long@x.com","password":"` + strings.Repeat("a", 73) + `"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "password must be at most 72 bytes")
	})

	t.Run("delete is limited to the caller's own account", func(t *testing.T) {
		ctx := context.Background()
		victim, err := svc.Create(ctx, "Victim", "victim@x.com", "secret123")
		require.NoError(t, err)
		mallory, err := svc.Create(ctx, "Mallory", "mallory@x.com", "secret123")
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodDelete, "/users/"+victim.ID, nil), mallory.ID))
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())
		_, err = svc.Get(ctx, victim.ID)
		assert.NoError(t, err)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/"+victim.ID, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodDelete, "/users/"+mallory.ID, nil), mallory.ID))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		_, err = svc.Get(ctx, mallory.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
