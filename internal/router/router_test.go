package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/blog-backend/internal/config"
	"github.com/iliyamo/blog-backend/internal/handler"
	"github.com/iliyamo/blog-backend/internal/middleware"
	"github.com/iliyamo/blog-backend/internal/model"
	"github.com/iliyamo/blog-backend/internal/queue"
	"github.com/iliyamo/blog-backend/internal/service"
)

type nopUsers struct{}

func (nopUsers) Create(context.Context, *model.User) error { return nil }
func (nopUsers) GetByLogin(context.Context, string) (*model.User, error) { return nil, nil }
func (nopUsers) List(context.Context) ([]*model.User, error) { return nil, nil }
func (nopUsers) GetByID(context.Context, uint64) (*model.User, error) { return nil, nil }

type nopPosts struct{}

func (nopPosts) Create(context.Context, *model.Post) error { return nil }
func (nopPosts) GetByID(context.Context, uint64) (*model.Post, error) { return nil, nil }
func (nopPosts) Count(context.Context) (int, error) { return 0, nil }
func (nopPosts) List(context.Context, int, int) ([]*model.Post, error) { return nil, nil }
func (nopPosts) Update(context.Context, uint64, string, string) error { return nil }
func (nopPosts) Delete(context.Context, uint64) error { return nil }

func newServer() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler
	tokens := service.NewTokenService(service.TokenConfig{Secret: "s", AccessTTL: 1, RefreshTTL: 2}, nopUsers{})

	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(nopUsers{}, tokens, 4), tokens)
	RegisterPosts(e, handler.NewPostHandler(nopPosts{}, queue.NopPublisher{}), tokens,
		middleware.NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	RegisterAdmin(e, handler.NewAdminHandler(nopUsers{}), tokens)
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newServer()

	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"POST /register",
		"POST /login",
		"POST /auth/refresh",
		"POST /auth/logout",
		"GET /auth/profile",
		"GET /posts",
		"POST /posts",
		"GET /posts/:id",
		"PUT /posts/:id",
		"DELETE /posts/:id",
		"GET /admin/users",
	} {
		assert.True(t, got[want], want)
	}
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	e := newServer()

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/auth/profile"},
		{http.MethodPost, "/posts"},
		{http.MethodPut, "/posts/1"},
		{http.MethodDelete, "/posts/1"},
		{http.MethodGet, "/admin/users"},
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(r.method, r.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, r.method+" "+r.path)
		assert.JSONEq(t, `{"error":"Authorization header missing or invalid"}`, rec.Body.String())
	}
}

func TestPublicRoutes(t *testing.T) {
	e := newServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
