package middleware

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/blog-backend/internal/model"
    "github.com/iliyamo/blog-backend/internal/service"
)

type fakeVerifier struct {
    users map[string]*model.User
    err   error
}

func (f fakeVerifier) VerifyAccess(_ context.Context, raw string) (*model.User, error) {
    if f.err != nil {
        return nil, f.err
    }
    if u, ok := f.users[raw]; ok {
        return u, nil
    }
    return nil, fmt.Errorf("%w: %w", service.ErrInvalidToken, service.ErrTokenMalformed)
}

func runGate(t *testing.T, v AccessVerifier, header string) (*httptest.ResponseRecorder, *model.User, bool) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
    if header != "" {
        req.Header.Set(echo.HeaderAuthorization, header)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    var seen *model.User
    called := false
    h := JWTAuth(v)(func(c echo.Context) error {
        called = true
        seen = CurrentUser(c)
        return c.NoContent(http.StatusNoContent)
    })
    require.NoError(t, h(c))
    return rec, seen, called
}

func TestJWTAuth_AttachesUser(t *testing.T) {
    v := fakeVerifier{users: map[string]*model.User{"good": {ID: 5, Username: "testuser"}}}

    rec, u, called := runGate(t, v, "Bearer good")
    assert.True(t, called)
    assert.Equal(t, http.StatusNoContent, rec.Code)
    require.NotNil(t, u)
    assert.Equal(t, uint64(5), u.ID)
}

func TestJWTAuth_Rejects(t *testing.T) {
    v := fakeVerifier{users: map[string]*model.User{"good": {ID: 5}}}

    cases := []struct {
        name, header, msg string
    }{
        {"no header", "", msgMissingBearer},
        {"wrong scheme", "Basic good", msgMissingBearer},
        {"lowercase scheme", "bearer good", msgMissingBearer},
        {"empty token", "Bearer ", msgMissingBearer},
        {"extra part", "Bearer good extra", msgMissingBearer},
        {"padded token", "Bearer   good", msgMissingBearer},
        {"trailing space", "Bearer good ", msgMissingBearer},
        {"invalid token", "Bearer forged", msgInvalidToken},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            rec, _, called := runGate(t, v, tc.header)
            assert.False(t, called)
            assert.Equal(t, http.StatusUnauthorized, rec.Code)
            assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.msg), rec.Body.String())
        })
    }
}

func TestJWTAuth_StoreFailureIs500(t *testing.T) {
    rec, _, called := runGate(t, fakeVerifier{err: errors.New("db down")}, "Bearer good")
    assert.False(t, called)
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.NotContains(t, rec.Body.String(), "db down")
}

func TestBearerToken(t *testing.T) {
    raw, ok := bearerToken("Bearer abc.def.ghi")
    assert.True(t, ok)
    assert.Equal(t, "abc.def.ghi", raw)

    _, ok = bearerToken("Bearerabc")
    assert.False(t, ok)
}
