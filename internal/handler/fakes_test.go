package handler

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "sort"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/iliyamo/blog-backend/internal/middleware"
    "github.com/iliyamo/blog-backend/internal/model"
    "github.com/iliyamo/blog-backend/internal/queue"
    "github.com/iliyamo/blog-backend/internal/repository"
    "github.com/iliyamo/blog-backend/internal/service"
)

// memUsers is an in-memory credential store.
type memUsers struct {
    mu   sync.Mutex
    byID map[uint64]*model.User
    next uint64
    err  error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]*model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.err != nil {
        return m.err
    }
    for _, x := range m.byID {
        if x.Username == u.Username {
            return repository.ErrUsernameTaken
        }
        if x.Email == u.Email {
            return repository.ErrEmailTaken
        }
    }
    m.next++
    u.ID = m.next
    cp := *u
    m.byID[u.ID] = &cp
    return nil
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.err != nil {
        return nil, m.err
    }
    if u, ok := m.byID[id]; ok {
        cp := *u
        return &cp, nil
    }
    return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByLogin(_ context.Context, login string) (*model.User, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.err != nil {
        return nil, m.err
    }
    for _, u := range m.byID {
        if u.Username == login || u.Email == strings.ToLower(login) {
            cp := *u
            return &cp, nil
        }
    }
    return nil, repository.ErrUserNotFound
}

func (m *memUsers) List(_ context.Context) ([]*model.User, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.err != nil {
        return nil, m.err
    }
    out := make([]*model.User, 0, len(m.byID))
    for _, u := range m.byID {
        cp := *u
        out = append(out, &cp)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (m *memUsers) setStaff(id uint64) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.byID[id].IsStaff = true
}

// memPosts is an in-memory post store; timestamps advance one second per write.
type memPosts struct {
    mu    sync.Mutex
    users *memUsers
    rows  map[uint64]*model.Post
    next  uint64
    clock time.Time
    err   error
}

func newMemPosts(users *memUsers) *memPosts {
    return &memPosts{users: users, rows: map[uint64]*model.Post{}, clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memPosts) tick() time.Time { m.clock = m.clock.Add(time.Second); return m.clock }

func (m *memPosts) withAuthor(p *model.Post) *model.Post {
    cp := *p
    if u, err := m.users.GetByID(context.Background(), p.AuthorID); err == nil {
        cp.AuthorUsername = u.Username
    }
    return &cp
}

func (m *memPosts) Create(_ context.Context, p *model.Post) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.err != nil {
        return m.err
    }
    m.next++
    now := m.tick()
    p.ID, p.CreatedAt, p.UpdatedAt = m.next, now, now
    cp := *p
    m.rows[p.ID] = &cp
    *p = *m.withAuthor(p)
    return nil
}

func (m *memPosts) GetByID(_ context.Context, id uint64) (*model.Post, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.err != nil {
        return nil, m.err
    }
    p, ok := m.rows[id]
    if !ok {
        return nil, repository.ErrPostNotFound
    }
    return m.withAuthor(p), nil
}

func (m *memPosts) Count(_ context.Context) (int, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.err != nil {
        return 0, m.err
    }
    return len(m.rows), nil
}

func (m *memPosts) List(_ context.Context, limit, offset int) ([]*model.Post, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.err != nil {
        return nil, m.err
    }
    all := make([]*model.Post, 0, len(m.rows))
    for _, p := range m.rows {
        all = append(all, m.withAuthor(p))
    }
    sort.Slice(all, func(i, j int) bool {
        if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
            return all[i].CreatedAt.After(all[j].CreatedAt)
        }
        return all[i].ID > all[j].ID
    })
    if offset >= len(all) {
        return []*model.Post{}, nil
    }
    end := offset + limit
    if end > len(all) {
        end = len(all)
    }
    return all[offset:end], nil
}

func (m *memPosts) Update(_ context.Context, id uint64, title, content string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    p, ok := m.rows[id]
    if !ok {
        return repository.ErrPostNotFound
    }
    p.Title, p.Content, p.UpdatedAt = title, content, m.tick()
    return nil
}

func (m *memPosts) Delete(_ context.Context, id uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if _, ok := m.rows[id]; !ok {
        return repository.ErrPostNotFound
    }
    delete(m.rows, id)
    return nil
}

type chanPublisher chan queue.PostEvent

func (p chanPublisher) Publish(_ context.Context, ev queue.PostEvent) error {
    p <- ev
    return nil
}

type testClock struct {
    mu sync.Mutex
    t  time.Time
}

func (c *testClock) now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.t
}

func (c *testClock) advance(d time.Duration) {
    c.mu.Lock()
    defer c.mu.Unlock()
    c.t = c.t.Add(d)
}

type testEnv struct {
    e      *echo.Echo
    users  *memUsers
    posts  *memPosts
    events chanPublisher
    tokens *service.TokenService
    clock  *testClock
}

// newTestEnv wires the handlers onto an Echo instance the same way the
// server does, backed by in-memory stores.
func newTestEnv(t *testing.T) *testEnv {
    t.Helper()
    users := newMemUsers()
    posts := newMemPosts(users)
    events := make(chanPublisher, 64)
    clk := &testClock{t: time.Now().UTC().Truncate(time.Second)}
    tokens := service.NewTokenService(service.TokenConfig{
        Secret:     "test-secret",
        AccessTTL:  15 * time.Minute,
        RefreshTTL: 7 * 24 * time.Hour,
    }, users, service.WithClock(clk.now))

    e := echo.New()
    e.HTTPErrorHandler = ErrorHandler
    gate := middleware.JWTAuth(tokens)

    auth := NewAuthHandler(users, tokens, bcrypt.MinCost)
    e.POST("/register", auth.Register)
    e.POST("/login", auth.Login)
    e.POST("/auth/refresh", auth.Refresh)
    e.POST("/auth/logout", auth.Logout)
    e.GET("/auth/profile", auth.Profile, gate)

    ph := NewPostHandler(posts, events)
    e.GET("/posts", ph.List)
    e.GET("/posts/:id", ph.Get)
    e.POST("/posts", ph.Create, gate)
    e.PUT("/posts/:id", ph.Update, gate)
    e.DELETE("/posts/:id", ph.Delete, gate)

    e.GET("/admin/users", NewAdminHandler(users).ListUsers, gate, middleware.RequireStaff())

    return &testEnv{e: e, users: users, posts: posts, events: events, tokens: tokens, clock: clk}
}

func (te *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
    t.Helper()
    var buf bytes.Buffer
    if body != nil {
        switch b := body.(type) {
        case string:
            buf.WriteString(b)
        default:
            require.NoError(t, json.NewEncoder(&buf).Encode(b))
        }
    }
    req := httptest.NewRequest(method, path, &buf)
    if body != nil {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    if token != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    te.e.ServeHTTP(rec, req)
    return rec
}

// register creates a user and returns its access token and id.
func (te *testEnv) register(t *testing.T, username string) (string, uint64) {
    t.Helper()
    rec := te.do(t, http.MethodPost, "/register", "", echo.Map{
        "username": username,
        "email":    username + "@example.com",
        "password": "testpass123",
    })
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    var out authResp
    decode(t, rec, &out)
    return out.AccessToken, out.User.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
    t.Helper()
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
    t.Helper()
    var out struct {
        Error string `json:"error"`
    }
    decode(t, rec, &out)
    return out.Error
}
