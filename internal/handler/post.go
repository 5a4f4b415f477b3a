package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-backend/internal/logging"
    "github.com/iliyamo/blog-backend/internal/middleware"
    "github.com/iliyamo/blog-backend/internal/model"
    "github.com/iliyamo/blog-backend/internal/policy"
    "github.com/iliyamo/blog-backend/internal/queue"
)

const (
    defaultPageSize = 10
    maxPageSize     = 100
    publishTimeout  = 5 * time.Second
)

// PostStore is the post persistence the handlers need.  *repository.PostRepo
// satisfies it.
type PostStore interface {
    Create(ctx context.Context, p *model.Post) error
    GetByID(ctx context.Context, id uint64) (*model.Post, error)
    Count(ctx context.Context) (int, error)
    List(ctx context.Context, limit, offset int) ([]*model.Post, error)
    Update(ctx context.Context, id uint64, title, content string) error
    Delete(ctx context.Context, id uint64) error
}

// PostHandler serves the public post reads and the owner-only mutations.
type PostHandler struct {
    Posts  PostStore
    Events queue.Publisher
    now    func() time.Time
}

func NewPostHandler(posts PostStore, events queue.Publisher) *PostHandler {
    if posts == nil {
        panic("nil repository passed to NewPostHandler")
    }
    if events == nil {
        events = queue.NopPublisher{}
    }
    return &PostHandler{Posts: posts, Events: events, now: time.Now}
}

// List returns one page of posts, newest first.
func (h *PostHandler) List(c echo.Context) error {
    page := positiveOr(c.QueryParam("page"), 1)
    size := positiveOr(c.QueryParam("page_size"), defaultPageSize)
    if size > maxPageSize {
        size = maxPageSize
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    total, err := h.Posts.Count(ctx)
    if err != nil {
        return err
    }
    pages := (total + size - 1) / size
    if pages < 1 {
        pages = 1
    }
    if page > pages {
        page = pages
    }

    posts, err := h.Posts.List(ctx, size, (page-1)*size)
    if err != nil {
        return err
    }
    out := make([]postResp, 0, len(posts))
    for _, p := range posts {
        out = append(out, toPostResp(p))
    }
    return c.JSON(http.StatusOK, postPageResp{
        Posts:       out,
        Page:        page,
        Pages:       pages,
        HasNext:     page < pages,
        HasPrevious: page > 1,
        TotalPosts:  total,
    })
}

// Get returns a single post.
func (h *PostHandler) Get(c echo.Context) error {
    id, err := postID(c)
    if err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    p, err := h.Posts.GetByID(ctx, id)
    if err != nil {
        return classify(err)
    }
    return c.JSON(http.StatusOK, toPostResp(p))
}

// Create stores a post authored by the authenticated user.
func (h *PostHandler) Create(c echo.Context) error {
    actor := middleware.CurrentUser(c)
    if actor == nil {
        return authentication("Authorization header missing or invalid")
    }
    var req postReq
    if err := c.Bind(&req); err != nil {
        return validation("invalid request body")
    }
    title, content := deref(req.Title), deref(req.Content)
    if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
        return validation("title and content are required")
    }
    if err := checkPost(title, content); err != nil {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    p := &model.Post{Title: title, Content: content, AuthorID: actor.ID}
    if err := h.Posts.Create(ctx, p); err != nil {
        return classify(err)
    }
    h.publish(c.Request().Context(), queue.PostCreated, p)
    return c.JSON(http.StatusCreated, toPostResp(p))
}

// Update changes the title and/or content of a post the caller owns.  Fields
// missing from the body keep their stored value.
func (h *PostHandler) Update(c echo.Context) error {
    actor := middleware.CurrentUser(c)
    if actor == nil {
        return authentication("Authorization header missing or invalid")
    }
    id, err := postID(c)
    if err != nil {
        return err
    }
    var req postReq
    if err := c.Bind(&req); err != nil {
        return validation("invalid request body")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    p, err := policy.LoadOwned(ctx, h.Posts, id, actor)
    if err != nil {
        return classify(err)
    }
    if req.Title != nil {
        if strings.TrimSpace(*req.Title) == "" {
            return validation("title may not be blank")
        }
        p.Title = *req.Title
    }
    if req.Content != nil {
        if strings.TrimSpace(*req.Content) == "" {
            return validation("content may not be blank")
        }
        p.Content = *req.Content
    }

    if err := checkPost(p.Title, p.Content); err != nil {
        return err
    }
    if err := h.Posts.Update(ctx, id, p.Title, p.Content); err != nil {
        return classify(err)
    }
    updated, err := h.Posts.GetByID(ctx, id)
    if err != nil {
        return classify(err)
    }
    h.publish(c.Request().Context(), queue.PostUpdated, updated)
    return c.JSON(http.StatusOK, toPostResp(updated))
}

// Delete removes a post the caller owns.
func (h *PostHandler) Delete(c echo.Context) error {
    actor := middleware.CurrentUser(c)
    if actor == nil {
        return authentication("Authorization header missing or invalid")
    }
    id, err := postID(c)
    if err != nil {
        return err
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    p, err := policy.LoadOwned(ctx, h.Posts, id, actor)
    if err != nil {
        return classify(err)
    }
    if err := h.Posts.Delete(ctx, id); err != nil {
        return classify(err)
    }
    h.publish(c.Request().Context(), queue.PostDeleted, p)
    return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}

// publish sends the event in the background; the broker is never allowed to
// hold up or fail the request.
func (h *PostHandler) publish(ctx context.Context, typ string, p *model.Post) {
    ev := queue.PostEvent{
        Type:       typ,
        PostID:     p.ID,
        AuthorID:   p.AuthorID,
        Title:      p.Title,
        OccurredAt: h.now().UTC(),
    }
    ctx = context.WithoutCancel(ctx)
    go func() {
        ctx, cancel := context.WithTimeout(ctx, publishTimeout)
        defer cancel()
        if err := h.Events.Publish(ctx, ev); err != nil {
            logging.From(ctx).Warn("publish post event", "err", err, "type", ev.Type, "post_id", ev.PostID)
        }
    }()
}

func postID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return 0, validation("invalid post id")
    }
    return id, nil
}

// positiveOr parses s as a positive integer, falling back to def.
func positiveOr(s string, def int) int {
    n, err := strconv.Atoi(strings.TrimSpace(s))
    if err != nil || n < 1 {
        return def
    }
    return n
}

func deref(s *string) string {
    if s == nil {
        return ""
    }
    return *s
}
