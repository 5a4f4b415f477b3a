package handler

import (
    "context"
    "errors"
    "net/http"
    "net/mail"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-backend/internal/middleware"
    "github.com/iliyamo/blog-backend/internal/model"
    "github.com/iliyamo/blog-backend/internal/repository"
    "github.com/iliyamo/blog-backend/internal/service"
    "github.com/iliyamo/blog-backend/internal/utils"
)

// dbTimeout bounds every store call made on behalf of a request.
const dbTimeout = 5 * time.Second

// UserStore is the subset of the credential store the handlers need.
type UserStore interface {
    Create(ctx context.Context, u *model.User) error
    GetByLogin(ctx context.Context, login string) (*model.User, error)
    List(ctx context.Context) ([]*model.User, error)
}

// TokenIssuer issues and refreshes token pairs.  *service.TokenService
// satisfies it.
type TokenIssuer interface {
    Issue(userID uint64) (service.TokenPair, error)
    Refresh(ctx context.Context, raw string) (service.TokenPair, *model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Users      UserStore
    Tokens     TokenIssuer
    BcryptCost int
}

func NewAuthHandler(users UserStore, tokens TokenIssuer, bcryptCost int) *AuthHandler {
    if users == nil || tokens == nil {
        panic("nil dependency passed to NewAuthHandler")
    }
    return &AuthHandler{Users: users, Tokens: tokens, BcryptCost: bcryptCost}
}

// Register creates a user and returns a token pair immediately.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return validation("invalid request body")
    }
    req.Username = strings.TrimSpace(req.Username)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    req.FirstName = strings.TrimSpace(req.FirstName)
    req.LastName = strings.TrimSpace(req.LastName)
    if req.Username == "" || req.Email == "" || req.Password == "" {
        return validation("username, email and password are required")
    }
    if _, err := mail.ParseAddress(req.Email); err != nil {
        return validation("enter a valid email address")
    }
    if err := checkRegistration(req); err != nil {
        return err
    }

    hash, err := utils.HashPassword(req.Password, h.BcryptCost)
    if err != nil {
        return err
    }
    u := &model.User{
        Username:     req.Username,
        Email:        req.Email,
        PasswordHash: hash,
        FirstName:    req.FirstName,
        LastName:     req.LastName,
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()
    if err := h.Users.Create(ctx, u); err != nil {
        return classify(err)
    }

    pair, err := h.Tokens.Issue(u.ID)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusCreated, authResp{
        AccessToken:  pair.Access.Token,
        RefreshToken: pair.Refresh.Token,
        User:         toUserResp(u),
    })
}

// Login accepts a username or an email address in the username field.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return validation("invalid request body")
    }
    login := strings.TrimSpace(req.Username)
    if login == "" || req.Password == "" {
        return validation("username and password are required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByLogin(ctx, login)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            utils.BurnPasswordCheck(req.Password)
            return authentication("invalid credentials")
        }
        return err
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return authentication("invalid credentials")
    }

    pair, err := h.Tokens.Issue(u.ID)
    if err != nil {
        return err
    }
    return c.JSON(http.StatusOK, authResp{
        AccessToken:  pair.Access.Token,
        RefreshToken: pair.Refresh.Token,
        User:         toUserResp(u),
    })
}

// Refresh exchanges a valid refresh token for a new pair.  The presented
// refresh token is not revoked and stays usable until it expires.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil {
        return validation("invalid request body")
    }
    raw := strings.TrimSpace(req.RefreshToken)
    if raw == "" {
        return validation("refresh_token is required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    pair, _, err := h.Tokens.Refresh(ctx, raw)
    if err != nil {
        return classify(err)
    }
    return c.JSON(http.StatusOK, tokensResp{
        AccessToken:  pair.Access.Token,
        RefreshToken: pair.Refresh.Token,
    })
}

// Logout is stateless: tokens stay valid until they expire and the client is
// expected to discard them.
func (h *AuthHandler) Logout(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out"})
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c echo.Context) error {
    u := middleware.CurrentUser(c)
    if u == nil {
        return authentication("Authorization header missing or invalid")
    }
    return c.JSON(http.StatusOK, echo.Map{"user": toUserResp(u)})
}
