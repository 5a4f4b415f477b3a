package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "errors"
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/blog-backend/internal/logging"
    "github.com/iliyamo/blog-backend/internal/model"
    "github.com/iliyamo/blog-backend/internal/service"
)

// AccessVerifier resolves an access token to the user it was issued to.
// *service.TokenService satisfies it.
type AccessVerifier interface {
    VerifyAccess(ctx context.Context, raw string) (*model.User, error)
}

const bearerPrefix = "Bearer "

// Outward messages.  Which check failed is never revealed.
const (
    msgMissingBearer = "Authorization header missing or invalid"
    msgInvalidToken  = "Invalid or expired token"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the resolved user in the request context.  The wrapped handler is
// never invoked for an unauthenticated request.  Handlers read the user via
// CurrentUser(c).
func JWTAuth(v AccessVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgMissingBearer})
            }

            req := c.Request()
            u, err := v.VerifyAccess(req.Context(), raw)
            if err != nil {
                if errors.Is(err, service.ErrInvalidToken) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidToken})
                }
                logging.From(req.Context()).Error("resolve bearer user", "err", err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
            }

            setCurrentUser(c, u)
            ctx := logging.Into(req.Context(), logging.From(req.Context()).With("user_id", u.ID))
            c.SetRequest(req.WithContext(ctx))
            return next(c)
        }
    }
}

// bearerToken extracts the credential from an Authorization header of the
// exact form "Bearer <token>": one space after the scheme and no padding.
func bearerToken(header string) (string, bool) {
    if !strings.HasPrefix(header, bearerPrefix) {
        return "", false
    }
    raw := header[len(bearerPrefix):]
    if raw == "" || strings.ContainsAny(raw, " \t") {
        return "", false
    }
    return raw, true
}
