package middleware

// identity.go holds the request-context plumbing shared by the auth gate,
// the role check and the handlers.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-backend/internal/model"
)

const userContextKey = "auth.user"

func setCurrentUser(c echo.Context, u *model.User) {
    c.Set(userContextKey, u)
}

// CurrentUser returns the user attached by JWTAuth, or nil for a request that
// did not pass through the gate.
func CurrentUser(c echo.Context) *model.User {
    u, _ := c.Get(userContextKey).(*model.User)
    return u
}

// userID returns the authenticated user's id as a string, or "guest".
func userID(c echo.Context) string {
    if u := CurrentUser(c); u != nil {
        return strconv.FormatUint(u.ID, 10)
    }
    return "guest"
}
