package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireStaff rejects requests whose authenticated user is not staff with
// 403 Forbidden.  It must run after JWTAuth; a request without a user is
// treated as unauthenticated.
func RequireStaff() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            u := CurrentUser(c)
            if u == nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgMissingBearer})
            }
            if !u.IsStaff {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
