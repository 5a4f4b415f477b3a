package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
)

// AdminHandler serves staff-only listings.
type AdminHandler struct {
    Users UserStore
}

func NewAdminHandler(users UserStore) *AdminHandler {
    if users == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{Users: users}
}

// ListUsers returns every registered user ordered by id.
func (h *AdminHandler) ListUsers(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    users, err := h.Users.List(ctx)
    if err != nil {
        return err
    }
    out := make([]userResp, 0, len(users))
    for _, u := range users {
        out = append(out, toUserResp(u))
    }
    return c.JSON(http.StatusOK, echo.Map{"users": out})
}
