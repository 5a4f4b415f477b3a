package middleware

import (
    "log/slog"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/blog-backend/internal/logging"
)

// RequestLogger attaches a request-scoped logger (carrying the request id) to
// the request context and writes one access line per request.  It must run
// after echo's RequestID middleware.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        BeforeNextFunc: func(c echo.Context) {
            rid := c.Response().Header().Get(echo.HeaderXRequestID)
            req := c.Request()
            ctx := logging.Into(req.Context(), base.With("request_id", rid))
            c.SetRequest(req.WithContext(ctx))
        },
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            attrs := []any{
                "method", v.Method,
                "uri", v.URI,
                "status", v.Status,
                "latency_ms", float64(v.Latency.Microseconds())/1000,
                "request_id", v.RequestID,
                "user", userID(c),
            }
            if v.Error != nil {
                base.Error("request", append(attrs, "err", v.Error)...)
                return nil
            }
            base.Info("request", attrs...)
            return nil
        },
    })
}
