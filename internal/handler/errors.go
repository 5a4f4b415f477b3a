package handler

import (
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/blog-backend/internal/logging"
    "github.com/iliyamo/blog-backend/internal/policy"
    "github.com/iliyamo/blog-backend/internal/repository"
    "github.com/iliyamo/blog-backend/internal/service"
)

// Kind classifies a client-facing failure.
type Kind int

const (
    KindValidation Kind = iota + 1
    KindAuthentication
    KindAuthorization
    KindNotFound
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
    switch k {
    case KindValidation:
        return http.StatusBadRequest
    case KindAuthentication:
        return http.StatusUnauthorized
    case KindAuthorization:
        return http.StatusForbidden
    case KindNotFound:
        return http.StatusNotFound
    }
    return http.StatusInternalServerError
}

// Error is a failure whose message is safe to show to the client.
type Error struct {
    Kind Kind
    Msg  string
}

func (e *Error) Error() string { return e.Msg }

func validation(msg string) error     { return &Error{Kind: KindValidation, Msg: msg} }
func authentication(msg string) error { return &Error{Kind: KindAuthentication, Msg: msg} }
func notFound(msg string) error       { return &Error{Kind: KindNotFound, Msg: msg} }

const msgInternal = "internal server error"

// classify translates sentinel errors from the lower layers into client
// errors.  Anything it does not recognise is returned unchanged.
func classify(err error) error {
    var he *Error
    switch {
    case errors.As(err, &he):
        return he
    case errors.Is(err, repository.ErrPostNotFound):
        return notFound("post not found")
    case errors.Is(err, repository.ErrUserNotFound):
        return notFound("user not found")
    case errors.Is(err, repository.ErrUsernameTaken):
        return validation("a user with that username already exists")
    case errors.Is(err, repository.ErrEmailTaken):
        return validation("a user with that email already exists")
    case repository.IsDataTooLong(err):
        return validation("a field exceeds its maximum length")
    case errors.Is(err, policy.ErrForbidden):
        return &Error{Kind: KindAuthorization, Msg: "you do not have permission to modify this post"}
    case errors.Is(err, service.ErrInvalidToken):
        return authentication("Invalid or expired token")
    }
    return err
}

// ErrorHandler renders every error as {"error": "<message>"}.  Unclassified
// errors become 500 and are logged with their cause.
func ErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }

    status, msg := http.StatusInternalServerError, msgInternal
    var he *Error
    var ee *echo.HTTPError
    switch cerr := classify(err); {
    case errors.As(cerr, &he):
        status, msg = he.Kind.Status(), he.Msg
    case errors.As(cerr, &ee):
        status = ee.Code
        if s, ok := ee.Message.(string); ok {
            msg = s
        } else {
            msg = fmt.Sprint(ee.Message)
        }
        if status >= http.StatusInternalServerError {
            logging.From(c.Request().Context()).Error("request failed", "err", err)
            msg = msgInternal
        }
    default:
        logging.From(c.Request().Context()).Error("request failed", "err", err)
    }

    var werr error
    if c.Request().Method == http.MethodHead {
        werr = c.NoContent(status)
    } else {
        werr = c.JSON(status, echo.Map{"error": msg})
    }
    if werr != nil {
        logging.From(c.Request().Context()).Warn("write error response", "err", werr)
    }
}
