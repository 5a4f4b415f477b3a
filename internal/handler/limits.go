package handler

import (
    "fmt"
    "unicode/utf8"

    "github.com/iliyamo/blog-backend/internal/utils"
)

// Column limits from the schema.  VARCHAR limits count characters, TEXT
// counts bytes.
const (
    maxUsernameLen  = 150
    maxEmailLen     = 254
    maxNameLen      = 150
    maxTitleLen     = 200
    maxContentBytes = 65535
)

// checkLen rejects s when it has more than max characters.
func checkLen(field, s string, max int) error {
    if utf8.RuneCountInString(s) > max {
        return validation(fmt.Sprintf("%s must be at most %d characters", field, max))
    }
    return nil
}

func checkRegistration(req registerReq) error {
    if len(req.Password) > utils.MaxPasswordBytes {
        return validation(fmt.Sprintf("password must be at most %d bytes", utils.MaxPasswordBytes))
    }
    for _, f := range []struct {
        name, value string
        max         int
    }{
        {"username", req.Username, maxUsernameLen},
        {"email", req.Email, maxEmailLen},
        {"first_name", req.FirstName, maxNameLen},
        {"last_name", req.LastName, maxNameLen},
    } {
        if err := checkLen(f.name, f.value, f.max); err != nil {
            return err
        }
    }
    return nil
}

func checkPost(title, content string) error {
    if err := checkLen("title", title, maxTitleLen); err != nil {
        return err
    }
    if len(content) > maxContentBytes {
        return validation(fmt.Sprintf("content must be at most %d bytes", maxContentBytes))
    }
    return nil
}
