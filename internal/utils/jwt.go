package utils // package utils provides helper functions for token signing and password hashing

import (
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
    "github.com/google/uuid"
)

// Token types carried in the "typ" claim.  An access token can never be
// presented where a refresh token is expected and vice versa.
const (
    TokenTypeAccess  = "access"
    TokenTypeRefresh = "refresh"
)

// Claims is the payload of both access and refresh tokens: the user id,
// the token type and the registered claims (sub, iat, exp, jti).
type Claims struct {
    UserID    uint64 `json:"user_id"`
    TokenType string `json:"typ"`
    jwt.RegisteredClaims
}

// SignedToken is a serialized JWT together with its expiry.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Parse failure classes.  They are internal reasons only; callers outside
// the token service collapse them into a single unauthenticated outcome.
var (
    ErrTokenMalformed = errors.New("token malformed")
    ErrTokenSignature = errors.New("token signature invalid")
    ErrTokenExpired   = errors.New("token expired")
)

// SignToken builds and signs an HS256 JWT for userID of the given type.
// It is valid from now until now+ttl.
func SignToken(secret []byte, userID uint64, typ string, now time.Time, ttl time.Duration) (SignedToken, error) {
    now = now.UTC()
    exp := now.Add(ttl)
    claims := Claims{
        UserID:    userID,
        TokenType: typ,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
            ID:        uuid.NewString(),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString(secret)
    if err != nil {
        return SignedToken{}, fmt.Errorf("sign %s token: %w", typ, err)
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies the signature and expiry of raw against secret using
// now as the current time, and returns its claims.  Only HS256 is accepted.
func ParseToken(secret []byte, raw string, now func() time.Time) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(raw, claims,
        func(*jwt.Token) (interface{}, error) { return secret, nil },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithIssuedAt(),
        jwt.WithTimeFunc(now),
    )
    switch {
    case err == nil && tok.Valid:
        return claims, nil
    case errors.Is(err, jwt.ErrTokenExpired):
        return nil, ErrTokenExpired
    case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
        return nil, ErrTokenSignature
    default:
        return nil, ErrTokenMalformed
    }
}
