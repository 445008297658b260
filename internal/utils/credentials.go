package utils

import (
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "golang.org/x/crypto/bcrypt"
)

// TokenIssuer is written into the iss claim and required when parsing.
const TokenIssuer = "club-ledger"

// ErrInvalidToken is returned by ParseAccessToken for any token that must
// not be trusted.
var ErrInvalidToken = errors.New("invalid access token")

// AccessClaims are the claims of an admin access token.  Subject holds the
// user id in decimal.
type AccessClaims struct {
    Role string `json:"role"`
    jwt.RegisteredClaims
}

// AccessToken is a signed JWT and its expiry (UTC).
type AccessToken struct {
    Token string
    Exp   time.Time
}

// NewAccessToken signs an HS256 token for userID with role that expires
// after ttlMin minutes.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := AccessClaims{
        Role: role,
        RegisteredClaims: jwt.RegisteredClaims{
            Issuer:    TokenIssuer,
            Subject:   strconv.FormatUint(userID, 10),
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, fmt.Errorf("sign access token: %w", err)
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and returns the user id
// and role it carries.  Only HS256 is accepted; exp is mandatory.
func ParseAccessToken(secret, raw string) (uint64, string, error) {
    var claims AccessClaims
    _, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithIssuer(TokenIssuer),
        jwt.WithExpirationRequired(),
    )
    if err != nil {
        return 0, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
    }
    uid, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil || uid == 0 {
        return 0, "", fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
    }
    return uid, claims.Role, nil
}

// HashPassword returns a bcrypt hash of plain.  Costs outside bcrypt's
// range use bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
    if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
        cost = bcrypt.DefaultCost
    }
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", fmt.Errorf("hash password: %w", err)
    }
    return string(b), nil
}

// VerifyPassword reports whether plain matches hash.
func VerifyPassword(hash, plain string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
