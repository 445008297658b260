package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    tok, err := NewAccessToken("s3cret", 42, "admin", 10)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().Add(10*time.Minute), tok.Exp, 5*time.Second)

    uid, role, err := ParseAccessToken("s3cret", tok.Token)
    require.NoError(t, err)
    assert.EqualValues(t, 42, uid)
    assert.Equal(t, "admin", role)
}

func TestParseAccessTokenRejects(t *testing.T) {
    good, err := NewAccessToken("s3cret", 1, "admin", 10)
    require.NoError(t, err)
    expired, err := NewAccessToken("s3cret", 1, "admin", -1)
    require.NoError(t, err)

    sign := func(claims jwt.Claims) string {
        s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
        require.NoError(t, err)
        return s
    }
    future := jwt.NewNumericDate(time.Now().Add(time.Hour))

    cases := map[string]struct{ secret, raw string }{
        "wrong secret":  {"other", good.Token},
        "expired":       {"s3cret", expired.Token},
        "garbage":       {"s3cret", "not-a-jwt"},
        "no exp":        {"s3cret", sign(AccessClaims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer, Subject: "1"}})},
        "other issuer":  {"s3cret", sign(AccessClaims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Issuer: "elsewhere", Subject: "1", ExpiresAt: future}})},
        "zero subject":  {"s3cret", sign(AccessClaims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer, Subject: "0", ExpiresAt: future}})},
        "text subject":  {"s3cret", sign(AccessClaims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer, Subject: "bob", ExpiresAt: future}})},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            _, _, err := ParseAccessToken(tc.secret, tc.raw)
            assert.ErrorIs(t, err, ErrInvalidToken)
        })
    }
}

func TestPasswordHashing(t *testing.T) {
    hash, err := HashPassword("correct horse", 0)
    require.NoError(t, err)
    assert.True(t, VerifyPassword(hash, "correct horse"))
    assert.False(t, VerifyPassword(hash, "battery staple"))
}
