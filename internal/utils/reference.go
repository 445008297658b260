package utils

import (
    "crypto/rand"
    "encoding/hex"
    "strings"
    "time"
)

// ReferencePrefix starts every booking reference.
const ReferencePrefix = "BK"

// NewBookingReference returns BK + the UTC date of now as YYYYMMDD + ten
// uppercase hex characters from five bytes of crypto/rand.  Uniqueness is
// enforced by the database, not here.
func NewBookingReference(now time.Time) (string, error) {
    suffix, err := randomHex(5)
    if err != nil {
        return "", err
    }
    return ReferencePrefix + now.UTC().Format("20060102") + strings.ToUpper(suffix), nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
