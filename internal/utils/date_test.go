package utils

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
    plus3 := time.FixedZone("plus3", 3*3600)
    cases := []struct {
        name string
        in   any
        want string
    }{
        {"canonical", "2024-03-05", "2024-03-05"},
        {"rfc3339", "2024-03-05T23:30:00Z", "2024-03-05"},
        {"rfc3339 offset kept as written", "2024-03-05T01:00:00+03:00", "2024-03-05"},
        {"fractional", "2024-03-05T10:11:12.345Z", "2024-03-05"},
        {"local iso", "2024-03-05T10:11:12", "2024-03-05"},
        {"space separated", "2024-03-05 10:11:12", "2024-03-05"},
        {"time value", time.Date(2024, 12, 31, 23, 59, 0, 0, plus3), "2024-12-31"},
        {"bytes", []byte("2024-01-02"), "2024-01-02"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got, err := NormalizeDate(tc.in)
            require.NoError(t, err)
            assert.Equal(t, tc.want, got)
        })
    }
}

func TestNormalizeDateRejects(t *testing.T) {
    for _, in := range []any{"", "2024-13-01", "05/03/2024", "yesterday", 20240305, time.Time{}, nil} {
        _, err := NormalizeDate(in)
        assert.ErrorIs(t, err, ErrInvalidFormat, "input %#v", in)
    }
}

func TestDateScan(t *testing.T) {
    var d Date
    require.NoError(t, d.Scan(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
    assert.Equal(t, Date("2025-07-01"), d)
    require.NoError(t, d.Scan("2025-07-02"))
    assert.Equal(t, Date("2025-07-02"), d)
}

func TestTimestampScanAndJSON(t *testing.T) {
    var ts Timestamp
    require.NoError(t, ts.Scan("2025-07-01 10:00:00+00:00"))
    assert.True(t, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC).Equal(ts.Time))

    b, err := ts.MarshalJSON()
    require.NoError(t, err)
    assert.Equal(t, `"2025-07-01T10:00:00Z"`, string(b))

    require.Error(t, ts.Scan(42))
}
