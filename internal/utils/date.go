package utils

import (
    "database/sql/driver"
    "fmt"
    "strings"
    "time"
)

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

// datetime layouts accepted on input; the calendar date is taken as written
// and never shifted into another time zone.
var datetimeLayouts = []string{
    time.RFC3339Nano,
    "2006-01-02T15:04:05",
    "2006-01-02T15:04",
    "2006-01-02 15:04:05",
    "2006-01-02 15:04:05.999999999-07:00",
    "2006-01-02 15:04:05-07:00",
    "2006-01-02 15:04:05Z07:00",
}

// NormalizeDate turns v into a YYYY-MM-DD string.  Canonical strings pass
// through, ISO datetimes are truncated to their date part, and time.Time
// values yield their own calendar date.
func NormalizeDate(v any) (string, error) {
    switch t := v.(type) {
    case time.Time:
        if t.IsZero() {
            return "", ErrInvalidFormat
        }
        return t.Format(DateLayout), nil
    case *time.Time:
        if t == nil {
            return "", ErrInvalidFormat
        }
        return NormalizeDate(*t)
    case Date:
        return NormalizeDate(string(t))
    case []byte:
        return NormalizeDate(string(t))
    case string:
        s := strings.TrimSpace(t)
        if d, err := time.Parse(DateLayout, s); err == nil {
            return d.Format(DateLayout), nil
        }
        for _, layout := range datetimeLayouts {
            if d, err := time.Parse(layout, s); err == nil {
                return d.Format(DateLayout), nil
            }
        }
        return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
    }
    return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidFormat, v)
}

// ParseDate parses a canonical date into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
    d, err := NormalizeDate(s)
    if err != nil {
        return time.Time{}, err
    }
    return time.Parse(DateLayout, d)
}

// Date is a canonical YYYY-MM-DD value backed by a DATE column.  MySQL with
// parseTime returns time.Time while SQLite returns text.
type Date string

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
    if src == nil {
        *d = ""
        return nil
    }
    s, err := NormalizeDate(src)
    if err != nil {
        return err
    }
    *d = Date(s)
    return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) { return string(d), nil }

// Timestamp scans DATETIME columns from either driver and serializes as
// RFC3339 in UTC.
type Timestamp struct {
    time.Time
}

// Scan implements sql.Scanner.
func (ts *Timestamp) Scan(src any) error {
    switch t := src.(type) {
    case nil:
        ts.Time = time.Time{}
        return nil
    case time.Time:
        ts.Time = t.UTC()
        return nil
    case []byte:
        return ts.Scan(string(t))
    case string:
        s := strings.TrimSpace(t)
        for _, layout := range append([]string{DateLayout}, datetimeLayouts...) {
            if p, err := time.Parse(layout, s); err == nil {
                ts.Time = p.UTC()
                return nil
            }
        }
        return fmt.Errorf("%w: timestamp %q", ErrInvalidFormat, s)
    }
    return fmt.Errorf("%w: timestamp of type %T", ErrInvalidFormat, src)
}

// MarshalJSON writes the time as RFC3339 in UTC.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
    if ts.IsZero() {
        return []byte("null"), nil
    }
    return []byte(`"` + ts.UTC().Format(time.RFC3339) + `"`), nil
}
