package utils // package utils provides normalizers for money and dates plus credential helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidFormat is returned when a value cannot be turned into canonical
// money or a canonical date.
var ErrInvalidFormat = errors.New("invalid format")

// ErrOutOfRange is returned for amounts whose magnitude reaches MaxAmount.
var ErrOutOfRange = errors.New("amount out of range")

// StoragePlaces is the number of decimal places kept for stored revenue
// amounts.  Reports round to two places only once, on the aggregate.
const StoragePlaces = 4

const (
	// maxIntegerDigits matches the DECIMAL(14,4) amount columns.
	maxIntegerDigits = 10
	// maxInputScale caps the decimal places accepted before rounding.
	maxInputScale    = 20
)

// MaxAmount is the exclusive upper bound on the magnitude of any amount.
var MaxAmount = decimal.New(1, maxIntegerDigits)

// Money is a non-negative amount with exactly two decimal places.  It scans
// from any SQL driver representation and marshals to a JSON number such as
// 80.00 so clients never see a quoted amount.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d half-up to two places.
func NewMoney(d decimal.Decimal) Money { return Money{Round2(d)} }

// Round2 rounds half-up (away from zero) to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// NormalizeMoney converts an arbitrary value into canonical money.  Strings,
// floats, integers, json.Number and decimals are accepted; NaN, infinities
// and unparsable strings yield ErrInvalidFormat, and magnitudes of
// MaxAmount or more yield ErrOutOfRange.
func NormalizeMoney(v any) (Money, error) {
	d, err := toDecimal(v)
	if err != nil {
		return Money{}, err
	}
	r, err := roundBounded(d, 2)
	if err != nil {
		return Money{}, err
	}
	return Money{r}, nil
}

// ParseAmount converts v like NormalizeMoney but keeps StoragePlaces
// decimals so that sums of many entries are rounded only once.
func ParseAmount(v any) (decimal.Decimal, error) {
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	return roundBounded(d, StoragePlaces)
}

// CheckAmount rejects d before any arithmetic when its magnitude reaches
// MaxAmount or it carries more than maxInputScale decimal places.  Only
// the exponent and coefficient length are inspected, so values such as
// 1e50000000 are refused without being expanded.
func CheckAmount(d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	exp := int64(d.Exponent())
	if exp < -maxInputScale {
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidFormat, maxInputScale)
	}
	if int64(d.NumDigits())+exp > maxIntegerDigits {
		return ErrOutOfRange
	}
	return nil
}

// roundBounded rounds d to places and checks the rounded value too, since
// 9999999999.999 rounds up to the bound.
func roundBounded(d decimal.Decimal, places int32) (decimal.Decimal, error) {
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	r := d.Round(places)
	if r.Abs().GreaterThanOrEqual(MaxAmount) {
		return decimal.Zero, ErrOutOfRange
	}
	return r, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, ErrInvalidFormat
	case Money:
		return t.Decimal, nil
	case *Money:
		if t == nil {
			return decimal.Zero, ErrInvalidFormat
		}
		return t.Decimal, nil
	case decimal.Decimal:
		return t, nil
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero, ErrInvalidFormat
		}
		return *t, nil
	case json.Number:
		return parseDecimalString(string(t))
	case string:
		return parseDecimalString(t)
	case []byte:
		return parseDecimalString(string(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, ErrInvalidFormat
		}
		return decimal.NewFromFloat(t), nil
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, ErrInvalidFormat
		}
		return decimal.NewFromFloat32(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int8:
		return decimal.NewFromInt(int64(t)), nil
	case int16:
		return decimal.NewFromInt(int64(t)), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(t)), 0), nil
	case uint8:
		return decimal.NewFromInt(int64(t)), nil
	case uint16:
		return decimal.NewFromInt(int64(t)), nil
	case uint32:
		return decimal.NewFromInt(int64(t)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(t), 0), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidFormat, v)
}

func parseDecimalString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidFormat
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return d, nil
}

// MarshalJSON writes the amount as a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(Round2(m.Decimal).StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "null" {
		return ErrInvalidFormat
	}
	n, err := NormalizeMoney(raw)
	if err != nil {
		return err
	}
	*m = n
	return nil
}

// Scan implements sql.Scanner.  SQLite hands back float64 sums while MySQL
// returns DECIMAL as bytes; both are rounded to two places.
func (m *Money) Scan(src any) error {
	if src == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return err
	}
	m.Decimal = Round2(d)
	return nil
}

// String returns the amount with two decimals.
func (m Money) String() string { return Round2(m.Decimal).StringFixed(2) }
