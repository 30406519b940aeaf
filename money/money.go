/*
Package money provides the rupiah amount value object.

PURPOSE:
  Honor amounts and payment rates are whole-unit Indonesian Rupiah.
  This package wraps decimal.Decimal so rate arithmetic never touches
  floating point, and keeps display formatting (thousand separators,
  "Rp" prefix) out of the calculation path.

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Whole units: Rupiah has no fractional sub-unit in this system
  3. Presentation is layered: Format() is a helper for DTOs, the
     calculation contract is only "a non-negative numeric value"

USAGE:
  rate := money.NewFromInt(100000)
  total := rate.MulInt(8)       // Rp 800.000
  fmt.Println(total.Format())   // "Rp 800.000"

SEE ALSO:
  - honor/calculator.go: Produces Amount breakdowns
  - api/dto.go: Formats Amount for API responses
*/
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Whole-rupiah quantity
// =============================================================================

type Amount struct {
	Value decimal.Decimal
}

func NewFromInt(value int64) Amount {
	return Amount{Value: decimal.NewFromInt(value)}
}

// Parse builds an Amount from a decimal string (e.g. from SQLite TEXT
// columns). Malformed input returns an error rather than zero.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{Value: d}, nil
}

func Zero() Amount { return Amount{Value: decimal.Zero} }

func (a Amount) Add(b Amount) Amount       { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) MulInt(n int) Amount       { return Amount{Value: a.Value.Mul(decimal.NewFromInt(int64(n)))} }
func (a Amount) IsNegative() bool          { return a.Value.IsNegative() }
func (a Amount) IsZero() bool              { return a.Value.IsZero() }
func (a Amount) IsPositive() bool          { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool       { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }

// String returns the plain numeric representation ("800000").
func (a Amount) String() string { return a.Value.String() }

// =============================================================================
// PRESENTATION
// =============================================================================

// Format renders the amount the way the admin screens show it:
// "Rp 1.000.000". Indonesian convention uses '.' as thousand separator.
func (a Amount) Format() string {
	s := a.Value.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}

	out := "Rp " + b.String()
	if neg {
		out = "-" + out
	}
	return out
}
