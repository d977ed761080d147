// Package money provides the fixed-point decimal amount type used for all
// chip and bankroll arithmetic in the engine. Floating point never appears
// on the money path.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a fixed-point monetary value. Zero value is zero chips.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{}

// New builds an Amount from an integer chip count.
func New(chips int64) Amount {
	return Amount{d: decimal.NewFromInt(chips)}
}

// Parse parses a decimal string such as "123.45".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// MulInt scales a by a whole number, used to size a side-pot layer by the
// number of seats contributing to it.
func (a Amount) MulInt(n int) Amount {
	return Amount{d: a.d.Mul(decimal.NewFromInt(int64(n)))}
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.d.LessThan(b.d) {
		return a
	}
	return b
}

// DivMod splits a into n equal shares plus a remainder, using floor
// division so the sum of shares plus remainder exactly equals a. Used to
// award split pots: each of n winners gets Share, and Remainder goes to a
// single designated seat to preserve conservation.
func (a Amount) DivMod(n int) (share Amount, remainder Amount) {
	if n <= 0 {
		return Zero, a
	}
	divisor := decimal.NewFromInt(int64(n))
	q := a.d.DivRound(divisor, 0).Truncate(0)
	// DivRound can round up; compute true floor quotient instead.
	q = a.d.Div(divisor).Truncate(0)
	if q.Mul(divisor).GreaterThan(a.d) {
		q = q.Sub(decimal.NewFromInt(1))
	}
	rem := a.d.Sub(q.Mul(divisor))
	return Amount{d: q}, Amount{d: rem}
}

func (a Amount) IsZero() bool                 { return a.d.IsZero() }
func (a Amount) IsPositive() bool             { return a.d.IsPositive() }
func (a Amount) IsNegative() bool             { return a.d.IsNegative() }
func (a Amount) GreaterThan(b Amount) bool    { return a.d.GreaterThan(b.d) }
func (a Amount) GreaterOrEqual(b Amount) bool { return a.d.GreaterThanOrEqual(b.d) }
func (a Amount) LessThan(b Amount) bool       { return a.d.LessThan(b.d) }
func (a Amount) LessOrEqual(b Amount) bool    { return a.d.LessThanOrEqual(b.d) }
func (a Amount) Equal(b Amount) bool          { return a.d.Equal(b.d) }

func (a Amount) String() string { return a.d.String() }

// Int64 truncates to a whole-chip integer. The ClickHouse analytics rows
// store stacks and pots this way; snapshots and Postgres rows keep the exact
// decimal.
func (a Amount) Int64() int64 { return a.d.IntPart() }

// MarshalJSON encodes amounts as decimal strings, per the snapshot wire
// format ("decimals as strings").
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.d.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	a.d = d
	return nil
}

// Value implements driver.Valuer for Postgres storage as NUMERIC.
func (a Amount) Value() (driver.Value, error) {
	return a.d.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		a.d = d
		return nil
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return err
		}
		a.d = d
		return nil
	case float64:
		a.d = decimal.NewFromFloat(v)
		return nil
	case nil:
		a.d = decimal.Zero
		return nil
	default:
		return fmt.Errorf("money: unsupported scan type %T", src)
	}
}
