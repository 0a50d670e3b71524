// Landgrid | 2026
// amount.go

package core

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// Amount is a non-negative wei-scale integer. It is stored as a decimal
// TEXT column and serialized as a decimal JSON string, since the values
// routinely exceed what int64 or float64 can carry.
type Amount struct {
	i big.Int
}

func NewAmount(i *big.Int) Amount {
	var a Amount
	if i != nil {
		a.i.Set(i)
	}
	return a
}

func AmountFromUint64(v uint64) Amount {
	var a Amount
	a.i.SetUint64(v)
	return a
}

// ParseAmount parses a decimal string into an Amount. Negative values and
// anything that is not a plain base-10 integer are rejected.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if s == "" {
		return a, fmt.Errorf("parse amount: empty string: %w", ErrInvalidInput)
	}
	if _, ok := a.i.SetString(s, 10); !ok {
		return a, fmt.Errorf("parse amount %q: %w", s, ErrInvalidInput)
	}
	if a.i.Sign() < 0 {
		return a, fmt.Errorf("parse amount %q: negative: %w", s, ErrInvalidInput)
	}
	return a, nil
}

func (a Amount) BigInt() *big.Int {
	return new(big.Int).Set(&a.i)
}

func (a Amount) String() string {
	return a.i.String()
}

func (a Amount) IsZero() bool {
	return a.i.Sign() == 0
}

func (a Amount) Cmp(b Amount) int {
	return a.i.Cmp(&b.i)
}

func (a Amount) Add(b Amount) Amount {
	var out Amount
	out.i.Add(&a.i, &b.i)
	return out
}

func (a Amount) Sub(b Amount) Amount {
	var out Amount
	out.i.Sub(&a.i, &b.i)
	return out
}

func (a Amount) MulUint64(n uint64) Amount {
	var out Amount
	out.i.Mul(&a.i, new(big.Int).SetUint64(n))
	return out
}

func (a Amount) Value() (driver.Value, error) {
	return a.i.String(), nil
}

func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		return a.Scan(string(v))
	case int64:
		a.i.SetInt64(v)
		return nil
	case nil:
		*a = Amount{}
		return nil
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.i.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
