// Landgrid | 2026
// types.go

package core

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address wraps common.Address with a hex TEXT database representation.
// go-ethereum's own Valuer emits raw bytes, which do not survive a TEXT
// column portably across sqlite and postgres.
type Address struct {
	common.Address
}

func Addr(a common.Address) Address {
	return Address{Address: a}
}

func (a Address) Value() (driver.Value, error) {
	return strings.ToLower(a.Hex()), nil
}

func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case string:
		if !common.IsHexAddress(v) {
			return fmt.Errorf("scan address: invalid hex %q", v)
		}
		a.Address = common.HexToAddress(v)
		return nil
	case []byte:
		return a.Scan(string(v))
	case nil:
		a.Address = common.Address{}
		return nil
	default:
		return fmt.Errorf("scan address: unsupported type %T", src)
	}
}

// Hash wraps common.Hash the same way; role identifiers are hashes.
type Hash struct {
	common.Hash
}

func HashOf(h common.Hash) Hash {
	return Hash{Hash: h}
}

func (h Hash) Value() (driver.Value, error) {
	return strings.ToLower(h.Hex()), nil
}

func (h *Hash) Scan(src any) error {
	switch v := src.(type) {
	case string:
		h.Hash = common.HexToHash(v)
		return nil
	case []byte:
		h.Hash = common.HexToHash(string(v))
		return nil
	case nil:
		h.Hash = common.Hash{}
		return nil
	default:
		return fmt.Errorf("scan hash: unsupported type %T", src)
	}
}
