// Landgrid | 2026
// roles.go

package access

import (
	"strings"

	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Role identifiers are keccak256 of the role name, except the root role
// which is the zero hash. The hashes are what go on the wire and into
// the store; the names are accepted as aliases at the API edge.
var (
	RoleRoot         = common.Hash{}
	RoleAdmin        = crypto.Keccak256Hash([]byte("ADMIN_ROLE"))
	RoleMinter       = crypto.Keccak256Hash([]byte("MINTER_ROLE"))
	RolePauser       = crypto.Keccak256Hash([]byte("PAUSER_ROLE"))
	RoleFreeTransfer = crypto.Keccak256Hash([]byte("FREE_TRANSFER_ROLE"))
)

var roleNames = map[string]common.Hash{
	"DEFAULT_ADMIN_ROLE": RoleRoot,
	"ADMIN_ROLE":         RoleAdmin,
	"MINTER_ROLE":        RoleMinter,
	"PAUSER_ROLE":        RolePauser,
	"FREE_TRANSFER_ROLE": RoleFreeTransfer,
}

// ParseRole resolves a role name alias or a 0x-prefixed hash literal.
// Unknown hashes are accepted as-is so custom roles keep working.
func ParseRole(s string) (common.Hash, error) {
	if role, ok := roleNames[strings.ToUpper(s)]; ok {
		return role, nil
	}
	if strings.HasPrefix(s, "0x") && len(s) == 66 {
		return common.HexToHash(s), nil
	}
	return common.Hash{}, core.InvalidInputError("unknown role " + s)
}

// RoleName returns the canonical alias for a known role hash, or the
// hex form for custom roles.
func RoleName(role common.Hash) string {
	for name, h := range roleNames {
		if h == role {
			return name
		}
	}
	return role.Hex()
}
