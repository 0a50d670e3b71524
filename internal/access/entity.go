// Landgrid | 2026
// entity.go

package access

import "github.com/cryptocountry/landgrid/internal/core"

// Member is one row of the role membership table.
type Member struct {
	Role    core.Hash    `db:"role"`
	Account core.Address `db:"account"`
}

// AdminRule maps a role to the role that administers it. Roles without
// a rule are administered by the root role.
type AdminRule struct {
	Role      core.Hash `db:"role"`
	AdminRole core.Hash `db:"admin_role"`
}
