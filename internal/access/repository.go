// Landgrid | 2026
// repository.go

package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/ethereum/go-ethereum/common"
)

// Repository is stateless; every method runs against the queryer it is
// handed so role checks and writes compose into callers' transactions.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) HasRole(
	ctx context.Context,
	q core.DBTX,
	role common.Hash,
	account common.Address,
) (bool, error) {
	var n int
	err := q.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM role_members WHERE role = $1 AND account = $2`,
		core.HashOf(role), core.Addr(account),
	)
	if err != nil {
		return false, fmt.Errorf("check role membership: %w", err)
	}
	return n > 0, nil
}

// Grant inserts a membership row. Returns false when the account
// already held the role.
func (r *Repository) Grant(
	ctx context.Context,
	q core.DBTX,
	role common.Hash,
	account common.Address,
) (bool, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO role_members (role, account) VALUES ($1, $2)
		 ON CONFLICT (role, account) DO NOTHING`,
		core.HashOf(role), core.Addr(account),
	)
	if err != nil {
		return false, fmt.Errorf("grant role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("grant role: %w", err)
	}
	return n > 0, nil
}

// Revoke deletes a membership row. Returns false when the account did
// not hold the role.
func (r *Repository) Revoke(
	ctx context.Context,
	q core.DBTX,
	role common.Hash,
	account common.Address,
) (bool, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM role_members WHERE role = $1 AND account = $2`,
		core.HashOf(role), core.Addr(account),
	)
	if err != nil {
		return false, fmt.Errorf("revoke role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke role: %w", err)
	}
	return n > 0, nil
}

// AdminOf resolves the administering role. Roles without an explicit
// rule fall back to the root role.
func (r *Repository) AdminOf(
	ctx context.Context,
	q core.DBTX,
	role common.Hash,
) (common.Hash, error) {
	var admin core.Hash
	err := q.GetContext(ctx, &admin,
		`SELECT admin_role FROM role_admins WHERE role = $1`,
		core.HashOf(role),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RoleRoot, nil
	}
	if err != nil {
		return common.Hash{}, fmt.Errorf("resolve role admin: %w", err)
	}
	return admin.Hash, nil
}

func (r *Repository) SetAdmin(
	ctx context.Context,
	q core.DBTX,
	role common.Hash,
	admin common.Hash,
) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO role_admins (role, admin_role) VALUES ($1, $2)
		 ON CONFLICT (role) DO UPDATE SET admin_role = $2`,
		core.HashOf(role), core.HashOf(admin),
	)
	if err != nil {
		return fmt.Errorf("set role admin: %w", err)
	}
	return nil
}

func (r *Repository) MembersOf(
	ctx context.Context,
	q core.DBTX,
	role common.Hash,
) ([]Member, error) {
	members := []Member{}
	err := q.SelectContext(ctx, &members,
		`SELECT role, account FROM role_members WHERE role = $1 ORDER BY account`,
		core.HashOf(role),
	)
	if err != nil {
		return nil, fmt.Errorf("list role members: %w", err)
	}
	return members, nil
}

func (r *Repository) RolesOf(
	ctx context.Context,
	q core.DBTX,
	account common.Address,
) ([]Member, error) {
	members := []Member{}
	err := q.SelectContext(ctx, &members,
		`SELECT role, account FROM role_members WHERE account = $1 ORDER BY role`,
		core.Addr(account),
	)
	if err != nil {
		return nil, fmt.Errorf("list account roles: %w", err)
	}
	return members, nil
}
