// Landgrid | 2026
// service.go

package access

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/cryptocountry/landgrid/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

type Service struct {
	runner *ledger.Runner
	repo   *Repository
	logger *slog.Logger
}

func NewService(runner *ledger.Runner, repo *Repository, logger *slog.Logger) *Service {
	return &Service{
		runner: runner,
		repo:   repo,
		logger: logger.With(slog.String("component", "access")),
	}
}

// Genesis seeds the role graph inside the genesis transaction. The
// deployer receives the root role and the admin role; the sales engine
// account, when configured, receives the minter role so buys can mint.
//
// The admin role historically administered itself, which let any admin
// strip every other admin with nobody above them to undo it. The
// fixAdminRole flag seeds the repaired graph instead; deployments that
// start unrepaired use ReassignRoleAdmin later.
func (s *Service) Genesis(
	ctx context.Context,
	uow *ledger.UnitOfWork,
	deployer common.Address,
	salesEngine common.Address,
	fixAdminRole bool,
) error {
	adminAdmin := RoleAdmin
	if fixAdminRole {
		adminAdmin = RoleRoot
	}

	rules := []struct {
		role  common.Hash
		admin common.Hash
	}{
		{RoleAdmin, adminAdmin},
		{RoleMinter, RoleAdmin},
		{RolePauser, RoleAdmin},
		{RoleFreeTransfer, RoleAdmin},
	}
	for _, rule := range rules {
		if err := s.repo.SetAdmin(ctx, uow.Tx, rule.role, rule.admin); err != nil {
			return err
		}
	}

	if err := s.grantIn(ctx, uow, RoleRoot, deployer, deployer); err != nil {
		return err
	}
	if err := s.grantIn(ctx, uow, RoleAdmin, deployer, deployer); err != nil {
		return err
	}

	if salesEngine != ledger.ZeroAddress {
		if err := s.grantIn(ctx, uow, RoleMinter, salesEngine, deployer); err != nil {
			return err
		}
	}

	return nil
}

// HasRole reads membership outside any transaction.
func (s *Service) HasRole(
	ctx context.Context,
	role common.Hash,
	account common.Address,
) (bool, error) {
	return s.repo.HasRole(ctx, s.runner.DB(), role, account)
}

// GetRoleAdmin returns the role that administers role.
func (s *Service) GetRoleAdmin(
	ctx context.Context,
	role common.Hash,
) (common.Hash, error) {
	return s.repo.AdminOf(ctx, s.runner.DB(), role)
}

func (s *Service) Members(
	ctx context.Context,
	role common.Hash,
) ([]Member, error) {
	return s.repo.MembersOf(ctx, s.runner.DB(), role)
}

func (s *Service) RolesOf(
	ctx context.Context,
	account common.Address,
) ([]Member, error) {
	return s.repo.RolesOf(ctx, s.runner.DB(), account)
}

// HasRoleIn reads membership against the caller's queryer.
func (s *Service) HasRoleIn(
	ctx context.Context,
	q core.DBTX,
	role common.Hash,
	account common.Address,
) (bool, error) {
	return s.repo.HasRole(ctx, q, role, account)
}

// RequireRoleIn fails with the canonical missing-role message unless
// account holds role. It runs against the caller's queryer so other
// services can gate inside their own transactions.
func (s *Service) RequireRoleIn(
	ctx context.Context,
	q core.DBTX,
	role common.Hash,
	account common.Address,
) error {
	ok, err := s.repo.HasRole(ctx, q, role, account)
	if err != nil {
		return err
	}
	if !ok {
		return core.MissingRoleError(
			strings.ToLower(account.Hex()),
			role.Hex(),
		)
	}
	return nil
}

// GrantRole adds account to role. The sender must hold the role's
// admin role. Granting an already-held role succeeds without a second
// event.
func (s *Service) GrantRole(
	ctx context.Context,
	sender common.Address,
	role common.Hash,
	account common.Address,
) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.requireAdminOf(ctx, uow, role, sender); err != nil {
			return err
		}
		return s.grantIn(ctx, uow, role, account, sender)
	})
}

// RevokeRole removes account from role under the same gating as
// GrantRole. Revoking a role the account does not hold succeeds
// without an event.
func (s *Service) RevokeRole(
	ctx context.Context,
	sender common.Address,
	role common.Hash,
	account common.Address,
) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		if err := s.requireAdminOf(ctx, uow, role, sender); err != nil {
			return err
		}
		return s.revokeIn(ctx, uow, role, account, sender)
	})
}

// RenounceRole lets an account shed its own role. Unlike RevokeRole it
// needs no admin standing, but only over the caller's own membership.
func (s *Service) RenounceRole(
	ctx context.Context,
	sender common.Address,
	role common.Hash,
	account common.Address,
) error {
	if account != sender {
		return core.ForbiddenError("AccessControl: can only renounce roles for self")
	}
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		return s.revokeIn(ctx, uow, role, account, sender)
	})
}

// ReassignRoleAdmin rewires which role administers role. The sender
// must hold the role's current admin role; this is the escape hatch
// that repairs the self-administered admin role.
func (s *Service) ReassignRoleAdmin(
	ctx context.Context,
	sender common.Address,
	role common.Hash,
	newAdmin common.Hash,
) error {
	return s.runner.Run(ctx, func(ctx context.Context, uow *ledger.UnitOfWork) error {
		previous, err := s.repo.AdminOf(ctx, uow.Tx, role)
		if err != nil {
			return err
		}
		if err := s.RequireRoleIn(ctx, uow.Tx, previous, sender); err != nil {
			return err
		}
		if previous == newAdmin {
			return nil
		}
		if err := s.repo.SetAdmin(ctx, uow.Tx, role, newAdmin); err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "role admin reassigned",
			slog.String("role", RoleName(role)),
			slog.String("previous_admin", RoleName(previous)),
			slog.String("new_admin", RoleName(newAdmin)),
		)

		return uow.Emit(ctx, ledger.KindRoleAdminChanged, ledger.RoleAdminChanged{
			Role:          role,
			PreviousAdmin: previous,
			NewAdmin:      newAdmin,
		})
	})
}

func (s *Service) requireAdminOf(
	ctx context.Context,
	uow *ledger.UnitOfWork,
	role common.Hash,
	sender common.Address,
) error {
	admin, err := s.repo.AdminOf(ctx, uow.Tx, role)
	if err != nil {
		return err
	}
	return s.RequireRoleIn(ctx, uow.Tx, admin, sender)
}

func (s *Service) grantIn(
	ctx context.Context,
	uow *ledger.UnitOfWork,
	role common.Hash,
	account common.Address,
	sender common.Address,
) error {
	inserted, err := s.repo.Grant(ctx, uow.Tx, role, account)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}
	return uow.Emit(ctx, ledger.KindRoleGranted, ledger.RoleGranted{
		Role:    role,
		Account: account,
		Sender:  sender,
	})
}

func (s *Service) revokeIn(
	ctx context.Context,
	uow *ledger.UnitOfWork,
	role common.Hash,
	account common.Address,
	sender common.Address,
) error {
	removed, err := s.repo.Revoke(ctx, uow.Tx, role, account)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	return uow.Emit(ctx, ledger.KindRoleRevoked, ledger.RoleRevoked{
		Role:    role,
		Account: account,
		Sender:  sender,
	})
}
