// Landgrid | 2026
// dto.go

package access

// RoleChangeRequest covers grant, revoke, and renounce.
type RoleChangeRequest struct {
	Role    string `json:"role"    validate:"required"`
	Account string `json:"account" validate:"required,eth_addr"`
}

// ReassignAdminRequest rewires a role's administering role.
type ReassignAdminRequest struct {
	Role     string `json:"role"      validate:"required"`
	NewAdmin string `json:"new_admin" validate:"required"`
}

type RoleResponse struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

type MemberResponse struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}

type HasRoleResponse struct {
	Role    string `json:"role"`
	Account string `json:"account"`
	HasRole bool   `json:"has_role"`
}

func toMemberResponses(members []Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberResponse{
			Role:    m.Role.Hex(),
			Account: m.Account.Hex(),
		})
	}
	return out
}
