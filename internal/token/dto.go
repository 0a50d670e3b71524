// Landgrid | 2026
// dto.go

package token

type TransferRequest struct {
	To    string `json:"to"    validate:"required,eth_addr"`
	Value string `json:"value" validate:"required"`
}

type ApproveRequest struct {
	Spender string `json:"spender" validate:"required,eth_addr"`
	Value   string `json:"value"   validate:"required"`
}

type TransferFromRequest struct {
	From  string `json:"from"  validate:"required,eth_addr"`
	To    string `json:"to"    validate:"required,eth_addr"`
	Value string `json:"value" validate:"required"`
}

type MintRequest struct {
	To    string `json:"to"    validate:"required,eth_addr"`
	Value string `json:"value" validate:"required"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type AllowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance string `json:"allowance"`
}

type SupplyResponse struct {
	TotalSupply string `json:"total_supply"`
}
