// Landgrid | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrDuplicateKey = errors.New("duplicate key")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenInvalid = errors.New("token invalid")

	// State-transition error kinds. Messages attached to these are fixed
	// strings that clients assert verbatim, so they must not change.
	ErrAlreadyInitialized    = errors.New("already initialized")
	ErrMissingRole           = errors.New("missing role")
	ErrUnknownParcel         = errors.New("unknown parcel")
	ErrTransferFeeRequired   = errors.New("transfer fee required")
	ErrInventoryExhausted    = errors.New("inventory exhausted")
	ErrInsufficientPayment   = errors.New("insufficient payment")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrUnconfiguredResidence = errors.New("unconfigured residence type")
	ErrUnconfiguredPriceTier = errors.New("unconfigured price tier")
	ErrPaused                = errors.New("paused")
)

type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Meta    map[string]any `json:"meta,omitempty"`
	err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.err
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func UnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		err:     ErrUnauthorized,
	}
}

func ForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		err:     ErrForbidden,
	}
}

func TokenExpiredError() *AppError {
	return &AppError{
		Code:    "TOKEN_EXPIRED",
		Message: "access token has expired",
		Status:  http.StatusUnauthorized,
		err:     ErrTokenExpired,
	}
}

func TokenRevokedError() *AppError {
	return &AppError{
		Code:    "TOKEN_REVOKED",
		Message: "access token has been revoked",
		Status:  http.StatusUnauthorized,
		err:     ErrTokenRevoked,
	}
}

func TokenInvalidError() *AppError {
	return &AppError{
		Code:    "TOKEN_INVALID",
		Message: "access token is invalid",
		Status:  http.StatusUnauthorized,
		err:     ErrTokenInvalid,
	}
}

func AlreadyInitializedError() *AppError {
	return &AppError{
		Code:    "ALREADY_INITIALIZED",
		Message: "Initializable: contract is already initialized",
		Status:  http.StatusConflict,
		err:     ErrAlreadyInitialized,
	}
}

// MissingRoleError reports a failed role check. Role and account are the
// hex forms so callers can request the exact grant they are lacking.
func MissingRoleError(account, role string) *AppError {
	return &AppError{
		Code: "MISSING_ROLE",
		Message: fmt.Sprintf(
			"AccessControl: account %s is missing role %s",
			account,
			role,
		),
		Status: http.StatusForbidden,
		Meta: map[string]any{
			"account": account,
			"role":    role,
		},
		err: ErrMissingRole,
	}
}

func UnknownParcelError(id uint64) *AppError {
	return &AppError{
		Code:    "UNKNOWN_PARCEL",
		Message: "ERC721: owner query for nonexistent token",
		Status:  http.StatusNotFound,
		Meta:    map[string]any{"parcel_id": id},
		err:     ErrUnknownParcel,
	}
}

func TransferFeeRequiredError(required, provided string) *AppError {
	return &AppError{
		Code:    "TRANSFER_FEE_REQUIRED",
		Message: "Transfer fee is required in order to transfer",
		Status:  http.StatusPaymentRequired,
		Meta: map[string]any{
			"required": required,
			"provided": provided,
		},
		err: ErrTransferFeeRequired,
	}
}

func InventoryExhaustedError(residenceType uint8, limit, sold, requested uint64) *AppError {
	return &AppError{
		Code:    "INVENTORY_EXHAUSTED",
		Message: "not enough lands left for this residence type",
		Status:  http.StatusConflict,
		Meta: map[string]any{
			"residence_type": residenceType,
			"limit":          limit,
			"sold":           sold,
			"requested":      requested,
		},
		err: ErrInventoryExhausted,
	}
}

func InsufficientPaymentError(required, provided string) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_PAYMENT",
		Message: "insufficient payment for the requested amount of land",
		Status:  http.StatusPaymentRequired,
		Meta: map[string]any{
			"required": required,
			"provided": provided,
		},
		err: ErrInsufficientPayment,
	}
}

func InsufficientBalanceError(required, available string) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "ERC20: transfer amount exceeds balance",
		Status:  http.StatusPaymentRequired,
		Meta: map[string]any{
			"required":  required,
			"available": available,
		},
		err: ErrInsufficientBalance,
	}
}

func InsufficientAllowanceError(required, allowed string) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_ALLOWANCE",
		Message: "ERC20: transfer amount exceeds allowance",
		Status:  http.StatusPaymentRequired,
		Meta: map[string]any{
			"required": required,
			"allowed":  allowed,
		},
		err: ErrInsufficientAllowance,
	}
}

// UnconfiguredResidenceError reports a residence type with no limit
// entry.
func UnconfiguredResidenceError(residenceType uint8) *AppError {
	return &AppError{
		Code:    "UNCONFIGURED_RESIDENCE_TYPE",
		Message: "no limit configured for this residence type",
		Status:  http.StatusUnprocessableEntity,
		Meta:    map[string]any{"residence_type": residenceType},
		err:     ErrUnconfiguredResidence,
	}
}

// UnconfiguredPriceTierError reports a price lookup that was never
// configured for the residence type and currency pair.
func UnconfiguredPriceTierError(residenceType uint8, currency string) *AppError {
	return &AppError{
		Code:    "UNCONFIGURED_PRICE_TIER",
		Message: "no price configured for this residence type and currency",
		Status:  http.StatusUnprocessableEntity,
		Meta: map[string]any{
			"residence_type": residenceType,
			"currency":       currency,
		},
		err: ErrUnconfiguredPriceTier,
	}
}

func PausedError() *AppError {
	return &AppError{
		Code:    "PAUSED",
		Message: "Pausable: paused",
		Status:  http.StatusConflict,
		err:     ErrPaused,
	}
}

func InvalidInputError(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		err:     ErrInvalidInput,
	}
}

func NotFoundError(resource string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: resource + " not found",
		Status:  http.StatusNotFound,
		err:     ErrNotFound,
	}
}
