package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownKind       = errors.New("unknown transaction kind")
	ErrInvalidAmount     = errors.New("transfer amount must be positive")
)

// InsufficientFundsError reports a transfer the source balance cannot cover.
// It matches ErrInsufficientFunds under errors.Is.
type InsufficientFundsError struct {
	Account string
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: account %s holds %s, transfer needs %s", e.Account, e.Balance, e.Amount)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
