package models

import (
	"github.com/shopspring/decimal"
)

// Account is a ledger record holding a balance, keyed by ID.
type Account struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}
