package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Issued is emitted after an account has been credited by an issue.
type Issued struct {
	Meta
	Account       string          `json:"account"`
	PreviousValue decimal.Decimal `json:"previous_value"`
	NewValue      decimal.Decimal `json:"new_value"`
}

func NewIssued(account string, previous, next decimal.Decimal, now time.Time) Issued {
	return Issued{
		Meta:          newMeta(TypeIssued, now),
		Account:       account,
		PreviousValue: previous,
		NewValue:      next,
	}
}

func (e Issued) Metadata() Meta       { return e.Meta }
func (e Issued) PartitionKey() string { return e.Account }
