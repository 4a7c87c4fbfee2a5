package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfered is emitted after balance moved from one account to another.
type Transfered struct {
	Meta
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

func NewTransfered(from, to string, amount decimal.Decimal, now time.Time) Transfered {
	return Transfered{
		Meta:   newMeta(TypeTransfered, now),
		From:   from,
		To:     to,
		Amount: amount,
	}
}

func (e Transfered) Metadata() Meta       { return e.Meta }
func (e Transfered) PartitionKey() string { return e.From }
