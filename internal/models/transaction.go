package models

import (
	"github.com/shopspring/decimal"
)

// IssueTransaction credits Amount to Account. The amount sign is not checked.
type IssueTransaction struct {
	Account string
	Amount  decimal.Decimal
}

// TransferTransaction moves Amount from one account to another.
type TransferTransaction struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// Kind selects the transaction carried by a Submission.
type Kind string

const (
	KindIssue    Kind = "Issue"
	KindTransfer Kind = "Transfer"
)

// Submission is the typed payload accepted at the caller boundary.
// Account is read for Issue, From and To for Transfer.
type Submission struct {
	Kind    Kind            `json:"kind"`
	Account string          `json:"account,omitempty"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}

func (s Submission) Issue() IssueTransaction {
	return IssueTransaction{Account: s.Account, Amount: s.Amount}
}

func (s Submission) Transfer() TransferTransaction {
	return TransferTransaction{From: s.From, To: s.To, Amount: s.Amount}
}
