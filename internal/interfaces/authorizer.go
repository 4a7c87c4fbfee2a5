package interfaces

import (
	"context"

	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

// Action is an operation a participant asks to perform on an account.
type Action string

const (
	ActionRead          Action = "read"
	ActionIssue         Action = "issue"
	ActionTransfer      Action = "transfer"
	ActionCreateAccount Action = "create_account"
	ActionRemoveAccount Action = "remove_account"
)

// Authorizer decides whether a participant may perform action on account.
// Denials wrap models.ErrPermissionDenied.
type Authorizer interface {
	Authorize(ctx context.Context, p models.Participant, action Action, account string) error
}
