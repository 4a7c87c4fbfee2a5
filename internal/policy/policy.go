// Package policy holds the access rules evaluated before a transaction or
// account change reaches the ledger.
package policy

import (
	"context"
	"fmt"

	interfaces "github.com/sheikh-saqib/coin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

// RolePolicy grants actions by participant role:
//
//	read            banker, customer
//	issue           banker
//	transfer        customer, from the account it owns
//	create account  banker
//	remove account  banker, or the owning customer
type RolePolicy struct{}

func NewRolePolicy() RolePolicy {
	return RolePolicy{}
}

func (RolePolicy) Authorize(ctx context.Context, p models.Participant, action interfaces.Action, account string) error {
	if allowed(p, action, account) {
		return nil
	}
	return fmt.Errorf("%w: participant %q (%s) may not %s account %q",
		models.ErrPermissionDenied, p.ID, p.Role, action, account)
}

func allowed(p models.Participant, action interfaces.Action, account string) bool {
	owns := p.Account != "" && p.Account == account

	switch p.Role {
	case models.RoleBanker:
		switch action {
		case interfaces.ActionRead, interfaces.ActionIssue,
			interfaces.ActionCreateAccount, interfaces.ActionRemoveAccount:
			return true
		}
	case models.RoleCustomer:
		switch action {
		case interfaces.ActionRead:
			return true
		case interfaces.ActionTransfer, interfaces.ActionRemoveAccount:
			return owns
		}
	}
	return false
}

// AllowAll grants every action. Useful when the host enforces access itself.
type AllowAll struct{}

func (AllowAll) Authorize(context.Context, models.Participant, interfaces.Action, string) error {
	return nil
}

var (
	_ interfaces.Authorizer = RolePolicy{}
	_ interfaces.Authorizer = AllowAll{}
)
