package interfaces

import (
	"context"

	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

// AccountStore is the persistence the transaction processor mutates.
type AccountStore interface {
	// Get returns models.ErrAccountNotFound for unknown ids.
	Get(ctx context.Context, id string) (models.Account, error)
	Update(ctx context.Context, account models.Account) error
	// UpdateAll writes every account or none of them.
	UpdateAll(ctx context.Context, accounts []models.Account) error
}

// AccountRegistry adds account administration on top of AccountStore.
type AccountRegistry interface {
	AccountStore
	Add(ctx context.Context, account models.Account) error
	Remove(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]models.Account, error)
}
