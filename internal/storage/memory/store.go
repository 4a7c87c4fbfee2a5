package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	interfaces "github.com/sheikh-saqib/coin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/coin-ledger/internal/models"
)

// MemoryAccountStore is an in-memory implementation of interfaces.AccountRegistry.
// It is safe for concurrent use.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

// NewMemoryAccountStore creates a store pre-populated with accounts.
func NewMemoryAccountStore(accounts ...models.Account) *MemoryAccountStore {
	m := &MemoryAccountStore{
		accounts: make(map[string]models.Account, len(accounts)),
	}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *MemoryAccountStore) Get(ctx context.Context, id string) (models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return models.Account{}, fmt.Errorf("%w: %s", models.ErrAccountNotFound, id)
	}
	return account, nil
}

func (m *MemoryAccountStore) Update(ctx context.Context, account models.Account) error {
	return m.UpdateAll(ctx, []models.Account{account})
}

// UpdateAll checks every id before writing, so a missing account leaves
// the store untouched.
func (m *MemoryAccountStore) UpdateAll(ctx context.Context, accounts []models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range accounts {
		if _, ok := m.accounts[a.ID]; !ok {
			return fmt.Errorf("%w: %s", models.ErrAccountNotFound, a.ID)
		}
	}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return nil
}

func (m *MemoryAccountStore) Add(ctx context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; ok {
		return fmt.Errorf("%w: %s", models.ErrAccountExists, account.ID)
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MemoryAccountStore) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return fmt.Errorf("%w: %s", models.ErrAccountNotFound, id)
	}
	delete(m.accounts, id)
	return nil
}

func (m *MemoryAccountStore) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.accounts[id]
	return ok, nil
}

// List returns a copy of all accounts ordered by id.
func (m *MemoryAccountStore) List(ctx context.Context) ([]models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// Compile-time check: ensure MemoryAccountStore implements AccountRegistry.
var _ interfaces.AccountRegistry = (*MemoryAccountStore)(nil)
