package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventbus "github.com/sheikh-saqib/coin-ledger/internal/events/memory"
	"github.com/sheikh-saqib/coin-ledger/internal/models"
	"github.com/sheikh-saqib/coin-ledger/internal/models/events"
	"github.com/sheikh-saqib/coin-ledger/internal/policy"
	"github.com/sheikh-saqib/coin-ledger/internal/storage/memory"
)

var (
	charlie = models.Participant{ID: "charlie@email.com", Role: models.RoleBanker}
	alice   = models.Participant{ID: "alice@email.com", Role: models.RoleCustomer, Account: "1"}
	bob     = models.Participant{ID: "bob@email.com", Role: models.RoleCustomer, Account: "2"}
)

func newLedger() (*Ledger, *memory.MemoryAccountStore, *eventbus.Bus) {
	store, bus := newFixture()
	return NewLedger(store, bus, policy.NewRolePolicy(), nil), store, bus
}

func TestSubmitIssueAsBanker(t *testing.T) {
	l, store, bus := newLedger()

	event, err := l.Submit(context.Background(), charlie, models.Submission{
		Kind:    models.KindIssue,
		Account: "1",
		Amount:  dec("42.1337"),
	})
	require.NoError(t, err)

	issued, ok := event.(events.Issued)
	require.True(t, ok)
	requireAmount(t, "10", issued.PreviousValue)
	requireAmount(t, "52.1337", issued.NewValue)
	requireAmount(t, "52.1337", balance(t, store, "1"))
	assert.Len(t, bus.Recent(0), 1)
}

func TestSubmitIssueAsCustomerDenied(t *testing.T) {
	l, store, bus := newLedger()

	_, err := l.Submit(context.Background(), alice, models.Submission{
		Kind:    models.KindIssue,
		Account: "1",
		Amount:  dec("100"),
	})
	require.ErrorIs(t, err, models.ErrPermissionDenied)
	requireAmount(t, "10", balance(t, store, "1"))
	assert.Empty(t, bus.Recent(0))
}

func TestSubmitTransfer(t *testing.T) {
	l, store, _ := newLedger()
	ctx := context.Background()

	event, err := l.Submit(ctx, alice, models.Submission{Kind: models.KindTransfer, From: "1", To: "2", Amount: dec("0.3")})
	require.NoError(t, err)
	transfered, ok := event.(events.Transfered)
	require.True(t, ok)
	requireAmount(t, "0.3", transfered.Amount)

	_, err = l.Submit(ctx, bob, models.Submission{Kind: models.KindTransfer, From: "2", To: "1", Amount: dec("0.31")})
	require.NoError(t, err)

	requireAmount(t, "10.01", balance(t, store, "1"))
	requireAmount(t, "19.99", balance(t, store, "2"))
}

func TestSubmitTransferFromOtherAccountDenied(t *testing.T) {
	l, store, _ := newLedger()

	_, err := l.Submit(context.Background(), alice, models.Submission{Kind: models.KindTransfer, From: "2", To: "1", Amount: dec("1.5")})
	require.ErrorIs(t, err, models.ErrPermissionDenied)
	requireAmount(t, "20", balance(t, store, "2"))
}

func TestSubmitTransferRejectsNonPositiveAmounts(t *testing.T) {
	l, store, bus := newLedger()

	for _, amount := range []string{"-50", "0"} {
		event, err := l.Submit(context.Background(), alice, models.Submission{Kind: models.KindTransfer, From: "1", To: "2", Amount: dec(amount)})
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %s", amount)
		assert.Nil(t, event)
	}

	requireAmount(t, "10", balance(t, store, "1"))
	requireAmount(t, "20", balance(t, store, "2"))
	assert.Empty(t, bus.Recent(0))
}

func TestSubmitEmitsAfterContextCancelled(t *testing.T) {
	l, store, bus := newLedger()
	var sinkErr error
	bus.Subscribe(func(ctx context.Context, _ events.Event) { sinkErr = ctx.Err() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Submit(ctx, charlie, models.Submission{Kind: models.KindIssue, Account: "1", Amount: dec("5")})
	require.NoError(t, err)
	requireAmount(t, "15", balance(t, store, "1"))
	assert.NoError(t, sinkErr)
	assert.Len(t, bus.Recent(0), 1)
}

func TestSubmitDisjointTransfersDoNotWaitOnEachOther(t *testing.T) {
	store := memory.NewMemoryAccountStore(
		models.Account{ID: "1", Amount: dec("10")},
		models.Account{ID: "2", Amount: dec("10")},
		models.Account{ID: "3", Amount: dec("10")},
		models.Account{ID: "4", Amount: dec("10")},
	)
	bus := eventbus.NewBus(0)
	l := NewLedger(store, bus, policy.AllowAll{}, nil)

	entered := make(chan string, 2)
	release := make(chan struct{})
	bus.Subscribe(func(_ context.Context, e events.Event) {
		entered <- e.PartitionKey()
		<-release
	})

	var wg sync.WaitGroup
	for _, pair := range [][2]string{{"1", "2"}, {"3", "4"}} {
		pair := pair
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Submit(context.Background(), charlie, models.Submission{Kind: models.KindTransfer, From: pair[0], To: pair[1], Amount: dec("1")})
			assert.NoError(t, err)
		}()
	}

	overlapped := true
	for i := 0; i < 2; i++ {
		select {
		case <-entered:
		case <-time.After(time.Second):
			overlapped = false
		}
	}
	close(release)
	wg.Wait()

	assert.True(t, overlapped, "second transfer waited for the first one's sink")
	requireAmount(t, "9", balance(t, store, "1"))
	requireAmount(t, "11", balance(t, store, "4"))
}

func TestSubmitTransferInsufficientFunds(t *testing.T) {
	l, store, bus := newLedger()

	_, err := l.Submit(context.Background(), alice, models.Submission{Kind: models.KindTransfer, From: "1", To: "2", Amount: dec("10.5")})
	require.ErrorIs(t, err, ErrInsufficientFunds)
	requireAmount(t, "10", balance(t, store, "1"))
	assert.Empty(t, bus.Recent(0))
}

func TestSubmitUnknownKind(t *testing.T) {
	l, _, _ := newLedger()

	event, err := l.Submit(context.Background(), charlie, models.Submission{Kind: "Burn", Account: "1", Amount: dec("1")})
	require.ErrorIs(t, err, ErrUnknownKind)
	assert.Nil(t, event)
}

func TestConcurrentTransfersConserveTotal(t *testing.T) {
	store := memory.NewMemoryAccountStore(
		models.Account{ID: "1", Amount: dec("100")},
		models.Account{ID: "2", Amount: dec("100")},
		models.Account{ID: "3", Amount: dec("100")},
	)
	bus := eventbus.NewBus(1000)
	l := NewLedger(store, bus, policy.AllowAll{}, nil)

	pairs := [][2]string{{"1", "2"}, {"2", "3"}, {"3", "1"}, {"2", "1"}, {"1", "3"}, {"3", "2"}}

	var wg sync.WaitGroup
	for i := 0; i < 300; i++ {
		pair := pairs[i%len(pairs)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Submit(context.Background(), charlie, models.Submission{
				Kind:   models.KindTransfer,
				From:   pair[0],
				To:     pair[1],
				Amount: dec("0.7"),
			})
		}()
	}
	wg.Wait()

	total := balance(t, store, "1").Add(balance(t, store, "2")).Add(balance(t, store, "3"))
	requireAmount(t, "300", total)
	for _, id := range []string{"1", "2", "3"} {
		assert.False(t, balance(t, store, id).IsNegative(), "account %s went negative", id)
	}
}

func TestAccountAdministration(t *testing.T) {
	l, _, _ := newLedger()
	ctx := context.Background()

	err := l.CreateAccount(ctx, alice, models.Account{ID: "3", Amount: dec("30")})
	require.ErrorIs(t, err, models.ErrPermissionDenied)

	require.NoError(t, l.CreateAccount(ctx, charlie, models.Account{ID: "3", Amount: dec("30")}))
	err = l.CreateAccount(ctx, charlie, models.Account{ID: "3", Amount: dec("1")})
	require.ErrorIs(t, err, models.ErrAccountExists)

	account, err := l.Account(ctx, bob, "3")
	require.NoError(t, err)
	requireAmount(t, "30", account.Amount)

	require.ErrorIs(t, l.RemoveAccount(ctx, alice, "2"), models.ErrPermissionDenied)
	require.NoError(t, l.RemoveAccount(ctx, alice, "1"))
	require.NoError(t, l.RemoveAccount(ctx, charlie, "3"))
	require.ErrorIs(t, l.RemoveAccount(ctx, charlie, "3"), models.ErrAccountNotFound)

	accounts, err := l.Accounts(ctx, bob)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "2", accounts[0].ID)
}
