package ledger

import (
	"context"
	"time"

	interfaces "github.com/sheikh-saqib/coin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/coin-ledger/internal/models"
	"github.com/sheikh-saqib/coin-ledger/internal/models/events"
)

var now = time.Now

// Issue credits tx.Amount to the referenced account, writes it back and
// emits an Issued event carrying the balance before and after.
//
// The amount is applied as given; zero and negative amounts are not rejected.
// Store errors are returned unchanged and nothing is emitted. Once the write
// succeeds the event is emitted even if ctx is already cancelled.
func Issue(ctx context.Context, store interfaces.AccountStore, sink interfaces.EventSink, tx models.IssueTransaction) (events.Issued, error) {
	account, err := store.Get(ctx, tx.Account)
	if err != nil {
		return events.Issued{}, err
	}

	previous := account.Amount
	account.Amount = previous.Add(tx.Amount)

	if err := store.Update(ctx, account); err != nil {
		return events.Issued{}, err
	}

	event := events.NewIssued(account.ID, previous, account.Amount, now())
	sink.Emit(context.WithoutCancel(ctx), event)

	return event, nil
}

// Transfer moves tx.Amount from tx.From to tx.To. Both accounts are written
// in a single UpdateAll call and one Transfered event is emitted.
//
// When the source balance is below the amount it returns an
// *InsufficientFundsError before any write. A self-transfer writes the
// account once, unchanged, and still emits the event.
func Transfer(ctx context.Context, store interfaces.AccountStore, sink interfaces.EventSink, tx models.TransferTransaction) (events.Transfered, error) {
	from, err := store.Get(ctx, tx.From)
	if err != nil {
		return events.Transfered{}, err
	}

	to := from
	if tx.To != tx.From {
		if to, err = store.Get(ctx, tx.To); err != nil {
			return events.Transfered{}, err
		}
	}

	if from.Amount.LessThan(tx.Amount) {
		return events.Transfered{}, &InsufficientFundsError{
			Account: from.ID,
			Balance: from.Amount,
			Amount:  tx.Amount,
		}
	}

	updated := []models.Account{from}
	if tx.To != tx.From {
		from.Amount = from.Amount.Sub(tx.Amount)
		to.Amount = to.Amount.Add(tx.Amount)
		updated = []models.Account{from, to}
	}

	if err := store.UpdateAll(ctx, updated); err != nil {
		return events.Transfered{}, err
	}

	event := events.NewTransfered(tx.From, tx.To, tx.Amount, now())
	sink.Emit(context.WithoutCancel(ctx), event)

	return event, nil
}
