package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	interfaces "github.com/sheikh-saqib/coin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/coin-ledger/internal/models"
	"github.com/sheikh-saqib/coin-ledger/internal/models/events"
)

// Ledger is the submission handler in front of Issue and Transfer.
// It authorizes callers and serializes work on the same account ids.
type Ledger struct {
	store  interfaces.AccountRegistry
	sink   interfaces.EventSink
	auth   interfaces.Authorizer
	logger *zap.Logger

	muMap map[string]*sync.Mutex // one mutex per account id
	mapMu sync.Mutex             // protects muMap
}

func NewLedger(store interfaces.AccountRegistry, sink interfaces.EventSink, auth interfaces.Authorizer, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ledger{
		store:  store,
		sink:   sink,
		auth:   auth,
		logger: logger,
		muMap:  make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) getAccountLock(accountID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[accountID]; !exists {
		l.muMap[accountID] = &sync.Mutex{}
	}
	return l.muMap[accountID]
}

// lockAccounts locks every distinct id in lexical order to avoid deadlocks
// and returns the matching unlock function.
func (l *Ledger) lockAccounts(ids ...string) func() {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	locks := make([]*sync.Mutex, len(unique))
	for i, id := range unique {
		locks[i] = l.getAccountLock(id)
		locks[i].Lock()
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// Submit authorizes caller for the submission and runs it. The returned
// event is the one handed to the sink. Transfers with a non-positive amount
// are rejected with ErrInvalidAmount before authorization.
func (l *Ledger) Submit(ctx context.Context, caller models.Participant, sub models.Submission) (events.Event, error) {
	var (
		action interfaces.Action
		target string
		keys   []string
	)

	switch sub.Kind {
	case models.KindIssue:
		action, target, keys = interfaces.ActionIssue, sub.Account, []string{sub.Account}
	case models.KindTransfer:
		// A negative amount would debit To while only From is authorized.
		if !sub.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, sub.Amount)
		}
		action, target, keys = interfaces.ActionTransfer, sub.From, []string{sub.From, sub.To}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, sub.Kind)
	}

	log := l.logger.With(
		zap.String("kind", string(sub.Kind)),
		zap.String("participant", caller.ID),
		zap.String("amount", sub.Amount.String()),
	)

	if err := l.auth.Authorize(ctx, caller, action, target); err != nil {
		log.Warn("transaction rejected by policy", zap.Error(err))
		return nil, err
	}

	unlock := l.lockAccounts(keys...)
	defer unlock()

	var event events.Event
	switch sub.Kind {
	case models.KindIssue:
		issued, err := Issue(ctx, l.store, l.sink, sub.Issue())
		if err != nil {
			log.Error("issue failed", zap.String("account", sub.Account), zap.Error(err))
			return nil, err
		}
		event = issued
	case models.KindTransfer:
		transfered, err := Transfer(ctx, l.store, l.sink, sub.Transfer())
		if err != nil {
			log.Warn("transfer failed", zap.String("from", sub.From), zap.String("to", sub.To), zap.Error(err))
			return nil, err
		}
		event = transfered
	}

	log.Info("transaction committed", zap.String("event_id", event.Metadata().EventID))
	return event, nil
}

// Account returns one account if caller may read it.
func (l *Ledger) Account(ctx context.Context, caller models.Participant, id string) (models.Account, error) {
	if err := l.auth.Authorize(ctx, caller, interfaces.ActionRead, id); err != nil {
		return models.Account{}, err
	}
	return l.store.Get(ctx, id)
}

// Accounts lists every account readable by caller.
func (l *Ledger) Accounts(ctx context.Context, caller models.Participant) ([]models.Account, error) {
	accounts, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}

	readable := make([]models.Account, 0, len(accounts))
	for _, account := range accounts {
		if l.auth.Authorize(ctx, caller, interfaces.ActionRead, account.ID) == nil {
			readable = append(readable, account)
		}
	}
	return readable, nil
}

func (l *Ledger) CreateAccount(ctx context.Context, caller models.Participant, account models.Account) error {
	if err := l.auth.Authorize(ctx, caller, interfaces.ActionCreateAccount, account.ID); err != nil {
		l.logger.Warn("account creation rejected", zap.String("participant", caller.ID), zap.String("account", account.ID), zap.Error(err))
		return err
	}

	unlock := l.lockAccounts(account.ID)
	defer unlock()

	if err := l.store.Add(ctx, account); err != nil {
		return err
	}

	l.logger.Info("account created", zap.String("account", account.ID), zap.String("amount", account.Amount.String()))
	return nil
}

func (l *Ledger) RemoveAccount(ctx context.Context, caller models.Participant, id string) error {
	if err := l.auth.Authorize(ctx, caller, interfaces.ActionRemoveAccount, id); err != nil {
		l.logger.Warn("account removal rejected", zap.String("participant", caller.ID), zap.String("account", id), zap.Error(err))
		return err
	}

	unlock := l.lockAccounts(id)
	defer unlock()

	if err := l.store.Remove(ctx, id); err != nil {
		return err
	}

	l.logger.Info("account removed", zap.String("account", id))
	return nil
}
