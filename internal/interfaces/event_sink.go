package interfaces

import (
	"context"

	"github.com/sheikh-saqib/coin-ledger/internal/models/events"
)

// EventSink delivers events in emission order. Emit does not report
// delivery failures to the caller.
type EventSink interface {
	Emit(ctx context.Context, event events.Event)
}
