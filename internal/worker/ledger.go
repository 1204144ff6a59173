package worker

import (
	"context"
	"log"

	"github.com/tranvd/attendance-kiosk/internal/attendance"
)

// LedgerWorker drains the recognition queue and applies each event to the
// attendance ledger. A single instance serializes all attendance writes.
type LedgerWorker struct {
	ledger *attendance.Ledger
	in     <-chan Recognition

	// Notify, when set, is called after every applied transition. The kiosk
	// UI uses it to show the greeting.
	Notify func(attendance.Result)
}

// NewLedgerWorker creates a ledger worker reading from the given queue.
func NewLedgerWorker(ledger *attendance.Ledger, in <-chan Recognition) *LedgerWorker {
	return &LedgerWorker{ledger: ledger, in: in}
}

// Run applies recognitions until the context is done. Remaining queued
// events are abandoned on shutdown.
func (w *LedgerWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-w.in:
			w.apply(ctx, rec)
		}
	}
}

func (w *LedgerWorker) apply(ctx context.Context, rec Recognition) {
	res, err := w.ledger.Record(ctx, rec.EmployeeID, rec.At)
	if err != nil {
		log.Printf("ledger worker: failed to record %s: %v", rec.EmployeeID, err)
		return
	}

	switch res.Outcome {
	case attendance.OutcomeNotFound:
		log.Printf("ledger worker: recognized id %s has no employee record", rec.EmployeeID)
	case attendance.OutcomeAlreadyHandled:
		// Nothing to do, the person already checked in/out today.
	default:
		log.Printf("ledger worker: %s %s at %s", res.Outcome, rec.EmployeeID, rec.At.Format("15:04:05"))
	}

	if w.Notify != nil {
		w.Notify(res)
	}
}
