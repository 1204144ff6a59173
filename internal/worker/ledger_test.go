package worker

import (
	"context"
	"testing"
	"time"

	"github.com/tranvd/attendance-kiosk/internal/attendance"
	"github.com/tranvd/attendance-kiosk/internal/config"
	"github.com/tranvd/attendance-kiosk/internal/store"
	"github.com/tranvd/attendance-kiosk/internal/store/mock"
)

func TestLedgerWorker_AppliesRecognitions(t *testing.T) {
	st := mock.New()
	st.AddEmployee(store.Employee{ID: "E1", Name: "Nam"})

	cfg := config.AttendanceConfig{
		LateCutoff:     config.ClockTime{Hour: 8, Minute: 30},
		CheckOutCutoff: config.ClockTime{Hour: 17},
	}
	ledger := attendance.NewLedger(st, st, cfg)

	in := make(chan Recognition, 4)
	w := NewLedgerWorker(ledger, in)

	results := make(chan attendance.Result, 4)
	w.Notify = func(res attendance.Result) { results <- res }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	in <- Recognition{EmployeeID: "E1", At: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}

	select {
	case res := <-results:
		if res.Outcome != attendance.OutcomeCheckInSuccess {
			t.Errorf("expected check-in, got %s", res.Outcome)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ledger worker")
	}

	e, err := st.Get(context.Background(), "E1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.CheckInTime == nil {
		t.Error("check-in not recorded")
	}
}

func TestLedgerWorker_UnknownIDDoesNotStop(t *testing.T) {
	st := mock.New()
	st.AddEmployee(store.Employee{ID: "E1", Name: "Nam"})

	cfg := config.AttendanceConfig{
		LateCutoff:     config.ClockTime{Hour: 8, Minute: 30},
		CheckOutCutoff: config.ClockTime{Hour: 17},
	}
	ledger := attendance.NewLedger(st, st, cfg)

	in := make(chan Recognition, 4)
	w := NewLedgerWorker(ledger, in)

	results := make(chan attendance.Result, 4)
	w.Notify = func(res attendance.Result) { results <- res }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	in <- Recognition{EmployeeID: "ghost", At: at}
	in <- Recognition{EmployeeID: "E1", At: at}

	for i, want := range []attendance.Outcome{attendance.OutcomeNotFound, attendance.OutcomeCheckInSuccess} {
		select {
		case res := <-results:
			if res.Outcome != want {
				t.Errorf("event %d: expected %s, got %s", i, want, res.Outcome)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for ledger worker")
		}
	}
}

func TestLedgerWorker_StopsOnContextCancel(t *testing.T) {
	st := mock.New()
	ledger := attendance.NewLedger(st, st, config.AttendanceConfig{})

	in := make(chan Recognition)
	w := NewLedgerWorker(ledger, in)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
}
