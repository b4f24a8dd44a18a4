package occupancy

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/actuator"
	"github.com/nerrad567/aircontrol-core/internal/aqi"
	"github.com/nerrad567/aircontrol-core/internal/room"
)

// fakeActuator confirms every command.
type fakeActuator struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeActuator) Send(_ context.Context, _ string, a room.Actuator, s room.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, string(a)+"="+string(s))
	return nil
}

type recordingApplier struct {
	mu   sync.Mutex
	cmds []actuator.Command
	err  error
}

func (a *recordingApplier) Apply(_ context.Context, cmd actuator.Command) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cmds = append(a.cmds, cmd)
	return a.err
}

func (a *recordingApplier) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cmds)
}

func at(hour int) func() time.Time {
	return func() time.Time { return time.Date(2026, 3, 2, hour, 30, 0, 0, time.UTC) }
}

// addRoom creates a resolved room open 08-18 whose window is in state w.
func addRoom(t *testing.T, store *room.Store, number string, w room.State) room.ID {
	t.Helper()
	id := room.ID{Building: "b1", Floor: "1", Number: number}
	store.UpsertReadings(id, map[aqi.Pollutant]float64{aqi.PM25: 1}, time.Now())
	if err := store.SetMetadata(id, room.OpeningHours{Start: 8, End: 18}, "http://act-"+number); err != nil {
		t.Fatalf("SetMetadata() error = %v", err)
	}
	if w != room.Closed {
		if err := store.SetActuatorState(id, room.Windows, w); err != nil {
			t.Fatalf("SetActuatorState() error = %v", err)
		}
	}
	return id
}

func TestSweepOnce_ClosesOpenWindowsOutsideHours(t *testing.T) {
	store := room.NewStore()
	open := addRoom(t, store, "101", room.Open)
	slightly := addRoom(t, store, "102", room.SlightlyOpen)
	addRoom(t, store, "103", room.Closed)

	transport := &fakeActuator{}
	d := actuator.NewDispatcher(store, transport, actuator.Options{Now: at(22)})
	s := New(store, d, Options{Now: at(22)})

	res := s.SweepOnce(context.Background())
	if res.Checked != 3 || res.Closed != 1 || res.Failed != 0 {
		t.Errorf("SweepOnce() = %+v, want 3 checked, 1 closed", res)
	}

	r, _ := store.Get(open)
	if r.Window != room.Closed {
		t.Errorf("open room Window = %s, want Closed", r.Window)
	}
	r, _ = store.Get(slightly)
	if r.Window != room.SlightlyOpen {
		t.Errorf("slightly open room Window = %s, want SlightlyOpen by default", r.Window)
	}
	if len(transport.calls) != 1 || transport.calls[0] != "windows=Closed" {
		t.Errorf("transport calls = %v", transport.calls)
	}
}

func TestSweepOnce_IncludeSlightlyOpen(t *testing.T) {
	store := room.NewStore()
	addRoom(t, store, "101", room.Open)
	addRoom(t, store, "102", room.SlightlyOpen)

	applier := &recordingApplier{}
	s := New(store, applier, Options{Now: at(6), IncludeSlightlyOpen: true})

	if res := s.SweepOnce(context.Background()); res.Closed != 2 {
		t.Errorf("Closed = %d, want 2", res.Closed)
	}
	for _, cmd := range applier.cmds {
		if cmd.Actuator != room.Windows || cmd.State != room.Closed || cmd.Source != actuator.SourceSweep {
			t.Errorf("command = %+v", cmd)
		}
	}
}

func TestSweepOnce_SkipsRooms(t *testing.T) {
	store := room.NewStore()
	addRoom(t, store, "101", room.Open)

	// Unresolved rooms have no opening hours to enforce.
	unresolved := room.ID{Building: "b1", Floor: "1", Number: "199"}
	store.UpsertReadings(unresolved, map[aqi.Pollutant]float64{aqi.PM25: 1}, time.Now())

	applier := &recordingApplier{}
	s := New(store, applier, Options{Now: at(12)})

	res := s.SweepOnce(context.Background())
	if applier.count() != 0 {
		t.Errorf("sweep during opening hours sent %d commands", applier.count())
	}
	if res.Checked != 2 || res.Closed != 0 {
		t.Errorf("SweepOnce() = %+v", res)
	}
}

func TestSweepOnce_CountsFailures(t *testing.T) {
	store := room.NewStore()
	id := addRoom(t, store, "101", room.Open)

	applier := &recordingApplier{err: actuator.ErrUnreachable}
	s := New(store, applier, Options{Now: at(20)})

	res := s.SweepOnce(context.Background())
	if res.Failed != 1 || res.Closed != 0 {
		t.Errorf("SweepOnce() = %+v, want 1 failed", res)
	}
	if r, _ := store.Get(id); r.Window != room.Open {
		t.Errorf("failed close changed Window to %s", r.Window)
	}

	applier.err = fmt.Errorf("%w: b1/1/101 windows is Closed", actuator.ErrAlreadyInState)
	if res := s.SweepOnce(context.Background()); res.Failed != 0 {
		t.Errorf("already closed counted as failure: %+v", res)
	}
}

func TestSweepOnce_WaitsForRoomLock(t *testing.T) {
	store := room.NewStore()
	id := addRoom(t, store, "101", room.Open)

	applier := &recordingApplier{}
	s := New(store, applier, Options{Now: at(23)})

	unlock := store.Lock(id)
	done := make(chan Result)
	go func() { done <- s.SweepOnce(context.Background()) }()

	select {
	case <-done:
		t.Fatal("sweep ran while the room cycle lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case res := <-done:
		if res.Closed != 1 {
			t.Errorf("Closed = %d, want 1", res.Closed)
		}
	case <-time.After(time.Second):
		t.Fatal("sweep did not resume after unlock")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := room.NewStore()
	addRoom(t, store, "101", room.Open)

	applier := &recordingApplier{}
	s := New(store, applier, Options{Interval: 10 * time.Millisecond, Now: at(3)})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for applier.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if applier.count() == 0 {
		t.Fatal("Run() never swept")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
