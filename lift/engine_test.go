package lift

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"liftcore/fleet"
)

// --- Recording emitter ---

type recorder struct {
	mu      sync.Mutex
	served  map[string][]int
	parked  []string
	boarded [][]int
	moves   int
}

func newRecorder() *recorder {
	return &recorder{served: make(map[string][]int)}
}

func (r *recorder) EmitLiftMoved(string, int, int, int) {
	r.mu.Lock()
	r.moves++
	r.mu.Unlock()
}
func (r *recorder) EmitStopServed(liftID string, floor int, _ fleet.Direction) {
	r.mu.Lock()
	r.served[liftID] = append(r.served[liftID], floor)
	r.mu.Unlock()
}
func (r *recorder) EmitPassengersBoarded(_ string, _ int, floors []int) {
	r.mu.Lock()
	r.boarded = append(r.boarded, floors)
	r.mu.Unlock()
}
func (r *recorder) EmitLiftIdle(string, int) {}
func (r *recorder) EmitGroundParked(liftID string, _ int) {
	r.mu.Lock()
	r.parked = append(r.parked, liftID)
	r.mu.Unlock()
}

func (r *recorder) servedBy(id string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.served[id]...)
}

func (r *recorder) parkedLifts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.parked...)
}

// --- Helpers ---

func quietLog(string, ...any) {}

func testFleet(t *testing.T, n, floors int) *fleet.Registry {
	t.Helper()
	lifts := make([]fleet.Snapshot, n)
	for i := range lifts {
		lifts[i] = fleet.NewLift(fmt.Sprint(i+1), floors, 1, 100)
	}
	r, err := fleet.NewRegistry(floors, lifts...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

// startLifts runs one worker per lift until the test ends.
func startLifts(t *testing.T, reg *fleet.Registry, rec *recorder, boarding Boarding) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, id := range reg.IDs() {
		eng := New(Config{
			ID:         id,
			Fleet:      reg,
			Emitter:    rec,
			Boarding:   boarding,
			TravelUnit: 2 * time.Millisecond,
			LogFunc:    quietLog,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			eng.Run(ctx)
		}()
	}
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func restingAt(reg *fleet.Registry, id string, floor int) func() bool {
	return func() bool {
		s, _ := reg.Get(id)
		return s.CurrentFloor == floor && s.Direction == fleet.DirectionIdle && s.Panel.AllOff() && s.Motion == fleet.Stopped
	}
}

// --- Tests ---

func TestLiftServesStopThenParksAtGround(t *testing.T) {
	reg := testFleet(t, 1, 10)
	rec := newRecorder()
	startLifts(t, reg, rec, NoBoarding{})

	if err := reg.EnqueueStop("1", 5); err != nil {
		t.Fatalf("EnqueueStop: %v", err)
	}
	waitFor(t, "lift 1 back at ground", func() bool {
		return len(rec.servedBy("1")) == 2 && restingAt(reg, "1", 0)()
	})
	if got := fmt.Sprint(rec.servedBy("1")); got != "[5 0]" {
		t.Errorf("served = %s, want [5 0]", got)
	}
	if got := rec.parkedLifts(); len(got) != 1 {
		t.Errorf("parked = %v, want one park", got)
	}
	s, _ := reg.Get("1")
	if s.LightsOn {
		t.Error("lights should be off while idle")
	}
}

func TestLiftServesStopAtCurrentFloorWithoutMoving(t *testing.T) {
	reg := testFleet(t, 1, 10)
	rec := newRecorder()
	startLifts(t, reg, rec, NoBoarding{})

	reg.EnqueueStop("1", 0)
	waitFor(t, "floor 0 served", func() bool { return len(rec.servedBy("1")) == 1 })
	waitFor(t, "lift idle", restingAt(reg, "1", 0))
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.moves != 0 {
		t.Errorf("moves = %d, want 0", rec.moves)
	}
}

func TestLiftScansUpBeforeTurningDown(t *testing.T) {
	reg := testFleet(t, 1, 10)
	reg.Update("1", func(s fleet.Snapshot) (fleet.Snapshot, error) {
		p, _ := s.Panel.TurnOnAll(2, 6, 8)
		return s.WithFloor(4, fleet.Stopped).WithPanel(p), nil
	})
	rec := newRecorder()
	startLifts(t, reg, rec, NoBoarding{})
	reg.Signal("1")

	waitFor(t, "all stops served", func() bool { return len(rec.servedBy("1")) >= 4 })
	if got := fmt.Sprint(rec.servedBy("1")[:4]); got != "[6 8 2 0]" {
		t.Errorf("served = %s, want [6 8 2 0]", got)
	}
}

func TestIdleLiftBetweenEquidistantStops(t *testing.T) {
	reg := testFleet(t, 1, 10)
	reg.Update("1", func(s fleet.Snapshot) (fleet.Snapshot, error) {
		p, _ := s.Panel.TurnOnAll(3, 7)
		return s.WithFloor(5, fleet.Stopped).WithPanel(p).WithDirection(fleet.DirectionIdle), nil
	})
	rec := newRecorder()
	startLifts(t, reg, rec, NoBoarding{})
	reg.Signal("1")

	waitFor(t, "lift back at ground", restingAt(reg, "1", 0))
	if got := fmt.Sprint(rec.servedBy("1")); got != "[7 3 0]" {
		t.Errorf("served = %s, want [7 3 0]", got)
	}
	if got := rec.parkedLifts(); len(got) != 1 {
		t.Errorf("parked = %v, want one park", got)
	}
}

func TestBoardingAddsStops(t *testing.T) {
	reg := testFleet(t, 1, 10)
	rec := newRecorder()
	var once sync.Once
	boarding := BoardingFunc(func(_ string, floor, _ int) []int {
		var out []int
		once.Do(func() { out = []int{8} })
		return out
	})
	startLifts(t, reg, rec, boarding)

	reg.EnqueueStop("1", 3)
	waitFor(t, "boarded stop served", func() bool {
		served := rec.servedBy("1")
		return len(served) >= 2 && served[1] == 8
	})
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.boarded) != 1 || rec.boarded[0][0] != 8 {
		t.Errorf("boarded = %v", rec.boarded)
	}
}

func TestGroundParkEngagesExactlyOnce(t *testing.T) {
	reg := testFleet(t, 3, 12)
	rec := newRecorder()
	startLifts(t, reg, rec, NoBoarding{})

	reg.EnqueueStop("1", 3)
	reg.EnqueueStop("2", 6)
	reg.EnqueueStop("3", 9)

	waitFor(t, "fleet at rest", func() bool {
		atGround := 0
		for _, s := range reg.List() {
			if s.Direction != fleet.DirectionIdle || !s.Panel.AllOff() {
				return false
			}
			if s.CurrentFloor == 0 {
				atGround++
			}
		}
		return atGround == 1
	})
	if got := rec.parkedLifts(); len(got) != 1 {
		t.Fatalf("parked = %v, want exactly one lift", got)
	}
}

func TestIdleOnlyWithEmptyPanel(t *testing.T) {
	reg := testFleet(t, 2, 10)
	rec := newRecorder()
	for _, f := range []int{7, 2, 9} {
		reg.EnqueueStop("1", f)
	}
	reg.EnqueueStop("2", 4)
	startLifts(t, reg, rec, NoBoarding{})

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		for _, s := range reg.List() {
			if s.Direction == fleet.DirectionIdle && !s.Panel.AllOff() {
				t.Fatalf("lift %s idle with pending stops %v", s.ID, s.Panel.Pending())
			}
		}
	}
}

func TestRunStopsOnCancelWhileIdle(t *testing.T) {
	reg := testFleet(t, 1, 5)
	eng := New(Config{ID: "1", Fleet: reg, Emitter: newRecorder(), LogFunc: quietLog})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNilEmitterServesStops(t *testing.T) {
	reg := testFleet(t, 1, 6)
	eng := New(Config{ID: "1", Fleet: reg, TravelUnit: 2 * time.Millisecond, LogFunc: quietLog})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	if err := reg.EnqueueStop("1", 3); err != nil {
		t.Fatal(err)
	}
	// Served 3, then parked back on the ground floor.
	waitFor(t, "lift back at ground", restingAt(reg, "1", 0))
}

func TestRunStopsOnCancelMidHop(t *testing.T) {
	reg := testFleet(t, 1, 5)
	eng := New(Config{ID: "1", Fleet: reg, Emitter: newRecorder(), TravelUnit: time.Hour, LogFunc: quietLog})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	reg.EnqueueStop("1", 4)
	waitFor(t, "lift moving", func() bool {
		s, _ := reg.Get("1")
		return s.Motion == fleet.Moving && s.LightsOn
	})
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if s, _ := reg.Get("1"); s.CurrentFloor != 0 {
		t.Errorf("interrupted hop changed floor to %d", s.CurrentFloor)
	}
}
