package fleet

import (
	"errors"
	"math/rand"
	"testing"
)

func mustOn(t *testing.T, p Panel, floors ...int) Panel {
	t.Helper()
	next, err := p.TurnOnAll(floors...)
	if err != nil {
		t.Fatalf("TurnOnAll(%v): %v", floors, err)
	}
	return next
}

func TestPanelNextAboveBelow(t *testing.T) {
	p := mustOn(t, NewPanel(10), 2, 5, 8)

	tests := []struct {
		floor   int
		above   int
		aboveOK bool
		below   int
		belowOK bool
	}{
		{floor: 0, above: 2, aboveOK: true},
		{floor: 2, above: 5, aboveOK: true, below: 0, belowOK: false},
		{floor: 5, above: 8, aboveOK: true, below: 2, belowOK: true},
		{floor: 6, above: 8, aboveOK: true, below: 5, belowOK: true},
		{floor: 8, below: 5, belowOK: true},
		{floor: 9, below: 8, belowOK: true},
	}
	for _, tc := range tests {
		got, ok := p.NextAbove(tc.floor)
		if ok != tc.aboveOK || (ok && got != tc.above) {
			t.Errorf("NextAbove(%d) = %d,%v, want %d,%v", tc.floor, got, ok, tc.above, tc.aboveOK)
		}
		got, ok = p.NextBelow(tc.floor)
		if ok != tc.belowOK || (ok && got != tc.below) {
			t.Errorf("NextBelow(%d) = %d,%v, want %d,%v", tc.floor, got, ok, tc.below, tc.belowOK)
		}
	}
}

func TestPanelImmutable(t *testing.T) {
	p := NewPanel(4)
	on := mustOn(t, p, 1)
	if !p.AllOff() {
		t.Error("original panel changed by TurnOn")
	}
	off, err := on.TurnOff(1)
	if err != nil {
		t.Fatalf("TurnOff: %v", err)
	}
	if lit, _ := on.IsOn(1); !lit {
		t.Error("original panel changed by TurnOff")
	}
	if !off.AllOff() {
		t.Errorf("panel after TurnOff = %s, want all off", off)
	}
}

func TestPanelIdempotent(t *testing.T) {
	p := mustOn(t, NewPanel(6), 3)
	again := mustOn(t, p, 3)
	if !again.Equal(p) {
		t.Errorf("turning on a lit floor changed the panel: %s vs %s", again, p)
	}
	off, _ := NewPanel(6).TurnOff(2)
	if !off.Equal(NewPanel(6)) {
		t.Error("turning off an unlit floor changed the panel")
	}
}

func TestPanelInvalidFloor(t *testing.T) {
	p := NewPanel(3)
	for _, f := range []int{-1, 3, 100} {
		if _, err := p.IsOn(f); !errors.Is(err, ErrInvalidFloor) {
			t.Errorf("IsOn(%d) err = %v, want ErrInvalidFloor", f, err)
		}
		if _, err := p.TurnOn(f); !errors.Is(err, ErrInvalidFloor) {
			t.Errorf("TurnOn(%d) err = %v, want ErrInvalidFloor", f, err)
		}
		if _, err := p.TurnOff(f); !errors.Is(err, ErrInvalidFloor) {
			t.Errorf("TurnOff(%d) err = %v, want ErrInvalidFloor", f, err)
		}
	}
	// A bad floor in a batch leaves the panel untouched.
	got, err := p.TurnOnAll(1, 7)
	if !errors.Is(err, ErrInvalidFloor) {
		t.Fatalf("TurnOnAll err = %v, want ErrInvalidFloor", err)
	}
	if !got.AllOff() {
		t.Errorf("TurnOnAll partially applied: %s", got)
	}
}

func TestPanelQueriesStayInRange(t *testing.T) {
	const floors = 12
	rng := rand.New(rand.NewSource(7))
	p := NewPanel(floors)
	for i := 0; i < 2000; i++ {
		f := rng.Intn(floors)
		if rng.Intn(2) == 0 {
			p, _ = p.TurnOn(f)
		} else {
			p, _ = p.TurnOff(f)
		}
		ref := rng.Intn(floors+6) - 3
		if got, ok := p.NextAbove(ref); ok && (got < 0 || got >= floors || got <= ref) {
			t.Fatalf("NextAbove(%d) = %d on %s", ref, got, p)
		}
		if got, ok := p.NextBelow(ref); ok && (got < 0 || got >= floors || got >= ref) {
			t.Fatalf("NextBelow(%d) = %d on %s", ref, got, p)
		}
	}
}

func TestPanelPendingAndString(t *testing.T) {
	p := mustOn(t, NewPanel(3), 2, 0)
	pending := p.Pending()
	if len(pending) != 2 || pending[0] != 0 || pending[1] != 2 {
		t.Errorf("Pending = %v, want [0 2]", pending)
	}
	if s := p.String(); s != "[0=☑, 1=□, 2=☑]" {
		t.Errorf("String = %q", s)
	}
}
