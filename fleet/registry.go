package fleet

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps lift ids to their current Snapshot. Membership is fixed at
// construction. Every write replaces exactly one entry under the registry
// lock; readers always see whole snapshots.
type Registry struct {
	mu     sync.RWMutex
	floors int
	lifts  map[string]Snapshot
	ids    []string
	wake   map[string]chan struct{}
}

// NewRegistry builds a registry for the given lifts. Duplicate ids fail with
// ErrDuplicateLift; every lift panel must cover exactly floors floors.
func NewRegistry(floors int, lifts ...Snapshot) (*Registry, error) {
	if floors < 1 {
		return nil, fmt.Errorf("registry needs at least one floor, got %d", floors)
	}
	r := &Registry{
		floors: floors,
		lifts:  make(map[string]Snapshot, len(lifts)),
		wake:   make(map[string]chan struct{}, len(lifts)),
	}
	for _, l := range lifts {
		if _, ok := r.lifts[l.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLift, l.ID)
		}
		if l.Panel.Floors() != floors {
			return nil, fmt.Errorf("lift %q panel covers %d floors, want %d", l.ID, l.Panel.Floors(), floors)
		}
		if l.CurrentFloor < 0 || l.CurrentFloor >= floors {
			return nil, fmt.Errorf("lift %q: %w %d", l.ID, ErrInvalidFloor, l.CurrentFloor)
		}
		r.lifts[l.ID] = l
		r.ids = append(r.ids, l.ID)
		r.wake[l.ID] = make(chan struct{}, 1)
	}
	sort.Strings(r.ids)
	return r, nil
}

func (r *Registry) Floors() int { return r.floors }

// IDs returns the lift ids in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

func (r *Registry) Get(id string) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.lifts[id]
	return s, ok
}

// Snapshot returns a point-in-time copy of every lift. It may already be
// stale by the time the caller reads it.
func (r *Registry) Snapshot() map[string]Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Snapshot, len(r.lifts))
	for id, s := range r.lifts {
		out[id] = s
	}
	return out
}

// List is Snapshot as a slice ordered by lift id.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Snapshot, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.lifts[id])
	}
	return out
}

// Update applies fn to the current snapshot of lift id and installs the
// result. If fn returns an error the entry is left unchanged.
func (r *Registry) Update(id string, fn func(Snapshot) (Snapshot, error)) (Snapshot, error) {
	return r.UpdateInFleet(id, func(cur Snapshot, _ []Snapshot) (Snapshot, error) {
		return fn(cur)
	})
}

// UpdateInFleet is Update with fn also seeing every other lift, consistent
// with cur. fn must be quick and must not call back into the registry.
func (r *Registry) UpdateInFleet(id string, fn func(cur Snapshot, others []Snapshot) (Snapshot, error)) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.lifts[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownLift, id)
	}
	others := make([]Snapshot, 0, len(r.lifts)-1)
	for _, oid := range r.ids {
		if oid != id {
			others = append(others, r.lifts[oid])
		}
	}
	next, err := fn(cur, others)
	if err != nil {
		return cur, err
	}
	next.ID = cur.ID
	r.lifts[id] = next
	return next, nil
}

// EnqueueStop lights floor on lift id and wakes its worker. It never waits
// for the worker.
func (r *Registry) EnqueueStop(id string, floor int) error {
	if _, err := r.Update(id, func(s Snapshot) (Snapshot, error) {
		p, err := s.Panel.TurnOn(floor)
		if err != nil {
			return s, err
		}
		return s.WithPanel(p), nil
	}); err != nil {
		return err
	}
	r.Signal(id)
	return nil
}

// Signal wakes the worker of lift id. Signals coalesce: at most one is
// pending per lift.
func (r *Registry) Signal(id string) {
	ch, ok := r.wake[id]
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Wake returns the channel the worker of lift id blocks on while idle.
func (r *Registry) Wake(id string) <-chan struct{} {
	return r.wake[id]
}
