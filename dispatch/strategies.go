package dispatch

import (
	"sort"

	"liftcore/fleet"
)

// strategy returns the best candidate for req, or false when it has none.
type strategy func(req Request, lifts []fleet.Snapshot) (fleet.Snapshot, bool)

// strategies are tried in order; the first with a candidate wins.
var strategies = []strategy{
	closestIdle,
	closestEnRoute,
	closestAny,
}

// Select picks the lift that should serve req from a fleet snapshot.
func Select(req Request, snapshot map[string]fleet.Snapshot) (string, error) {
	lifts := make([]fleet.Snapshot, 0, len(snapshot))
	for _, s := range snapshot {
		lifts = append(lifts, s)
	}
	sort.Slice(lifts, func(i, j int) bool { return lifts[i].ID < lifts[j].ID })

	for _, pick := range strategies {
		if s, ok := pick(req, lifts); ok {
			return s.ID, nil
		}
	}
	return "", ErrNoLiftAvailable
}

func closestIdle(req Request, lifts []fleet.Snapshot) (fleet.Snapshot, bool) {
	return best(filter(lifts, func(s fleet.Snapshot) bool {
		return s.Direction == fleet.DirectionIdle
	}), byDistance(req.Floor))
}

// closestEnRoute prefers a lift already travelling towards the caller in the
// direction they want to go.
func closestEnRoute(req Request, lifts []fleet.Snapshot) (fleet.Snapshot, bool) {
	switch req.Direction {
	case fleet.DirectionUp:
		return best(filter(lifts, func(s fleet.Snapshot) bool {
			return s.CurrentFloor < req.Floor && s.Direction == fleet.DirectionUp
		}), func(s fleet.Snapshot) int { return -s.CurrentFloor })
	case fleet.DirectionDown:
		return best(filter(lifts, func(s fleet.Snapshot) bool {
			return s.CurrentFloor > req.Floor && s.Direction == fleet.DirectionDown
		}), func(s fleet.Snapshot) int { return s.CurrentFloor })
	}
	return fleet.Snapshot{}, false
}

func closestAny(req Request, lifts []fleet.Snapshot) (fleet.Snapshot, bool) {
	return best(lifts, byDistance(req.Floor))
}

func byDistance(floor int) func(fleet.Snapshot) int {
	return func(s fleet.Snapshot) int {
		d := s.CurrentFloor - floor
		if d < 0 {
			return -d
		}
		return d
	}
}

func filter(lifts []fleet.Snapshot, keep func(fleet.Snapshot) bool) []fleet.Snapshot {
	var out []fleet.Snapshot
	for _, s := range lifts {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// best returns the lift with the lowest key, breaking ties by the smaller
// tonnage and then by id. lifts must already be ordered by id.
func best(lifts []fleet.Snapshot, key func(fleet.Snapshot) int) (fleet.Snapshot, bool) {
	if len(lifts) == 0 {
		return fleet.Snapshot{}, false
	}
	win := lifts[0]
	for _, s := range lifts[1:] {
		ks, kw := key(s), key(win)
		if ks < kw || (ks == kw && s.Tonnage < win.Tonnage) {
			win = s
		}
	}
	return win, true
}
