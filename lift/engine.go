package lift

import (
	"context"
	"log"
	"time"

	"liftcore/fleet"
)

type LogFunc func(format string, args ...any)

// Fleet is the part of the registry a lift worker needs.
type Fleet interface {
	Floors() int
	Get(id string) (fleet.Snapshot, bool)
	Update(id string, fn func(fleet.Snapshot) (fleet.Snapshot, error)) (fleet.Snapshot, error)
	UpdateInFleet(id string, fn func(cur fleet.Snapshot, others []fleet.Snapshot) (fleet.Snapshot, error)) (fleet.Snapshot, error)
	Wake(id string) <-chan struct{}
}

type Config struct {
	ID       string
	Fleet    Fleet
	Emitter  Emitter
	Boarding Boarding
	// TravelUnit is the wall-clock length of one of the lift's
	// SecondsPerFloor. Defaults to time.Second.
	TravelUnit time.Duration
	LogFunc    LogFunc
}

// Engine drives one lift. It owns the lift's entry in the fleet: apart from
// external stop requests, only its Run loop writes that entry.
type Engine struct {
	id         string
	fleet      Fleet
	emitter    Emitter
	boarding   Boarding
	travelUnit time.Duration
	logFn      LogFunc
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	boarding := c.Boarding
	if boarding == nil {
		boarding = NoBoarding{}
	}
	emitter := c.Emitter
	if emitter == nil {
		emitter = NoEmitter{}
	}
	unit := c.TravelUnit
	if unit <= 0 {
		unit = time.Second
	}
	return &Engine{
		id:         c.ID,
		fleet:      c.Fleet,
		emitter:    emitter,
		boarding:   boarding,
		travelUnit: unit,
		logFn:      logFn,
	}
}

func (e *Engine) ID() string { return e.id }

// Run executes the scan-move-arrive loop until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logFn("lift %s: started", e.id)
	for {
		if err := e.step(ctx); err != nil {
			e.logFn("lift %s: stopped at floor %d: %v", e.id, e.current().CurrentFloor, err)
			return err
		}
	}
}

func (e *Engine) step(ctx context.Context) error {
	if err := e.awaitStop(ctx); err != nil {
		return err
	}

	if s := e.current(); s.Direction == fleet.DirectionUp {
		if target, ok := s.Panel.NextAbove(s.CurrentFloor); ok {
			if err := e.hop(ctx, s, target); err != nil {
				return err
			}
		} else {
			e.turnAround()
		}
	}

	if s := e.current(); s.Direction == fleet.DirectionDown {
		if target, ok := s.Panel.NextBelow(s.CurrentFloor); ok {
			if err := e.hop(ctx, s, target); err != nil {
				return err
			}
		} else {
			e.turnAround()
		}
	}

	e.serveCurrentFloor()

	if e.current().Direction == fleet.DirectionIdle {
		e.redispatch()
	}
	return nil
}

// awaitStop blocks while nothing is pressed. The panel is re-read after
// every wake since signals may be stale.
func (e *Engine) awaitStop(ctx context.Context) error {
	for waited := false; ; waited = true {
		if err := ctx.Err(); err != nil {
			return err
		}
		s := e.current()
		if !s.Panel.AllOff() {
			return nil
		}
		if s.Motion != fleet.Stopped || s.LightsOn {
			e.update(func(s fleet.Snapshot) fleet.Snapshot {
				return s.WithMotion(fleet.Stopped, false)
			})
		}
		if !waited {
			e.emitter.EmitLiftIdle(e.id, s.CurrentFloor)
		}
		select {
		case <-e.fleet.Wake(e.id):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// hop moves the lift one floor towards target. A hop cannot be redirected
// once started; stops pressed meanwhile are seen on the next step.
func (e *Engine) hop(ctx context.Context, s fleet.Snapshot, target int) error {
	from := s.CurrentFloor
	to := from + 1
	if target < from {
		to = from - 1
	}
	e.logFn("lift %s: %d -> %d heading to %d", e.id, from, to, target)

	e.update(func(s fleet.Snapshot) fleet.Snapshot {
		return s.WithMotion(fleet.Moving, true)
	})
	if err := e.travel(ctx, s.SecondsPerFloor); err != nil {
		return err
	}
	e.update(func(s fleet.Snapshot) fleet.Snapshot {
		return s.WithFloor(to, fleet.Stopped)
	})
	e.emitter.EmitLiftMoved(e.id, from, to, target)

	if to == target {
		e.board(to)
	}
	return nil
}

func (e *Engine) travel(ctx context.Context, secondsPerFloor int) error {
	d := time.Duration(secondsPerFloor) * e.travelUnit
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) board(floor int) {
	pressed := e.boarding.Board(e.id, floor, e.fleet.Floors())
	if len(pressed) == 0 {
		return
	}
	_, err := e.fleet.Update(e.id, func(s fleet.Snapshot) (fleet.Snapshot, error) {
		p, err := s.Panel.TurnOnAll(pressed...)
		if err != nil {
			return s, err
		}
		return s.WithPanel(p), nil
	})
	if err != nil {
		e.logFn("lift %s: boarding at %d: %v", e.id, floor, err)
		return
	}
	e.logFn("lift %s: passengers boarded at %d and pressed %v", e.id, floor, pressed)
	e.emitter.EmitPassengersBoarded(e.id, floor, pressed)
}

// turnAround picks a new direction once the current scan is exhausted.
func (e *Engine) turnAround() {
	s := e.update(func(s fleet.Snapshot) fleet.Snapshot {
		return s.WithDirection(s.Heading())
	})
	e.logFn("lift %s: end of scan at %d, now %s", e.id, s.CurrentFloor, s.Direction)
}

// serveCurrentFloor clears the button of the floor the lift stands on and
// goes idle when nothing else is pending.
func (e *Engine) serveCurrentFloor() {
	served := false
	s := e.update(func(s fleet.Snapshot) fleet.Snapshot {
		if on, _ := s.Panel.IsOn(s.CurrentFloor); on {
			p, _ := s.Panel.TurnOff(s.CurrentFloor)
			s = s.WithPanel(p)
			served = true
		}
		if s.Panel.AllOff() {
			s = s.WithDirection(fleet.DirectionIdle)
		}
		return s
	})
	if served {
		e.logFn("lift %s: served floor %d, panel %s", e.id, s.CurrentFloor, s.Panel)
		e.emitter.EmitStopServed(e.id, s.CurrentFloor, s.Direction)
	}
}

// redispatch runs on an idle lift. If nothing pulls it either way and no
// lift is at or bound for the ground floor, it sends itself there.
func (e *Engine) redispatch() {
	parked := false
	s, err := e.fleet.UpdateInFleet(e.id, func(s fleet.Snapshot, others []fleet.Snapshot) (fleet.Snapshot, error) {
		if s.Distance() == 0 && !groundCovered(s, others) {
			p, err := s.Panel.TurnOn(0)
			if err != nil {
				return s, err
			}
			s = s.WithPanel(p)
			parked = true
		}
		return s.WithDirection(s.Heading()), nil
	})
	if err != nil {
		e.logFn("lift %s: redispatch: %v", e.id, err)
		return
	}
	if parked {
		e.logFn("lift %s: no lift on ground floor, parking from %d", e.id, s.CurrentFloor)
		e.emitter.EmitGroundParked(e.id, s.CurrentFloor)
	}
}

func groundCovered(self fleet.Snapshot, others []fleet.Snapshot) bool {
	if self.CurrentFloor == 0 {
		return true
	}
	for _, o := range others {
		if o.CurrentFloor == 0 {
			return true
		}
		if on, _ := o.Panel.IsOn(0); on {
			return true
		}
	}
	return false
}

func (e *Engine) current() fleet.Snapshot {
	s, _ := e.fleet.Get(e.id)
	return s
}

func (e *Engine) update(fn func(fleet.Snapshot) fleet.Snapshot) fleet.Snapshot {
	s, err := e.fleet.Update(e.id, func(s fleet.Snapshot) (fleet.Snapshot, error) {
		return fn(s), nil
	})
	if err != nil {
		e.logFn("lift %s: update: %v", e.id, err)
	}
	return s
}
