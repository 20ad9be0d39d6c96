package lift

import "liftcore/fleet"

// Emitter is the interface adapters must satisfy to bridge lift events to the engine.
type Emitter interface {
	EmitLiftMoved(liftID string, from, to, target int)
	EmitStopServed(liftID string, floor int, direction fleet.Direction)
	EmitPassengersBoarded(liftID string, floor int, floors []int)
	EmitLiftIdle(liftID string, floor int)
	EmitGroundParked(liftID string, fromFloor int)
}

// NoEmitter discards every lift event.
type NoEmitter struct{}

func (NoEmitter) EmitLiftMoved(string, int, int, int)         {}
func (NoEmitter) EmitStopServed(string, int, fleet.Direction) {}
func (NoEmitter) EmitPassengersBoarded(string, int, []int)    {}
func (NoEmitter) EmitLiftIdle(string, int)                    {}
func (NoEmitter) EmitGroundParked(string, int)                {}
