package engine

import "liftcore/fleet"

// dispatchEmitter bridges the dispatch package's emitter interface to the EventBus.
type dispatchEmitter struct {
	bus *EventBus
}

func (e *dispatchEmitter) EmitRequestDispatched(requestID, source string, floor int, direction, liftID string) {
	e.bus.Emit(Event{Type: EventRequestDispatched, Payload: RequestDispatchedEvent{
		RequestID: requestID,
		Source:    source,
		Floor:     floor,
		Direction: direction,
		LiftID:    liftID,
	}})
}

func (e *dispatchEmitter) EmitRequestRejected(requestID, source string, floor int, direction, reason string) {
	e.bus.Emit(Event{Type: EventRequestRejected, Payload: RequestRejectedEvent{
		RequestID: requestID,
		Source:    source,
		Floor:     floor,
		Direction: direction,
		Reason:    reason,
	}})
}

// liftEmitter posts lift worker events to the EventBus queue. Workers never
// run subscribers themselves; a full queue drops the event with a log line.
type liftEmitter struct {
	bus   *EventBus
	logFn LogFunc
}

func (e *liftEmitter) post(t EventType, payload any) {
	if !e.bus.Post(Event{Type: t, Payload: payload}) {
		e.logFn("engine: event queue full, dropped %s", t.Name())
	}
}

func (e *liftEmitter) EmitLiftMoved(liftID string, from, to, target int) {
	e.post(EventLiftMoved, LiftMovedEvent{LiftID: liftID, From: from, To: to, Target: target})
}

func (e *liftEmitter) EmitStopServed(liftID string, floor int, direction fleet.Direction) {
	e.post(EventStopServed, StopServedEvent{LiftID: liftID, Floor: floor, Direction: direction.String()})
}

func (e *liftEmitter) EmitPassengersBoarded(liftID string, floor int, floors []int) {
	e.post(EventPassengersBoarded, PassengersBoardedEvent{LiftID: liftID, Floor: floor, Floors: floors})
}

func (e *liftEmitter) EmitLiftIdle(liftID string, floor int) {
	e.post(EventLiftIdle, LiftIdleEvent{LiftID: liftID, Floor: floor})
}

func (e *liftEmitter) EmitGroundParked(liftID string, fromFloor int) {
	e.post(EventGroundParked, GroundParkedEvent{LiftID: liftID, FromFloor: fromFloor})
}
