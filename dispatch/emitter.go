package dispatch

// Emitter is the interface adapters must satisfy to bridge dispatch outcomes to the engine.
type Emitter interface {
	EmitRequestDispatched(requestID, source string, floor int, direction, liftID string)
	EmitRequestRejected(requestID, source string, floor int, direction, reason string)
}
