package engine

const (
	EventRequestDispatched EventType = iota + 1
	EventRequestRejected
	EventLiftMoved
	EventStopServed
	EventPassengersBoarded
	EventLiftIdle
	EventGroundParked
	EventCarCall
	EventMessagingConnected
	EventMessagingDisconnected
	EventCacheConnected
	EventCacheDisconnected
)

// Name is the wire name used on the SSE stream.
func (t EventType) Name() string {
	switch t {
	case EventRequestDispatched:
		return "request-dispatched"
	case EventRequestRejected:
		return "request-rejected"
	case EventLiftMoved:
		return "lift-moved"
	case EventStopServed:
		return "stop-served"
	case EventPassengersBoarded:
		return "passengers-boarded"
	case EventLiftIdle:
		return "lift-idle"
	case EventGroundParked:
		return "ground-parked"
	case EventCarCall:
		return "car-call"
	case EventMessagingConnected, EventMessagingDisconnected, EventCacheConnected, EventCacheDisconnected:
		return "connection"
	}
	return "unknown"
}

// --- Event payloads ---

type RequestDispatchedEvent struct {
	RequestID string `json:"request_id"`
	Source    string `json:"source"`
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
	LiftID    string `json:"lift_id"`
}

type RequestRejectedEvent struct {
	RequestID string `json:"request_id"`
	Source    string `json:"source"`
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
	Reason    string `json:"reason"`
}

type LiftMovedEvent struct {
	LiftID string `json:"lift_id"`
	From   int    `json:"from"`
	To     int    `json:"to"`
	Target int    `json:"target"`
}

type StopServedEvent struct {
	LiftID    string `json:"lift_id"`
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
}

type PassengersBoardedEvent struct {
	LiftID string `json:"lift_id"`
	Floor  int    `json:"floor"`
	Floors []int  `json:"floors"`
}

type LiftIdleEvent struct {
	LiftID string `json:"lift_id"`
	Floor  int    `json:"floor"`
}

type GroundParkedEvent struct {
	LiftID    string `json:"lift_id"`
	FromFloor int    `json:"from_floor"`
}

type CarCallEvent struct {
	LiftID string `json:"lift_id"`
	Floor  int    `json:"floor"`
	Actor  string `json:"actor"`
}

type ConnectionEvent struct {
	Detail string `json:"detail"`
}

func (e RequestDispatchedEvent) liftID() string { return e.LiftID }
func (e LiftMovedEvent) liftID() string         { return e.LiftID }
func (e StopServedEvent) liftID() string        { return e.LiftID }
func (e PassengersBoardedEvent) liftID() string { return e.LiftID }
func (e LiftIdleEvent) liftID() string          { return e.LiftID }
func (e GroundParkedEvent) liftID() string      { return e.LiftID }
func (e CarCallEvent) liftID() string           { return e.LiftID }
