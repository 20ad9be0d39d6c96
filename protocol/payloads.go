package protocol

// LiftRequest is a hall call: someone on Floor wants to go UP or DOWN.
type LiftRequest struct {
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
}

// LiftDispatched reports which lift took a request.
type LiftDispatched struct {
	RequestID string `json:"request_id"`
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
	LiftID    string `json:"lift_id"`
}

// LiftRejected reports a request no lift could take.
type LiftRejected struct {
	RequestID string `json:"request_id"`
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
	Reason    string `json:"reason"`
}

// LiftArrived is published each time a lift stops to serve a floor.
type LiftArrived struct {
	LiftID    string `json:"lift_id"`
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
}

// LiftParked is published when an idle lift is sent back to the ground floor.
type LiftParked struct {
	LiftID    string `json:"lift_id"`
	FromFloor int    `json:"from_floor"`
}
