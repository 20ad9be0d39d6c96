package dispatch

import (
	"errors"

	"liftcore/fleet"
)

var ErrNoLiftAvailable = errors.New("no lift available to process request")

// Request sources recorded in the journal.
const (
	SourceHTTP        = "http"
	SourceMessaging   = "messaging"
	SourceMaintenance = "maintenance"
)

// Request is a hall call: someone on Floor wants to travel in Direction.
type Request struct {
	ID        string          `json:"-"`
	Source    string          `json:"-"`
	Floor     int             `json:"floorNumber"`
	Direction fleet.Direction `json:"direction"`
}

// Result identifies the lift a request was handed to.
type Result struct {
	RequestID string `json:"request_id"`
	LiftID    string `json:"lift_id"`
}

// Fleet is the part of the registry the dispatcher needs.
type Fleet interface {
	Floors() int
	Snapshot() map[string]fleet.Snapshot
	EnqueueStop(id string, floor int) error
}
