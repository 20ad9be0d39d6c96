package dispatch

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"liftcore/fleet"
)

type Dispatcher struct {
	fleet   Fleet
	emitter Emitter
}

func NewDispatcher(f Fleet, emitter Emitter) *Dispatcher {
	return &Dispatcher{fleet: f, emitter: emitter}
}

// Dispatch chooses a lift for req and enqueues the stop on it.
func (d *Dispatcher) Dispatch(req Request) (Result, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Source == "" {
		req.Source = SourceHTTP
	}

	liftID, err := d.choose(req)
	if err == nil {
		err = d.fleet.EnqueueStop(liftID, req.Floor)
	}
	if err != nil {
		log.Printf("dispatch: request %s (floor %d %s) rejected: %v", req.ID, req.Floor, req.Direction, err)
		d.emitter.EmitRequestRejected(req.ID, req.Source, req.Floor, req.Direction.String(), err.Error())
		return Result{RequestID: req.ID}, err
	}

	log.Printf("dispatch: request %s (floor %d %s) -> lift %s", req.ID, req.Floor, req.Direction, liftID)
	d.emitter.EmitRequestDispatched(req.ID, req.Source, req.Floor, req.Direction.String(), liftID)
	return Result{RequestID: req.ID, LiftID: liftID}, nil
}

func (d *Dispatcher) choose(req Request) (string, error) {
	if req.Floor < 0 || req.Floor >= d.fleet.Floors() {
		return "", fmt.Errorf("%w %d (floors 0..%d)", fleet.ErrInvalidFloor, req.Floor, d.fleet.Floors()-1)
	}
	if req.Direction != fleet.DirectionUp && req.Direction != fleet.DirectionDown {
		return "", fmt.Errorf("%w: %s (want UP or DOWN)", fleet.ErrInvalidDirection, req.Direction)
	}
	return Select(req, d.fleet.Snapshot())
}
