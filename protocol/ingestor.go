package protocol

import (
	"encoding/json"
	"log"
)

// FilterFunc returns true if the message should be processed.
type FilterFunc func(hdr *RawHeader) bool

// MessageHandler defines callbacks for all protocol message types.
// Embed NoOpHandler and override only the methods you need.
type MessageHandler interface {
	HandleLiftRequest(env *Envelope, p *LiftRequest)

	HandleLiftDispatched(env *Envelope, p *LiftDispatched)
	HandleLiftRejected(env *Envelope, p *LiftRejected)
	HandleLiftArrived(env *Envelope, p *LiftArrived)
	HandleLiftParked(env *Envelope, p *LiftParked)
}

// NoOpHandler implements MessageHandler with no-op methods.
type NoOpHandler struct{}

func (NoOpHandler) HandleLiftRequest(*Envelope, *LiftRequest)       {}
func (NoOpHandler) HandleLiftDispatched(*Envelope, *LiftDispatched) {}
func (NoOpHandler) HandleLiftRejected(*Envelope, *LiftRejected)     {}
func (NoOpHandler) HandleLiftArrived(*Envelope, *LiftArrived)       {}
func (NoOpHandler) HandleLiftParked(*Envelope, *LiftParked)         {}

var _ MessageHandler = NoOpHandler{}

// Ingestor performs two-phase decode and dispatches to a MessageHandler.
type Ingestor struct {
	handler MessageHandler
	filter  FilterFunc
}

func NewIngestor(handler MessageHandler, filter FilterFunc) *Ingestor {
	return &Ingestor{
		handler: handler,
		filter:  filter,
	}
}

// StationFilter accepts messages addressed to station, broadcast, or unaddressed.
func StationFilter(station string) FilterFunc {
	return func(hdr *RawHeader) bool {
		switch hdr.Dst.Station {
		case "", BroadcastStation, station:
			return true
		}
		return false
	}
}

// HandleRaw is the entry point for raw message bytes from the messaging layer.
func (ing *Ingestor) HandleRaw(data []byte) {
	// Phase 1: routing header only
	var hdr RawHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		log.Printf("protocol: header decode error: %v", err)
		return
	}
	if IsExpiredHeader(&hdr) {
		log.Printf("protocol: dropping expired message %s (type=%s)", hdr.ID, hdr.Type)
		return
	}
	if ing.filter != nil && !ing.filter(&hdr) {
		return
	}

	// Phase 2: full envelope
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("protocol: envelope decode error: %v", err)
		return
	}

	switch env.Type {
	case TypeLiftRequest:
		decodeAndCall(ing.handler.HandleLiftRequest, &env)
	case TypeLiftDispatched:
		decodeAndCall(ing.handler.HandleLiftDispatched, &env)
	case TypeLiftRejected:
		decodeAndCall(ing.handler.HandleLiftRejected, &env)
	case TypeLiftArrived:
		decodeAndCall(ing.handler.HandleLiftArrived, &env)
	case TypeLiftParked:
		decodeAndCall(ing.handler.HandleLiftParked, &env)
	default:
		log.Printf("protocol: unknown message type: %s", env.Type)
	}
}

func decodeAndCall[T any](fn func(*Envelope, *T), env *Envelope) {
	var p T
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		log.Printf("protocol: payload decode error for %s: %v", env.Type, err)
		return
	}
	fn(env, &p)
}
