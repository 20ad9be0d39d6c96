package messaging

import (
	"log"

	"liftcore/dispatch"
	"liftcore/fleet"
	"liftcore/protocol"
)

// Dispatcher routes a hall call to a lift.
type Dispatcher interface {
	Dispatch(req dispatch.Request) (dispatch.Result, error)
}

// Outbox queues an envelope for the drainer.
type Outbox interface {
	EnqueueOutbox(topic string, payload []byte, msgType, stationID string) error
}

// RequestHandler handles inbound lift requests on the requests topic and
// answers each with a dispatched or rejected reply through the outbox.
type RequestHandler struct {
	protocol.NoOpHandler

	dispatcher Dispatcher
	outbox     Outbox
	stationID  string
	replyTopic string
}

func NewRequestHandler(dispatcher Dispatcher, outbox Outbox, stationID, replyTopic string) *RequestHandler {
	return &RequestHandler{
		dispatcher: dispatcher,
		outbox:     outbox,
		stationID:  stationID,
		replyTopic: replyTopic,
	}
}

func (h *RequestHandler) HandleLiftRequest(env *protocol.Envelope, p *protocol.LiftRequest) {
	// An unparseable direction dispatches as IDLE, which the dispatcher
	// rejects and journals like any other invalid request.
	dir, err := fleet.ParseDirection(p.Direction)
	if err != nil {
		log.Printf("request_handler: request %s: %v", env.ID, err)
	}

	req := dispatch.Request{
		ID:        env.ID,
		Source:    dispatch.SourceMessaging,
		Floor:     p.Floor,
		Direction: dir,
	}
	res, err := h.dispatcher.Dispatch(req)

	src := protocol.Address{Role: protocol.RoleCore, Station: h.stationID}
	var reply *protocol.Envelope
	if err != nil {
		reply, err = protocol.NewReply(protocol.TypeLiftRejected, src, env.Src, env.ID, &protocol.LiftRejected{
			RequestID: res.RequestID,
			Floor:     p.Floor,
			Direction: p.Direction,
			Reason:    err.Error(),
		})
	} else {
		reply, err = protocol.NewReply(protocol.TypeLiftDispatched, src, env.Src, env.ID, &protocol.LiftDispatched{
			RequestID: res.RequestID,
			Floor:     p.Floor,
			Direction: dir.String(),
			LiftID:    res.LiftID,
		})
	}
	if err != nil {
		log.Printf("request_handler: build reply for %s: %v", env.ID, err)
		return
	}
	h.enqueue(reply)
}

func (h *RequestHandler) enqueue(env *protocol.Envelope) {
	data, err := env.Encode()
	if err != nil {
		log.Printf("request_handler: encode %s: %v", env.Type, err)
		return
	}
	if err := h.outbox.EnqueueOutbox(h.replyTopic, data, env.Type, env.Dst.Station); err != nil {
		log.Printf("request_handler: enqueue %s: %v", env.Type, err)
	}
}
