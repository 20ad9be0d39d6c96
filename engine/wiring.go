package engine

import (
	"fmt"

	"liftcore/dispatch"
	"liftcore/protocol"
	"liftcore/store"
)

func (e *Engine) wireEventHandlers() {
	// Journal every request outcome
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(RequestDispatchedEvent)
		e.journal(&store.LiftRequest{
			RequestID: ev.RequestID,
			Source:    ev.Source,
			Floor:     ev.Floor,
			Direction: ev.Direction,
			LiftID:    ev.LiftID,
			Status:    store.RequestDispatched,
		})
		// Messaging requests are answered by the request handler with a reply.
		if ev.Source != dispatch.SourceMessaging {
			e.publish(protocol.TypeLiftDispatched, &protocol.LiftDispatched{
				RequestID: ev.RequestID,
				Floor:     ev.Floor,
				Direction: ev.Direction,
				LiftID:    ev.LiftID,
			})
		}
	}, EventRequestDispatched)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(RequestRejectedEvent)
		e.journal(&store.LiftRequest{
			RequestID: ev.RequestID,
			Source:    ev.Source,
			Floor:     ev.Floor,
			Direction: ev.Direction,
			Status:    store.RequestRejected,
			Reason:    ev.Reason,
		})
		if ev.Source != dispatch.SourceMessaging {
			e.publish(protocol.TypeLiftRejected, &protocol.LiftRejected{
				RequestID: ev.RequestID,
				Floor:     ev.Floor,
				Direction: ev.Direction,
				Reason:    ev.Reason,
			})
		}
	}, EventRequestRejected)

	// Arrivals: audit, mirror and announce
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(StopServedEvent)
		e.audit(ev.LiftID, "arrived", "", fmt.Sprint(ev.Floor), "system")
		e.publish(protocol.TypeLiftArrived, &protocol.LiftArrived{
			LiftID:    ev.LiftID,
			Floor:     ev.Floor,
			Direction: ev.Direction,
		})
	}, EventStopServed)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(GroundParkedEvent)
		e.audit(ev.LiftID, "parked", fmt.Sprint(ev.FromFloor), "0", "system")
		e.publish(protocol.TypeLiftParked, &protocol.LiftParked{LiftID: ev.LiftID, FromFloor: ev.FromFloor})
	}, EventGroundParked)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(PassengersBoardedEvent)
		e.audit(ev.LiftID, "boarded", fmt.Sprint(ev.Floor), fmt.Sprint(ev.Floors), "passenger")
	}, EventPassengersBoarded)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(CarCallEvent)
		e.audit(ev.LiftID, "car_call", "", fmt.Sprint(ev.Floor), ev.Actor)
	}, EventCarCall)

	// Every lift event refreshes that lift's mirror entry
	e.Events.SubscribeLifts(func(liftID string, _ Event) {
		e.refresh(liftID)
	})

	e.Events.SubscribeTypes(func(evt Event) {
		e.logFn("engine: %s", evt.Payload.(ConnectionEvent).Detail)
		if evt.Type == EventCacheConnected {
			if err := e.mirror.SyncAll(); err != nil {
				e.logFn("engine: redis resync: %v", err)
			}
		}
	}, EventMessagingConnected, EventMessagingDisconnected, EventCacheConnected, EventCacheDisconnected)
}

func (e *Engine) journal(r *store.LiftRequest) {
	if e.db == nil {
		return
	}
	if err := e.db.RecordRequest(r); err != nil {
		e.logFn("engine: journal request %s: %v", r.RequestID, err)
	}
}

func (e *Engine) audit(liftID, action, oldValue, newValue, actor string) {
	if e.db == nil {
		return
	}
	if err := e.db.AppendAudit("lift", liftID, action, oldValue, newValue, actor); err != nil {
		e.logFn("engine: audit lift %s %s: %v", liftID, action, err)
	}
}

func (e *Engine) refresh(liftID string) {
	if liftID == "" || !e.cacheConnected.Load() {
		return
	}
	e.mirror.Refresh(liftID)
}

// publish queues an event envelope for the outbox drainer.
func (e *Engine) publish(msgType string, payload any) {
	if e.db == nil || e.cfg.Messaging.Backend == "" {
		return
	}
	env, err := protocol.NewEnvelope(msgType,
		protocol.Address{Role: protocol.RoleCore, Station: e.cfg.Messaging.StationID},
		protocol.Address{Role: protocol.RoleClient, Station: protocol.BroadcastStation},
		payload,
	)
	if err != nil {
		e.logFn("engine: build %s: %v", msgType, err)
		return
	}
	data, err := env.Encode()
	if err != nil {
		e.logFn("engine: encode %s: %v", msgType, err)
		return
	}
	if err := e.db.EnqueueOutbox(e.cfg.Messaging.EventsTopic, data, msgType, protocol.BroadcastStation); err != nil {
		e.logFn("engine: enqueue %s: %v", msgType, err)
	}
}
