package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"liftcore/config"
	"liftcore/dispatch"
	"liftcore/fleet"
	"liftcore/lift"
	"liftcore/liftstate"
	"liftcore/messaging"
	"liftcore/store"
)

type LogFunc func(format string, args ...any)

const eventQueueSize = 1024

type Config struct {
	AppConfig *config.Config
	DB        *store.DB
	Redis     *liftstate.RedisStore // nil runs without the Redis mirror
	MsgClient *messaging.Client     // nil when messaging is disabled
	Boarding  lift.Boarding         // nil simulates passengers from Fleet.Seed
	LogFunc   LogFunc
}

type Engine struct {
	cfg        *config.Config
	db         *store.DB
	mirror     *liftstate.Mirror
	msgClient  *messaging.Client
	registry   *fleet.Registry
	dispatcher *dispatch.Dispatcher
	lifts      []*lift.Engine
	Events     *EventBus
	logFn      LogFunc

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}

	msgConnected   bool
	cacheConnected atomic.Bool
}

// New builds the fleet: lifts "1".."N" on the ground floor, heading UP,
// each with a random tonnage.
func New(c Config) (*Engine, error) {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	fc := c.AppConfig.Fleet
	seed := fc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	lifts := make([]fleet.Snapshot, fc.Lifts)
	for i := range lifts {
		lifts[i] = fleet.NewLift(strconv.Itoa(i+1), fc.Floors, fc.SecondsPerFloor, rng.Intn(1000))
	}
	reg, err := fleet.NewRegistry(fc.Floors, lifts...)
	if err != nil {
		return nil, fmt.Errorf("build fleet: %w", err)
	}

	e := &Engine{
		cfg:       c.AppConfig,
		db:        c.DB,
		msgClient: c.MsgClient,
		registry:  reg,
		Events:    NewEventBus(eventQueueSize),
		logFn:     logFn,
		stopChan:  make(chan struct{}),
	}
	e.dispatcher = dispatch.NewDispatcher(reg, &dispatchEmitter{bus: e.Events})
	if c.Redis != nil {
		e.mirror = liftstate.NewMirror(c.Redis, reg)
	}

	boarding := c.Boarding
	if boarding == nil {
		boarding = lift.NewRandomBoarding(seed)
	}
	le := &liftEmitter{bus: e.Events, logFn: logFn}
	for _, id := range reg.IDs() {
		e.lifts = append(e.lifts, lift.New(lift.Config{
			ID:         id,
			Fleet:      reg,
			Emitter:    le,
			Boarding:   boarding,
			TravelUnit: fc.TravelUnit,
			LogFunc:    lift.LogFunc(logFn),
		}))
	}
	return e, nil
}

// Start wires event handlers and launches one worker per lift.
func (e *Engine) Start() {
	e.wireEventHandlers()
	e.Events.Start()

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	for _, l := range e.lifts {
		e.wg.Add(1)
		go func(l *lift.Engine) {
			defer e.wg.Done()
			l.Run(ctx)
		}(l)
	}

	// Also performs the initial Redis sync when the cache is up.
	e.checkConnectionStatus()
	go e.connectionHealthLoop()

	e.logFn("engine: started %d lifts over %d floors", len(e.lifts), e.registry.Floors())
}

// Stop cancels every lift worker and waits for them to exit.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
		if e.cancel != nil {
			e.cancel()
		}
		e.wg.Wait()
		e.Events.Close()
		e.logFn("engine: stopped")
	})
}

// Accessors
func (e *Engine) DB() *store.DB                    { return e.db }
func (e *Engine) AppConfig() *config.Config        { return e.cfg }
func (e *Engine) Registry() *fleet.Registry        { return e.registry }
func (e *Engine) Dispatcher() *dispatch.Dispatcher { return e.dispatcher }
func (e *Engine) Mirror() *liftstate.Mirror        { return e.mirror }
func (e *Engine) MsgClient() *messaging.Client     { return e.msgClient }

// Lift reads one lift, preferring the Redis mirror when it is up.
func (e *Engine) Lift(id string) (fleet.Snapshot, error) {
	if e.cacheConnected.Load() {
		return e.mirror.GetLift(id)
	}
	s, ok := e.registry.Get(id)
	if !ok {
		return fleet.Snapshot{}, fleet.ErrUnknownLift
	}
	return s, nil
}

// CarCall presses a button inside one lift, bypassing dispatch.
func (e *Engine) CarCall(liftID string, floor int, actor string) error {
	if err := e.registry.EnqueueStop(liftID, floor); err != nil {
		return err
	}
	e.Events.Emit(Event{Type: EventCarCall, Payload: CarCallEvent{LiftID: liftID, Floor: floor, Actor: actor}})
	return nil
}

// MessagingStatus is "connected", "disconnected" or "disabled".
func (e *Engine) MessagingStatus() string {
	switch {
	case e.msgClient == nil:
		return "disabled"
	case e.msgClient.IsConnected():
		return "connected"
	}
	return "disconnected"
}

// CacheStatus is "connected", "disconnected" or "disabled".
func (e *Engine) CacheStatus() string {
	switch {
	case e.mirror == nil:
		return "disabled"
	case e.cacheConnected.Load():
		return "connected"
	}
	return "disconnected"
}

func (e *Engine) checkConnectionStatus() {
	if e.msgClient != nil {
		if e.msgClient.IsConnected() {
			if !e.msgConnected {
				e.msgConnected = true
				e.Events.Emit(Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: e.msgClient.Backend() + " connected"}})
			}
		} else if e.msgConnected {
			e.msgConnected = false
			e.Events.Emit(Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "messaging disconnected"}})
		}
	}

	if e.mirror != nil {
		up := e.mirror.Available()
		if e.cacheConnected.Swap(up) != up {
			if up {
				e.Events.Emit(Event{Type: EventCacheConnected, Payload: ConnectionEvent{Detail: "redis connected"}})
			} else {
				e.Events.Emit(Event{Type: EventCacheDisconnected, Payload: ConnectionEvent{Detail: "redis unreachable"}})
			}
		}
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}
