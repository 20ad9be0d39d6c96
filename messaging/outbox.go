package messaging

import (
	"log"
	"sync"
	"time"

	"liftcore/store"
)

// maxOutboxRetries is how many failed publishes a message survives before it
// is dead-lettered.
const maxOutboxRetries = 20

// Publisher sends raw bytes to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// OutboxDrainer periodically sends pending outbox messages.
type OutboxDrainer struct {
	db       *store.DB
	client   Publisher
	interval time.Duration
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewOutboxDrainer(db *store.DB, client Publisher, interval time.Duration) *OutboxDrainer {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &OutboxDrainer{
		db:       db,
		client:   client,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (d *OutboxDrainer) Start() {
	go d.run()
}

// Stop halts the drainer and waits for an in-flight drain to finish.
func (d *OutboxDrainer) Stop() {
	d.stopOnce.Do(func() { close(d.stopChan) })
	<-d.done
}

func (d *OutboxDrainer) run() {
	defer close(d.done)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			d.drain()
		}
	}
}

func (d *OutboxDrainer) drain() {
	msgs, err := d.db.ListPendingOutbox(50)
	if err != nil {
		log.Printf("outbox: list pending: %v", err)
		return
	}
	for _, msg := range msgs {
		if err := d.client.Publish(msg.Topic, msg.Payload); err != nil {
			log.Printf("outbox: publish %s to %s failed: %v", msg.MsgType, msg.Topic, err)
			if msg.Retries+1 >= maxOutboxRetries {
				log.Printf("outbox: giving up on message %d after %d attempts", msg.ID, msg.Retries+1)
				d.db.DeadLetterOutbox(msg.ID)
				continue
			}
			d.db.IncrementOutboxRetries(msg.ID)
			continue
		}
		d.db.AckOutbox(msg.ID)
	}
}
