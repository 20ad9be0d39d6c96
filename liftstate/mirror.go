package liftstate

import (
	"context"
	"log"
	"sort"
	"time"

	"liftcore/fleet"
)

// Source is the live fleet the mirror copies from.
type Source interface {
	Get(id string) (fleet.Snapshot, bool)
	List() []fleet.Snapshot
}

// Mirror keeps a Redis copy of every lift snapshot for external observers.
// Reads prefer Redis and fall back to the live registry. Redis errors are
// logged and never reach the caller.
type Mirror struct {
	redis   *RedisStore
	source  Source
	timeout time.Duration
}

func NewMirror(redis *RedisStore, source Source) *Mirror {
	return &Mirror{redis: redis, source: source, timeout: 2 * time.Second}
}

// Refresh copies one lift's current snapshot to Redis.
func (m *Mirror) Refresh(id string) {
	s, ok := m.source.Get(id)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.redis.SetLift(ctx, s); err != nil {
		log.Printf("liftstate: refresh lift %s: %v", id, err)
	}
}

// SyncAll rebuilds the mirror from the registry. Called on startup.
func (m *Mirror) SyncAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.redis.FlushAll(ctx); err != nil {
		return err
	}
	lifts := m.source.List()
	for _, s := range lifts {
		if err := m.redis.SetLift(ctx, s); err != nil {
			return err
		}
	}
	log.Printf("liftstate: synced %d lifts to redis", len(lifts))
	return nil
}

// GetLift reads a lift from Redis, falling back to the registry.
func (m *Mirror) GetLift(id string) (fleet.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if s, err := m.redis.GetLift(ctx, id); err == nil && s != nil {
		return *s, nil
	}
	if s, ok := m.source.Get(id); ok {
		return s, nil
	}
	return fleet.Snapshot{}, fleet.ErrUnknownLift
}

// ListLifts reads all lifts, preferring Redis, sorted by id.
func (m *Mirror) ListLifts() []fleet.Snapshot {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	ids, err := m.redis.GetAllLiftIDs(ctx)
	if err != nil || len(ids) == 0 {
		return m.source.List()
	}
	out := make([]fleet.Snapshot, 0, len(ids))
	for _, id := range ids {
		if s, err := m.GetLift(id); err == nil {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Available reports whether Redis answers a ping.
func (m *Mirror) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.redis.Ping(ctx) == nil
}
