package liftstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"liftcore/fleet"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func liftKey(id string) string {
	return fmt.Sprintf("liftcore:lift:%s", id)
}

const allLiftsKey = "liftcore:lifts"

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) SetLift(ctx context.Context, s fleet.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, liftKey(s.ID), data, 0)
	pipe.SAdd(ctx, allLiftsKey, s.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// GetLift returns nil, nil when the lift is not mirrored.
func (r *RedisStore) GetLift(ctx context.Context, id string) (*fleet.Snapshot, error) {
	data, err := r.client.Get(ctx, liftKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s fleet.Snapshot
	return &s, json.Unmarshal(data, &s)
}

func (r *RedisStore) GetAllLiftIDs(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, allLiftsKey).Result()
}

func (r *RedisStore) RemoveLift(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, liftKey(id))
	pipe.SRem(ctx, allLiftsKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) FlushAll(ctx context.Context) error {
	ids, err := r.GetAllLiftIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		r.RemoveLift(ctx, id)
	}
	return r.client.Del(ctx, allLiftsKey).Err()
}
