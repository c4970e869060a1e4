package redisfeat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher writes cascade feature vectors into an online feature store.
// Keys follow `feature:<name>:<entity>`; the whole vector is also kept under
// `feature:vector:<entity>`.
type Publisher struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect dials addr and checks the connection.
func Connect(ctx context.Context, addr string, ttl time.Duration) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewPublisher(client, ttl), nil
}

func NewPublisher(client *redis.Client, ttl time.Duration) *Publisher {
	return &Publisher{client: client, ttl: ttl}
}

func (p *Publisher) Close() error { return p.client.Close() }

// Entity names the (cascade, k) pair a vector belongs to.
func Entity(messageID int64, k int) string {
	return fmt.Sprintf("cascade_%d_k%d", messageID, k)
}

func key(name, entity string) string { return fmt.Sprintf("feature:%s:%s", name, entity) }

// Publish stores every named value of one vector in a single pipeline.
func (p *Publisher) Publish(ctx context.Context, entity string, values map[string]float64) error {
	whole, err := json.Marshal(values)
	if err != nil {
		return err
	}
	pipe := p.client.Pipeline()
	for name, v := range values {
		pipe.Set(ctx, key(name, entity), strconv.FormatFloat(v, 'g', -1, 64), p.ttl)
	}
	pipe.Set(ctx, key("vector", entity), whole, p.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", entity, err)
	}
	return nil
}

// GetFeature reads a single feature value; ok is false when it is absent.
func (p *Publisher) GetFeature(ctx context.Context, name, entity string) (float64, bool, error) {
	val, err := p.client.Get(ctx, key(name, entity)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// GetVector reads back the whole vector of an entity.
func (p *Publisher) GetVector(ctx context.Context, entity string) (map[string]float64, error) {
	val, err := p.client.Get(ctx, key("vector", entity)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, err
	}
	return out, nil
}
