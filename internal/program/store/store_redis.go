package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"grantgate/internal/program/metrics"
	"grantgate/internal/program/models"
	id "grantgate/pkg/domain"
	"grantgate/pkg/platform/circuit"
)

const cacheKeyPrefix = "grantgate:program:"

// RedisCache is a read-through cache in front of another Store. Only FindByID
// is served from Redis; writes go to the backing store and invalidate the
// cached entry. Redis failures degrade to the backing store; with a breaker
// configured, reads and fills stop reaching Redis while it is open.
type RedisCache struct {
	next    Store
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	breaker *circuit.Breaker
}

type CacheOption func(*RedisCache)

// WithBreaker guards cache reads and fills with b.
func WithBreaker(b *circuit.Breaker) CacheOption {
	return func(c *RedisCache) {
		c.breaker = b
	}
}

// NewRedisCache decorates next with a Redis cache of the given TTL.
func NewRedisCache(next Store, client *redis.Client, ttl time.Duration, m *metrics.Metrics, opts ...CacheOption) *RedisCache {
	c := &RedisCache{next: next, client: client, ttl: ttl, metrics: m}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(programID id.ProgramID) string {
	return cacheKeyPrefix + programID.String()
}

func (c *RedisCache) Create(ctx context.Context, program *models.Program) error {
	if err := c.next.Create(ctx, program); err != nil {
		return err
	}
	c.store(ctx, program)
	return nil
}

func (c *RedisCache) FindByID(ctx context.Context, programID id.ProgramID) (*models.Program, error) {
	if !c.allow() {
		c.metrics.RecordCacheLookup("bypass")
		return c.next.FindByID(ctx, programID)
	}

	raw, err := c.client.Get(ctx, cacheKey(programID)).Bytes()
	switch {
	case err == nil:
		c.record(nil)
		program, decodeErr := decodeCached(raw)
		if decodeErr == nil {
			c.metrics.RecordCacheLookup("hit")
			return program, nil
		}
		c.metrics.RecordCacheLookup("error")
	case errors.Is(err, redis.Nil):
		c.record(nil)
		c.metrics.RecordCacheLookup("miss")
	default:
		c.record(err)
		c.metrics.RecordCacheLookup("error")
	}

	program, err := c.next.FindByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, program)
	return program, nil
}

func (c *RedisCache) List(ctx context.Context) ([]*models.Program, error) {
	return c.next.List(ctx)
}

func (c *RedisCache) Execute(ctx context.Context, programID id.ProgramID, fn func(*models.Program) error) (*models.Program, error) {
	// Invalidate before and after so a concurrent read-through cannot leave a
	// stale copy behind for a full TTL.
	c.invalidate(ctx, programID)
	updated, err := c.next.Execute(ctx, programID, fn)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, programID)
	return updated, nil
}

func (c *RedisCache) store(ctx context.Context, program *models.Program) {
	if !c.allow() {
		return
	}
	raw, err := json.Marshal(program)
	if err != nil {
		return
	}
	err = c.client.Set(ctx, cacheKey(program.ID), raw, c.ttl).Err()
	c.record(err)
	if err != nil {
		c.metrics.RecordCacheLookup("error")
	}
}

// invalidate always reaches Redis, even with the breaker open, so a recovered
// Redis never keeps serving an entry that was written before an update.
func (c *RedisCache) invalidate(ctx context.Context, programID id.ProgramID) {
	err := c.client.Del(ctx, cacheKey(programID)).Err()
	c.record(err)
	if err != nil {
		c.metrics.RecordCacheLookup("error")
	}
}

func (c *RedisCache) allow() bool {
	return c.breaker == nil || c.breaker.Allow()
}

func (c *RedisCache) record(err error) {
	if c.breaker == nil {
		return
	}
	if err != nil {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func decodeCached(raw []byte) (*models.Program, error) {
	var program models.Program
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&program); err != nil {
		return nil, fmt.Errorf("decode cached program: %w", err)
	}
	if program.ID.IsNil() {
		return nil, errors.New("cached program has no ID")
	}
	return &program, nil
}
