// Package cache двухуровневый кеш: L1 в процессе (ristretto) и общий L2 (Redis).
package cache

import (
	"context"
	"time"
)

// Store уровень кеша
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Tiered сначала читает L1, затем L2; при попадании в L2 дозаполняет L1.
// Запись и удаление идут в оба уровня.
type Tiered struct {
	l1    Store
	l2    Store
	l1TTL time.Duration
}

// NewTiered l2 может быть nil - тогда кеш одноуровневый
func NewTiered(l1, l2 Store, l1TTL time.Duration) *Tiered {
	return &Tiered{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (c *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, found, err := c.l1.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if found || c.l2 == nil {
		return val, found, nil
	}

	val, found, err = c.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if found {
		_ = c.l1.Set(ctx, key, val, c.l1TTL)
	}
	return val, found, nil
}

func (c *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	l1TTL := ttl
	if c.l1TTL > 0 && c.l1TTL < ttl {
		l1TTL = c.l1TTL
	}
	if err := c.l1.Set(ctx, key, value, l1TTL); err != nil {
		return err
	}
	if c.l2 == nil {
		return nil
	}
	return c.l2.Set(ctx, key, value, ttl)
}

func (c *Tiered) Delete(ctx context.Context, key string) error {
	if err := c.l1.Delete(ctx, key); err != nil {
		return err
	}
	if c.l2 == nil {
		return nil
	}
	return c.l2.Delete(ctx, key)
}
