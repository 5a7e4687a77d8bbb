package main

import (
	"context"
	"time"

	"github.com/matrixorigin/multicube/operation"
	"github.com/matrixorigin/multicube/store"
	"go.uber.org/zap"
)

const (
	keyPrefix = "counter:"
)

// counters exposes counter operations built on the batching scheduler
type counters struct {
	store    store.Store
	registry *operation.Registry
	timeout  time.Duration
	logger   *zap.Logger
}

func newCounters(s store.Store, timeout time.Duration, logger *zap.Logger) (*counters, error) {
	c := &counters{
		store:    s,
		registry: operation.NewRegistry(),
		timeout:  timeout,
		logger:   logger,
	}

	if _, err := c.registry.Define("incr", func(b *operation.Builder) {
		b.Pipelined(func(ctx *operation.Context, args ...interface{}) (interface{}, error) {
			v, err := ctx.Store().Do("GET", key(args[0]))
			if err != nil {
				return nil, err
			}
			return nil, ctx.Data().Set("previous", v)
		})
		b.Multi(func(ctx *operation.Context, args ...interface{}) (interface{}, error) {
			v, err := ctx.Store().Do("INCRBY", key(args[0]), args[1])
			if err != nil {
				return nil, err
			}
			return nil, ctx.Data().Set("current", v)
		})
		b.Run(func(ctx *operation.Context, args ...interface{}) (interface{}, error) {
			return ctx.Data().Map(), nil
		})
	}, operation.WithStore(s)); err != nil {
		return nil, err
	}

	if _, err := c.registry.Define("get", func(b *operation.Builder) {
		b.Pipelined(func(ctx *operation.Context, args ...interface{}) (interface{}, error) {
			return ctx.Store().Do("GET", key(args[0]))
		})
	}, operation.WithStore(s)); err != nil {
		return nil, err
	}

	return c, nil
}

// incr increments the counter by delta
func (c *counters) incr(ctx context.Context, name string, delta int64) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.registry.Call(ctx, "incr", name, delta)
}

// get reads all counters with one pipeline
func (c *counters) get(ctx context.Context, names []string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results, err := operation.Scheduled(ctx, c.store, func(ctx context.Context) error {
		for _, name := range names {
			if _, err := c.registry.Call(ctx, "get", name); err != nil {
				return err
			}
		}
		return nil
	}, operation.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}

	values := make(map[string]interface{}, len(names))
	for idx, name := range names {
		values[name] = results[idx]
	}
	return values, nil
}

func key(name interface{}) string {
	return keyPrefix + name.(string)
}
