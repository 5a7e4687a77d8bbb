// Copyright 2020 MatrixOrigin.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/matrixorigin/multicube/metric"
	"github.com/matrixorigin/multicube/store"
)

var (
	// only one scheduled block is open in the process
	scheduling sync.Mutex

	defaultStore atomic.Value
)

type storeHolder struct {
	s store.Store
}

// UseStore set the default store, used when neither the executor nor the
// operation has one
func UseStore(s store.Store) {
	defaultStore.Store(storeHolder{s: s})
}

// DefaultStore returns the default store, nil if not set
func DefaultStore() store.Store {
	if v := defaultStore.Load(); v != nil {
		return v.(storeHolder).s
	}
	return nil
}

type scopeKey struct{}

// scope is an open scheduled block
type scope struct {
	executor *Executor

	mu struct {
		sync.Mutex
		closed bool
	}
}

func scopeFrom(ctx context.Context) *scope {
	if ctx == nil {
		return nil
	}
	sc, _ := ctx.Value(scopeKey{}).(*scope)
	return sc
}

func (sc *scope) add(op *Operation, args []interface{}) (*Future, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.mu.closed {
		return nil, ErrScopeClosed
	}
	return sc.executor.Add(op, args...), nil
}

func (sc *scope) close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.mu.closed = true
}

// Scheduled opens a scheduled block and calls fn with its context. Every
// Operation.Execute called with that context inside fn joins one executor and
// returns a pending *Future. When fn returns the block is closed, the
// executor runs and the results are returned in execution order.
//
// Scheduled blocks are serialized process-wide. Opening a block with a context
// of an open block fails with ErrScopeOpen, opening one with an unrelated
// context from inside fn blocks forever. A ctx that is done by the time the
// block gets its turn fails with ctx.Err() and fn is not called.
func Scheduled(ctx context.Context, s store.Store, fn func(ctx context.Context) error,
	opts ...ExecutorOption) ([]interface{}, error) {
	if scopeFrom(ctx) != nil {
		return nil, ErrScopeOpen
	}

	scheduling.Lock()
	defer scheduling.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "wait for scheduled block")
	}

	sc := &scope{executor: NewExecutor(s, opts...)}
	err := fn(context.WithValue(ctx, scopeKey{}, sc))
	sc.close()

	if err != nil {
		sc.executor.abort(err)
		return nil, err
	}

	metric.SetScheduledOperations(sc.executor.Len())
	return sc.executor.Execute(ctx)
}

// ExecuteAll runs the operations together without arguments, and returns
// their results in order.
func ExecuteAll(ctx context.Context, s store.Store, ops ...*Operation) ([]interface{}, error) {
	e := NewExecutor(s)
	for _, op := range ops {
		e.Add(op)
	}
	return e.Execute(ctx)
}
