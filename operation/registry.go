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
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// Registry exposes operations as named calls
type Registry struct {
	mu  sync.RWMutex
	ops map[string]*Operation
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*Operation)}
}

// Define creates an operation named name and registers it
func (r *Registry) Define(name string, configure func(*Builder), opts ...Option) (*Operation, error) {
	op := New(configure, append([]Option{WithName(name)}, opts...)...)
	if err := r.Register(name, op); err != nil {
		return nil, err
	}
	return op, nil
}

// Register registers the operation under the name
func (r *Registry) Register(name string, op *Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[name]; ok {
		return errors.Wrapf(ErrOperationExists, "%s", name)
	}
	r.ops[name] = op
	return nil
}

// Get returns the operation registered under the name
func (r *Registry) Get(name string) (*Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// Call executes the named operation, see Operation.Execute
func (r *Registry) Call(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	op, ok := r.Get(name)
	if !ok {
		return nil, errors.Wrapf(ErrOperationNotFound, "%s", name)
	}
	return op.Execute(ctx, args...)
}

// Names returns the registered names in order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
