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

	"github.com/matrixorigin/multicube/store"
)

// Option operation option
type Option func(*Operation)

// WithTarget binds the steps to the receiver returned by Context.Target. The
// operation itself is the target by default.
func WithTarget(target interface{}) Option {
	return func(op *Operation) {
		op.target = target
	}
}

// WithStore set the store used when the operation runs on its own
func WithStore(s store.Store) Option {
	return func(op *Operation) {
		op.store = s
	}
}

// WithName set the name of the operation, used in logs
func WithName(name string) Option {
	return func(op *Operation) {
		op.name = name
	}
}

// Builder appends steps to an operation
type Builder struct {
	op *Operation
}

// Run appends an immediate step
func (b *Builder) Run(fn StepFunc) {
	b.op.addStep(Immediate, fn)
}

// Pipelined appends a step whose commands join the shared pipeline
func (b *Builder) Pipelined(fn StepFunc) {
	b.op.addStep(Pipelined, fn)
}

// Multi appends a step whose commands join the shared transaction
func (b *Builder) Multi(fn StepFunc) {
	b.op.addStep(Transactional, fn)
}

// Operation is a reusable sequence of steps. Steps are templates, the state of
// an invocation lives in its Context, so the same operation can be executed
// several times, also in the same scheduled block.
type Operation struct {
	name   string
	target interface{}
	store  store.Store

	mu     sync.RWMutex
	steps  []Step
	future *Future
}

// New returns an operation with the steps appended by configure
func New(configure func(*Builder), opts ...Option) *Operation {
	op := &Operation{}
	op.target = op
	for _, opt := range opts {
		opt(op)
	}
	op.Configure(configure)
	return op
}

// Name returns the name of the operation
func (op *Operation) Name() string {
	return op.name
}

// Store returns the store set by WithStore
func (op *Operation) Store() store.Store {
	return op.store
}

// Configure appends the steps added by configure
func (op *Operation) Configure(configure func(*Builder)) {
	if configure != nil {
		configure(&Builder{op: op})
	}
}

// Add appends a step of the kind, ErrUnknownKind if the kind is invalid
func (op *Operation) Add(kind Kind, fn StepFunc) error {
	if !kind.valid() {
		return unknownKind(kind.String())
	}
	op.addStep(kind, fn)
	return nil
}

func (op *Operation) addStep(kind Kind, fn StepFunc) {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.steps = append(op.steps, Step{target: op.target, kind: kind, fn: fn})
}

// Steps returns the steps in definition order
func (op *Operation) Steps() []Step {
	op.mu.RLock()
	defer op.mu.RUnlock()
	return append([]Step(nil), op.steps...)
}

// Future returns the future of the latest invocation, nil if the operation
// never executed
func (op *Operation) Future() *Future {
	op.mu.RLock()
	defer op.mu.RUnlock()
	return op.future
}

func (op *Operation) setFuture(f *Future) {
	op.mu.Lock()
	defer op.mu.Unlock()
	op.future = f
}

// Execute executes the operation with the arguments. Inside a scheduled block
// the operation joins the block's executor and a pending *Future is returned
// at once. Otherwise the operation runs on its own and its result is
// returned.
func (op *Operation) Execute(ctx context.Context, args ...interface{}) (interface{}, error) {
	if sc := scopeFrom(ctx); sc != nil {
		f, err := sc.add(op, args)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	e := NewExecutor(op.store)
	e.Add(op, args...)
	results, err := e.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}
