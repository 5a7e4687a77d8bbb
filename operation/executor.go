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
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/matrixorigin/multicube/components/log"
	"github.com/matrixorigin/multicube/metric"
	"github.com/matrixorigin/multicube/store"
	"go.uber.org/zap"
)

// ExecutorOption executor option
type ExecutorOption func(*Executor)

// WithLogger set the logger of the executor
func WithLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// Executor runs operations together. Each round drains the immediate steps,
// sends the pipelined head steps of all operations in one pipeline, drains
// again, sends the transactional head steps in one transaction and drains
// again, until every operation ran all its steps.
type Executor struct {
	store  store.Store
	logger *zap.Logger

	mu struct {
		sync.Mutex
		executed   bool
		executions []*execution
	}
}

// NewExecutor returns an executor. A nil store falls back to the store of
// each operation, then to the default store.
func NewExecutor(s store.Store, opts ...ExecutorOption) *Executor {
	e := &Executor{store: s}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = log.Adjust(e.logger).Named("executor")
	return e
}

// Add adds the operation with the arguments its steps receive, and returns
// the future of this invocation. The future is also the operation's latest
// future. Once the executor executed, the returned future is failed with
// ErrExecuted.
func (e *Executor) Add(op *Operation, args ...interface{}) *Future {
	ex := &execution{
		op:     op,
		args:   args,
		steps:  op.Steps(),
		future: newFuture(),
	}
	op.setFuture(ex.future)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.executed {
		ex.future.fail(ErrExecuted)
		return ex.future
	}
	e.mu.executions = append(e.mu.executions, ex)
	return ex.future
}

// Len returns the number of added operations
func (e *Executor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.mu.executions)
}

// Execute runs all added operations and returns their results in the order
// they were added. The result of an operation is the value returned by its
// last step. Any error aborts the execution, and the futures of all
// operations are failed with it.
func (e *Executor) Execute(ctx context.Context) ([]interface{}, error) {
	e.mu.Lock()
	if e.mu.executed {
		e.mu.Unlock()
		return nil, ErrExecuted
	}
	e.mu.executed = true
	executions := e.mu.executions
	e.mu.Unlock()

	if len(executions) == 0 {
		return []interface{}{}, nil
	}

	defer metric.ObserveExecuteDuration(time.Now())

	s, err := e.selectStore(executions)
	if err != nil {
		e.fail(executions, err)
		return nil, err
	}

	for _, ex := range executions {
		ex.ctx = newContext(s)
	}

	r := &run{
		logger: e.logger.With(log.ExecutionField(uuid.New().String())),
		store:  s,
	}
	if err := r.execute(ctx, executions); err != nil {
		e.fail(executions, err)
		return nil, err
	}

	results := make([]interface{}, 0, len(executions))
	for _, ex := range executions {
		results = append(results, ex.ctx.value)
		ex.future.set(ex.ctx.value)
	}
	return results, nil
}

func (e *Executor) selectStore(executions []*execution) (store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	for _, ex := range executions {
		if s := ex.op.Store(); s != nil {
			return s, nil
		}
	}
	if s := DefaultStore(); s != nil {
		return s, nil
	}
	return nil, ErrNoStore
}

// run is one execution of the added operations
type run struct {
	logger *zap.Logger
	store  store.Store
}

func (r *run) execute(ctx context.Context, executions []*execution) error {
	remaining := remainingSteps(executions)
	for round := 1; remaining > 0; round++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "round %d", round)
		}

		metric.IncRoundCount()
		r.logger.Debug("round started",
			log.RoundField(round),
			log.OperationCountField(len(executions)),
			zap.Int("remaining-steps", remaining))

		if err := r.drain(executions); err != nil {
			return err
		}
		if err := r.batch(Pipelined, executions); err != nil {
			return err
		}
		if err := r.drain(executions); err != nil {
			return err
		}
		if err := r.batch(Transactional, executions); err != nil {
			return err
		}
		if err := r.drain(executions); err != nil {
			return err
		}

		left := remainingSteps(executions)
		if left >= remaining {
			panic(errors.AssertionFailedf("no step retired in round %d, %d steps remain",
				round, left))
		}
		remaining = left
	}
	return nil
}

// drain runs the immediate head steps of every operation until no head step
// is immediate.
func (r *run) drain(executions []*execution) error {
	for _, ex := range executions {
		n := 0
		for ex.next(Immediate) {
			if err := ex.executeCurrent(r.store, nil); err != nil {
				r.logger.Error("fail to execute step",
					log.OperationField(ex.op.Name()),
					log.KindField(Immediate),
					log.StepIndexField(ex.cursor),
					zap.Error(err))
				return err
			}
			n++
		}
		if n > 0 {
			metric.AddStepCount(Immediate.String(), n)
		}
	}
	return nil
}

// batch runs the head steps of the kind of every operation in one pipeline or
// transaction. Nothing is sent if no head step has the kind.
func (r *run) batch(kind Kind, executions []*execution) error {
	var members []*execution
	for _, ex := range executions {
		if ex.next(kind) {
			members = append(members, ex)
		}
	}
	if len(members) == 0 {
		return nil
	}

	send := r.store.Pipelined
	if kind == Transactional {
		send = r.store.Multi
	}

	acc := &accumulator{}
	replies, err := send(func(cmd store.Commander) error {
		acc.cmd = cmd
		for _, ex := range members {
			if err := ex.executeCurrent(acc, acc); err != nil {
				r.logger.Error("fail to execute step",
					log.OperationField(ex.op.Name()),
					log.KindField(kind),
					log.StepIndexField(ex.cursor),
					zap.Error(err))
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("fail to send batch",
			log.KindField(kind),
			log.BatchSizeField(len(members)),
			zap.Error(err))
		return err
	}
	if len(replies) != acc.len() {
		return errors.Wrapf(ErrReplyMismatch, "%s batch issued %d commands, got %d replies",
			kind, acc.len(), len(replies))
	}

	for _, ex := range members {
		if err := ex.ctx.resolveFutures(); err != nil {
			return err
		}
	}

	metric.IncBatchCount(kind.String())
	metric.AddStepCount(kind.String(), len(members))
	metric.ObserveBatchSteps(len(members))
	r.logger.Debug("batch sent",
		log.KindField(kind),
		log.BatchSizeField(len(members)),
		log.ReplyCountField(len(replies)))
	return nil
}

// abort fails the futures of all added operations without running them
func (e *Executor) abort(err error) {
	e.mu.Lock()
	e.mu.executed = true
	executions := e.mu.executions
	e.mu.Unlock()
	e.fail(executions, err)
}

func (e *Executor) fail(executions []*execution, err error) {
	for _, ex := range executions {
		if !ex.future.Ready() {
			ex.future.fail(err)
		}
	}
}

func remainingSteps(executions []*execution) int {
	n := 0
	for _, ex := range executions {
		n += len(ex.steps) - ex.cursor
	}
	return n
}

// execution is the state of one added operation
type execution struct {
	op     *Operation
	args   []interface{}
	steps  []Step
	cursor int
	ctx    *Context
	future *Future
}

func (ex *execution) next(kind Kind) bool {
	return ex.cursor < len(ex.steps) && ex.steps[ex.cursor].kind == kind
}

func (ex *execution) executeCurrent(cmd store.Commander, acc *accumulator) error {
	if err := ex.ctx.execute(ex.steps[ex.cursor], cmd, acc, ex.args); err != nil {
		return err
	}
	ex.cursor++
	return nil
}
