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

// Package kv implements the store collaborator as a redis-like command engine
// on top of a key-value storage.
package kv

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/matrixorigin/multicube/components/log"
	"github.com/matrixorigin/multicube/metric"
	"github.com/matrixorigin/multicube/storage"
	"github.com/matrixorigin/multicube/store"
	"go.uber.org/zap"
)

var (
	// ErrUnknownCommand the command is not supported
	ErrUnknownCommand = errors.New("unknown command")
	// ErrWrongArity the command got a wrong number of arguments
	ErrWrongArity = errors.New("wrong number of arguments")
	// ErrNotInteger the value is not an integer or out of range
	ErrNotInteger = errors.New("value is not an integer or out of range")
	// ErrInvalidArgument the argument can not be converted to bytes
	ErrInvalidArgument = errors.New("invalid argument")
)

// Stats counts the round trips served by the store
type Stats struct {
	// Calls immediate commands
	Calls uint64
	// Pipelines pipeline batches
	Pipelines uint64
	// Multis transaction batches
	Multis uint64
	// Commands commands executed in any mode
	Commands uint64
}

// Option store option
type Option func(*options)

type options struct {
	logger *zap.Logger
	sync   bool
}

// WithLogger set the logger of the store
func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithSync makes every write batch synced to disk
func WithSync(sync bool) Option {
	return func(opts *options) {
		opts.sync = sync
	}
}

// Store is a store.Store backed by a storage.KVStorage. Commands are
// serialized, a transaction is isolated from concurrent commands.
type Store struct {
	opts   options
	logger *zap.Logger
	kv     storage.KVStorage
	stats  Stats
	mu     sync.Mutex
}

var _ store.Store = (*Store)(nil)

// NewStore returns a store on top of the storage
func NewStore(kv storage.KVStorage, opts ...Option) *Store {
	s := &Store{kv: kv}
	for _, opt := range opts {
		opt(&s.opts)
	}
	s.logger = log.Adjust(s.opts.logger).Named("kv-store")
	return s
}

// Stats returns the round trip statistics
func (s *Store) Stats() Stats {
	return Stats{
		Calls:     atomic.LoadUint64(&s.stats.Calls),
		Pipelines: atomic.LoadUint64(&s.stats.Pipelines),
		Multis:    atomic.LoadUint64(&s.stats.Multis),
		Commands:  atomic.LoadUint64(&s.stats.Commands),
	}
}

// Do executes one command immediately
func (s *Store) Do(cmd string, args ...interface{}) (interface{}, error) {
	c, values, err := prepare(cmd, args)
	if err != nil {
		return nil, err
	}

	atomic.AddUint64(&s.stats.Calls, 1)
	atomic.AddUint64(&s.stats.Commands, 1)
	metric.AddStoreCommandCount("call", 1)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reportStorageStats()
	return s.execOne(c, values)
}

// Pipelined queues the commands issued by fn and executes them in issue order
// once fn returns. Each command is atomic on its own.
func (s *Store) Pipelined(fn func(store.Commander) error) ([]interface{}, error) {
	atomic.AddUint64(&s.stats.Pipelines, 1)

	b, err := s.collect(fn)
	if err != nil {
		return nil, err
	}

	atomic.AddUint64(&s.stats.Commands, uint64(len(b.queued)))
	metric.AddStoreCommandCount("pipelined", len(b.queued))

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reportStorageStats()

	var firstErr error
	replies := make([]interface{}, 0, len(b.queued))
	for _, q := range b.queued {
		v, err := s.execOne(q.cmd, q.args)
		q.reply.Resolve(v, err)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		replies = append(replies, v)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return replies, nil
}

// Multi queues the commands issued by fn and executes them atomically once fn
// returns. If any command fails, no write is applied.
func (s *Store) Multi(fn func(store.Commander) error) ([]interface{}, error) {
	atomic.AddUint64(&s.stats.Multis, 1)

	b, err := s.collect(fn)
	if err != nil {
		return nil, err
	}

	atomic.AddUint64(&s.stats.Commands, uint64(len(b.queued)))
	metric.AddStoreCommandCount("multi", len(b.queued))

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.reportStorageStats()

	t := newTxn(s.kv)
	replies := make([]interface{}, 0, len(b.queued))
	for idx, q := range b.queued {
		v, err := q.cmd.fn(t, q.args)
		if err != nil {
			s.logger.Warn("transaction aborted",
				log.CommandField(q.cmd.name),
				zap.Int("command-index", idx),
				zap.Error(err))
			b.abort(err)
			return nil, err
		}
		replies = append(replies, v)
	}

	if err := t.commit(s.opts.sync); err != nil {
		s.logger.Error("fail to commit transaction",
			zap.Error(err))
		b.abort(err)
		return nil, err
	}

	for idx, q := range b.queued {
		q.reply.Resolve(replies[idx], nil)
	}
	return replies, nil
}

// collect runs fn against a new batch. The batch is closed when fn returns,
// if fn fails all queued replies are resolved with its error.
func (s *Store) reportStorageStats() {
	st := s.kv.Stats()
	metric.SetStorageStats(st.WrittenBytes, st.ReadBytes, st.AppliedBatches)
}

func (s *Store) collect(fn func(store.Commander) error) (*batch, error) {
	b := &batch{}
	err := fn(b)
	b.closed = true
	if err != nil {
		b.abort(err)
		return nil, err
	}
	return b, nil
}

func (s *Store) execOne(c command, args [][]byte) (interface{}, error) {
	t := newTxn(s.kv)
	v, err := c.fn(t, args)
	if err != nil {
		return nil, err
	}
	if err := t.commit(s.opts.sync); err != nil {
		return nil, err
	}
	return v, nil
}

func prepare(cmd string, args []interface{}) (command, [][]byte, error) {
	c, err := lookupCommand(cmd, len(args))
	if err != nil {
		return command{}, nil, err
	}
	values, err := toBytesSlice(args)
	if err != nil {
		return command{}, nil, err
	}
	return c, values, nil
}

type queuedCommand struct {
	cmd   command
	args  [][]byte
	reply *store.Deferred
}

// batch is the store.Commander handed to pipeline and transaction bodies.
type batch struct {
	closed bool
	queued []queuedCommand
}

func (b *batch) Do(cmd string, args ...interface{}) (interface{}, error) {
	if b.closed {
		return nil, store.ErrBatchClosed
	}

	c, values, err := prepare(cmd, args)
	if err != nil {
		return nil, err
	}

	reply := store.NewDeferred(c.name)
	b.queued = append(b.queued, queuedCommand{cmd: c, args: values, reply: reply})
	return reply, nil
}

func (b *batch) abort(err error) {
	for _, q := range b.queued {
		if !q.reply.Ready() {
			q.reply.Resolve(nil, err)
		}
	}
}
