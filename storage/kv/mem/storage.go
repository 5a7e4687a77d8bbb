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

package mem

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/matrixorigin/multicube/storage"
	"github.com/matrixorigin/multicube/storage/stats"
	"github.com/matrixorigin/multicube/util"
)

var (
	// ErrClosed the storage is closed
	ErrClosed = errors.New("mem storage is closed")
)

type op struct {
	key    []byte
	value  []byte
	delete bool
}

type writeBatch struct {
	ops []op
}

func (wb *writeBatch) Set(key []byte, value []byte) {
	wb.ops = append(wb.ops, op{key: clone(key), value: clone(value)})
}

func (wb *writeBatch) Delete(key []byte) {
	wb.ops = append(wb.ops, op{key: clone(key), delete: true})
}

func (wb *writeBatch) Count() int {
	return len(wb.ops)
}

func (wb *writeBatch) Reset() {
	wb.ops = wb.ops[:0]
}

func (wb *writeBatch) Close() {
	wb.ops = nil
}

// Storage memory storage
type Storage struct {
	stats stats.Stats

	mu struct {
		sync.RWMutex
		closed bool
		kv     *util.KVTree
	}
}

var _ storage.KVStorage = (*Storage)(nil)

// NewStorage returns a btree backed kv storage
func NewStorage() *Storage {
	s := &Storage{}
	s.mu.kv = util.NewKVTree()
	return s
}

// Stats returns the storage statistics
func (s *Storage) Stats() stats.Stats {
	return s.stats.Copy()
}

// Get returns the value of the key
func (s *Storage) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.mu.closed {
		return nil, ErrClosed
	}

	v := s.mu.kv.Get(key)
	if v == nil {
		return nil, nil
	}
	s.stats.AddRead(len(key) + len(v))
	return clone(v), nil
}

// Set put the key, value pair to the storage
func (s *Storage) Set(key []byte, value []byte, sync bool) error {
	wb := s.NewWriteBatch()
	wb.Set(key, value)
	return s.Write(wb, sync)
}

// Delete remove the key from the storage
func (s *Storage) Delete(key []byte, sync bool) error {
	wb := s.NewWriteBatch()
	wb.Delete(key)
	return s.Write(wb, sync)
}

// NewWriteBatch returns a write batch for this storage
func (s *Storage) NewWriteBatch() storage.WriteBatch {
	return &writeBatch{}
}

// Write applies all the writes of the batch, readers never observe a
// partially applied batch.
func (s *Storage) Write(uwb storage.WriteBatch, sync bool) error {
	wb, ok := uwb.(*writeBatch)
	if !ok {
		return errors.Newf("mem storage: unexpected write batch %T", uwb)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mu.closed {
		return ErrClosed
	}

	for _, o := range wb.ops {
		if o.delete {
			s.mu.kv.Delete(o.key)
			s.stats.AddWritten(len(o.key))
			continue
		}
		s.mu.kv.Put(o.key, o.value)
		s.stats.AddWritten(len(o.key) + len(o.value))
	}
	s.stats.AddAppliedBatch()
	return nil
}

// Close close the storage
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mu.closed = true
	return nil
}

func clone(v []byte) []byte {
	if v == nil {
		return nil
	}
	c := make([]byte, len(v))
	copy(c, v)
	return c
}
