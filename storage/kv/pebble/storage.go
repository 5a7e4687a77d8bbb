// Copyright 2021 MatrixOrigin.
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

package pebble

import (
	"github.com/cockroachdb/errors"
	cpebble "github.com/cockroachdb/pebble"
	"github.com/matrixorigin/multicube/components/log"
	"github.com/matrixorigin/multicube/storage"
	"github.com/matrixorigin/multicube/storage/stats"
	"go.uber.org/zap"
)

// Storage is a kv storage based on pebble
type Storage struct {
	db    *cpebble.DB
	stats stats.Stats
}

var _ storage.KVStorage = (*Storage)(nil)

// NewStorage returns a pebble backed kv storage.
func NewStorage(dir string, logger *zap.Logger, opts *cpebble.Options) (*Storage, error) {
	if opts == nil {
		opts = &cpebble.Options{}
	}
	if !hasEventListener(opts.EventListener) {
		opts.EventListener = getEventListener(log.Adjust(logger).Named("pebble"))
	}
	db, err := cpebble.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble storage at %s", dir)
	}

	return &Storage{
		db: db,
	}, nil
}

// Close close the storage
func (s *Storage) Close() error {
	return s.db.Close()
}

// Stats returns the storage statistics
func (s *Storage) Stats() stats.Stats {
	return s.stats.Copy()
}

// Get returns the value of the key
func (s *Storage) Get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if err == cpebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	v := make([]byte, len(value))
	copy(v, value)
	s.stats.AddRead(len(key) + len(value))
	return v, nil
}

// Set put the key, value pair to the storage
func (s *Storage) Set(key, value []byte, sync bool) error {
	s.stats.AddWritten(len(key) + len(value))
	return s.db.Set(key, value, toWriteOptions(sync))
}

// Delete remove the key from the storage
func (s *Storage) Delete(key []byte, sync bool) error {
	s.stats.AddWritten(len(key))
	return s.db.Delete(key, toWriteOptions(sync))
}

// NewWriteBatch create and returns write batch
func (s *Storage) NewWriteBatch() storage.WriteBatch {
	return &writeBatch{batch: s.db.NewBatch(), stats: &s.stats}
}

// Write write the data in batch, the batch is applied atomically
func (s *Storage) Write(uwb storage.WriteBatch, sync bool) error {
	wb, ok := uwb.(*writeBatch)
	if !ok {
		return errors.Newf("pebble storage: unexpected write batch %T", uwb)
	}
	if err := s.db.Apply(wb.batch, toWriteOptions(sync)); err != nil {
		return err
	}
	s.stats.AddAppliedBatch()
	return nil
}

func toWriteOptions(sync bool) *cpebble.WriteOptions {
	if sync {
		return cpebble.Sync
	}
	return cpebble.NoSync
}

type writeBatch struct {
	batch *cpebble.Batch
	stats *stats.Stats
}

func (wb *writeBatch) Set(key []byte, value []byte) {
	if err := wb.batch.Set(key, value, nil); err != nil {
		panic(err)
	}
	wb.stats.AddWritten(len(key) + len(value))
}

func (wb *writeBatch) Delete(key []byte) {
	if err := wb.batch.Delete(key, nil); err != nil {
		panic(err)
	}
	wb.stats.AddWritten(len(key))
}

func (wb *writeBatch) Count() int {
	return int(wb.batch.Count())
}

func (wb *writeBatch) Reset() {
	wb.batch.Reset()
}

func (wb *writeBatch) Close() {
	wb.batch.Close()
}
