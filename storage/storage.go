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

package storage

import (
	"github.com/matrixorigin/multicube/storage/stats"
)

// WriteBatch collects writes that are applied atomically by KVStorage.Write.
type WriteBatch interface {
	// Set adds a key-value pair to the batch
	Set(key []byte, value []byte)
	// Delete adds a key deletion to the batch
	Delete(key []byte)
	// Count returns the number of writes in the batch
	Count() int
	// Reset clears the batch so it can be reused
	Reset()
	// Close releases the batch
	Close()
}

// StatsKeeper is the interface for storages that keep statistics.
type StatsKeeper interface {
	// Stats returns the storage statistics.
	Stats() stats.Stats
}

// KVStore is the interface for key-value operations used by the command
// engine.
type KVStore interface {
	// Get returns the value associated with the key, nil if the key is absent.
	Get(key []byte) ([]byte, error)
	// Set puts the key-value pair to the storage.
	Set(key []byte, value []byte, sync bool) error
	// Delete removes the key-value pair specified by the key.
	Delete(key []byte, sync bool) error
	// NewWriteBatch creates a write batch bound to this storage.
	NewWriteBatch() WriteBatch
	// Write applies all writes of the batch atomically.
	Write(wb WriteBatch, sync bool) error
}

// KVStorage is key-value based storage.
type KVStorage interface {
	StatsKeeper
	KVStore
	// Close closes the storage.
	Close() error
}
