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

package kv

import (
	"github.com/matrixorigin/multicube/storage"
)

type pendingWrite struct {
	value   []byte
	deleted bool
}

// txn is an overlay on top of the storage. Reads see the writes of the txn,
// and the writes reach the storage in one write batch on commit.
type txn struct {
	kv     storage.KVStore
	writes map[string]*pendingWrite
	order  []string
}

func newTxn(kv storage.KVStore) *txn {
	return &txn{
		kv:     kv,
		writes: make(map[string]*pendingWrite),
	}
}

func (t *txn) get(key []byte) ([]byte, error) {
	if w, ok := t.writes[string(key)]; ok {
		if w.deleted {
			return nil, nil
		}
		return w.value, nil
	}
	return t.kv.Get(key)
}

func (t *txn) set(key, value []byte) {
	t.put(key, &pendingWrite{value: value})
}

func (t *txn) delete(key []byte) {
	t.put(key, &pendingWrite{deleted: true})
}

func (t *txn) put(key []byte, w *pendingWrite) {
	k := string(key)
	if _, ok := t.writes[k]; !ok {
		t.order = append(t.order, k)
	}
	t.writes[k] = w
}

func (t *txn) empty() bool {
	return len(t.order) == 0
}

// commit applies all writes atomically, writes are applied in first-write
// order of their keys.
func (t *txn) commit(sync bool) error {
	if t.empty() {
		return nil
	}

	wb := t.kv.NewWriteBatch()
	defer wb.Close()
	for _, k := range t.order {
		w := t.writes[k]
		if w.deleted {
			wb.Delete([]byte(k))
			continue
		}
		wb.Set([]byte(k), w.value)
	}
	return t.kv.Write(wb, sync)
}
