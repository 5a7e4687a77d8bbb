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

package util

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

const (
	defaultBTreeDegree = 64
)

var (
	itemPool sync.Pool
)

func acquireItem() *treeItem {
	v := itemPool.Get()
	if v == nil {
		return &treeItem{}
	}
	return v.(*treeItem)
}

func releaseItem(item *treeItem) {
	item.key = nil
	item.value = nil
	itemPool.Put(item)
}

type treeItem struct {
	key   []byte
	value []byte
}

// Less returns true if the item key is less than the other.
func (item *treeItem) Less(other btree.Item) bool {
	return bytes.Compare(item.key, other.(*treeItem).key) < 0
}

// KVTree is an ordered key-value tree, safe for concurrent use.
type KVTree struct {
	sync.RWMutex
	tree *btree.BTree
}

// NewKVTree returns a kv btree
func NewKVTree() *KVTree {
	return &KVTree{
		tree: btree.New(defaultBTreeDegree),
	}
}

// Put puts a key, value to the tree
func (kv *KVTree) Put(key, value []byte) {
	kv.Lock()
	kv.tree.ReplaceOrInsert(&treeItem{
		key:   key,
		value: value,
	})
	kv.Unlock()
}

// Delete deletes a key, returns true if the key existed
func (kv *KVTree) Delete(key []byte) bool {
	item := acquireItem()
	item.key = key

	kv.Lock()
	result := kv.tree.Delete(item)
	kv.Unlock()

	releaseItem(item)
	return result != nil
}

// Get returns the value of the key, nil if the key is absent
func (kv *KVTree) Get(key []byte) []byte {
	item := acquireItem()
	item.key = key

	var result btree.Item
	kv.RLock()
	result = kv.tree.Get(item)
	kv.RUnlock()

	releaseItem(item)
	if result == nil {
		return nil
	}

	return result.(*treeItem).value
}
