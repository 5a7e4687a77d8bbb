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

// Package store defines the data store collaborator driven by the operation
// scheduler: immediate commands, pipelines and transactions whose replies are
// only available once the batch closes.
package store

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrNotReady the deferred reply is read before its batch closed
	ErrNotReady = errors.New("reply is not ready, the batch is still open")
	// ErrBatchClosed a command is issued on a batch that already closed
	ErrBatchClosed = errors.New("batch is closed")
)

// Commander executes commands. Outside a batch Do returns the concrete reply,
// inside a batch it returns a *Deferred.
type Commander interface {
	Do(cmd string, args ...interface{}) (interface{}, error)
}

//go:generate mockgen -source=store.go -destination=mock/mock_store.go -package=mock

// Store is the data store collaborator.
type Store interface {
	Commander
	// Pipelined runs fn with a pipeline batch. Commands issued inside fn are
	// sent when fn returns, and all replies are returned in issue order.
	Pipelined(fn func(Commander) error) ([]interface{}, error)
	// Multi is the same as Pipelined, but the commands are executed
	// atomically.
	Multi(fn func(Commander) error) ([]interface{}, error)
}
