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

// Package operation schedules data store operations. An operation is an
// ordered list of steps, each step is an immediate call, a pipelined call or a
// transactional call. The Executor runs several operations together and
// merges the same kind of head steps from different operations into one
// pipeline or transaction, while every operation only sees its own replies.
package operation

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnknownKind the step kind is not one of call, pipelined and multi
	ErrUnknownKind = errors.New("unknown step kind")
	// ErrReservedName the data property name is taken by a method of Data
	ErrReservedName = errors.New("reserved property name")
	// ErrFutureNotReady the future is read before its operation executed
	ErrFutureNotReady = errors.New("value will be available once the operation executes")
	// ErrNoStore neither the executor nor the operation has a store, and no
	// default store is set
	ErrNoStore = errors.New("no store to execute the operation")
	// ErrScopeOpen a scheduled block is opened inside another scheduled block
	ErrScopeOpen = errors.New("scheduled block is already open")
	// ErrScopeClosed an operation is executed with the context of a closed
	// scheduled block
	ErrScopeClosed = errors.New("scheduled block is closed")
	// ErrExecuted the executor is executed more than once
	ErrExecuted = errors.New("executor already executed")
	// ErrOperationExists the name is already registered
	ErrOperationExists = errors.New("operation already exists")
	// ErrOperationNotFound the name is not registered
	ErrOperationNotFound = errors.New("operation not found")
	// ErrReplyMismatch the store returned a different number of replies than
	// the commands issued in the batch
	ErrReplyMismatch = errors.New("replies do not match the issued commands")
)
