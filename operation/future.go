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
	"fmt"
	"sync"
)

// Future holds the result of a scheduled operation. It is written once by the
// executor, reading it never blocks.
type Future struct {
	mu struct {
		sync.RWMutex
		done  bool
		value interface{}
		err   error
	}
}

func newFuture() *Future {
	return &Future{}
}

// Ready returns true once the operation executed
func (f *Future) Ready() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mu.done
}

// Value returns the result of the operation. It returns ErrFutureNotReady
// before the operation executed, and the execution error if it failed.
func (f *Future) Value() (interface{}, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.mu.done {
		return nil, ErrFutureNotReady
	}
	return f.mu.value, f.mu.err
}

func (f *Future) set(value interface{}) {
	f.complete(value, nil)
}

func (f *Future) fail(err error) {
	f.complete(nil, err)
}

func (f *Future) complete(value interface{}, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mu.done {
		panic("BUG: future completed twice")
	}
	f.mu.done = true
	f.mu.value = value
	f.mu.err = err
}

func (f *Future) String() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.mu.done {
		return "future(pending)"
	}
	if f.mu.err != nil {
		return fmt.Sprintf("future(error: %v)", f.mu.err)
	}
	return fmt.Sprintf("future(%v)", f.mu.value)
}
