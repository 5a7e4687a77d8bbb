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

package store

import (
	"fmt"
	"sync"
)

// Deferred is the reply of a command issued inside a batch. It becomes ready
// when the batch closes.
type Deferred struct {
	cmd string

	mu struct {
		sync.RWMutex
		ready bool
		value interface{}
		err   error
	}
}

// NewDeferred returns a pending reply of the command
func NewDeferred(cmd string) *Deferred {
	return &Deferred{cmd: cmd}
}

// Command returns the command that produces the reply
func (d *Deferred) Command() string {
	return d.cmd
}

// Ready returns true once the batch closed
func (d *Deferred) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mu.ready
}

// Value returns the concrete reply, ErrNotReady before the batch closed
func (d *Deferred) Value() (interface{}, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.mu.ready {
		return nil, ErrNotReady
	}
	return d.mu.value, d.mu.err
}

// Resolve sets the concrete reply, called by store implementations when the
// batch closes. A reply can only be resolved once.
func (d *Deferred) Resolve(value interface{}, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mu.ready {
		panic(fmt.Sprintf("BUG: reply of %s resolved twice", d.cmd))
	}
	d.mu.ready = true
	d.mu.value = value
	d.mu.err = err
}

func (d *Deferred) String() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.mu.ready {
		return fmt.Sprintf("deferred(%s)", d.cmd)
	}
	return fmt.Sprintf("deferred(%s: %v)", d.cmd, d.mu.value)
}

// IsDeferred returns true if v is a deferred reply
func IsDeferred(v interface{}) bool {
	_, ok := v.(*Deferred)
	return ok
}

// Resolve returns the concrete value of v. Deferred replies are unwrapped,
// any other value is returned as is.
func Resolve(v interface{}) (interface{}, error) {
	switch r := v.(type) {
	case *Deferred:
		return r.Value()
	default:
		return v, nil
	}
}
