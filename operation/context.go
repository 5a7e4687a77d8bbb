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
	"github.com/cockroachdb/errors"
	"github.com/matrixorigin/multicube/store"
)

// Context is the execution environment of one invocation of an operation.
// Steps read and write their state through it.
type Context struct {
	data        *Data
	lastReplies []interface{}
	store       store.Commander
	target      interface{}
	value       interface{}
	// true if the latest step ran inside a batch
	batched bool
}

func newContext(s store.Commander) *Context {
	return &Context{
		data:  NewData(),
		store: s,
	}
}

// Data returns the property bag of the invocation
func (c *Context) Data() *Data {
	return c.data
}

// LastReplies returns the replies of the commands this invocation issued in
// its latest batch. Immediate steps do not change them.
func (c *Context) LastReplies() []interface{} {
	return append([]interface{}(nil), c.lastReplies...)
}

// Store returns the commander of the running step. Inside a pipelined or
// transactional step the commands return deferred replies.
func (c *Context) Store() store.Commander {
	return c.store
}

// Target returns the receiver the running step is bound to
func (c *Context) Target() interface{} {
	return c.target
}

// execute runs the step. With a non nil accumulator the step runs inside a
// batch, and the replies it adds to the accumulator become its last replies.
func (c *Context) execute(step Step, cmd store.Commander, acc *accumulator, args []interface{}) error {
	c.store = cmd
	c.target = step.target
	c.batched = acc != nil

	start := 0
	if c.batched {
		start = acc.len()
	}

	value, err := step.fn(c, args...)
	if err != nil {
		return err
	}
	c.value = value

	if c.batched {
		c.lastReplies = acc.slice(start, acc.len())
	}
	return nil
}

// resolveFutures replaces the deferred replies kept by the context with
// their concrete values. It does nothing if the latest step was not batched.
func (c *Context) resolveFutures() error {
	if !c.batched {
		return nil
	}

	if err := c.data.resolve(); err != nil {
		return err
	}
	for idx, r := range c.lastReplies {
		v, err := store.Resolve(r)
		if err != nil {
			return errors.Wrapf(err, "resolve reply %d", idx)
		}
		c.lastReplies[idx] = v
	}
	v, err := store.Resolve(c.value)
	if err != nil {
		return err
	}
	c.value = v
	c.batched = false
	return nil
}

// accumulator collects the replies of every command issued in one batch, in
// issue order. It is shared by all operations taking part in the batch.
type accumulator struct {
	cmd     store.Commander
	replies []interface{}
}

func (a *accumulator) Do(cmd string, args ...interface{}) (interface{}, error) {
	v, err := a.cmd.Do(cmd, args...)
	if err != nil {
		return nil, err
	}
	a.replies = append(a.replies, v)
	return v, nil
}

func (a *accumulator) len() int {
	return len(a.replies)
}

func (a *accumulator) slice(start, end int) []interface{} {
	return append([]interface{}(nil), a.replies[start:end]...)
}
