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
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(c *Context, args ...interface{}) (interface{}, error) {
	return nil, nil
}

func TestDefineSteps(t *testing.T) {
	op := New(func(b *Builder) {
		b.Run(noop)
		b.Pipelined(noop)
	})
	op.Configure(func(b *Builder) {
		b.Multi(noop)
		b.Pipelined(noop)
	})
	assert.NoError(t, op.Add(Transactional, noop))
	assert.NoError(t, op.Add(Transactional, noop))

	steps := op.Steps()
	require.Len(t, steps, 6)
	for idx, kind := range []Kind{Immediate, Pipelined, Transactional, Pipelined, Transactional, Transactional} {
		assert.Equal(t, kind, steps[idx].Kind())
		assert.Equal(t, op, steps[idx].Target())
	}
}

func TestTargetOption(t *testing.T) {
	target := &struct{ name string }{name: "target"}
	op := New(func(b *Builder) {
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Target(), nil
		})
	}, WithTarget(target), WithStore(newTestStore(t)), WithName("targeted"))

	assert.Equal(t, "targeted", op.Name())
	assert.Equal(t, target, op.Steps()[0].Target())

	v, err := op.Execute(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, target, v)
}

func TestAddUnknownKind(t *testing.T) {
	op := New(nil)
	err := op.Add(Kind(7), noop)
	assert.True(t, errors.Is(err, ErrUnknownKind))
	assert.Contains(t, err.Error(), "must be one of call, pipelined, multi")
	assert.Empty(t, op.Steps())

	_, err = ParseKind("foo")
	assert.True(t, errors.Is(err, ErrUnknownKind))
	assert.Contains(t, err.Error(), "unknown type foo, must be one of call, pipelined, multi")

	for _, kind := range []Kind{Immediate, Pipelined, Transactional} {
		k, err := ParseKind(kind.String())
		assert.NoError(t, err)
		assert.Equal(t, kind, k)
	}
}

func TestStepsRunInDefinitionOrder(t *testing.T) {
	s := newTestStore(t)
	var order []int
	var received [][]interface{}

	kinds := []Kind{Immediate, Pipelined, Immediate, Pipelined, Transactional, Immediate}
	op := New(nil, WithStore(s))
	for idx, kind := range kinds {
		idx := idx
		require.NoError(t, op.Add(kind, func(c *Context, args ...interface{}) (interface{}, error) {
			order = append(order, idx)
			received = append(received, args)
			return idx, nil
		}))
	}

	before := s.Stats()
	v, err := op.Execute(context.Background(), "foo", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, order)
	for _, args := range received {
		assert.Equal(t, []interface{}{"foo", 1}, args)
	}

	delta := statsDelta(before, s.Stats())
	assert.Equal(t, uint64(2), delta.Pipelines)
	assert.Equal(t, uint64(1), delta.Multis)
}

func TestStandaloneExecutionLeavesReadyFuture(t *testing.T) {
	op := New(func(b *Builder) {
		b.Pipelined(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Store().Do("INCRBY", args[0], args[1])
		})
	}, WithStore(newTestStore(t)))
	assert.Nil(t, op.Future())

	v, err := op.Execute(context.Background(), "foo", 8)
	require.NoError(t, err)
	assert.Equal(t, int64(50), v)

	f := op.Future()
	require.NotNil(t, f)
	assert.True(t, f.Ready())
	fv, err := f.Value()
	assert.NoError(t, err)
	assert.Equal(t, v, fv)

	v, err = op.Execute(context.Background(), "foo", 8)
	require.NoError(t, err)
	assert.Equal(t, int64(58), v)
	assert.NotEqual(t, f, op.Future(), "every invocation has its own future")
}
