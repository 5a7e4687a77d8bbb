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

type counter struct {
	key string
}

func TestRegistry(t *testing.T) {
	s := newTestStore(t)
	target := &counter{key: "foo"}
	r := NewRegistry()

	op, err := r.Define("incr", func(b *Builder) {
		b.Multi(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Store().Do("INCRBY", c.Target().(*counter).key, args[0])
		})
	}, WithTarget(target), WithStore(s))
	require.NoError(t, err)
	assert.Equal(t, "incr", op.Name())

	_, err = r.Define("incr", nil)
	assert.True(t, errors.Is(err, ErrOperationExists))
	assert.NoError(t, r.Register("get", New(func(b *Builder) {
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Store().Do("GET", "foo")
		})
	}, WithStore(s))))
	assert.Equal(t, []string{"get", "incr"}, r.Names())

	v, err := r.Call(context.Background(), "incr", 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(45), v)

	results, err := Scheduled(context.Background(), s, func(ctx context.Context) error {
		if _, err := r.Call(ctx, "incr", 5); err != nil {
			return err
		}
		_, err := r.Call(ctx, "get")
		return err
	})
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{int64(50), "45"}, results, "immediate steps run before the transaction")

	_, err = r.Call(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrOperationNotFound))
}
