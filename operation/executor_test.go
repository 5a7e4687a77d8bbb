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
	"github.com/golang/mock/gomock"
	"github.com/matrixorigin/multicube/storage/kv/mem"
	"github.com/matrixorigin/multicube/store"
	"github.com/matrixorigin/multicube/store/kv"
	"github.com/matrixorigin/multicube/store/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *kv.Store {
	storage := mem.NewStorage()
	t.Cleanup(func() {
		storage.Close()
	})
	require.NoError(t, storage.Set([]byte("foo"), []byte("42"), false))
	require.NoError(t, storage.Set([]byte("bar"), []byte("66"), false))
	require.NoError(t, storage.Set([]byte("baz"), []byte("fu"), false))
	return kv.NewStore(storage, kv.WithLogger(zap.NewNop()))
}

func doSet(c *Context, name string, cmd string, args ...interface{}) error {
	v, err := c.Store().Do(cmd, args...)
	if err != nil {
		return err
	}
	return c.Data().Set(name, v)
}

func statsDelta(before, after kv.Stats) kv.Stats {
	return kv.Stats{
		Calls:     after.Calls - before.Calls,
		Pipelines: after.Pipelines - before.Pipelines,
		Multis:    after.Multis - before.Multis,
		Commands:  after.Commands - before.Commands,
	}
}

func TestExecuteTogether(t *testing.T) {
	s := newTestStore(t)
	var steps []int
	record := func(n int) {
		steps = append(steps, n)
	}

	op1 := New(func(b *Builder) {
		b.Pipelined(func(c *Context, args ...interface{}) (interface{}, error) {
			record(10)
			return c.Store().Do("GET", "foo")
		})
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			record(11)
			assert.Equal(t, []interface{}{"42"}, c.LastReplies())
			return nil, nil
		})
		b.Multi(func(c *Context, args ...interface{}) (interface{}, error) {
			record(12)
			return nil, doSet(c, "d", "INCRBY", "foo", 24)
		})
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			record(13)
			assert.Equal(t, []interface{}{int64(66)}, c.LastReplies())
			assert.Equal(t, int64(66), c.Data().Get("d"))
			return c.Data(), nil
		})
	}, WithName("op1"))

	op2 := New(func(b *Builder) {
		b.Pipelined(func(c *Context, args ...interface{}) (interface{}, error) {
			record(20)
			return nil, doSet(c, "a", "GETSET", "bar", 24)
		})
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			record(21)
			assert.Equal(t, []interface{}{"66"}, c.LastReplies())
			assert.Equal(t, "66", c.Data().Get("a"))
			v, err := c.Store().Do("GET", "bar")
			assert.Equal(t, "24", v)
			return nil, err
		})
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			record(22)
			return nil, nil
		})
		b.Multi(func(c *Context, args ...interface{}) (interface{}, error) {
			record(23)
			if err := doSet(c, "e", "INCRBY", "foo", 34); err != nil {
				return nil, err
			}
			return c.Store().Do("DECR", "foo")
		})
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			record(24)
			assert.Equal(t, []interface{}{int64(100), int64(99)}, c.LastReplies())
			assert.Equal(t, int64(100), c.Data().Get("e"))
			return c.Data(), nil
		})
	}, WithName("op2"))

	op3 := New(func(b *Builder) {
		for _, n := range []int{30, 31, 32} {
			n := n
			b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
				record(n)
				return nil, nil
			})
		}
		b.Pipelined(func(c *Context, args ...interface{}) (interface{}, error) {
			record(33)
			if err := doSet(c, "b", "APPEND", "baz", "bar"); err != nil {
				return nil, err
			}
			return nil, doSet(c, "c", "GET", "foo")
		})
		b.Multi(func(c *Context, args ...interface{}) (interface{}, error) {
			record(34)
			assert.Equal(t, []interface{}{int64(5), "42"}, c.LastReplies())
			assert.Equal(t, int64(5), c.Data().Get("b"))
			assert.Equal(t, "42", c.Data().Get("c"))
			return c.Store().Do("SET", "baz", "qux")
		})
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			record(35)
			assert.Equal(t, []interface{}{"OK"}, c.LastReplies())
			return c.Data(), nil
		})
	}, WithName("op3"))

	e := NewExecutor(s, WithLogger(zap.NewNop()))
	e.Add(op1)
	e.Add(op2)
	e.Add(op3)
	assert.Equal(t, 3, e.Len())

	before := s.Stats()
	results, err := e.Execute(context.Background())
	require.NoError(t, err)
	delta := statsDelta(before, s.Stats())
	assert.Equal(t, uint64(1), delta.Calls)
	assert.Equal(t, uint64(1), delta.Pipelines)
	assert.Equal(t, uint64(1), delta.Multis)

	assert.Equal(t, []int{
		30, 31, 32,
		10, 20, 33,
		11, 21, 22,
		12, 23, 34,
		13, 24, 35,
	}, steps)

	require.Len(t, results, 3)
	assert.Equal(t, map[string]interface{}{"d": int64(66)}, results[0].(*Data).Map())
	assert.Equal(t, map[string]interface{}{"a": "66", "e": int64(100)}, results[1].(*Data).Map())
	assert.Equal(t, map[string]interface{}{"b": int64(5), "c": "42"}, results[2].(*Data).Map())

	for idx, op := range []*Operation{op1, op2, op3} {
		v, err := op.Future().Value()
		assert.NoError(t, err)
		assert.Equal(t, results[idx], v)
	}
}

func TestSameKindStepsShareOneBatch(t *testing.T) {
	s := newTestStore(t)

	newOp := func(kind Kind, keys ...string) *Operation {
		op := New(nil)
		require.NoError(t, op.Add(kind, func(c *Context, args ...interface{}) (interface{}, error) {
			for _, key := range keys {
				if _, err := c.Store().Do("GET", key); err != nil {
					return nil, err
				}
			}
			return nil, nil
		}))
		require.NoError(t, op.Add(Immediate, func(c *Context, args ...interface{}) (interface{}, error) {
			return c.LastReplies(), nil
		}))
		return op
	}

	for _, kind := range []Kind{Pipelined, Transactional} {
		t.Run(kind.String(), func(t *testing.T) {
			before := s.Stats()
			results, err := ExecuteAll(context.Background(), s,
				newOp(kind, "foo", "bar"), newOp(kind, "baz"))
			require.NoError(t, err)

			delta := statsDelta(before, s.Stats())
			assert.Equal(t, uint64(0), delta.Calls)
			assert.Equal(t, uint64(3), delta.Commands)
			if kind == Pipelined {
				assert.Equal(t, uint64(1), delta.Pipelines)
				assert.Equal(t, uint64(0), delta.Multis)
			} else {
				assert.Equal(t, uint64(0), delta.Pipelines)
				assert.Equal(t, uint64(1), delta.Multis)
			}

			assert.Equal(t, []interface{}{"42", "66"}, results[0])
			assert.Equal(t, []interface{}{"fu"}, results[1])
		})
	}
}

func TestNoBatchWithoutMatchingStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := mock.NewMockStore(ctrl)
	s.EXPECT().Do("GET", "foo").Return("42", nil)

	UseStore(nil)
	configure := func(b *Builder) {
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Store().Do("GET", "foo")
		})
	}
	op := New(configure)
	results, err := NewExecutor(s).Execute(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, results)

	v, err := op.Execute(context.Background())
	assert.Equal(t, ErrNoStore, err)
	assert.Nil(t, v)

	v, err = New(configure, WithStore(s)).Execute(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestStoreErrorAbortsExecution(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cause := errors.New("connection refused")
	s := mock.NewMockStore(ctrl)
	s.EXPECT().Pipelined(gomock.Any()).Return(nil, cause)

	op1 := New(func(b *Builder) {
		b.Pipelined(func(c *Context, args ...interface{}) (interface{}, error) {
			return nil, nil
		})
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			assert.Fail(t, "must not run after a failed batch")
			return nil, nil
		})
	})
	op2 := New(func(b *Builder) {
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			return "done", nil
		})
	})

	e := NewExecutor(s)
	f1 := e.Add(op1)
	f2 := e.Add(op2)
	results, err := e.Execute(context.Background())
	assert.Equal(t, cause, err)
	assert.Nil(t, results)

	_, err = f1.Value()
	assert.Equal(t, cause, err)
	_, err = f2.Value()
	assert.Equal(t, cause, err)

	_, err = e.Execute(context.Background())
	assert.Equal(t, ErrExecuted, err)
}

func TestImmediateErrorAbortsExecution(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cause := errors.New("timeout")
	s := mock.NewMockStore(ctrl)
	s.EXPECT().Do("GET", "foo").Return(nil, cause)

	op := New(func(b *Builder) {
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Store().Do("GET", "foo")
		})
		b.Multi(func(c *Context, args ...interface{}) (interface{}, error) {
			assert.Fail(t, "must not run after a failed step")
			return nil, nil
		})
	}, WithStore(s))

	_, err := op.Execute(context.Background())
	assert.True(t, errors.Is(err, cause))
	_, err = op.Future().Value()
	assert.True(t, errors.Is(err, cause))
}

func TestTransactionFailureAbortsExecution(t *testing.T) {
	s := newTestStore(t)

	op1 := New(func(b *Builder) {
		b.Multi(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Store().Do("SET", "foo", "bar")
		})
	})
	op2 := New(func(b *Builder) {
		b.Multi(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Store().Do("INCR", "baz")
		})
	})

	_, err := ExecuteAll(context.Background(), s, op1, op2)
	assert.True(t, errors.Is(err, kv.ErrNotInteger))

	v, err := s.Do("GET", "foo")
	assert.NoError(t, err)
	assert.Equal(t, "42", v, "the shared transaction is discarded")
}

func TestReplyMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cmd := mock.NewMockCommander(ctrl)
	cmd.EXPECT().Do("GET", "foo").Return(store.NewDeferred("GET"), nil)

	s := mock.NewMockStore(ctrl)
	s.EXPECT().Multi(gomock.Any()).DoAndReturn(func(fn func(store.Commander) error) ([]interface{}, error) {
		if err := fn(cmd); err != nil {
			return nil, err
		}
		return nil, nil
	})

	op := New(func(b *Builder) {
		b.Multi(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Store().Do("GET", "foo")
		})
	})
	_, err := ExecuteAll(context.Background(), s, op)
	assert.True(t, errors.Is(err, ErrReplyMismatch))
}

func TestDeferredRepliesResolvedBeforeNextStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reply := store.NewDeferred("GET")
	cmd := mock.NewMockCommander(ctrl)
	cmd.EXPECT().Do("GET", "foo").Return(reply, nil)

	s := mock.NewMockStore(ctrl)
	s.EXPECT().Pipelined(gomock.Any()).DoAndReturn(func(fn func(store.Commander) error) ([]interface{}, error) {
		if err := fn(cmd); err != nil {
			return nil, err
		}
		reply.Resolve("42", nil)
		return []interface{}{"42"}, nil
	})

	op := New(func(b *Builder) {
		b.Pipelined(func(c *Context, args ...interface{}) (interface{}, error) {
			if err := doSet(c, "foo", "GET", "foo"); err != nil {
				return nil, err
			}
			assert.Equal(t, reply, c.Data().Get("foo"), "deferred until the batch closes")
			return c.Data().Get("foo"), nil
		})
	}, WithStore(s))

	v, err := op.Execute(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := New(func(b *Builder) {
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			assert.Fail(t, "must not run with a cancelled context")
			return nil, nil
		})
	}, WithStore(s))
	_, err := op.Execute(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestProgressViolationPanics(t *testing.T) {
	s := newTestStore(t)

	op := New(nil)
	op.steps = append(op.steps, Step{target: op, kind: Kind(99), fn: func(c *Context, args ...interface{}) (interface{}, error) {
		return nil, nil
	}})

	e := NewExecutor(s)
	e.Add(op)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.IsAssertionFailure(err))
	}()
	e.Execute(context.Background())
}

func TestExecuteWithoutOperations(t *testing.T) {
	UseStore(nil)

	results, err := ExecuteAll(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{}, results)

	results, err = Scheduled(context.Background(), nil, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{}, results)
}

func TestAddAfterExecute(t *testing.T) {
	s := newTestStore(t)
	op := New(func(b *Builder) {
		b.Run(func(c *Context, args ...interface{}) (interface{}, error) {
			return c.Store().Do("GET", "foo")
		})
	})

	e := NewExecutor(s)
	first := e.Add(op)
	results, err := e.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"42"}, results)

	f := e.Add(op)
	assert.True(t, f.Ready())
	_, err = f.Value()
	assert.Equal(t, ErrExecuted, err)
	assert.Equal(t, f, op.Future())
	assert.Equal(t, 1, e.Len())

	_, err = e.Execute(context.Background())
	assert.Equal(t, ErrExecuted, err)

	v, err := first.Value()
	assert.NoError(t, err)
	assert.Equal(t, "42", v)
}
