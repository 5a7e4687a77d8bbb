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
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fagongzi/util/format"
	"github.com/fagongzi/util/hack"
)

const (
	statusOK = "OK"
)

type commandFunc func(t *txn, args [][]byte) (interface{}, error)

type command struct {
	name string
	// arity is the exact number of arguments, a negative arity means at
	// least -arity arguments.
	arity int
	fn    commandFunc
}

func (c command) checkArity(n int) error {
	if c.arity >= 0 && n != c.arity {
		return errors.Wrapf(ErrWrongArity, "%s expects %d arguments, got %d", c.name, c.arity, n)
	}
	if c.arity < 0 && n < -c.arity {
		return errors.Wrapf(ErrWrongArity, "%s expects at least %d arguments, got %d", c.name, -c.arity, n)
	}
	return nil
}

var (
	commands = make(map[string]command)
)

func init() {
	addCommand("set", 2, set)
	addCommand("setnx", 2, setnx)
	addCommand("getset", 2, getset)
	addCommand("append", 2, appendValue)
	addCommand("incr", 1, incr)
	addCommand("incrby", 2, incrBy)
	addCommand("decr", 1, decr)
	addCommand("decrby", 2, decrBy)
	addCommand("del", -1, del)

	addCommand("get", 1, get)
	addCommand("mget", -1, mget)
	addCommand("strlen", 1, strlen)
	addCommand("exists", -1, exists)
}

func addCommand(name string, arity int, fn commandFunc) {
	name = strings.ToUpper(name)
	commands[name] = command{name: name, arity: arity, fn: fn}
}

func lookupCommand(name string, args int) (command, error) {
	c, ok := commands[strings.ToUpper(name)]
	if !ok {
		return command{}, errors.Wrapf(ErrUnknownCommand, "%s", name)
	}
	if err := c.checkArity(args); err != nil {
		return command{}, err
	}
	return c, nil
}

// ============================= write commands

func set(t *txn, args [][]byte) (interface{}, error) {
	t.set(args[0], args[1])
	return statusOK, nil
}

func setnx(t *txn, args [][]byte) (interface{}, error) {
	old, err := t.get(args[0])
	if err != nil {
		return nil, err
	}
	if old != nil {
		return int64(0), nil
	}
	t.set(args[0], args[1])
	return int64(1), nil
}

func getset(t *txn, args [][]byte) (interface{}, error) {
	old, err := t.get(args[0])
	if err != nil {
		return nil, err
	}
	t.set(args[0], args[1])
	return bulk(old), nil
}

func appendValue(t *txn, args [][]byte) (interface{}, error) {
	old, err := t.get(args[0])
	if err != nil {
		return nil, err
	}
	value := make([]byte, 0, len(old)+len(args[1]))
	value = append(value, old...)
	value = append(value, args[1]...)
	t.set(args[0], value)
	return int64(len(value)), nil
}

func incr(t *txn, args [][]byte) (interface{}, error) {
	return incrByDelta(t, args[0], 1)
}

func incrBy(t *txn, args [][]byte) (interface{}, error) {
	delta, err := parseInt(args[1])
	if err != nil {
		return nil, err
	}
	return incrByDelta(t, args[0], delta)
}

func decr(t *txn, args [][]byte) (interface{}, error) {
	return incrByDelta(t, args[0], -1)
}

func decrBy(t *txn, args [][]byte) (interface{}, error) {
	delta, err := parseInt(args[1])
	if err != nil {
		return nil, err
	}
	if delta == math.MinInt64 {
		return nil, ErrNotInteger
	}
	return incrByDelta(t, args[0], -delta)
}

func incrByDelta(t *txn, key []byte, delta int64) (interface{}, error) {
	old, err := t.get(key)
	if err != nil {
		return nil, err
	}

	var value int64
	if old != nil {
		value, err = parseInt(old)
		if err != nil {
			return nil, err
		}
	}

	if (delta > 0 && value > math.MaxInt64-delta) ||
		(delta < 0 && value < math.MinInt64-delta) {
		return nil, errors.Wrapf(ErrNotInteger, "increment or decrement would overflow")
	}

	value += delta
	t.set(key, hack.StringToSlice(format.Int64ToString(value)))
	return value, nil
}

func del(t *txn, args [][]byte) (interface{}, error) {
	n := int64(0)
	for _, key := range args {
		old, err := t.get(key)
		if err != nil {
			return nil, err
		}
		if old != nil {
			n++
			t.delete(key)
		}
	}
	return n, nil
}

// ============================= read commands

func get(t *txn, args [][]byte) (interface{}, error) {
	value, err := t.get(args[0])
	if err != nil {
		return nil, err
	}
	return bulk(value), nil
}

func mget(t *txn, args [][]byte) (interface{}, error) {
	values := make([]interface{}, 0, len(args))
	for _, key := range args {
		value, err := t.get(key)
		if err != nil {
			return nil, err
		}
		values = append(values, bulk(value))
	}
	return values, nil
}

func strlen(t *txn, args [][]byte) (interface{}, error) {
	value, err := t.get(args[0])
	if err != nil {
		return nil, err
	}
	return int64(len(value)), nil
}

func exists(t *txn, args [][]byte) (interface{}, error) {
	n := int64(0)
	for _, key := range args {
		value, err := t.get(key)
		if err != nil {
			return nil, err
		}
		if value != nil {
			n++
		}
	}
	return n, nil
}
