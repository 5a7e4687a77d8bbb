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
	"github.com/cockroachdb/errors"
	"github.com/fagongzi/util/format"
	"github.com/fagongzi/util/hack"
)

// toBytes converts a command argument to its byte form. Integers are
// formatted in base 10.
func toBytes(arg interface{}) ([]byte, error) {
	switch v := arg.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		c := make([]byte, len(v))
		copy(c, v)
		return c, nil
	case int:
		return hack.StringToSlice(format.Int64ToString(int64(v))), nil
	case int8:
		return hack.StringToSlice(format.Int64ToString(int64(v))), nil
	case int16:
		return hack.StringToSlice(format.Int64ToString(int64(v))), nil
	case int32:
		return hack.StringToSlice(format.Int64ToString(int64(v))), nil
	case int64:
		return hack.StringToSlice(format.Int64ToString(v)), nil
	case uint:
		return hack.StringToSlice(format.Uint64ToString(uint64(v))), nil
	case uint8:
		return hack.StringToSlice(format.Uint64ToString(uint64(v))), nil
	case uint16:
		return hack.StringToSlice(format.Uint64ToString(uint64(v))), nil
	case uint32:
		return hack.StringToSlice(format.Uint64ToString(uint64(v))), nil
	case uint64:
		return hack.StringToSlice(format.Uint64ToString(v)), nil
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "unsupported argument type %T", arg)
	}
}

func toBytesSlice(args []interface{}) ([][]byte, error) {
	values := make([][]byte, 0, len(args))
	for _, arg := range args {
		v, err := toBytes(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func parseInt(value []byte) (int64, error) {
	n, err := format.ParseStringInt64(hack.SliceToString(value))
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

func bulk(value []byte) interface{} {
	if value == nil {
		return nil
	}
	return string(value)
}
