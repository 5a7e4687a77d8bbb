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
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind is the kind of a step
type Kind int

const (
	// Immediate steps run on their own and see concrete replies
	Immediate Kind = iota
	// Pipelined steps of different operations share one pipeline
	Pipelined
	// Transactional steps of different operations share one transaction
	Transactional
)

var kindNames = [...]string{
	Immediate:     "call",
	Pipelined:     "pipelined",
	Transactional: "multi",
}

func (k Kind) valid() bool {
	return k >= Immediate && k <= Transactional
}

func (k Kind) String() string {
	if !k.valid() {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind returns the kind by its name: call, pipelined or multi
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, unknownKind(name)
}

func unknownKind(name string) error {
	return errors.Wrapf(ErrUnknownKind, "unknown type %s, must be one of %s",
		name, strings.Join(kindNames[:], ", "))
}

// StepFunc is the body of a step. It runs with the context of the current
// invocation and the arguments the operation is executed with.
type StepFunc func(c *Context, args ...interface{}) (interface{}, error)

// Step is one executable unit of an operation
type Step struct {
	target interface{}
	kind   Kind
	fn     StepFunc
}

// Kind returns the kind of the step
func (s Step) Kind() Kind {
	return s.kind
}

// Target returns the receiver the step is bound to
func (s Step) Target() interface{} {
	return s.target
}
