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
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/matrixorigin/multicube/store"
)

// names of the Data methods, a property can not shadow them
var reservedNames = map[string]string{
	"get":    "Get",
	"lookup": "Lookup",
	"set":    "Set",
	"merge":  "Merge",
	"keys":   "Keys",
	"len":    "Len",
	"range":  "Range",
	"map":    "Map",
	"string": "String",
}

// Data is the property bag of an invocation. Iteration follows insertion
// order. A property set to a deferred reply holds the deferred until the batch
// that produces it closes, and the concrete reply afterwards.
type Data struct {
	keys   []string
	values map[string]interface{}
}

// NewData returns an empty Data
func NewData() *Data {
	return &Data{values: make(map[string]interface{})}
}

// Get returns the property, nil if missing
func (d *Data) Get(name string) interface{} {
	return d.values[name]
}

// Lookup returns the property and whether it exists
func (d *Data) Lookup(name string) (interface{}, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Set sets the property. It fails with ErrReservedName if the name is one of
// the Data methods, compared case-insensitively.
func (d *Data) Set(name string, value interface{}) error {
	if err := checkName(name); err != nil {
		return err
	}
	d.set(name, value)
	return nil
}

// Merge sets all properties in name order. Nothing is set if any name is
// reserved.
func (d *Data) Merge(values map[string]interface{}) error {
	names := make([]string, 0, len(values))
	for name := range values {
		if err := checkName(name); err != nil {
			return err
		}
		names = append(names, name)
	}

	sort.Strings(names)
	for _, name := range names {
		d.set(name, values[name])
	}
	return nil
}

// Keys returns the property names in insertion order
func (d *Data) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of properties
func (d *Data) Len() int {
	return len(d.keys)
}

// Range calls fn for every property in insertion order until fn returns false
func (d *Data) Range(fn func(name string, value interface{}) bool) {
	for _, k := range d.keys {
		if !fn(k, d.values[k]) {
			return
		}
	}
}

// Map returns a copy of the properties
func (d *Data) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(d.keys))
	for k, v := range d.values {
		m[k] = v
	}
	return m
}

func (d *Data) String() string {
	var buf bytes.Buffer
	buf.WriteString("{")
	for idx, k := range d.keys {
		if idx > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %v", k, d.values[k])
	}
	buf.WriteString("}")
	return buf.String()
}

func (d *Data) set(name string, value interface{}) {
	if _, ok := d.values[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.values[name] = value
}

// resolve replaces deferred replies with their concrete values
func (d *Data) resolve() error {
	for _, k := range d.keys {
		v := d.values[k]
		if !store.IsDeferred(v) {
			continue
		}

		value, err := store.Resolve(v)
		if err != nil {
			return errors.Wrapf(err, "resolve property %s", k)
		}
		d.values[k] = value
	}
	return nil
}

func checkName(name string) error {
	if method, ok := reservedNames[strings.ToLower(name)]; ok {
		return errors.Wrapf(ErrReservedName, "cannot set property %s, method %s already exists",
			name, method)
	}
	return nil
}
