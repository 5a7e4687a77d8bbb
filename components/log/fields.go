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

package log

import (
	"fmt"

	"go.uber.org/zap"
)

// OperationField returns operation name field
func OperationField(name string) zap.Field {
	if name == "" {
		name = "anonymous"
	}
	return zap.String("operation", name)
}

// ExecutionField returns the id of one executor run
func ExecutionField(id string) zap.Field {
	return zap.String("execution", id)
}

// RoundField returns scheduler round field
func RoundField(round int) zap.Field {
	return zap.Int("round", round)
}

// KindField returns step kind field
func KindField(kind fmt.Stringer) zap.Field {
	return zap.Stringer("kind", kind)
}

// StepIndexField returns step index field
func StepIndexField(index int) zap.Field {
	return zap.Int("step-index", index)
}

// BatchSizeField returns the number of steps in a batch
func BatchSizeField(size int) zap.Field {
	return zap.Int("batch-size", size)
}

// OperationCountField returns the number of scheduled operations
func OperationCountField(count int) zap.Field {
	return zap.Int("operation-count", count)
}

// CommandField returns store command field
func CommandField(cmd string) zap.Field {
	return zap.String("command", cmd)
}

// ReplyCountField returns the number of replies produced by a batch
func ReplyCountField(count int) zap.Field {
	return zap.Int("reply-count", count)
}
