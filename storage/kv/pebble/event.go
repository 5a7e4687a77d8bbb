// Copyright 2021 MatrixOrigin.
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

package pebble

import (
	cpebble "github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

func hasEventListener(l cpebble.EventListener) bool {
	return l.BackgroundError != nil ||
		l.CompactionBegin != nil ||
		l.CompactionEnd != nil ||
		l.DiskSlow != nil ||
		l.FlushBegin != nil ||
		l.FlushEnd != nil ||
		l.ManifestCreated != nil ||
		l.ManifestDeleted != nil ||
		l.TableCreated != nil ||
		l.TableDeleted != nil ||
		l.TableIngested != nil ||
		l.TableStatsLoaded != nil ||
		l.WALCreated != nil ||
		l.WALDeleted != nil ||
		l.WriteStallBegin != nil ||
		l.WriteStallEnd != nil
}

// getEventListener routes the storage events that matter to the command
// engine (stalls, slow disks, background failures) to the logger. Flushes and
// compactions are logged at debug level only.
func getEventListener(logger *zap.Logger) cpebble.EventListener {
	return cpebble.EventListener{
		BackgroundError: func(err error) {
			logger.Error("background error",
				zap.Error(err))
		},
		CompactionEnd: func(info cpebble.CompactionInfo) {
			logger.Debug("compaction",
				zap.String("info", info.String()))
		},
		DiskSlow: func(info cpebble.DiskSlowInfo) {
			logger.Warn("disk slow",
				zap.String("info", info.String()))
		},
		FlushEnd: func(info cpebble.FlushInfo) {
			logger.Debug("flush",
				zap.String("info", info.String()))
		},
		WriteStallBegin: func(info cpebble.WriteStallBeginInfo) {
			logger.Warn("write stall began, batches will block",
				zap.String("info", info.String()))
		},
		WriteStallEnd: func() {
			logger.Info("write stall ended")
		},
	}
}
