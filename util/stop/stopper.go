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

package stop

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/matrixorigin/multicube/components/log"
	"go.uber.org/zap"
)

var (
	// ErrUnavailable stopper is not running
	ErrUnavailable = errors.New("runner is unavailable")
	// ErrStopTimeout some tasks did not exit in time
	ErrStopTimeout = errors.New("waiting for tasks complete timeout")
)

var (
	defaultWaitStoppedTimeout = time.Minute
)

// Stopper runs named background tasks (metric pushers, http servers) that
// share one cancellation. Stop cancels them and waits for them to exit.
type Stopper struct {
	name   string
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu struct {
		sync.Mutex
		stopped bool
		running map[uint64]string
		lastID  uint64
	}
}

// NewStopper create a stopper
func NewStopper(name string, logger *zap.Logger) *Stopper {
	s := &Stopper{
		name:   name,
		logger: log.Adjust(logger).Named("stopper"),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.running = make(map[uint64]string)
	return s
}

// RunNamedTask run a task that is cancelled by Stop. ErrUnavailable returned
// if the stopper is stopped.
func (s *Stopper) RunNamedTask(name string, task func(context.Context)) error {
	s.mu.Lock()
	if s.mu.stopped {
		s.mu.Unlock()
		return ErrUnavailable
	}
	s.mu.lastID++
	id := s.mu.lastID
	s.mu.running[id] = name
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.mu.running, id)
			s.mu.Unlock()
			s.wg.Done()
		}()

		task(s.ctx)
	}()
	return nil
}

// Stop stop all tasks in the default timeout.
func (s *Stopper) Stop() ([]string, error) {
	return s.StopWithTimeout(defaultWaitStoppedTimeout)
}

// StopWithTimeout stop all tasks in the specified timeout. If some tasks do
// not exit within the timeout, their names are returned.
func (s *Stopper) StopWithTimeout(timeout time.Duration) ([]string, error) {
	s.mu.Lock()
	if s.mu.stopped {
		s.mu.Unlock()
		return nil, nil
	}
	s.mu.stopped = true
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil, nil
	case <-timer.C:
		names := s.runningTasks()
		s.logger.Error("tasks still running after stop",
			zap.String("stopper", s.name),
			zap.Strings("tasks", names))
		return names, ErrStopTimeout
	}
}

func (s *Stopper) runningTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for _, name := range s.mu.running {
		names = append(names, name)
	}
	return names
}
