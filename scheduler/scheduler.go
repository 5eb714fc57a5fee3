/*
 * MIT License
 *
 * Copyright (c) 2024-2026 HiveGrid Team
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package scheduler provides the process-wide periodic trigger shared
// by all cells for low-priority maintenance work. One Scheduler is
// constructed at process start, owned by the process entry point, and
// passed by handle to every cell. Execution is single-threaded across
// all cells: tasks must be fast and non-blocking, a slow task delays
// every other cell's maintenance tick.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	gerrors "github.com/hivegrid/cells/errors"
	"github.com/hivegrid/cells/log"
)

// defaultStopTimeout bounds how long Stop waits for in-flight tasks.
const defaultStopTimeout = 3 * time.Second

// Task is one recurring unit of maintenance work.
type Task func(ctx context.Context)

// Handle identifies one scheduled task. It is returned by Schedule and
// consumed by Cancel.
type Handle struct {
	key *quartz.JobKey
}

// Scheduler is the shared low-priority periodic trigger. Schedule and
// Cancel are safe under concurrent calls from independent cells.
type Scheduler struct {
	mu              sync.Mutex
	quartzScheduler quartz.Scheduler
	started         *atomic.Bool
	logger          log.Logger
	stopTimeout     time.Duration
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithStopTimeout overrides how long Stop waits for in-flight tasks.
func WithStopTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		s.stopTimeout = timeout
	}
}

// New creates a Scheduler. Tasks run one at a time on the scheduler's
// own goroutine.
func New(logger log.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = log.DefaultLogger
	}

	quartzScheduler, _ := quartz.NewStdScheduler(
		quartz.WithBlockingExecution(),
		quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)),
	)

	scheduler := &Scheduler{
		quartzScheduler: quartzScheduler,
		started:         atomic.NewBool(false),
		logger:          logger,
		stopTimeout:     defaultStopTimeout,
	}

	for _, opt := range opts {
		opt(scheduler)
	}
	return scheduler
}

// Start starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("starting maintenance scheduler...")
	s.quartzScheduler.Start(ctx)
	s.started.Store(s.quartzScheduler.IsStarted())
	s.logger.Info("maintenance scheduler started")
}

// Stop cancels all remaining tasks and waits, bounded by the stop
// timeout, for in-flight ones to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	if !s.started.Load() {
		return
	}

	s.logger.Info("stopping maintenance scheduler...")
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.quartzScheduler.Clear()
	s.quartzScheduler.Stop()
	s.started.Store(s.quartzScheduler.IsStarted())

	ctx, cancel := context.WithTimeout(ctx, s.stopTimeout)
	defer cancel()
	s.quartzScheduler.Wait(ctx)

	s.logger.Info("maintenance scheduler stopped")
}

// Schedule registers a task to run at the given fixed interval. The
// first run happens one interval after registration. The returned
// handle cancels the task.
func (s *Scheduler) Schedule(name string, task Task, interval time.Duration) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started.Load() {
		return nil, gerrors.ErrSchedulerNotStarted
	}

	key := quartz.NewJobKey(name + "/" + uuid.NewString())
	functionJob := job.NewFunctionJob[bool](func(ctx context.Context) (bool, error) {
		task(ctx)
		return true, nil
	})

	detail := quartz.NewJobDetail(functionJob, key)
	if err := s.quartzScheduler.ScheduleJob(detail, quartz.NewSimpleTrigger(interval)); err != nil {
		return nil, err
	}
	return &Handle{key: key}, nil
}

// Cancel removes a scheduled task. Canceling a nil handle, an already
// canceled task, or a task on a stopped scheduler is a no-op.
func (s *Scheduler) Cancel(handle *Handle) {
	if handle == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return
	}
	if err := s.quartzScheduler.DeleteJob(handle.key); err != nil {
		s.logger.Debugf("maintenance task %s already canceled: %v", handle.key.Name(), err)
	}
}
