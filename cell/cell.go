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

// Package cell implements the base actor abstraction of the cells
// runtime: independently addressable, long-lived service units that
// communicate exclusively via asynchronous envelopes.
//
// A Cell is constructed around a Behavior, started with Start — which
// blocks until the deferred initialization sequence completed on its
// own goroutine — and thereafter dispatches inbound envelopes to its
// registered listeners. Dispatch is serialized: at most one envelope
// is in flight per cell, so listener state needs no synchronization of
// its own.
package cell

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/hivegrid/cells/cdc"
	gerrors "github.com/hivegrid/cells/errors"
	"github.com/hivegrid/cells/internal/args"
	"github.com/hivegrid/cells/internal/syncmap"
	"github.com/hivegrid/cells/log"
	"github.com/hivegrid/cells/nucleus"
	"github.com/hivegrid/cells/option"
	"github.com/hivegrid/cells/scheduler"
	"github.com/hivegrid/cells/vehicle"
)

// DefaultMaintenanceInterval is the cadence of the per-cell
// maintenance task that expires stale pending replies.
const DefaultMaintenanceInterval = 30 * time.Second

// State is the lifecycle state of a cell.
type State int32

const (
	// StateCreated holds after construction: name, arguments and
	// resolved options are set, message delivery is not yet enabled.
	StateCreated State = iota
	// StateInitializing holds while the initialization sequence runs
	// on its dedicated goroutine.
	StateInitializing
	// StateRunning holds once initialization completed and message
	// delivery is enabled.
	StateRunning
	// StateTerminating holds while teardown runs.
	StateTerminating
	// StateTerminated is the final state.
	StateTerminated
)

// String returns the text representation of the state
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Behavior is the cell-specific part of a cell. Init runs once on the
// initialization goroutine, after the defined setup and before the
// maintenance task is registered; message delivery is enabled only
// after it returned.
type Behavior interface {
	Init(ctx context.Context) error
}

// Cleaner is implemented by behaviors that need teardown logic. It
// runs during Stop, after the maintenance task was cancelled.
type Cleaner interface {
	CleanUp(ctx context.Context)
}

// SetupRoutine is a named external routine designated by a leading
// "!name" construction argument, executed once during initialization
// before the Behavior's Init hook.
type SetupRoutine func(ctx context.Context) error

// Cell is one actor instance.
type Cell struct {
	name         string
	domain       string
	friendlyName string
	args         *args.Args
	definedSetup string
	behavior     Behavior

	logger    log.Logger
	cdc       *cdc.CDC
	deliverer nucleus.Deliverer
	inherited map[string]string
	setups    map[string]SetupRoutine

	maintenance         *scheduler.Scheduler
	maintenanceInterval time.Duration
	maintenanceMu       sync.Mutex
	maintenanceHandle   *scheduler.Handle

	dispatcher *Dispatcher
	dispatchMu sync.Mutex

	state      *atomic.Int32
	delivering *atomic.Bool

	pending *syncmap.SyncMap[nucleus.UOID, *pendingReply]
}

// Option configures a Cell at construction time.
type Option func(*Cell)

// WithLogger sets the base logger; the cell binds its identity to it.
func WithLogger(logger log.Logger) Option {
	return func(c *Cell) { c.logger = logger }
}

// WithDomain sets the domain the cell is addressable in.
func WithDomain(domain string) Option {
	return func(c *Cell) { c.domain = domain }
}

// WithFriendlyName overrides the name used in diagnostic output. It
// defaults to the cell name.
func WithFriendlyName(name string) Option {
	return func(c *Cell) { c.friendlyName = name }
}

// WithDeliverer wires the transport capability used to send replies
// and outbound requests.
func WithDeliverer(deliverer nucleus.Deliverer) Option {
	return func(c *Cell) { c.deliverer = deliverer }
}

// WithInheritedContext supplies the shared, externally populated
// option-name to value mapping consulted during option resolution.
func WithInheritedContext(inherited map[string]string) Option {
	return func(c *Cell) { c.inherited = inherited }
}

// WithSetupRoutines registers the named routines a leading "!name"
// argument may designate.
func WithSetupRoutines(setups map[string]SetupRoutine) Option {
	return func(c *Cell) { c.setups = setups }
}

// WithScheduler wires the process-wide maintenance scheduler.
func WithScheduler(maintenance *scheduler.Scheduler) Option {
	return func(c *Cell) { c.maintenance = maintenance }
}

// WithMaintenanceInterval overrides the maintenance cadence.
func WithMaintenanceInterval(interval time.Duration) Option {
	return func(c *Cell) { c.maintenanceInterval = interval }
}

// New constructs a Cell in the Created state. The defined-setup
// designator is stripped from the arguments, the behavior's declared
// options are resolved, and the behavior is registered as a message
// listener when it implements Listener. A failed option resolution
// aborts construction.
func New(name string, arguments *args.Args, behavior Behavior, opts ...Option) (*Cell, error) {
	if arguments == nil {
		arguments = args.New(nil, nil)
	}

	c := &Cell{
		name:                name,
		domain:              "local",
		args:                arguments.StripDefinedSetup(),
		definedSetup:        arguments.DefinedSetup(),
		behavior:            behavior,
		logger:              log.DefaultLogger,
		maintenanceInterval: DefaultMaintenanceInterval,
		dispatcher:          NewDispatcher(),
		state:               atomic.NewInt32(int32(StateCreated)),
		delivering:          atomic.NewBool(false),
		pending:             syncmap.New[nucleus.UOID, *pendingReply](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.friendlyName == "" {
		c.friendlyName = c.name
	}

	c.cdc = cdc.New(c.name, c.domain, c.logger)
	c.logger = c.cdc.Logger()

	if declarer, ok := behavior.(option.Declarer); ok {
		if err := option.Resolve(declarer, c.args, c.inherited, c.logger); err != nil {
			return nil, fmt.Errorf("cell %q: %w", name, err)
		}
	}
	if listener, ok := behavior.(Listener); ok {
		c.dispatcher.AddListener(listener)
	}
	return c, nil
}

// Name returns the cell name.
func (c *Cell) Name() string {
	return c.name
}

// FriendlyName returns the name used in diagnostic output.
func (c *Cell) FriendlyName() string {
	return c.friendlyName
}

// Domain returns the domain the cell is addressable in.
func (c *Cell) Domain() string {
	return c.domain
}

// Address returns the cell's address.
func (c *Cell) Address() *nucleus.Address {
	return nucleus.NewAddress(c.name, c.domain)
}

// Args returns the construction arguments with the defined-setup
// designator stripped.
func (c *Cell) Args() *args.Args {
	return c.args
}

// State returns the lifecycle state of the cell.
func (c *Cell) State() State {
	return State(c.state.Load())
}

// DeliveryEnabled reports whether inbound envelopes are dispatched.
func (c *Cell) DeliveryEnabled() bool {
	return c.delivering.Load()
}

// Logger returns the cell's identity-bound logger.
func (c *Cell) Logger() log.Logger {
	return c.logger
}

// AddListener registers a message listener with the cell.
func (c *Cell) AddListener(listener Listener) {
	c.dispatcher.AddListener(listener)
}

// RemoveListener removes a listener previously added with AddListener.
func (c *Cell) RemoveListener(listener Listener) {
	c.dispatcher.RemoveListener(listener)
}

// DescribeOptions renders the report of every loggable option's
// current value, for diagnostic introspection without re-resolving.
func (c *Cell) DescribeOptions() string {
	if declarer, ok := c.behavior.(option.Declarer); ok {
		return option.Describe(declarer)
	}
	return ""
}

// Start runs the initialization sequence on a dedicated goroutine
// carrying the cell's diagnostic identity and blocks until it
// completed, failed, or the given context was canceled. The sequence
// is: defined setup, the behavior's Init hook, then registration of
// the maintenance task. On success message delivery is enabled as the
// last action, so no envelope is ever dispatched against a
// half-initialized cell.
//
// When initialization fails or is interrupted, delivery is enabled
// anyway — so the cell can be cleanly killed through normal channels —
// the cell is terminated, and the failure is returned to the caller
// with the original error in its chain.
func (c *Cell) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(StateCreated), int32(StateInitializing)) {
		return gerrors.ErrAlreadyStarted
	}

	done := make(chan error, 1)
	go c.cdc.Run(ctx, func(ictx context.Context) {
		done <- c.initialize(ictx)
	})

	select {
	case <-ctx.Done():
		c.logger.Info("cell initialization was interrupted")
		c.enableDelivery()
		_ = c.Stop(context.WithoutCancel(ctx))
		return fmt.Errorf("cell %q: %w: %w", c.name, gerrors.ErrInitInterrupted, ctx.Err())
	case err := <-done:
		if err != nil {
			c.logger.Errorf("failed to initialize cell: %v", err)
			c.enableDelivery()
			_ = c.Stop(context.WithoutCancel(ctx))
			return fmt.Errorf("cell %q: %w: %w", c.name, gerrors.ErrInitFailure, err)
		}
	}

	c.enableDelivery()
	c.state.Store(int32(StateRunning))
	c.logger.Infof("cell %s started", c.friendlyName)
	return nil
}

// Stop terminates the cell: the maintenance task is cancelled first,
// outstanding pending replies are failed, then the behavior's own
// teardown logic runs. Stopping an already terminating or terminated
// cell is a no-op.
func (c *Cell) Stop(ctx context.Context) error {
	for {
		current := c.state.Load()
		if current == int32(StateTerminating) || current == int32(StateTerminated) {
			return nil
		}
		if c.state.CompareAndSwap(current, int32(StateTerminating)) {
			break
		}
	}

	c.cancelMaintenance()
	c.failPending(gerrors.ErrCellStopped)

	if cleaner, ok := c.behavior.(Cleaner); ok {
		c.cdc.Run(ctx, cleaner.CleanUp)
	}

	c.delivering.Store(false)
	c.state.Store(int32(StateTerminated))
	c.logger.Infof("cell %s terminated", c.friendlyName)
	return nil
}

// Handle is the dispatch entry point: it routes the envelope to the
// registered listeners and lets the reply path decide the outbound
// action. The dispatched result is also returned to the caller. An
// envelope arriving before delivery is enabled is rejected.
func (c *Cell) Handle(envelope *nucleus.Envelope) (any, error) {
	if !c.delivering.Load() {
		return nil, gerrors.ErrNotStarted
	}

	// one in-flight dispatch per cell
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	wasReply := isReply(envelope)
	if wasReply {
		c.completePending(envelope)
	}

	uoid := envelope.UOID()
	result := c.dispatcher.Dispatch(envelope)
	c.sendReply(envelope, uoid, result, wasReply)
	return result, nil
}

// initialize runs on the dedicated initialization goroutine.
func (c *Cell) initialize(ctx context.Context) error {
	if err := c.executeDefinedSetup(ctx); err != nil {
		return err
	}
	if err := c.behavior.Init(ctx); err != nil {
		return err
	}
	return c.scheduleMaintenance()
}

// executeDefinedSetup runs the routine designated with a leading
// "!name" construction argument, if any.
func (c *Cell) executeDefinedSetup(ctx context.Context) error {
	if c.definedSetup == "" {
		return nil
	}
	routine, ok := c.setups[c.definedSetup]
	if !ok {
		return fmt.Errorf("%w: %s", gerrors.ErrUndefinedSetup, c.definedSetup)
	}
	if err := routine(ctx); err != nil {
		return fmt.Errorf("defined setup %q: %w", c.definedSetup, err)
	}
	return nil
}

// scheduleMaintenance registers the cell's maintenance task with the
// shared scheduler. Scheduling twice without an intervening
// cancellation is a state error. A cell killed while still
// initializing skips registration instead of leaking a task.
func (c *Cell) scheduleMaintenance() error {
	if c.maintenance == nil {
		return nil
	}

	c.maintenanceMu.Lock()
	defer c.maintenanceMu.Unlock()
	if c.maintenanceHandle != nil {
		return gerrors.ErrMaintenanceRunning
	}
	if c.state.Load() >= int32(StateTerminating) {
		return nil
	}

	handle, err := c.maintenance.Schedule(c.name, c.maintenanceTick, c.maintenanceInterval)
	if err != nil {
		return err
	}
	c.maintenanceHandle = handle
	return nil
}

// cancelMaintenance cancels the maintenance task. No task present is a
// no-op, not an error.
func (c *Cell) cancelMaintenance() {
	c.maintenanceMu.Lock()
	defer c.maintenanceMu.Unlock()
	if c.maintenanceHandle != nil {
		c.maintenance.Cancel(c.maintenanceHandle)
		c.maintenanceHandle = nil
	}
}

// maintenanceTick runs on the shared scheduler goroutine with the
// cell's diagnostic context installed for its duration.
func (c *Cell) maintenanceTick(ctx context.Context) {
	c.cdc.Run(ctx, func(context.Context) {
		c.expireStaleReplies(time.Now())
	})
}

// enableDelivery turns on envelope dispatch.
func (c *Cell) enableDelivery() {
	c.delivering.Store(true)
}

// isReply reports whether the envelope already travels back to a
// requester: either by direction or because its payload is a vehicle
// marked as a reply.
func isReply(envelope *nucleus.Envelope) bool {
	if envelope.IsReverse() {
		return true
	}
	payload, ok := envelope.Payload().(vehicle.Vehicle)
	return ok && payload.IsReply()
}
