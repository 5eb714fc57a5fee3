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

// Package errors defines the sentinel errors shared by the cells
// runtime. Callers classify failures with errors.Is against these
// values; richer context is added at the call site with fmt.Errorf and
// the %w verb.
package errors

import "errors"

var (
	// ErrNoRoute is returned by a Deliverer when the destination of an
	// envelope is unreachable. Replies failing with ErrNoRoute are
	// logged and dropped, never retried.
	ErrNoRoute = errors.New("no route to cell")

	// ErrNotStarted indicates that an envelope arrived before message
	// delivery was enabled for the cell.
	ErrNotStarted = errors.New("message delivery is not enabled")

	// ErrAlreadyStarted is returned when Start is called on a cell that
	// has left the Created state.
	ErrAlreadyStarted = errors.New("cell has already been started")

	// ErrInitFailure is returned when the cell's initialization hook
	// fails during startup. The failure is fatal to the cell, not to
	// the process.
	ErrInitFailure = errors.New("cell initialization failed")

	// ErrInitInterrupted is returned when the start request is canceled
	// while initialization is still in flight.
	ErrInitInterrupted = errors.New("cell initialization was interrupted")

	// ErrMaintenanceRunning is returned when a maintenance task is
	// scheduled twice without an intervening cancellation.
	ErrMaintenanceRunning = errors.New("maintenance task is already running")

	// ErrSchedulerNotStarted is returned when attempting to use the
	// maintenance scheduler before it has started.
	ErrSchedulerNotStarted = errors.New("maintenance scheduler has not started")

	// ErrRequiredOption is returned when a required option has no value
	// in the cell arguments, the inherited context or the descriptor
	// default.
	ErrRequiredOption = errors.New("option is required")

	// ErrInvalidOptionValue is returned when an option value cannot be
	// converted to the kind of its bound attribute.
	ErrInvalidOptionValue = errors.New("invalid option value")

	// ErrUndefinedSetup is returned when the cell arguments designate a
	// setup routine that is not registered.
	ErrUndefinedSetup = errors.New("setup routine is not defined")

	// ErrRequestTimeout indicates that a pending reply was expired by
	// the maintenance task before the reply arrived.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrCellStopped indicates that the cell terminated while requests
	// were still waiting for replies.
	ErrCellStopped = errors.New("cell is terminating")

	// ErrNoDeliverer is returned when an outbound envelope is produced
	// but the cell was constructed without a delivery capability.
	ErrNoDeliverer = errors.New("no deliverer configured")
)
