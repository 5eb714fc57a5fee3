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

package cell

import (
	"context"
	"time"

	gerrors "github.com/hivegrid/cells/errors"
	"github.com/hivegrid/cells/nucleus"
)

// askResult carries the outcome of one outstanding request.
type askResult struct {
	envelope *nucleus.Envelope
	err      error
}

// pendingReply is one outstanding request waiting for its reply. The
// cell's maintenance task expires entries past their deadline.
type pendingReply struct {
	deadline time.Time
	done     chan askResult
}

// Ask sends the envelope through the cell's deliverer and blocks until
// the matching reply arrives at Handle, the timeout expires on a
// maintenance tick, the context is canceled, or the cell terminates.
// Replies are matched by the request's UOID.
func (c *Cell) Ask(ctx context.Context, envelope *nucleus.Envelope, timeout time.Duration) (*nucleus.Envelope, error) {
	if c.deliverer == nil {
		return nil, gerrors.ErrNoDeliverer
	}
	if !c.delivering.Load() {
		return nil, gerrors.ErrNotStarted
	}

	if envelope.Source() == nil {
		envelope.SetSource(c.Address())
	}

	entry := &pendingReply{
		deadline: time.Now().Add(timeout),
		done:     make(chan askResult, 1),
	}
	uoid := envelope.UOID()
	c.pending.Set(uoid, entry)

	if err := c.deliverer.Send(envelope); err != nil {
		c.pending.Delete(uoid)
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.pending.Delete(uoid)
		return nil, ctx.Err()
	case result := <-entry.done:
		return result.envelope, result.err
	}
}

// completePending hands an inbound reply envelope to the request
// waiting for it, if any. The reply's last UOID names the request.
func (c *Cell) completePending(envelope *nucleus.Envelope) {
	if entry, ok := c.pending.Take(envelope.LastUOID()); ok {
		entry.done <- askResult{envelope: envelope}
	}
}

// expireStaleReplies fails every outstanding request whose deadline
// passed. Called from the maintenance task.
func (c *Cell) expireStaleReplies(now time.Time) {
	var expired []nucleus.UOID
	c.pending.Range(func(uoid nucleus.UOID, entry *pendingReply) {
		if entry.deadline.Before(now) {
			expired = append(expired, uoid)
		}
	})
	for _, uoid := range expired {
		if entry, ok := c.pending.Take(uoid); ok {
			c.logger.Warnf("request %s timed out waiting for a reply", uoid)
			entry.done <- askResult{err: gerrors.ErrRequestTimeout}
		}
	}
}

// failPending fails every outstanding request with the given error.
// Called during teardown.
func (c *Cell) failPending(err error) {
	var all []nucleus.UOID
	c.pending.Range(func(uoid nucleus.UOID, _ *pendingReply) {
		all = append(all, uoid)
	})
	for _, uoid := range all {
		if entry, ok := c.pending.Take(uoid); ok {
			entry.done <- askResult{err: err}
		}
	}
}
