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
	"fmt"
	"sync"

	gerrors "github.com/hivegrid/cells/errors"
	"github.com/hivegrid/cells/nucleus"
	"github.com/hivegrid/cells/vehicle"
)

// echoRequest is a vehicle payload used across the tests.
type echoRequest struct {
	vehicle.Base
	text string
}

// pingMessage is a plain, non-vehicle payload.
type pingMessage struct {
	seq int
}

// testBehavior is a configurable Behavior/Listener/Cleaner fixture.
type testBehavior struct {
	handlers *Handlers
	init     func(ctx context.Context) error
	cleanup  func(ctx context.Context)
}

func newTestBehavior() *testBehavior {
	return &testBehavior{handlers: NewHandlers()}
}

func (b *testBehavior) Init(ctx context.Context) error {
	if b.init != nil {
		return b.init(ctx)
	}
	return nil
}

func (b *testBehavior) CleanUp(ctx context.Context) {
	if b.cleanup != nil {
		b.cleanup(ctx)
	}
}

func (b *testBehavior) Handlers() *Handlers {
	return b.handlers
}

// recordingDeliverer captures every envelope handed to it.
type recordingDeliverer struct {
	mu   sync.Mutex
	sent []*nucleus.Envelope
	err  error
}

func (r *recordingDeliverer) Send(envelope *nucleus.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, envelope)
	return nil
}

func (r *recordingDeliverer) envelopes() []*nucleus.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*nucleus.Envelope(nil), r.sent...)
}

// loopbackDeliverer routes envelopes between in-process cells by
// destination address, failing with no-route for unknown addresses.
type loopbackDeliverer struct {
	mu    sync.Mutex
	cells map[string]*Cell
}

func newLoopbackDeliverer() *loopbackDeliverer {
	return &loopbackDeliverer{cells: make(map[string]*Cell)}
}

func (l *loopbackDeliverer) register(c *Cell) {
	l.mu.Lock()
	l.cells[c.Address().String()] = c
	l.mu.Unlock()
}

func (l *loopbackDeliverer) Send(envelope *nucleus.Envelope) error {
	l.mu.Lock()
	target, ok := l.cells[envelope.Destination().String()]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", gerrors.ErrNoRoute, envelope.Destination())
	}
	_, err := target.Handle(envelope)
	return err
}

// selfDeliveringReply is a Reply fixture that records its delegation.
type selfDeliveringReply struct {
	mu        sync.Mutex
	delivered *nucleus.Envelope
}

func (r *selfDeliveringReply) Deliver(_ nucleus.Deliverer, envelope *nucleus.Envelope) error {
	r.mu.Lock()
	r.delivered = envelope
	r.mu.Unlock()
	return nil
}

func (r *selfDeliveringReply) deliveredEnvelope() *nucleus.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delivered
}
