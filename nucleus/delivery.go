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

package nucleus

// Deliverer is the transport capability consumed by the runtime. Send
// hands an envelope to the routing substrate and fails with an error
// wrapping errors.ErrNoRoute when the destination is unreachable. The
// runtime never retries a failed send.
type Deliverer interface {
	Send(envelope *Envelope) error
}

// DelivererFunc adapts a plain function to the Deliverer interface.
type DelivererFunc func(envelope *Envelope) error

// Send calls the wrapped function.
func (f DelivererFunc) Send(envelope *Envelope) error {
	return f(envelope)
}

// Reply is a deliverable result that manages its own, possibly
// asynchronous, delivery instead of being sent back immediately as a
// plain value. When a dispatch result implements Reply, the runtime
// reverts the envelope and delegates delivery to the result.
type Reply interface {
	Deliver(deliverer Deliverer, envelope *Envelope) error
}
