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

import "github.com/google/uuid"

// UOID is the unique operation identifier correlating a request
// envelope with its reply.
type UOID uuid.UUID

// NewUOID generates a fresh unique operation identifier.
func NewUOID() UOID {
	return UOID(uuid.New())
}

// String returns the textual form of the identifier.
func (u UOID) String() string {
	return uuid.UUID(u).String()
}

// Direction indicates whether an envelope travels from requester to
// receiver or back.
type Direction int8

const (
	// Forward marks an envelope traveling toward its destination.
	Forward Direction = iota
	// Reverse marks an envelope traveling back to its requester.
	Reverse
)

// String returns the text representation of the direction
func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Envelope carries one message payload between cells. The UOID stays
// fixed until a handler claims the envelope by reverting its direction;
// reverting assigns a fresh UOID and records the previous one so that
// replies can be correlated with their request.
type Envelope struct {
	uoid        UOID
	last        UOID
	payload     any
	source      *Address
	destination *Address
	direction   Direction
}

// NewEnvelope creates a forward envelope carrying the given payload to
// the given destination.
func NewEnvelope(payload any, destination *Address) *Envelope {
	return &Envelope{
		uoid:        NewUOID(),
		payload:     payload,
		destination: destination,
		direction:   Forward,
	}
}

// UOID returns the envelope's current unique operation identifier.
func (e *Envelope) UOID() UOID {
	return e.uoid
}

// LastUOID returns the identifier the envelope carried before its
// direction was last reverted. For a reply it names the request being
// answered; for a fresh envelope it is the zero UOID.
func (e *Envelope) LastUOID() UOID {
	return e.last
}

// Payload returns the message object carried by the envelope.
func (e *Envelope) Payload() any {
	return e.payload
}

// SetPayload replaces the message object carried by the envelope.
func (e *Envelope) SetPayload(payload any) {
	e.payload = payload
}

// Source returns the address the envelope came from.
func (e *Envelope) Source() *Address {
	return e.source
}

// SetSource records the address the envelope came from. The transport
// substrate stamps this when it accepts the envelope.
func (e *Envelope) SetSource(source *Address) {
	e.source = source
}

// Destination returns the address the envelope travels to.
func (e *Envelope) Destination() *Address {
	return e.destination
}

// Direction returns the direction the envelope travels in.
func (e *Envelope) Direction() Direction {
	return e.direction
}

// IsReverse reports whether the envelope travels back to its requester.
func (e *Envelope) IsReverse() bool {
	return e.direction == Reverse
}

// RevertDirection turns the envelope around: source and destination
// swap roles, the direction becomes Reverse, and a fresh UOID is
// assigned with the previous one kept for correlation. Claiming an
// envelope this way is what lets the runtime detect a second handler
// trying to answer the same request.
func (e *Envelope) RevertDirection() {
	e.source, e.destination = e.destination, e.source
	e.direction = Reverse
	e.last = e.uoid
	e.uoid = NewUOID()
}
