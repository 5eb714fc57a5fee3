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
	"errors"
	"fmt"

	gerrors "github.com/hivegrid/cells/errors"
	"github.com/hivegrid/cells/nucleus"
	"github.com/hivegrid/cells/vehicle"
)

// sendReply decides whether and how the dispatch result travels back
// to the requester.
//
// Nothing is sent when no result was produced or the envelope was
// itself a reply. A result on an envelope whose UOID changed under the
// dispatch is a defect — a listener already claimed the envelope and
// replied — and panics. Vehicles transport handler errors back as a
// failure status; other results become the reply payload verbatim.
// Results implementing nucleus.Reply manage their own delivery. A send
// failing because no route exists is logged and dropped, never
// retried.
func (c *Cell) sendReply(envelope *nucleus.Envelope, uoid nucleus.UOID, result any, wasReply bool) {
	if result == nil || wasReply {
		return
	}

	if envelope.UOID() != uoid {
		panic(&ReplyConflictError{
			UOID:   uoid,
			Reason: fmt.Sprintf("a reply [%v] was produced, but the envelope UOID shows that another listener has already replied", result),
		})
	}

	if payload, ok := envelope.Payload().(vehicle.Vehicle); ok {
		// A vehicle marked as not requiring a reply may still expect
		// asynchronous processing on the serving side, so deliverable
		// Reply results are sent regardless of the flag.
		if _, deliverable := result.(nucleus.Reply); !payload.ReplyRequired() && !deliverable {
			return
		}

		switch failure := result.(type) {
		case *vehicle.StatusError:
			payload.SetFailed(failure.Code(), failure.Error())
			payload.MarkReply()
			result = payload
		case *vehicle.InvalidArgumentError:
			payload.SetFailed(vehicle.StatusInvalidArgs, failure.Error())
		case error:
			payload.SetFailed(vehicle.StatusUnexpected, failure.Error())
			payload.MarkReply()
			result = payload
		}
	}

	envelope.RevertDirection()

	var err error
	switch {
	case c.deliverer == nil:
		err = gerrors.ErrNoDeliverer
	default:
		if reply, ok := result.(nucleus.Reply); ok {
			err = reply.Deliver(c.deliverer, envelope)
		} else {
			envelope.SetPayload(result)
			err = c.deliverer.Send(envelope)
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, gerrors.ErrNoRoute):
		c.logger.Errorf("cannot deliver reply: no route to %s", envelope.Destination())
	default:
		c.logger.Errorf("cannot deliver reply to %s: %v", envelope.Destination(), err)
	}
}
