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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/hivegrid/cells/errors"
	"github.com/hivegrid/cells/log"
	"github.com/hivegrid/cells/nucleus"
	"github.com/hivegrid/cells/vehicle"
)

// startCell constructs and starts a cell around the given behavior,
// stopping it when the test finishes.
func startCell(t *testing.T, name string, behavior Behavior, opts ...Option) *Cell {
	t.Helper()
	ctx := context.TODO()
	opts = append([]Option{WithLogger(log.DiscardLogger)}, opts...)
	c, err := New(name, nil, behavior, opts...)
	require.NoError(t, err)
	require.NoError(t, c.Start(ctx))
	t.Cleanup(func() {
		_ = c.Stop(context.TODO())
	})
	return c
}

// inboundRequest builds a forward envelope from a client address to the
// given cell, carrying the given payload.
func inboundRequest(c *Cell, payload any) *nucleus.Envelope {
	envelope := nucleus.NewEnvelope(payload, c.Address())
	envelope.SetSource(nucleus.NewAddress("client", "local"))
	return envelope
}

func TestSendReply(t *testing.T) {
	t.Run("With a plain result on a reply-required vehicle", func(t *testing.T) {
		behavior := newTestBehavior()
		On(behavior.handlers, func(_ *nucleus.Envelope, payload *echoRequest) (any, error) {
			return "echo:" + payload.text, nil
		})
		deliverer := &recordingDeliverer{}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		request := &echoRequest{text: "hi"}
		request.SetReplyRequired(true)
		envelope := inboundRequest(c, request)
		requestUOID := envelope.UOID()

		result, err := c.Handle(envelope)
		require.NoError(t, err)
		assert.Equal(t, "echo:hi", result)

		sent := deliverer.envelopes()
		require.Len(t, sent, 1)
		reply := sent[0]
		assert.True(t, reply.IsReverse())
		assert.Equal(t, "echo:hi", reply.Payload())
		assert.Equal(t, "client@local", reply.Destination().String())
		assert.Equal(t, c.Address().String(), reply.Source().String())
		assert.Equal(t, requestUOID, reply.LastUOID())
	})

	t.Run("With no reply required the result is suppressed", func(t *testing.T) {
		behavior := newTestBehavior()
		On(behavior.handlers, func(_ *nucleus.Envelope, payload *echoRequest) (any, error) {
			return "echo:" + payload.text, nil
		})
		deliverer := &recordingDeliverer{}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		result, err := c.Handle(inboundRequest(c, &echoRequest{text: "hi"}))
		require.NoError(t, err)
		assert.Equal(t, "echo:hi", result)
		assert.Empty(t, deliverer.envelopes())
	})

	t.Run("With a status error the vehicle carries the failure", func(t *testing.T) {
		behavior := newTestBehavior()
		On(behavior.handlers, func(_ *nucleus.Envelope, _ *echoRequest) (any, error) {
			return nil, vehicle.NewStatusError(10006, "file not found")
		})
		deliverer := &recordingDeliverer{}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		request := &echoRequest{}
		request.SetReplyRequired(true)
		_, err := c.Handle(inboundRequest(c, request))
		require.NoError(t, err)

		sent := deliverer.envelopes()
		require.Len(t, sent, 1)
		assert.Same(t, request, sent[0].Payload())
		assert.True(t, request.IsReply())
		assert.False(t, request.Succeeded())
		assert.EqualValues(t, 10006, request.Code())
		assert.Equal(t, "file not found", request.FailureMessage())
	})

	t.Run("With an invalid argument error the error is the payload", func(t *testing.T) {
		behavior := newTestBehavior()
		rejection := vehicle.NewInvalidArgumentError("unknown flag %q", "-x")
		On(behavior.handlers, func(_ *nucleus.Envelope, _ *echoRequest) (any, error) {
			return nil, rejection
		})
		deliverer := &recordingDeliverer{}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		request := &echoRequest{}
		request.SetReplyRequired(true)
		_, err := c.Handle(inboundRequest(c, request))
		require.NoError(t, err)

		assert.EqualValues(t, vehicle.StatusInvalidArgs, request.Code())
		assert.Equal(t, `unknown flag "-x"`, request.FailureMessage())

		sent := deliverer.envelopes()
		require.Len(t, sent, 1)
		assert.Same(t, rejection, sent[0].Payload())
	})

	t.Run("With an unexpected error the vehicle carries the failure", func(t *testing.T) {
		behavior := newTestBehavior()
		On(behavior.handlers, func(_ *nucleus.Envelope, _ *echoRequest) (any, error) {
			return nil, errors.New("disk on fire")
		})
		deliverer := &recordingDeliverer{}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		request := &echoRequest{}
		request.SetReplyRequired(true)
		_, err := c.Handle(inboundRequest(c, request))
		require.NoError(t, err)

		sent := deliverer.envelopes()
		require.Len(t, sent, 1)
		assert.Same(t, request, sent[0].Payload())
		assert.EqualValues(t, vehicle.StatusUnexpected, request.Code())
		assert.Equal(t, "disk on fire", request.FailureMessage())
	})

	t.Run("With a self-delivering result sent despite no reply required", func(t *testing.T) {
		reply := &selfDeliveringReply{}
		behavior := newTestBehavior()
		On(behavior.handlers, func(_ *nucleus.Envelope, _ *echoRequest) (any, error) {
			return reply, nil
		})
		deliverer := &recordingDeliverer{}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		_, err := c.Handle(inboundRequest(c, &echoRequest{}))
		require.NoError(t, err)

		delivered := reply.deliveredEnvelope()
		require.NotNil(t, delivered)
		assert.True(t, delivered.IsReverse())
		assert.Empty(t, deliverer.envelopes())
	})

	t.Run("With a non-vehicle payload the result is always sent", func(t *testing.T) {
		behavior := newTestBehavior()
		On(behavior.handlers, func(_ *nucleus.Envelope, payload *pingMessage) (any, error) {
			return &pingMessage{seq: payload.seq + 1}, nil
		})
		deliverer := &recordingDeliverer{}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		_, err := c.Handle(inboundRequest(c, &pingMessage{seq: 1}))
		require.NoError(t, err)

		sent := deliverer.envelopes()
		require.Len(t, sent, 1)
		pong, ok := sent[0].Payload().(*pingMessage)
		require.True(t, ok)
		assert.Equal(t, 2, pong.seq)
	})

	t.Run("With no route the reply is dropped", func(t *testing.T) {
		behavior := newTestBehavior()
		On(behavior.handlers, func(_ *nucleus.Envelope, _ *pingMessage) (any, error) {
			return "pong", nil
		})
		deliverer := &recordingDeliverer{err: fmt.Errorf("%w: client@local", gerrors.ErrNoRoute)}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		result, err := c.Handle(inboundRequest(c, &pingMessage{}))
		require.NoError(t, err)
		assert.Equal(t, "pong", result)
		assert.Empty(t, deliverer.envelopes())
	})

	t.Run("With no deliverer the reply is dropped", func(t *testing.T) {
		behavior := newTestBehavior()
		On(behavior.handlers, func(_ *nucleus.Envelope, _ *pingMessage) (any, error) {
			return "pong", nil
		})
		c := startCell(t, "echo", behavior)

		result, err := c.Handle(inboundRequest(c, &pingMessage{}))
		require.NoError(t, err)
		assert.Equal(t, "pong", result)
	})

	t.Run("With a listener that already claimed the envelope", func(t *testing.T) {
		behavior := newTestBehavior()
		On(behavior.handlers, func(envelope *nucleus.Envelope, _ *pingMessage) (any, error) {
			envelope.RevertDirection()
			return "claimed and answered", nil
		})
		deliverer := &recordingDeliverer{}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		envelope := inboundRequest(c, &pingMessage{})
		recovered := func() (r any) {
			defer func() { r = recover() }()
			_, _ = c.Handle(envelope)
			return
		}()

		require.NotNil(t, recovered)
		conflict, ok := recovered.(*ReplyConflictError)
		require.True(t, ok)
		assert.Contains(t, conflict.Reason, "already replied")
	})

	t.Run("With an inbound reply never answered again", func(t *testing.T) {
		behavior := newTestBehavior()
		On(behavior.handlers, func(_ *nucleus.Envelope, _ *echoRequest) (any, error) {
			return "echo", nil
		})
		deliverer := &recordingDeliverer{}
		c := startCell(t, "echo", behavior, WithDeliverer(deliverer))

		request := &echoRequest{}
		request.SetReplyRequired(true)
		request.MarkReply()
		result, err := c.Handle(inboundRequest(c, request))
		require.NoError(t, err)
		assert.Equal(t, "echo", result)
		assert.Empty(t, deliverer.envelopes())
	})
}
