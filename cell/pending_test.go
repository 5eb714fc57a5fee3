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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/hivegrid/cells/errors"
	"github.com/hivegrid/cells/nucleus"
)

func TestAsk(t *testing.T) {
	ctx := context.TODO()

	t.Run("With a round trip between two cells", func(t *testing.T) {
		router := newLoopbackDeliverer()

		serverBehavior := newTestBehavior()
		On(serverBehavior.handlers, func(_ *nucleus.Envelope, payload *echoRequest) (any, error) {
			return "echo:" + payload.text, nil
		})
		server := startCell(t, "server", serverBehavior, WithDeliverer(router))
		client := startCell(t, "client", newTestBehavior(), WithDeliverer(router))
		router.register(server)
		router.register(client)

		request := &echoRequest{text: "hi"}
		request.SetReplyRequired(true)
		reply, err := client.Ask(ctx, nucleus.NewEnvelope(request, server.Address()), time.Minute)
		require.NoError(t, err)
		require.NotNil(t, reply)
		assert.Equal(t, "echo:hi", reply.Payload())
		assert.True(t, reply.IsReverse())
		assert.Equal(t, client.Address().String(), reply.Destination().String())
	})

	t.Run("With no route to the destination", func(t *testing.T) {
		router := newLoopbackDeliverer()
		client := startCell(t, "client", newTestBehavior(), WithDeliverer(router))
		router.register(client)

		_, err := client.Ask(ctx, nucleus.NewEnvelope(&pingMessage{}, nucleus.NewAddress("ghost", "local")), time.Minute)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrNoRoute)
		assert.Zero(t, client.pending.Len())
	})

	t.Run("With no deliverer", func(t *testing.T) {
		client := startCell(t, "client", newTestBehavior())
		_, err := client.Ask(ctx, nucleus.NewEnvelope(&pingMessage{}, nucleus.NewAddress("server", "local")), time.Minute)
		assert.ErrorIs(t, err, gerrors.ErrNoDeliverer)
	})

	t.Run("With a canceled context", func(t *testing.T) {
		router := newLoopbackDeliverer()
		server := startCell(t, "server", newTestBehavior(), WithDeliverer(router))
		client := startCell(t, "client", newTestBehavior(), WithDeliverer(router))
		router.register(server)
		router.register(client)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		// the server has no handler, so no reply ever arrives
		_, err := client.Ask(cctx, nucleus.NewEnvelope(&pingMessage{}, server.Address()), time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, client.pending.Len())
	})

	t.Run("With the maintenance sweep expiring a stale request", func(t *testing.T) {
		router := newLoopbackDeliverer()
		server := startCell(t, "server", newTestBehavior(), WithDeliverer(router))
		client := startCell(t, "client", newTestBehavior(), WithDeliverer(router))
		router.register(server)
		router.register(client)

		errCh := make(chan error, 1)
		go func() {
			_, err := client.Ask(ctx, nucleus.NewEnvelope(&pingMessage{}, server.Address()), 10*time.Millisecond)
			errCh <- err
		}()

		require.Eventually(t, func() bool {
			return client.pending.Len() == 1
		}, time.Second, 5*time.Millisecond)

		client.expireStaleReplies(time.Now().Add(time.Second))
		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, gerrors.ErrRequestTimeout)
		case <-time.After(time.Second):
			t.Fatal("request was not expired")
		}
		assert.Zero(t, client.pending.Len())
	})

	t.Run("With the sweep keeping requests inside their deadline", func(t *testing.T) {
		router := newLoopbackDeliverer()
		server := startCell(t, "server", newTestBehavior(), WithDeliverer(router))
		client := startCell(t, "client", newTestBehavior(), WithDeliverer(router))
		router.register(server)
		router.register(client)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = client.Ask(ctx, nucleus.NewEnvelope(&pingMessage{}, server.Address()), time.Hour)
		}()

		require.Eventually(t, func() bool {
			return client.pending.Len() == 1
		}, time.Second, 5*time.Millisecond)

		client.expireStaleReplies(time.Now())
		assert.Equal(t, 1, client.pending.Len())

		// release the waiter
		client.failPending(gerrors.ErrCellStopped)
		<-done
	})

	t.Run("With termination failing outstanding requests", func(t *testing.T) {
		router := newLoopbackDeliverer()
		server := startCell(t, "server", newTestBehavior(), WithDeliverer(router))
		client := startCell(t, "client", newTestBehavior(), WithDeliverer(router))
		router.register(server)
		router.register(client)

		errCh := make(chan error, 1)
		go func() {
			_, err := client.Ask(ctx, nucleus.NewEnvelope(&pingMessage{}, server.Address()), time.Hour)
			errCh <- err
		}()

		require.Eventually(t, func() bool {
			return client.pending.Len() == 1
		}, time.Second, 5*time.Millisecond)

		require.NoError(t, client.Stop(ctx))
		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, gerrors.ErrCellStopped)
		case <-time.After(time.Second):
			t.Fatal("request survived termination")
		}
	})

	t.Run("With a stopped cell rejecting new requests", func(t *testing.T) {
		router := newLoopbackDeliverer()
		client := startCell(t, "client", newTestBehavior(), WithDeliverer(router))
		require.NoError(t, client.Stop(ctx))

		_, err := client.Ask(ctx, nucleus.NewEnvelope(&pingMessage{}, nucleus.NewAddress("server", "local")), time.Minute)
		assert.ErrorIs(t, err, gerrors.ErrNotStarted)
	})
}
