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
	"fmt"
	"reflect"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/hivegrid/cells/nucleus"
)

// Handler processes one payload delivered inside an envelope. A nil
// result means the handler has nothing to answer. A returned error is
// not fatal to the dispatch path: it becomes the dispatch result so
// that the reply path can translate it into a failure status.
type Handler func(envelope *nucleus.Envelope, payload any) (any, error)

// Handlers is the registry of payload types one listener can handle.
// Entries are added with On; the payload's runtime type selects the
// handler, with exact types preferred over registered interfaces.
type Handlers struct {
	entries map[reflect.Type]Handler
}

// NewHandlers creates an empty handler registry.
func NewHandlers() *Handlers {
	return &Handlers{entries: make(map[reflect.Type]Handler)}
}

// On registers a handler for payloads of type T. T may be an interface
// type, in which case the handler accepts every payload implementing
// it. Registering T twice replaces the earlier handler.
func On[T any](handlers *Handlers, fn func(envelope *nucleus.Envelope, payload T) (any, error)) *Handlers {
	key := reflect.TypeOf((*T)(nil)).Elem()
	handlers.entries[key] = func(envelope *nucleus.Envelope, payload any) (any, error) {
		return fn(envelope, payload.(T))
	}
	return handlers
}

// Listener is implemented by objects that want envelopes dispatched to
// them. The handling capability is declared once; the dispatcher reads
// it at registration time.
type Listener interface {
	Handlers() *Handlers
}

// ReplyConflictError reports that two listeners replied to one
// request. This is a programming defect: the dispatch path panics with
// it instead of sending a second reply.
type ReplyConflictError struct {
	UOID   nucleus.UOID
	Reason string
}

// Error returns the description of the conflict.
func (e *ReplyConflictError) Error() string {
	return fmt.Sprintf("reply conflict on %s: %s", e.UOID, e.Reason)
}

// registration pins one listener together with a snapshot of its
// declared handlers.
type registration struct {
	listener Listener
	handlers map[reflect.Type]Handler
}

// Dispatcher routes an inbound payload to the registered listeners
// whose handling capability accepts the payload's type. It is stateful
// only in its listener registry; payload content never touches it.
type Dispatcher struct {
	mu            sync.RWMutex
	registrations []*registration
	// exactTypes is the union of non-interface payload types any
	// listener handles, kept for a cheap rejection test.
	exactTypes     mapset.Set[reflect.Type]
	interfaceTypes mapset.Set[reflect.Type]
}

// NewDispatcher creates a Dispatcher with no listeners.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		exactTypes:     mapset.NewSet[reflect.Type](),
		interfaceTypes: mapset.NewSet[reflect.Type](),
	}
}

// AddListener registers a listener. The listener's handler declaration
// is read once; later mutation of the returned Handlers is not seen.
func (d *Dispatcher) AddListener(listener Listener) {
	handlers := listener.Handlers()
	snapshot := make(map[reflect.Type]Handler, len(handlers.entries))
	for key, handler := range handlers.entries {
		snapshot[key] = handler
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.registrations = append(d.registrations, &registration{
		listener: listener,
		handlers: snapshot,
	})
	d.index()
}

// RemoveListener removes a listener previously added with AddListener.
func (d *Dispatcher) RemoveListener(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// never compact in place: Dispatch may still iterate a snapshot
	kept := make([]*registration, 0, len(d.registrations))
	for _, reg := range d.registrations {
		if reg.listener != listener {
			kept = append(kept, reg)
		}
	}
	d.registrations = kept
	d.index()
}

// HandledTypes returns the set of payload types the registered
// listeners accept, for diagnostic introspection.
func (d *Dispatcher) HandledTypes() mapset.Set[reflect.Type] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.exactTypes.Union(d.interfaceTypes)
}

// Dispatch routes the envelope's payload to every listener that can
// handle its type and returns the single produced result, or nil when
// no listener matched or none produced a result. A handler error
// becomes the result. More than one produced result is a defect and
// panics with a ReplyConflictError.
func (d *Dispatcher) Dispatch(envelope *nucleus.Envelope) any {
	payload := envelope.Payload()
	if payload == nil {
		return nil
	}
	payloadType := reflect.TypeOf(payload)

	d.mu.RLock()
	registrations := d.registrations
	if !d.exactTypes.Contains(payloadType) && d.interfaceTypes.IsEmpty() {
		d.mu.RUnlock()
		return nil
	}
	d.mu.RUnlock()

	var results []any
	for _, reg := range registrations {
		handler := reg.match(payloadType)
		if handler == nil {
			continue
		}
		result, err := handler(envelope, payload)
		if err != nil {
			result = err
		}
		if result != nil {
			results = append(results, result)
		}
	}

	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	default:
		panic(&ReplyConflictError{
			UOID:   envelope.UOID(),
			Reason: fmt.Sprintf("%d listeners produced a result for one request", len(results)),
		})
	}
}

// match selects the listener's handler for the payload type: the exact
// type wins, otherwise the first registered interface the type
// implements.
func (r *registration) match(payloadType reflect.Type) Handler {
	if handler, ok := r.handlers[payloadType]; ok {
		return handler
	}
	for key, handler := range r.handlers {
		if key.Kind() == reflect.Interface && payloadType.Implements(key) {
			return handler
		}
	}
	return nil
}

// index rebuilds the type unions. Callers hold the write lock.
func (d *Dispatcher) index() {
	exact := mapset.NewSet[reflect.Type]()
	ifaces := mapset.NewSet[reflect.Type]()
	for _, reg := range d.registrations {
		for key := range reg.handlers {
			if key.Kind() == reflect.Interface {
				ifaces.Add(key)
				continue
			}
			exact.Add(key)
		}
	}
	d.exactTypes = exact
	d.interfaceTypes = ifaces
}
