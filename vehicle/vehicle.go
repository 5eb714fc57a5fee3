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

// Package vehicle defines the payload subtype that can transport an
// outcome back to its requester: a reply-required flag plus an optional
// failure status made of a code and a message. Concrete message types
// embed Base and gain the Vehicle behavior.
package vehicle

import "fmt"

// Status codes stamped on a vehicle by the reply path when a handler
// fails. StatusOK is the zero value of a fresh vehicle.
const (
	StatusOK int32 = 0
	// StatusInvalidArgs marks a request rejected because its arguments
	// could not be accepted.
	StatusInvalidArgs int32 = 104
	// StatusUnexpected marks a request that failed with an error the
	// handler did not anticipate.
	StatusUnexpected int32 = 111
)

// Vehicle is the behavior of payloads that can carry an outcome back
// to the requester.
type Vehicle interface {
	// ReplyRequired reports whether the requester asked for a reply.
	ReplyRequired() bool
	// SetReplyRequired records whether the requester asks for a reply.
	SetReplyRequired(required bool)
	// IsReply reports whether this payload already is a reply.
	IsReply() bool
	// MarkReply flags this payload as a reply.
	MarkReply()
	// SetFailed stamps a failure status onto the vehicle.
	SetFailed(code int32, message string)
	// Code returns the failure status code, StatusOK when none.
	Code() int32
	// FailureMessage returns the failure message, "" when none.
	FailureMessage() string
	// Succeeded reports whether no failure status was stamped.
	Succeeded() bool
}

// Base is the embeddable implementation of Vehicle. The zero value is
// a forward, no-reply-required, succeeded vehicle.
type Base struct {
	replyRequired bool
	reply         bool
	code          int32
	message       string
}

// enforce compilation error
var _ Vehicle = (*Base)(nil)

// ReplyRequired reports whether the requester asked for a reply.
func (b *Base) ReplyRequired() bool {
	return b.replyRequired
}

// SetReplyRequired records whether the requester asks for a reply.
func (b *Base) SetReplyRequired(required bool) {
	b.replyRequired = required
}

// IsReply reports whether this payload already is a reply.
func (b *Base) IsReply() bool {
	return b.reply
}

// MarkReply flags this payload as a reply.
func (b *Base) MarkReply() {
	b.reply = true
}

// SetFailed stamps a failure status onto the vehicle.
func (b *Base) SetFailed(code int32, message string) {
	b.code = code
	b.message = message
}

// Code returns the failure status code, StatusOK when none.
func (b *Base) Code() int32 {
	return b.code
}

// FailureMessage returns the failure message, "" when none.
func (b *Base) FailureMessage() string {
	return b.message
}

// Succeeded reports whether no failure status was stamped.
func (b *Base) Succeeded() bool {
	return b.code == StatusOK
}

// StatusError is a recoverable domain error carrying its own status
// code. A handler returning a StatusError has the code and message
// copied onto the reply vehicle instead of crashing the dispatch path.
type StatusError struct {
	code    int32
	message string
}

// NewStatusError creates a StatusError with the given code and message.
func NewStatusError(code int32, message string) *StatusError {
	return &StatusError{code: code, message: message}
}

// Code returns the status code transported by the error.
func (e *StatusError) Code() int32 {
	return e.code
}

// Error returns the message transported by the error.
func (e *StatusError) Error() string {
	return e.message
}

// InvalidArgumentError rejects a request whose arguments cannot be
// accepted. The reply path maps it to StatusInvalidArgs.
type InvalidArgumentError struct {
	message string
}

// NewInvalidArgumentError creates an InvalidArgumentError.
func NewInvalidArgumentError(format string, v ...any) *InvalidArgumentError {
	return &InvalidArgumentError{message: fmt.Sprintf(format, v...)}
}

// Error returns the rejection message.
func (e *InvalidArgumentError) Error() string {
	return e.message
}
