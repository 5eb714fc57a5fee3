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

// Package cdc carries the diagnostic context of a cell: the identity
// that makes log lines and externally-supplied hooks attributable to
// the cell that runs them. The context is passed explicitly — it is
// installed on a context.Context before running a hook and goes out of
// scope with it, on every exit path.
package cdc

import (
	"context"

	"github.com/hivegrid/cells/log"
)

type contextKey struct{}

// CDC is the diagnostic context of one cell: its identity plus a
// logger binding stamped with that identity.
type CDC struct {
	cell   string
	domain string
	logger log.Logger
}

// New captures a diagnostic context for the given cell identity. The
// returned context binds the logger so that every line it emits names
// the cell and domain.
func New(cell, domain string, logger log.Logger) *CDC {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &CDC{
		cell:   cell,
		domain: domain,
		logger: logger.With("cell", cell, "domain", domain),
	}
}

// Cell returns the cell name of the identity.
func (c *CDC) Cell() string {
	return c.cell
}

// Domain returns the domain name of the identity.
func (c *CDC) Domain() string {
	return c.domain
}

// Logger returns the logger bound to the identity.
func (c *CDC) Logger() log.Logger {
	return c.logger
}

// Apply installs the diagnostic context on the given context.
func (c *CDC) Apply(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// Run executes fn with the diagnostic context installed. The identity
// is scoped to the derived context, so it is cleared when fn returns,
// whether normally or by panic.
func (c *CDC) Run(ctx context.Context, fn func(ctx context.Context)) {
	fn(c.Apply(ctx))
}

// FromContext returns the diagnostic context installed on ctx, if any.
func FromContext(ctx context.Context) (*CDC, bool) {
	c, ok := ctx.Value(contextKey{}).(*CDC)
	return c, ok
}

// Logger returns the logger of the diagnostic context installed on
// ctx, or the discard logger when none is installed.
func Logger(ctx context.Context) log.Logger {
	if c, ok := FromContext(ctx); ok {
		return c.logger
	}
	return log.DiscardLogger
}
