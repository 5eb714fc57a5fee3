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

// Package nucleus holds the envelope model shared by all cells: the
// addressed, identified carrier of one message payload, the delivery
// capability consumed by the runtime, and the Reply contract for
// results that manage their own delivery.
//
// The canonical textual representation of an Address is:
//
//	<cell>@<domain>
package nucleus

// Address identifies a single cell within a domain.
type Address struct {
	cell   string
	domain string
}

// NewAddress creates an Address for the given cell and domain.
func NewAddress(cell, domain string) *Address {
	return &Address{cell: cell, domain: domain}
}

// Cell returns the cell name part of the address.
func (a *Address) Cell() string {
	return a.cell
}

// Domain returns the domain part of the address.
func (a *Address) Domain() string {
	return a.domain
}

// Equals compares two addresses field by field.
func (a *Address) Equals(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.cell == other.cell && a.domain == other.domain
}

// String returns the canonical cell@domain form.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	return a.cell + "@" + a.domain
}
