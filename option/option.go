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

// Package option implements declarative cell configuration. A cell
// type declares its options as bindings between a Descriptor and a
// configuration attribute; the resolver fills the attributes from the
// cell arguments, the inherited domain context, or the descriptor
// defaults. Cell types composed from embedded bases include the bases'
// bindings explicitly in their own declaration, so every composition
// layer contributes independent configuration.
//
// Attributes bound to options must not carry a default literal baked
// into the type: a pre-set value would be indistinguishable from a
// resolved one, silently defeating the resolver's absence detection.
package option

import (
	"encoding"
	"fmt"
	"math/big"

	"github.com/hivegrid/cells/internal/strconvx"
)

// Descriptor is the static declarative metadata of one configuration
// attribute. It is fixed at cell-type definition time and read once
// per cell instance during initialization.
type Descriptor struct {
	// Name of the option.
	Name string
	// Description is a one line description of the option.
	Description string
	// Default is the value used when the option is not specified,
	// given as a string.
	Default string
	// Unit of the value, if any, e.g. seconds.
	Unit string
	// Required marks a mandatory option.
	Required bool
	// Log states whether to log the resolved value during startup.
	// Disable for sensitive information.
	Log bool
}

// Value constrains the attribute types an option can bind to directly.
// Any other type can be bound through BindText when it implements
// encoding.TextUnmarshaler.
type Value interface {
	bool | string | int | int8 | int16 | int32 | int64 |
		float32 | float64 | *big.Int | *big.Float
}

// Binding ties a Descriptor to one configuration attribute of a cell
// instance. Bindings are created with Bind, BindRune or BindText and
// consumed by Resolve and Describe.
type Binding struct {
	Descriptor

	assign  func(text string) error
	current func() any
}

// Bind creates a Binding that converts the textual option value to the
// type of the target attribute and assigns it in place.
func Bind[T Value](descriptor Descriptor, target *T) Binding {
	kind := kindOf(target)
	return Binding{
		Descriptor: descriptor,
		assign: func(text string) error {
			value, err := strconvx.Convert(text, kind)
			if err != nil {
				return err
			}
			*target = value.(T)
			return nil
		},
		current: func() any { return *target },
	}
}

// BindRune creates a Binding for a character attribute. The first rune
// of the textual value is assigned.
func BindRune(descriptor Descriptor, target *rune) Binding {
	return Binding{
		Descriptor: descriptor,
		assign: func(text string) error {
			value, err := strconvx.Convert(text, strconvx.Rune)
			if err != nil {
				return err
			}
			*target = value.(rune)
			return nil
		},
		current: func() any { return string(*target) },
	}
}

// BindText creates a Binding for any attribute that knows how to
// construct itself from a string.
func BindText(descriptor Descriptor, target encoding.TextUnmarshaler) Binding {
	return Binding{
		Descriptor: descriptor,
		assign: func(text string) error {
			return target.UnmarshalText([]byte(text))
		},
		current: func() any { return target },
	}
}

// line renders the canonical option report line:
// "<description or name> set to <value>[ <unit>]".
func (b Binding) line() string {
	description := b.Description
	if description == "" {
		description = b.Name
	}
	if b.Unit != "" {
		return fmt.Sprintf("%s set to %v %s", description, b.current(), b.Unit)
	}
	return fmt.Sprintf("%s set to %v", description, b.current())
}

// kindOf maps a supported attribute pointer onto its coercion kind.
func kindOf(target any) strconvx.Kind {
	switch target.(type) {
	case *bool:
		return strconvx.Bool
	case *string:
		return strconvx.String
	case *int:
		return strconvx.Int
	case *int8:
		return strconvx.Int8
	case *int16:
		return strconvx.Int16
	case *int32:
		return strconvx.Int32
	case *int64:
		return strconvx.Int64
	case *float32:
		return strconvx.Float32
	case *float64:
		return strconvx.Float64
	case **big.Int:
		return strconvx.BigInt
	case **big.Float:
		return strconvx.BigFloat
	default:
		return strconvx.String
	}
}
