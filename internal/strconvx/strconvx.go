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

// Package strconvx converts textual option values into semantically
// typed values. It extends the standard strconv parsers with the word
// forms accepted for booleans and with big-integer and character kinds.
package strconvx

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind enumerates the target kinds a textual value can be converted to.
type Kind int

const (
	String Kind = iota
	Bool
	Int
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	Rune
	BigInt
	BigFloat
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Rune:
		return "rune"
	case BigInt:
		return "big.Int"
	case BigFloat:
		return "big.Float"
	default:
		return "unknown"
	}
}

// truthy and falsy are the word forms recognized for boolean values,
// matched case-insensitively.
var (
	truthy = []string{"1", "true", "yes", "on", "enabled"}
	falsy  = []string{"0", "false", "no", "off", "disabled"}
)

// ParseBool parses the given text as a boolean. The word forms
// 1/true/yes/on/enabled and 0/false/no/off/disabled are recognized in
// any letter case; anything else falls back to strconv.ParseBool.
func ParseBool(text string) (bool, error) {
	for _, word := range truthy {
		if strings.EqualFold(text, word) {
			return true, nil
		}
	}
	for _, word := range falsy {
		if strings.EqualFold(text, word) {
			return false, nil
		}
	}
	return strconv.ParseBool(text)
}

// Convert parses the given text into a value of the requested kind.
// The returned value has the Go type corresponding to the kind, e.g.
// int16 for Int16 and *big.Int for BigInt. An unparsable text yields a
// casting error naming the text and the kind.
func Convert(text string, kind Kind) (any, error) {
	switch kind {
	case String:
		return text, nil
	case Bool:
		value, err := ParseBool(text)
		if err != nil {
			return nil, castError(text, kind, err)
		}
		return value, nil
	case Int:
		value, err := strconv.Atoi(text)
		if err != nil {
			return nil, castError(text, kind, err)
		}
		return value, nil
	case Int8:
		value, err := strconv.ParseInt(text, 10, 8)
		if err != nil {
			return nil, castError(text, kind, err)
		}
		return int8(value), nil
	case Int16:
		value, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return nil, castError(text, kind, err)
		}
		return int16(value), nil
	case Int32:
		value, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, castError(text, kind, err)
		}
		return int32(value), nil
	case Int64:
		value, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, castError(text, kind, err)
		}
		return value, nil
	case Float32:
		value, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, castError(text, kind, err)
		}
		return float32(value), nil
	case Float64:
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, castError(text, kind, err)
		}
		return value, nil
	case Rune:
		if text == "" {
			return nil, castError(text, kind, fmt.Errorf("empty text"))
		}
		value, _ := utf8.DecodeRuneInString(text)
		if value == utf8.RuneError {
			return nil, castError(text, kind, fmt.Errorf("invalid encoding"))
		}
		return value, nil
	case BigInt:
		value, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, castError(text, kind, fmt.Errorf("not a base-10 integer"))
		}
		return value, nil
	case BigFloat:
		value, ok := new(big.Float).SetString(text)
		if !ok {
			return nil, castError(text, kind, fmt.Errorf("not a decimal number"))
		}
		return value, nil
	default:
		// Unrecognized target kinds keep the raw text unchanged. The
		// caller may construct its own type from the string.
		return text, nil
	}
}

// Zero returns the kind-appropriate zero value used when no textual
// value exists for a primitive-like kind.
func Zero(kind Kind) any {
	switch kind {
	case String:
		return ""
	case Bool:
		return false
	case Int:
		return 0
	case Int8:
		return int8(0)
	case Int16:
		return int16(0)
	case Int32:
		return int32(0)
	case Int64:
		return int64(0)
	case Float32:
		return float32(0)
	case Float64:
		return float64(0)
	case Rune:
		return rune(0)
	case BigInt:
		return new(big.Int)
	case BigFloat:
		return new(big.Float)
	default:
		return nil
	}
}

func castError(text string, kind Kind, cause error) error {
	return fmt.Errorf("cannot convert %q to %s: %w", text, kind, cause)
}
