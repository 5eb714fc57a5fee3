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

// Package args parses cell construction arguments: an ordered list of
// positional arguments mixed with -key=value options. A leading
// positional argument prefixed with '!' designates a named setup
// routine executed during cell initialization.
package args

import "strings"

// setupMarker prefixes the defined-setup designator.
const setupMarker = '!'

// Args holds the parsed construction arguments of a cell.
type Args struct {
	argv []string
	opts map[string]string
}

// Parse tokenizes the given argument line. Tokens are separated by
// whitespace; double quotes group a token containing spaces. A token of
// the form -key=value records an option, a bare -key records an option
// with an empty value, everything else is a positional argument.
func Parse(line string) *Args {
	args := &Args{opts: make(map[string]string)}
	for _, token := range tokenize(line) {
		if strings.HasPrefix(token, "-") && len(token) > 1 {
			key, value, _ := strings.Cut(token[1:], "=")
			args.opts[key] = value
			continue
		}
		args.argv = append(args.argv, token)
	}
	return args
}

// New builds Args from pre-split positional arguments and options.
func New(argv []string, opts map[string]string) *Args {
	args := &Args{
		argv: append([]string(nil), argv...),
		opts: make(map[string]string, len(opts)),
	}
	for key, value := range opts {
		args.opts[key] = value
	}
	return args
}

// Argc returns the number of positional arguments.
func (a *Args) Argc() int {
	return len(a.argv)
}

// Argv returns the positional argument at the given index, or the
// empty string when the index is out of range.
func (a *Args) Argv(i int) string {
	if i < 0 || i >= len(a.argv) {
		return ""
	}
	return a.argv[i]
}

// Opt returns the value of the named option and whether it was given.
func (a *Args) Opt(name string) (string, bool) {
	value, ok := a.opts[name]
	return value, ok
}

// Clone returns a deep copy of the arguments.
func (a *Args) Clone() *Args {
	return New(a.argv, a.opts)
}

// Shift removes the first positional argument.
func (a *Args) Shift() {
	if len(a.argv) > 0 {
		a.argv = a.argv[1:]
	}
}

// DefinedSetup returns the name of the designated setup routine, or ""
// when the first positional argument carries no setup marker.
func (a *Args) DefinedSetup() string {
	if len(a.argv) > 0 && len(a.argv[0]) > 1 && a.argv[0][0] == setupMarker {
		return a.argv[0][1:]
	}
	return ""
}

// StripDefinedSetup returns a copy of the arguments with the
// defined-setup designator removed, so that further argument parsing
// never sees the marker token.
func (a *Args) StripDefinedSetup() *Args {
	clone := a.Clone()
	if clone.DefinedSetup() != "" {
		clone.Shift()
	}
	return clone
}

// String renders the arguments in their textual form.
func (a *Args) String() string {
	var parts []string
	for key, value := range a.opts {
		if value == "" {
			parts = append(parts, "-"+key)
			continue
		}
		parts = append(parts, "-"+key+"="+value)
	}
	parts = append(parts, a.argv...)
	return strings.Join(parts, " ")
}

// tokenize splits a line on whitespace, honoring double quotes.
func tokenize(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}
