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

package option

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	gerrors "github.com/hivegrid/cells/errors"
	"github.com/hivegrid/cells/internal/args"
	"github.com/hivegrid/cells/log"
)

// Declarer is implemented by cell types that declare options. A type
// composed from embedded bases returns its own bindings together with
// the bases' bindings.
type Declarer interface {
	DeclaredOptions() []Binding
}

// Resolve fills every declared option of the given declarer. For each
// binding the value is taken from the explicit arguments, then from
// the inherited context, then from the descriptor default. A value
// from the arguments or the context is accepted only when it is
// non-empty or the option is not required. A resolved non-empty value
// is converted to the attribute's kind and assigned; when no textual
// value is found the attribute keeps its pre-existing value. Options
// with the log flag set have their resolved value logged, one line per
// option.
//
// All violations are collected and returned as one error; each missing
// required option and each failed conversion names the option.
func Resolve(declarer Declarer, arguments *args.Args, inherited map[string]string, logger log.Logger) error {
	if arguments == nil {
		arguments = args.New(nil, nil)
	}
	if logger == nil {
		logger = log.DiscardLogger
	}

	var violations error
	for _, binding := range declarer.DeclaredOptions() {
		text, found := lookup(binding.Descriptor, arguments, inherited)
		if !found {
			violations = multierr.Append(violations,
				fmt.Errorf("%w: %s", gerrors.ErrRequiredOption, binding.Name))
			continue
		}

		if text != "" {
			if err := binding.assign(text); err != nil {
				violations = multierr.Append(violations,
					fmt.Errorf("%w: %s: %w", gerrors.ErrInvalidOptionValue, binding.Name, err))
				continue
			}
		}

		if binding.Log {
			logger.Info(binding.line())
		}
	}
	return violations
}

// Describe renders the report of every loggable option's current
// value, one line per option, without re-resolving anything.
func Describe(declarer Declarer) string {
	var lines []string
	for _, binding := range declarer.DeclaredOptions() {
		if binding.Log {
			lines = append(lines, binding.line())
		}
	}
	return strings.Join(lines, "\n")
}

// lookup finds the textual value of an option: explicit argument,
// inherited context, then descriptor default. Required options never
// fall back to the default; a missing required option reports found
// false.
func lookup(descriptor Descriptor, arguments *args.Args, inherited map[string]string) (string, bool) {
	if value, ok := arguments.Opt(descriptor.Name); ok && (value != "" || !descriptor.Required) {
		return value, true
	}
	if value, ok := inherited[descriptor.Name]; ok && (value != "" || !descriptor.Required) {
		return value, true
	}
	if descriptor.Required {
		return "", false
	}
	return descriptor.Default, true
}
