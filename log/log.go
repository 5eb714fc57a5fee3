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

// Package log provides the logging abstraction used across the cells
// runtime. All runtime components log through the Logger interface so
// that embedding applications can supply their own implementation.
package log

import "io"

// Logger represents an active logging object that generates lines of
// output to one or more io.Writer.
type Logger interface {
	// Debug starts a new message with debug level.
	Debug(...any)
	// Debugf starts a new message with debug level.
	Debugf(string, ...any)
	// Info starts a new message with info level.
	Info(...any)
	// Infof starts a new message with info level.
	Infof(string, ...any)
	// Warn starts a new message with warn level.
	Warn(...any)
	// Warnf starts a new message with warn level.
	Warnf(string, ...any)
	// Error starts a new message with error level.
	Error(...any)
	// Errorf starts a new message with error level.
	Errorf(string, ...any)
	// Fatal starts a new message with fatal level. The os.Exit(1)
	// function is called afterwards, which terminates the program
	// immediately.
	Fatal(...any)
	// Fatalf starts a new message with fatal level. The os.Exit(1)
	// function is called afterwards, which terminates the program
	// immediately.
	Fatalf(string, ...any)
	// Panic starts a new message with panic level. The panic() function
	// is called afterwards, which stops the ordinary flow of a
	// goroutine.
	Panic(...any)
	// Panicf starts a new message with panic level. The panic()
	// function is called afterwards, which stops the ordinary flow of a
	// goroutine.
	Panicf(string, ...any)
	// With returns a logger that adds the given key/value pairs to
	// every line it emits.
	With(keysAndValues ...any) Logger
	// LogLevel returns the log level being used.
	LogLevel() Level
	// LogOutput returns the log output that is set.
	LogOutput() []io.Writer
}
