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

package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// DefaultLogger is a global logger configured to output messages at
	// InfoLevel and above to os.Stdout.
	DefaultLogger = NewZap(InfoLevel, os.Stdout)

	// DebugLogger is a global logger configured to output messages at
	// DebugLevel and above to os.Stdout.
	DebugLogger = NewZap(DebugLevel, os.Stdout)

	// DiscardLogger is a no-op logger that discards all log messages.
	DiscardLogger Logger = discardLogger{}
)

// Zap implements the Logger interface with zap as the underlying
// logging library.
type Zap struct {
	logger  *zap.Logger
	sugar   *zap.SugaredLogger
	level   Level
	outputs []io.Writer
}

// enforce compilation error
var _ Logger = (*Zap)(nil)

// NewZap creates an instance of Zap that writes messages at the given
// level and above to the given writers. When no writer is supplied the
// logger writes to os.Stdout.
func NewZap(level Level, writers ...io.Writer) *Zap {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	syncers := make([]zapcore.WriteSyncer, len(writers))
	for i, writer := range writers {
		syncers[i] = zapcore.AddSync(writer)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(syncers...),
		toZapLevel(level),
	)

	zapLogger := zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel))

	return &Zap{
		logger:  zapLogger,
		sugar:   zapLogger.Sugar(),
		level:   level,
		outputs: writers,
	}
}

// Debug starts a message with debug level
func (z *Zap) Debug(v ...any) {
	z.sugar.Debug(v...)
}

// Debugf starts a message with debug level
func (z *Zap) Debugf(format string, v ...any) {
	z.sugar.Debugf(format, v...)
}

// Info starts a message with info level
func (z *Zap) Info(v ...any) {
	z.sugar.Info(v...)
}

// Infof starts a message with info level
func (z *Zap) Infof(format string, v ...any) {
	z.sugar.Infof(format, v...)
}

// Warn starts a message with warn level
func (z *Zap) Warn(v ...any) {
	z.sugar.Warn(v...)
}

// Warnf starts a message with warn level
func (z *Zap) Warnf(format string, v ...any) {
	z.sugar.Warnf(format, v...)
}

// Error starts a message with error level
func (z *Zap) Error(v ...any) {
	z.sugar.Error(v...)
}

// Errorf starts a message with error level
func (z *Zap) Errorf(format string, v ...any) {
	z.sugar.Errorf(format, v...)
}

// Fatal starts a new message with fatal level. The os.Exit(1) function
// is called afterwards, which terminates the program immediately.
func (z *Zap) Fatal(v ...any) {
	z.sugar.Fatal(v...)
}

// Fatalf starts a new message with fatal level. The os.Exit(1) function
// is called afterwards, which terminates the program immediately.
func (z *Zap) Fatalf(format string, v ...any) {
	z.sugar.Fatalf(format, v...)
}

// Panic starts a new message with panic level. The panic() function is
// called afterwards, which stops the ordinary flow of a goroutine.
func (z *Zap) Panic(v ...any) {
	z.sugar.Panic(v...)
}

// Panicf starts a new message with panic level. The panic() function is
// called afterwards, which stops the ordinary flow of a goroutine.
func (z *Zap) Panicf(format string, v ...any) {
	z.sugar.Panicf(format, v...)
}

// With returns a logger that adds the given key/value pairs to every
// line it emits.
func (z *Zap) With(keysAndValues ...any) Logger {
	sugar := z.sugar.With(keysAndValues...)
	return &Zap{
		logger:  sugar.Desugar(),
		sugar:   sugar,
		level:   z.level,
		outputs: z.outputs,
	}
}

// LogLevel returns the log level that is set
func (z *Zap) LogLevel() Level {
	return z.level
}

// LogOutput returns the log output that is set
func (z *Zap) LogOutput() []io.Writer {
	return z.outputs
}

// toZapLevel maps a Level onto the corresponding zapcore level
func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case PanicLevel:
		return zapcore.PanicLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
