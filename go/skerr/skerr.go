// Package skerr provides functions that add the call site to an error as it
// travels up the stack, so the final log line shows where it came from.
package skerr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// StackTrace identifies a filename (base filename only) and line number.
type StackTrace struct {
	File string
	Line int
}

func (st *StackTrace) String() string {
	return fmt.Sprintf("%s:%d", st.File, st.Line)
}

// ErrorWithContext is an error that also carries the call stack at the point it
// was first wrapped, plus any context strings added by Wrapf.
type ErrorWithContext struct {
	// Wrapped is the original error. Never nil.
	Wrapped error
	// CallStack is the stack at the point the error was first wrapped.
	CallStack []StackTrace
	// Context holds the messages passed to Wrapf, innermost last.
	Context []string
}

// CallStack returns at most height frames of the call stack. startAt == 0
// starts at the function calling CallStack, 1 at its caller, and so on.
func CallStack(height, startAt int) []StackTrace {
	stack := make([]StackTrace, 0, height)
	for i := 0; i < height; i++ {
		_, file, line, ok := runtime.Caller(startAt + 1 + i)
		if !ok {
			break
		}
		stack = append(stack, StackTrace{File: filepath.Base(file), Line: line})
	}
	return stack
}

// Error returns the context strings, the original message and the call stack.
func (err *ErrorWithContext) Error() string {
	var out strings.Builder
	for i := len(err.Context) - 1; i >= 0; i-- {
		out.WriteString(err.Context[i])
		out.WriteString(": ")
	}
	out.WriteString(err.Wrapped.Error())
	out.WriteString(". At")
	for _, st := range err.CallStack {
		out.WriteString(" ")
		out.WriteString(st.String())
	}
	return out.String()
}

// Unwrap implements the interface used by errors.Is and errors.As.
func (err *ErrorWithContext) Unwrap() error {
	return err.Wrapped
}

// Wrap adds the call stack to err. If err already carries one it is returned
// as is. Returns nil if err is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var withContext *ErrorWithContext
	if errors.As(err, &withContext) {
		return err
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: CallStack(6, 1),
	}
}

// Wrapf adds a formatted message and, if not yet present, the call stack to
// err. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	var withContext *ErrorWithContext
	if errors.As(err, &withContext) {
		newContext := make([]string, len(withContext.Context), len(withContext.Context)+1)
		copy(newContext, withContext.Context)
		return &ErrorWithContext{
			Wrapped:   withContext.Wrapped,
			CallStack: withContext.CallStack,
			Context:   append(newContext, msg),
		}
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: CallStack(6, 1),
		Context:   []string{msg},
	}
}

// Fmt is like fmt.Errorf, but records the call stack.
func Fmt(format string, args ...interface{}) error {
	return &ErrorWithContext{
		Wrapped:   fmt.Errorf(format, args...),
		CallStack: CallStack(6, 1),
	}
}

// Unwrap returns the original error, removing any context added by this
// package. Errors from other packages are returned unchanged.
func Unwrap(err error) error {
	var withContext *ErrorWithContext
	if errors.As(err, &withContext) {
		return withContext.Wrapped
	}
	return err
}
