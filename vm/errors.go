// This file is part of loxflux.
//
// Copyright 2024 The LoxFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// CompileError reports a single compile-time diagnostic, with the
// source line it was raised at and the module it belongs to.
type CompileError struct {
	Module  string
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Module, e.Line, e.Message)
}

// CompileErrors collects every diagnostic a compile pass produced;
// compilation always runs to the end of the token stream before
// reporting, rather than stopping at the first error.
type CompileErrors struct {
	Errors []*CompileError
}

func (e *CompileErrors) Error() string {
	lines := make([]string, len(e.Errors))
	for i, ce := range e.Errors {
		lines[i] = ce.Error()
	}
	return strings.Join(lines, "\n")
}

// traceFrame captures one line of a runtime stack trace.
type traceFrame struct {
	Name string
	Line int
}

// RuntimeError is a script-level failure: a thrown value or an
// interpreter-detected fault (type error, arity mismatch, stack
// overflow, bounds violation...), carrying the
// call-stack trace captured at the point of the fault.
type RuntimeError struct {
	Value Value
	Trace []traceFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "RuntimeError: an exception was thrown: %s\n", Stringify(e.Value))
	for _, f := range e.Trace {
		fmt.Fprintf(&b, "  at %s (line %d)\n", f.Name, f.Line)
	}
	return b.String()
}

// captureTrace snapshots the current call stack as a trace, innermost
// frame first, for a fault raised at the VM's present position.
func (vmi *Instance) captureTrace() []traceFrame {
	trace := make([]traceFrame, 0, vmi.frameCount)
	for i := vmi.frameCount - 1; i >= 0; i-- {
		f := &vmi.frames[i]
		fn := f.closure.Function
		line := fn.Chunk.LineAt(f.ip - 1)
		trace = append(trace, traceFrame{Name: functionLabel(fn), Line: line})
	}
	return trace
}

// runtimeErrorf builds a RuntimeError from a formatted message, wrapping
// it as a string Value, and snapshots the current call stack as the
// trace, innermost frame first.
func (vmi *Instance) runtimeErrorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return errors.WithStack(&RuntimeError{
		Value: ObjValue(&vmi.strings.Intern(vmi, msg).Obj),
		Trace: vmi.captureTrace(),
	})
}

// throwError builds a RuntimeError for a script-level `throw` expression,
// carrying the thrown value as-is (not wrapped into a string) along with
// the same call-stack trace runtimeErrorf captures.
func (vmi *Instance) throwError(v Value) error {
	return errors.WithStack(&RuntimeError{Value: v, Trace: vmi.captureTrace()})
}
