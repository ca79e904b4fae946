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

package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/loxflux/loxflux/vm"
)

func compileErr(t *testing.T, source string) *vm.CompileErrors {
	t.Helper()
	vmi := vm.NewInstance()
	_, err := Compile(vmi, source, "<test>")
	if err == nil {
		t.Fatalf("expected a compile error for: %s", source)
	}
	ce, ok := err.(*vm.CompileErrors)
	if !ok {
		t.Fatalf("expected *vm.CompileErrors, got %T", err)
	}
	return ce
}

func compileOK(t *testing.T, source string) {
	t.Helper()
	vmi := vm.NewInstance()
	if _, err := Compile(vmi, source, "<test>"); err != nil {
		t.Fatalf("unexpected compile error for %s: %v", source, err)
	}
}

func containsMessage(ce *vm.CompileErrors, substr string) bool {
	for _, e := range ce.Errors {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func paramList(n int) string {
	names := make([]string, n)
	for i := range names {
		names[i] = "p" + strconv.Itoa(i)
	}
	return strings.Join(names, ", ")
}

func TestArity255Compiles(t *testing.T) {
	src := fmt.Sprintf("fun f(%s){ return 1; }", paramList(255))
	compileOK(t, src)
}

func TestArity256IsCompileError(t *testing.T) {
	src := fmt.Sprintf("fun f(%s){ return 1; }", paramList(256))
	ce := compileErr(t, src)
	if !containsMessage(ce, "more than 255 parameters") {
		t.Fatalf("expected arity diagnostic, got %v", ce)
	}
}

func declList(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "var v%d = %d;\n", i, i)
	}
	return b.String()
}

func TestLocals1024Compiles(t *testing.T) {
	src := "fun f(){\n" + declList(1024) + "}"
	compileOK(t, src)
}

func TestLocals1025IsCompileError(t *testing.T) {
	src := "fun f(){\n" + declList(1025) + "}"
	ce := compileErr(t, src)
	if !containsMessage(ce, "too many local variables") {
		t.Fatalf("expected locals overflow diagnostic, got %v", ce)
	}
}

func TestUpvalues256IsCompileError(t *testing.T) {
	var decls strings.Builder
	var uses strings.Builder
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&decls, "var u%d = %d;\n", i, i)
		fmt.Fprintf(&uses, "u%d + ", i)
	}
	src := "fun outer(){\n" + decls.String() +
		"fun inner(){ return " + uses.String() + "0; }\n" +
		"return inner;\n}"
	ce := compileErr(t, src)
	if !containsMessage(ce, "too many closure variables") {
		t.Fatalf("expected upvalue overflow diagnostic, got %v", ce)
	}
}

func TestReturnOutsideFunctionIsCompileError(t *testing.T) {
	ce := compileErr(t, "return 1;")
	if !containsMessage(ce, "can't return from top-level code") {
		t.Fatalf("expected top-level return diagnostic, got %v", ce)
	}
}

func TestBreakOutsideLoopIsCompileError(t *testing.T) {
	ce := compileErr(t, "break;")
	if !containsMessage(ce, "can't use 'break' outside of a loop") {
		t.Fatalf("expected break diagnostic, got %v", ce)
	}
}

func TestContinueOutsideLoopIsCompileError(t *testing.T) {
	ce := compileErr(t, "continue;")
	if !containsMessage(ce, "can't use 'continue' outside of a loop") {
		t.Fatalf("expected continue diagnostic, got %v", ce)
	}
}

func TestConstAtGlobalScopeIsCompileError(t *testing.T) {
	ce := compileErr(t, "const x = 1;")
	if !containsMessage(ce, "const is only allowed inside a block or function") {
		t.Fatalf("expected const-at-global diagnostic, got %v", ce)
	}
}

func TestThisOutsideClassIsCompileError(t *testing.T) {
	ce := compileErr(t, "fun f(){ return this; }")
	if !containsMessage(ce, "can't use 'this' outside of a class") {
		t.Fatalf("expected this-misuse diagnostic, got %v", ce)
	}
}

func TestSuperOutsideClassIsCompileError(t *testing.T) {
	ce := compileErr(t, "fun f(){ return super.hi(); }")
	if !containsMessage(ce, "can't use 'super' outside of a class") {
		t.Fatalf("expected super-misuse diagnostic, got %v", ce)
	}
}

func TestSuperWithNoSuperclassIsCompileError(t *testing.T) {
	ce := compileErr(t, "class A { hi(){ return super.hi(); } }")
	if !containsMessage(ce, "can't use 'super' in a class with no superclass") {
		t.Fatalf("expected superclass-less diagnostic, got %v", ce)
	}
}

func TestDuplicateLocalIsCompileError(t *testing.T) {
	ce := compileErr(t, "fun f(){ var a = 1; var a = 2; }")
	if !containsMessage(ce, "already a variable with this name in this scope") {
		t.Fatalf("expected duplicate-local diagnostic, got %v", ce)
	}
}

func TestInvalidAssignmentTargetIsCompileError(t *testing.T) {
	ce := compileErr(t, "1 + 2 = 3;")
	if !containsMessage(ce, "invalid assignment target") {
		t.Fatalf("expected invalid-assignment-target diagnostic, got %v", ce)
	}
}
