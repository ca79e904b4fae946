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

package engine_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loxflux/loxflux/engine"
	"github.com/loxflux/loxflux/vm"
)

func run(t *testing.T, source string) (stdout string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	vmi := engine.New(".", &out, &errOut)
	err = vmi.Interpret(source, "<test>")
	if err != nil {
		return out.String(), err
	}
	return out.String(), nil
}

func TestArithmeticAndPrint(t *testing.T) {
	out, err := run(t, "print 1 + 2 * 3;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "6\n" {
		t.Fatalf("got %q, want %q", out, "6\n")
	}
}

func TestClosureCapture(t *testing.T) {
	src := `
fun mk(){ var x = 10; fun inc(){ x = x + 1; return x; } return inc; }
var f = mk(); print f(); print f();
`
	out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "11\n12\n" {
		t.Fatalf("got %q, want %q", out, "11\n12\n")
	}
}

func TestClassInitAndSuper(t *testing.T) {
	src := `
class A { init(n){ this.n = n; } hi(){ return this.n; } }
class B < A { hi(){ return super.hi() + 1; } }
print B(5).hi();
`
	out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "6\n" {
		t.Fatalf("got %q, want %q", out, "6\n")
	}
}

func TestTypedArrayCoercion(t *testing.T) {
	src := `
var a = @ctor.I8Array(3); a[0] = 300; a[1] = -5; a[2] = "x"; print a[0]; print a[1]; print a[2];
`
	out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "44\n-5\n0\n" {
		t.Fatalf("got %q, want %q", out, "44\n-5\n0\n")
	}
}

func TestThrowUnwinds(t *testing.T) {
	src := `
fun f(){ throw "boom"; } fun g(){ f(); } g();
`
	_, err := run(t, src)
	if err == nil {
		t.Fatal("expected an error, got none")
	}
	rerr, ok := errorAsRuntime(err)
	if !ok {
		t.Fatalf("expected a *vm.RuntimeError, got %T: %v", err, err)
	}
	if !strings.Contains(rerr.Error(), "RuntimeError") {
		t.Fatalf("message missing RuntimeError: %q", rerr.Error())
	}
	if !strings.Contains(vm.Stringify(rerr.Value), "boom") {
		t.Fatalf("thrown value missing boom: %v", rerr.Value)
	}
	var sawF, sawG bool
	for _, line := range strings.Split(rerr.Error(), "\n") {
		if strings.Contains(line, "<fn f>") {
			sawF = true
		}
		if strings.Contains(line, "<fn g>") {
			sawG = true
		}
	}
	if !sawF || !sawG {
		t.Fatalf("trace missing f/g frames: %q", rerr.Error())
	}
}

func errorAsRuntime(err error) (*vm.RuntimeError, bool) {
	type causer interface{ Cause() error }
	for err != nil {
		if rerr, ok := err.(*vm.RuntimeError); ok {
			return rerr, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}

func TestObjectLiteral(t *testing.T) {
	src := `
var p = { x: 1, y: 2 + 3 };
print p.x; print p.y;
`
	out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1\n5\n" {
		t.Fatalf("got %q, want %q", out, "1\n5\n")
	}
}

func TestSubscriptReadOutOfRangeIsNil(t *testing.T) {
	src := `
var a = [1, 2, 3];
print a[10]; print a[-1];
`
	out, err := run(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "nil\nnil\n" {
		t.Fatalf("got %q, want %q", out, "nil\nnil\n")
	}
}

func TestSubscriptWriteOutOfRangeIsRuntimeError(t *testing.T) {
	src := `
var a = [1, 2, 3];
a[10] = 1;
`
	_, err := run(t, src)
	if err == nil {
		t.Fatal("expected an error, got none")
	}
	if _, ok := errorAsRuntime(err); !ok {
		t.Fatalf("expected a *vm.RuntimeError, got %T: %v", err, err)
	}
}

func TestDeepRecursionIsStackOverflow(t *testing.T) {
	src := `
fun f(n) { return 1 + f(n + 1); }
f(0);
`
	_, err := run(t, src)
	if err == nil {
		t.Fatal("expected an error, got none")
	}
	rerr, ok := errorAsRuntime(err)
	if !ok {
		t.Fatalf("expected a *vm.RuntimeError, got %T: %v", err, err)
	}
	msg := vm.Stringify(rerr.Value)
	if !strings.Contains(msg, "overflow") {
		t.Fatalf("expected an overflow message, got %q", msg)
	}
}

func TestModuleImportCaching(t *testing.T) {
	dir := t.TempDir()
	modulePath := filepath.Join(dir, "m.lox")
	writeFile(t, modulePath, "print \"hi\"; exports 42;")

	driverPath := filepath.Join(dir, "main.lox")
	writeFile(t, driverPath, `
var a = import("m.lox");
var b = import("m.lox");
print a; print b;
`)

	var out, errOut bytes.Buffer
	vmi := engine.New(dir, &out, &errOut)
	if err := engine.RunFile(vmi, driverPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "hi\n42\n42\n" {
		t.Fatalf("got %q, want %q", out.String(), "hi\n42\n42\n")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
