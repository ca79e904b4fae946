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

// Package engine wires package compiler onto a vm.Instance. vm cannot
// import compiler directly (compiler imports vm to emit bytecode), so
// this is the seam that closes the loop: it hands vm.Instance.Compiler
// a function pointer into compiler.Compile, installs the builtin
// module namespaces, and configures a filesystem-backed module reader.
package engine

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/loxflux/loxflux/compiler"
	"github.com/loxflux/loxflux/internal/pathutil"
	"github.com/loxflux/loxflux/vm"
)

// New builds a ready-to-run Instance rooted at baseDir (the directory
// relative imports resolve against), writing script output to stdout
// and diagnostics to stderr.
func New(baseDir string, stdout, stderr io.Writer) *vm.Instance {
	vmi := vm.NewInstance()
	vmi.Compiler = compiler.Compile
	vmi.BaseDir = baseDir
	vmi.Stdout = stdout
	vmi.Stderr = stderr
	vmi.ModuleReader = ReadModule
	vm.InstallBuiltins(vmi)
	return vmi
}

// ReadModule is the default ModuleReader: it reads the file at the
// already-absolute path produced by pathutil.Abs.
func ReadModule(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read module %q", path)
	}
	return string(b), nil
}

// RunFile compiles and interprets the source file at path as the main
// script, resolving relative imports against its containing directory.
func RunFile(vmi *vm.Instance, path string) error {
	return RunFileTraced(vmi, path, nil)
}

// RunFileTraced is RunFile with an optional disassembly sink: when
// trace is non-nil, the compiled script is disassembled there before
// execution starts, the way a -trace CLI flag would want it.
func RunFileTraced(vmi *vm.Instance, path string, trace io.Writer) error {
	abs, err := pathutil.Abs(".", path)
	if err != nil {
		return errors.Wrapf(err, "resolve script path %q", path)
	}
	src, err := ReadModule(abs)
	if err != nil {
		return err
	}
	vmi.BaseDir = pathutil.Dir(abs)

	fn, err := vmi.Compile(src, abs)
	if err != nil {
		return err
	}
	if trace != nil {
		vm.Disassemble(trace, vmi, fn, abs)
	}
	return vmi.Run(fn)
}
