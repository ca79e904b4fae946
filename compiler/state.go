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

import "github.com/loxflux/loxflux/vm"

const (
	maxLocals    = 1024
	maxUpvalues  = 255
	maxArgs      = 255
	maxConstants = 1 << 24
)

// local is one entry in a function's growable locals array.
type local struct {
	name     string
	depth    int // -1 while the initializer of this local is being compiled
	captured bool
	isConst  bool
}

// upvalueRef records how an enclosing function's upvalue table resolves a
// free variable: either straight from the immediately enclosing function's
// locals (isLocal) or by forwarding one of its own upvalues.
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// loopContext tracks break/continue bookkeeping for one loop nesting
// level. continueTarget is a backward jump address for while/for loops;
// do-while's condition sits after its body, so continue there instead
// records forward jumps (continueJumps) patched once the condition's
// address is known.
type loopContext struct {
	continueTarget    int
	continueIsForward bool
	continueJumps     []int
	enclosing         *loopContext
	enterLocalCount   int
	breakJumps        []int
}

// classState tracks the class currently being compiled, for `this`/`super`
// resolution and nested-class restoration.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// funcState is the compiler's per-function activation: its emitting
// target (a fresh vm.ObjFunction), locals, upvalues and loop nesting.
type funcState struct {
	enclosing *funcState
	function  *vm.ObjFunction
	kind      vm.FunctionKind

	locals     []local
	scopeDepth int
	upvalues   []upvalueRef
	loop       *loopContext
}

func newFuncState(enclosing *funcState, kind vm.FunctionKind) *funcState {
	fs := &funcState{
		enclosing: enclosing,
		kind:      kind,
		function:  &vm.ObjFunction{Kind: kind},
	}
	// Slot 0 is reserved: `this` for methods/initializers, otherwise an
	// unnamed slot the caller's callee value occupies.
	slotName := ""
	if kind == vm.FuncMethod || kind == vm.FuncInitializer {
		slotName = "this"
	}
	fs.locals = append(fs.locals, local{name: slotName, depth: 0})
	return fs
}
