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

func (p *parser) beginScope() { p.fn.scopeDepth++ }

// endScope discards every local declared in the scope just closed,
// closing any that were captured by a nested closure rather than
// merely popping them.
func (p *parser) endScope() {
	fs := p.fn
	fs.scopeDepth--

	cut := len(fs.locals)
	for cut > 0 && fs.locals[cut-1].depth > fs.scopeDepth {
		cut--
	}
	removed := append([]local(nil), fs.locals[cut:]...)
	fs.locals = fs.locals[:cut]
	if len(removed) == 0 {
		return
	}

	anyCaptured := false
	for _, l := range removed {
		if l.captured {
			anyCaptured = true
			break
		}
	}
	if !anyCaptured {
		if len(removed) == 1 {
			p.emitOp(vm.OpPop)
		} else {
			p.emitOp(vm.OpPopN)
			p.emitUint16(uint16(len(removed)))
		}
		return
	}
	for i := len(removed) - 1; i >= 0; i-- {
		if removed[i].captured {
			p.emitOp(vm.OpCloseUpvalue)
		} else {
			p.emitOp(vm.OpPop)
		}
	}
}

// declareVariable registers name as a new local in the current scope.
// At global scope (depth 0) this is a no-op: globals are resolved by
// name at runtime, not by slot.
func (p *parser) declareVariable(name string, isConst bool) {
	if p.fn.scopeDepth == 0 {
		return
	}
	for i := len(p.fn.locals) - 1; i >= 0; i-- {
		l := &p.fn.locals[i]
		if l.depth != -1 && l.depth < p.fn.scopeDepth {
			break
		}
		if l.name == name {
			p.error("already a variable with this name in this scope")
		}
	}
	p.addLocal(name, isConst)
}

func (p *parser) addLocal(name string, isConst bool) {
	// Slot 0 (the callee) does not count against maxLocals.
	if len(p.fn.locals) > maxLocals {
		p.error("too many local variables in one function")
		return
	}
	p.fn.locals = append(p.fn.locals, local{name: name, depth: -1, isConst: isConst})
}

// markInitialized makes the most recently declared local visible to
// name resolution; until this runs, reading that name is a compile error
// (so `var a = a;` is rejected).
func (p *parser) markInitialized() {
	if p.fn.scopeDepth == 0 {
		return
	}
	p.fn.locals[len(p.fn.locals)-1].depth = p.fn.scopeDepth
}

// defineVariable finishes a var/const/fun declaration: for a local,
// that's just marking it initialized (its value already sits in its
// stack slot); for a global, it emits the binding instruction.
func (p *parser) defineVariable(name string) {
	if p.fn.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	constIdx := p.identifierConstant(name)
	p.emitOp(vm.OpDefineGlobal)
	p.emitUint24(constIdx)
}

func (p *parser) resolveLocal(fs *funcState, name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			if fs.locals[i].depth == -1 {
				p.error("can't read local variable in its own initializer")
			}
			return i
		}
	}
	return -1
}

func (p *parser) resolveUpvalue(fs *funcState, name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if idx := p.resolveLocal(fs.enclosing, name); idx != -1 {
		fs.enclosing.locals[idx].captured = true
		return p.addUpvalue(fs, uint8(idx), true)
	}
	if idx := p.resolveUpvalue(fs.enclosing, name); idx != -1 {
		return p.addUpvalue(fs, uint8(idx), false)
	}
	return -1
}

func (p *parser) addUpvalue(fs *funcState, index uint8, isLocal bool) int {
	for i, uv := range fs.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fs.upvalues) >= maxUpvalues {
		p.error("too many closure variables in one function")
		return 0
	}
	fs.upvalues = append(fs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fs.upvalues) - 1
}

// --- loops ---------------------------------------------------------------

// pushLoop enters a loop whose continue target is a fixed backward
// address (while, for): continue re-emits a OP_LOOP to backTarget.
func (p *parser) pushLoop(backTarget int) {
	p.fn.loop = &loopContext{continueTarget: backTarget, enclosing: p.fn.loop, enterLocalCount: len(p.fn.locals)}
}

// pushLoopForward enters a loop whose continue target isn't known yet
// (do-while: the condition sits after the body). continue instead
// records a forward jump, patched once the condition's address is
// reached.
func (p *parser) pushLoopForward() {
	p.fn.loop = &loopContext{continueIsForward: true, enclosing: p.fn.loop, enterLocalCount: len(p.fn.locals)}
}

func (p *parser) popLoop() *loopContext {
	lc := p.fn.loop
	p.fn.loop = lc.enclosing
	return lc
}

func (p *parser) patchLoopExit(lc *loopContext) {
	for _, j := range lc.breakJumps {
		p.patchJump(j)
	}
}

// emitLoopExitPops discharges the locals a break/continue jump would
// otherwise strand on the stack, since OP_JUMP/OP_LOOP never touch sp.
func (p *parser) emitLoopExitPops(from int) {
	fs := p.fn
	for i := len(fs.locals) - 1; i >= from; i-- {
		if fs.locals[i].captured {
			p.emitOp(vm.OpCloseUpvalue)
		} else {
			p.emitOp(vm.OpPop)
		}
	}
}
