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

// Package compiler turns source text into a vm.ObjFunction by a single
// pass over the token stream: no intermediate AST, statements and
// expressions emit bytecode directly as they parse. It is wired onto
// vm.Instance.Compiler by package engine.
package compiler

import "github.com/loxflux/loxflux/vm"

// parser is the single-pass compiler's mutable state: the token cursor,
// the function currently being emitted into, and the enclosing class
// (for this/super resolution).
type parser struct {
	vmi        *vm.Instance
	scanner    *scanner
	moduleName string

	previous Token
	current  Token

	hadError  bool
	panicMode bool
	errs      []*vm.CompileError

	fn    *funcState
	class *classState
}

// Compile implements vm.CompileFunc: it compiles source as the
// top-level chunk of moduleName (the main script, or a module body
// reached through import), returning the function the VM installs as
// frame 0.
func Compile(vmi *vm.Instance, source, moduleName string) (*vm.ObjFunction, error) {
	p := &parser{
		vmi:        vmi,
		scanner:    newScanner(source),
		moduleName: moduleName,
	}
	p.fn = newFuncState(nil, vm.FuncScript)

	p.advance()
	for !p.match(TokenEOF) {
		p.declaration()
	}

	p.emitReturn()
	fn := p.fn.function
	fn.UpvalueCount = len(p.fn.upvalues)
	vmi.RegisterFunction(fn)

	if p.hadError {
		return nil, &vm.CompileErrors{Errors: p.errs}
	}
	return fn, nil
}

func (p *parser) currentChunk() *vm.Chunk { return &p.fn.function.Chunk }

// --- token cursor -----------------------------------------------------

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.scanToken()
		if p.current.Type != TokenError {
			return
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(t TokenType) bool { return p.current.Type == t }

func (p *parser) match(t TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(t TokenType, msg string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

// --- diagnostics --------------------------------------------------------

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *parser) errorAt(tok Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true
	p.errs = append(p.errs, &vm.CompileError{Module: p.moduleName, Line: tok.Line, Message: msg})
}

// synchronize discards tokens until a likely statement boundary, so one
// diagnostic doesn't cascade into a wall of follow-on errors.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Type != TokenEOF {
		if p.previous.Type == TokenSemicolon {
			return
		}
		switch p.current.Type {
		case TokenClass, TokenFun, TokenVar, TokenConst, TokenFor, TokenIf,
			TokenWhile, TokenPrint, TokenReturn, TokenBranch, TokenThrow,
			TokenDo, TokenExports:
			return
		}
		p.advance()
	}
}

// --- bytecode emission --------------------------------------------------

func (p *parser) emitByte(b byte) { p.currentChunk().Write(b, p.previous.Line) }
func (p *parser) emitOp(op vm.OpCode) { p.emitByte(byte(op)) }
func (p *parser) emitUint16(v uint16) { p.currentChunk().WriteUint16(v, p.previous.Line) }
func (p *parser) emitUint24(v uint32) { p.currentChunk().WriteUint24(v, p.previous.Line) }

func (p *parser) emitJump(op vm.OpCode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.currentChunk().Code) - 2
}

func (p *parser) patchJump(offset int) {
	jump := len(p.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		p.error("too much code to jump over")
	}
	code := p.currentChunk().Code
	code[offset] = byte(jump)
	code[offset+1] = byte(jump >> 8)
}

func (p *parser) emitLoop(loopStart int) {
	p.emitOp(vm.OpLoop)
	offset := len(p.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		p.error("loop body too large")
	}
	p.emitUint16(uint16(offset))
}

func (p *parser) emitConstant(v vm.Value) {
	idx := p.vmi.AddConstant(v)
	if idx >= maxConstants {
		p.error("too many constants in one chunk")
	}
	p.emitOp(vm.OpConstant)
	p.emitUint24(idx)
}

// emitReturn closes out a function body with its implicit return: `this`
// for an initializer (so calling a class `Foo()` always yields the
// instance), nil
// otherwise.
func (p *parser) emitReturn() {
	if p.fn.kind == vm.FuncInitializer {
		p.emitOp(vm.OpGetLocal)
		p.emitUint16(0)
	} else {
		p.emitOp(vm.OpNil)
	}
	p.emitOp(vm.OpReturn)
}

// identifierConstant interns name and returns its constant-pool index,
// reusing the slot if any function compiled so far already referenced
// the same name.
func (p *parser) identifierConstant(name string) uint32 {
	return p.vmi.InternNameConstant(name)
}
