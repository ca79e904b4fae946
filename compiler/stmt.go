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

func (p *parser) declaration() {
	switch {
	case p.match(TokenClass):
		p.classDeclaration()
	case p.match(TokenFun):
		p.funDeclaration()
	case p.match(TokenVar):
		p.variableDeclaration(false)
	case p.match(TokenConst):
		p.variableDeclaration(true)
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(TokenPrint):
		p.printStatement()
	case p.match(TokenThrow):
		p.throwStatement()
	case p.match(TokenIf):
		p.ifStatement()
	case p.match(TokenBranch):
		p.branchStatement()
	case p.match(TokenWhile):
		p.whileStatement()
	case p.match(TokenDo):
		p.doWhileStatement()
	case p.match(TokenFor):
		p.forStatement()
	case p.match(TokenReturn):
		p.returnStatement()
	case p.match(TokenExports):
		p.exportsStatement()
	case p.match(TokenBreak):
		p.breakStatement()
	case p.match(TokenContinue):
		p.continueStatement()
	case p.match(TokenLeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) block() {
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		p.declaration()
	}
	p.consume(TokenRightBrace, "expect '}' after block")
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(TokenSemicolon, "expect ';' after expression")
	p.emitOp(vm.OpPop)
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(TokenSemicolon, "expect ';' after value")
	p.emitOp(vm.OpPrint)
}

func (p *parser) throwStatement() {
	p.expression()
	p.consume(TokenSemicolon, "expect ';' after thrown value")
	p.emitOp(vm.OpThrow)
}

// variableDeclaration compiles `var name = init;` / `const name = init;`.
// const is rejected at global scope: there is no runtime slot to mark
// read-only once a name is defined as a global.
func (p *parser) variableDeclaration(isConst bool) {
	p.consume(TokenIdentifier, "expect variable name")
	name := p.previous.Lexeme
	if isConst && p.fn.scopeDepth == 0 {
		p.error("const is only allowed inside a block or function")
	}
	p.declareVariable(name, isConst)

	if p.match(TokenEqual) {
		p.expression()
	} else {
		if isConst {
			p.error("const declaration requires an initializer")
		}
		p.emitOp(vm.OpNil)
	}
	p.consume(TokenSemicolon, "expect ';' after variable declaration")
	p.defineVariable(name)
}

func (p *parser) exportsStatement() {
	if !(p.fn.kind == vm.FuncScript && p.fn.enclosing == nil) {
		p.error("exports is only allowed at the top level of a module")
	}
	p.expression()
	p.consume(TokenSemicolon, "expect ';' after exports value")
	p.emitOp(vm.OpReturn)
}

func (p *parser) returnStatement() {
	if p.fn.kind == vm.FuncScript {
		p.error("can't return from top-level code")
	}
	if p.match(TokenSemicolon) {
		p.emitReturn()
		return
	}
	if p.fn.kind == vm.FuncInitializer {
		p.error("can't return a value from an initializer")
	}
	p.expression()
	p.consume(TokenSemicolon, "expect ';' after return value")
	p.emitOp(vm.OpReturn)
}

// ifStatement peeks the condition (OpJumpIfFalse), so both arms must
// discharge it themselves with an explicit OpPop.
func (p *parser) ifStatement() {
	p.consume(TokenLeftParen, "expect '(' after 'if'")
	p.expression()
	p.consume(TokenRightParen, "expect ')' after condition")

	thenJump := p.emitJump(vm.OpJumpIfFalse)
	p.emitOp(vm.OpPop)
	p.statement()

	elseJump := p.emitJump(vm.OpJump)
	p.patchJump(thenJump)
	p.emitOp(vm.OpPop)

	if p.match(TokenElse) {
		p.statement()
	}
	p.patchJump(elseJump)
}

// branchStatement compiles `branch { expr: stmt ... none: stmt }` as a
// sequential if/elif/else chain. Unlike if, each clause test is consumed
// unconditionally by OpJumpIfFalsePop, since there's no separate `else`
// keyword to carry the trailing OpPop.
func (p *parser) branchStatement() {
	p.consume(TokenLeftBrace, "expect '{' after 'branch'")

	var endJumps []int
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		if p.match(TokenNone) {
			p.consume(TokenColon, "expect ':' after 'none'")
			p.statement()
			break
		}
		p.expression()
		p.consume(TokenColon, "expect ':' after branch condition")

		skipJump := p.emitJump(vm.OpJumpIfFalsePop)
		p.statement()
		endJumps = append(endJumps, p.emitJump(vm.OpJump))
		p.patchJump(skipJump)
	}
	p.consume(TokenRightBrace, "expect '}' after branch clauses")

	for _, j := range endJumps {
		p.patchJump(j)
	}
}

// whileStatement's condition is peeked (OpJumpIfFalse); continue jumps
// straight back to the test, so locals never need special unwinding
// beyond what emitLoopExitPops/endScope already handle.
func (p *parser) whileStatement() {
	loopStart := len(p.currentChunk().Code)
	p.pushLoop(loopStart)

	p.consume(TokenLeftParen, "expect '(' after 'while'")
	p.expression()
	p.consume(TokenRightParen, "expect ')' after condition")

	exitJump := p.emitJump(vm.OpJumpIfFalse)
	p.emitOp(vm.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(vm.OpPop)
	p.patchLoopExit(p.popLoop())
}

// doWhileStatement runs the body once unconditionally before testing,
// so continue cannot jump backward to a loop start that precedes the
// body: it jumps forward to the condition instead, recorded via
// pushLoopForward and patched once the condition's address is known.
func (p *parser) doWhileStatement() {
	bodyStart := len(p.currentChunk().Code)
	p.pushLoopForward()

	p.statement()

	lc := p.fn.loop
	for _, j := range lc.continueJumps {
		p.patchJump(j)
	}

	p.consume(TokenWhile, "expect 'while' after do block")
	p.consume(TokenLeftParen, "expect '(' after 'while'")
	p.expression()
	p.consume(TokenRightParen, "expect ')' after condition")
	p.consume(TokenSemicolon, "expect ';' after do-while statement")

	exitJump := p.emitJump(vm.OpJumpIfFalsePop)
	p.emitLoop(bodyStart)
	p.patchJump(exitJump)
	p.patchLoopExit(p.popLoop())
}

// forStatement desugars `for (init; cond; incr) body` exactly as while,
// with incr spliced between the body and the backward jump so continue
// (a plain backward jump to incr) still runs it.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(TokenLeftParen, "expect '(' after 'for'")

	switch {
	case p.match(TokenSemicolon):
	case p.match(TokenVar):
		p.variableDeclaration(false)
	default:
		p.expressionStatement()
	}

	loopStart := len(p.currentChunk().Code)
	exitJump := -1
	if !p.match(TokenSemicolon) {
		p.expression()
		p.consume(TokenSemicolon, "expect ';' after loop condition")
		exitJump = p.emitJump(vm.OpJumpIfFalse)
		p.emitOp(vm.OpPop)
	}

	if !p.check(TokenRightParen) {
		bodyJump := p.emitJump(vm.OpJump)
		incrStart := len(p.currentChunk().Code)
		p.expression()
		p.emitOp(vm.OpPop)
		p.consume(TokenRightParen, "expect ')' after for clauses")
		p.emitLoop(loopStart)
		loopStart = incrStart
		p.patchJump(bodyJump)
	} else {
		p.consume(TokenRightParen, "expect ')' after for clauses")
	}

	p.pushLoop(loopStart)
	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(vm.OpPop)
	}
	p.patchLoopExit(p.popLoop())
	p.endScope()
}

func (p *parser) breakStatement() {
	lc := p.fn.loop
	if lc == nil {
		p.error("can't use 'break' outside of a loop")
		p.consume(TokenSemicolon, "expect ';' after 'break'")
		return
	}
	p.consume(TokenSemicolon, "expect ';' after 'break'")
	p.emitLoopExitPops(lc.enterLocalCount)
	lc.breakJumps = append(lc.breakJumps, p.emitJump(vm.OpJump))
}

func (p *parser) continueStatement() {
	lc := p.fn.loop
	if lc == nil {
		p.error("can't use 'continue' outside of a loop")
		p.consume(TokenSemicolon, "expect ';' after 'continue'")
		return
	}
	p.consume(TokenSemicolon, "expect ';' after 'continue'")
	p.emitLoopExitPops(lc.enterLocalCount)
	if lc.continueIsForward {
		lc.continueJumps = append(lc.continueJumps, p.emitJump(vm.OpJump))
		return
	}
	p.emitLoop(lc.continueTarget)
}

// --- functions and classes ------------------------------------------------

func (p *parser) funDeclaration() {
	p.consume(TokenIdentifier, "expect function name")
	name := p.previous.Lexeme
	p.declareVariable(name, false)
	p.markInitialized()
	p.function(vm.FuncFunction, name)
	p.defineVariable(name)
}

func (p *parser) parameterList(fs *funcState) {
	if !p.check(TokenRightParen) {
		for {
			fs.function.Arity++
			if fs.function.Arity > maxArgs {
				p.error("can't have more than 255 parameters")
			}
			p.consume(TokenIdentifier, "expect parameter name")
			p.declareVariable(p.previous.Lexeme, false)
			p.markInitialized()
			if !p.match(TokenComma) {
				break
			}
		}
	}
}

// function compiles the body of a named fun/method declaration into a
// fresh funcState, then hands off to closeFunction to emit the OpClosure
// back in the enclosing chunk.
func (p *parser) function(kind vm.FunctionKind, name string) {
	enclosing := p.fn
	fs := newFuncState(enclosing, kind)
	if name != "" {
		fs.function.Name = p.vmi.Intern(name)
	}
	p.fn = fs

	p.beginScope()
	p.consume(TokenLeftParen, "expect '(' after function name")
	p.parameterList(fs)
	p.consume(TokenRightParen, "expect ')' after parameters")
	p.consume(TokenLeftBrace, "expect '{' before function body")
	p.block()

	p.closeFunction(enclosing)
}

// closeFunction finishes the function currently being compiled: emits
// its implicit return, registers it with the runtime so it gets an id
// and joins the static object list, then switches back to enclosing and
// emits the OpClosure (plus its upvalue operand pairs) that captures it
// as a value there.
func (p *parser) closeFunction(enclosing *funcState) {
	p.emitReturn()
	fn := p.fn.function
	fn.UpvalueCount = len(p.fn.upvalues)
	p.vmi.RegisterFunction(fn)
	upvalues := p.fn.upvalues

	p.fn = enclosing
	idx := p.vmi.AddConstant(vm.ObjValue(&fn.Obj))
	p.emitOp(vm.OpClosure)
	p.emitUint24(idx)
	for _, uv := range upvalues {
		if uv.isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitUint16(uint16(uv.index))
	}
}

func (p *parser) classDeclaration() {
	p.consume(TokenIdentifier, "expect class name")
	className := p.previous.Lexeme
	nameConstant := p.identifierConstant(className)
	p.declareVariable(className, false)

	p.emitOp(vm.OpClass)
	p.emitUint24(nameConstant)
	p.defineVariable(className)

	cs := &classState{enclosing: p.class}
	p.class = cs

	if p.match(TokenLess) {
		p.consume(TokenIdentifier, "expect superclass name")
		p.variable(false)
		if p.previous.Lexeme == className {
			p.error("a class can't inherit from itself")
		}

		p.beginScope()
		p.addLocal("super", false)
		p.markInitialized()

		p.namedVariable(Token{Type: TokenIdentifier, Lexeme: className}, false)
		p.emitOp(vm.OpInherit)
		cs.hasSuperclass = true
	}

	p.namedVariable(Token{Type: TokenIdentifier, Lexeme: className}, false)
	p.consume(TokenLeftBrace, "expect '{' before class body")
	for !p.check(TokenRightBrace) && !p.check(TokenEOF) {
		p.method()
	}
	p.consume(TokenRightBrace, "expect '}' after class body")
	p.emitOp(vm.OpPop)

	if cs.hasSuperclass {
		p.endScope()
	}
	p.class = cs.enclosing
}

func (p *parser) method() {
	p.consume(TokenIdentifier, "expect method name")
	name := p.previous.Lexeme
	nameConstant := p.identifierConstant(name)

	kind := vm.FuncMethod
	if name == "init" {
		kind = vm.FuncInitializer
	}
	p.function(kind, name)

	p.emitOp(vm.OpMethod)
	p.emitUint24(nameConstant)
}
