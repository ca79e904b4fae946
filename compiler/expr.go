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

func (p *parser) expression() { p.parsePrecedence(precAssignment) }

// parsePrecedence drives the Pratt parser: consume the prefix parselet
// for the next token, then keep folding infix operators in as long as
// they bind at least as tightly as minPrec.
func (p *parser) parsePrecedence(minPrec precedence) {
	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == nil {
		p.error("expect expression")
		return
	}
	canAssign := minPrec <= precAssignment
	prefix(p, canAssign)

	for minPrec <= getRule(p.current.Type).precedence {
		p.advance()
		infix := getRule(p.previous.Type).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(TokenEqual) {
		p.error("invalid assignment target")
	}
}

var moduleIndexByName = map[string]vm.ModuleIndex{
	"math":   vm.ModuleMath,
	"array":  vm.ModuleArray,
	"object": vm.ModuleObject,
	"string": vm.ModuleString,
	"time":   vm.ModuleTime,
	"ctor":   vm.ModuleCtor,
	"system": vm.ModuleSystem,
}

func (p *parser) moduleName(canAssign bool) {
	name := p.previous.Lexeme[1:] // strip leading '@'
	idx, ok := moduleIndexByName[name]
	if !ok {
		p.error("unknown builtin module")
		return
	}
	p.emitOp(vm.OpModuleBuiltin)
	p.emitByte(byte(idx))
}

func (p *parser) number(canAssign bool) {
	idx := p.vmi.InternNumber(p.previous.Literal)
	p.emitOp(vm.OpConstant)
	p.emitUint24(idx)
}

func (p *parser) stringLiteral(canAssign bool) {
	str := p.vmi.Intern(p.previous.Lexeme)
	p.emitConstant(vm.ObjValue(&str.Obj))
}

func (p *parser) literal(canAssign bool) {
	switch p.previous.Type {
	case TokenFalse:
		p.emitOp(vm.OpFalse)
	case TokenTrue:
		p.emitOp(vm.OpTrue)
	case TokenNil, TokenNone:
		p.emitOp(vm.OpNil)
	}
}

func (p *parser) grouping(canAssign bool) {
	p.expression()
	p.consume(TokenRightParen, "expect ')' after expression")
}

func (p *parser) arrayLiteral(canAssign bool) {
	count := 0
	if !p.check(TokenRightBracket) {
		for {
			p.expression()
			count++
			if count > 0xffff {
				p.error("too many elements in array literal")
			}
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightBracket, "expect ']' after array elements")
	p.emitOp(vm.OpNewArray)
	p.emitUint16(uint16(count))
}

// objectLiteral compiles `{ name: expr, ... }`: an OpNewObject followed
// by one OpNewProperty per field, each consuming the field's value off
// the stack and leaving the object on top.
func (p *parser) objectLiteral(canAssign bool) {
	p.emitOp(vm.OpNewObject)
	if !p.check(TokenRightBrace) {
		for {
			var name string
			switch {
			case p.match(TokenIdentifier), p.match(TokenString):
				name = p.previous.Lexeme
			default:
				p.errorAtCurrent("expect property name")
				return
			}
			nameConstant := p.identifierConstant(name)
			p.consume(TokenColon, "expect ':' after property name")
			p.expression()
			p.emitOp(vm.OpNewProperty)
			p.emitUint24(nameConstant)
			if !p.match(TokenComma) {
				break
			}
			if p.check(TokenRightBrace) {
				break
			}
		}
	}
	p.consume(TokenRightBrace, "expect '}' after object literal")
}

func (p *parser) subscript(canAssign bool) {
	p.expression()
	p.consume(TokenRightBracket, "expect ']' after subscript index")
	if canAssign && p.match(TokenEqual) {
		p.expression()
		p.emitOp(vm.OpSetSubscript)
	} else {
		p.emitOp(vm.OpGetSubscript)
	}
}

func (p *parser) dot(canAssign bool) {
	p.consume(TokenIdentifier, "expect property name after '.'")
	name := p.previous.Lexeme
	nameConstant := p.identifierConstant(name)
	switch {
	case canAssign && p.match(TokenEqual):
		p.expression()
		p.emitOp(vm.OpSetProperty)
		p.emitUint24(nameConstant)
	case p.match(TokenLeftParen):
		argCount := p.argumentList()
		p.emitOp(vm.OpInvoke)
		p.emitUint24(nameConstant)
		p.emitByte(byte(argCount))
	default:
		p.emitOp(vm.OpGetProperty)
		p.emitUint24(nameConstant)
	}
}

func (p *parser) call(canAssign bool) {
	argCount := p.argumentList()
	p.emitOp(vm.OpCall)
	p.emitByte(byte(argCount))
}

func (p *parser) argumentList() int {
	count := 0
	if !p.check(TokenRightParen) {
		for {
			p.expression()
			count++
			if count > maxArgs {
				p.error("can't have more than 255 arguments")
			}
			if !p.match(TokenComma) {
				break
			}
		}
	}
	p.consume(TokenRightParen, "expect ')' after arguments")
	return count
}

func (p *parser) and(canAssign bool) {
	endJump := p.emitJump(vm.OpJumpIfFalse)
	p.emitOp(vm.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func (p *parser) or(canAssign bool) {
	thenJump := p.emitJump(vm.OpJumpIfTrue)
	p.emitOp(vm.OpPop)
	p.parsePrecedence(precOr)
	p.patchJump(thenJump)
}

func (p *parser) unary(canAssign bool) {
	opType := p.previous.Type
	p.parsePrecedence(precUnary)
	switch opType {
	case TokenMinus:
		p.emitOp(vm.OpNegate)
	case TokenBang:
		p.emitOp(vm.OpNot)
	case TokenTilde:
		p.emitOp(vm.OpBitwise)
		p.emitByte(byte(vm.BitNot))
	case TokenTypeof:
		p.emitOp(vm.OpTypeOf)
	}
}

func (p *parser) binary(canAssign bool) {
	opType := p.previous.Type
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)
	switch opType {
	case TokenPlus:
		p.emitOp(vm.OpAdd)
	case TokenMinus:
		p.emitOp(vm.OpSubtract)
	case TokenStar:
		p.emitOp(vm.OpMultiply)
	case TokenSlash:
		p.emitOp(vm.OpDivide)
	case TokenPercent:
		p.emitOp(vm.OpModulus)
	case TokenBangEqual:
		p.emitOp(vm.OpNotEqual)
	case TokenEqualEqual:
		p.emitOp(vm.OpEqual)
	case TokenGreater:
		p.emitOp(vm.OpGreater)
	case TokenGreaterEqual:
		p.emitOp(vm.OpGreaterEqual)
	case TokenLess:
		p.emitOp(vm.OpLess)
	case TokenLessEqual:
		p.emitOp(vm.OpLessEqual)
	case TokenAmp:
		p.emitOp(vm.OpBitwise)
		p.emitByte(byte(vm.BitAnd))
	case TokenPipe:
		p.emitOp(vm.OpBitwise)
		p.emitByte(byte(vm.BitOr))
	case TokenCaret:
		p.emitOp(vm.OpBitwise)
		p.emitByte(byte(vm.BitXor))
	case TokenShl:
		p.emitOp(vm.OpBitwise)
		p.emitByte(byte(vm.BitShl))
	case TokenShr:
		p.emitOp(vm.OpBitwise)
		p.emitByte(byte(vm.BitSar))
	case TokenUShr:
		p.emitOp(vm.OpBitwise)
		p.emitByte(byte(vm.BitShr))
	case TokenInstanceOf:
		p.emitOp(vm.OpInstanceOf)
	}
}

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

// namedVariable resolves an identifier against locals, then upvalues,
// then falls back to a global, emitting the matching get/set pair.
func (p *parser) namedVariable(name Token, canAssign bool) {
	var getOp, setOp vm.OpCode
	isConst := false
	arg := p.resolveLocal(p.fn, name.Lexeme)
	switch {
	case arg != -1:
		getOp, setOp = vm.OpGetLocal, vm.OpSetLocal
		isConst = p.fn.locals[arg].isConst
	default:
		if up := p.resolveUpvalue(p.fn, name.Lexeme); up != -1 {
			arg = up
			getOp, setOp = vm.OpGetUpvalue, vm.OpSetUpvalue
		} else {
			arg = int(p.identifierConstant(name.Lexeme))
			getOp, setOp = vm.OpGetGlobal, vm.OpSetGlobal
		}
	}

	if canAssign && p.match(TokenEqual) {
		if isConst {
			p.error("cannot assign to a const variable")
		}
		p.expression()
		switch setOp {
		case vm.OpSetLocal:
			p.emitOp(setOp)
			p.emitUint16(uint16(arg))
		case vm.OpSetUpvalue:
			p.emitOp(setOp)
			p.emitByte(byte(arg))
		default:
			p.emitOp(setOp)
			p.emitUint24(uint32(arg))
		}
		return
	}

	switch getOp {
	case vm.OpGetLocal:
		p.emitOp(getOp)
		p.emitUint16(uint16(arg))
	case vm.OpGetUpvalue:
		p.emitOp(getOp)
		p.emitByte(byte(arg))
	default:
		p.emitOp(getOp)
		p.emitUint24(uint32(arg))
	}
}

func (p *parser) this(canAssign bool) {
	if p.class == nil {
		p.error("can't use 'this' outside of a class")
		return
	}
	p.namedVariable(Token{Type: TokenThis, Lexeme: "this"}, false)
}

func (p *parser) super(canAssign bool) {
	if p.class == nil {
		p.error("can't use 'super' outside of a class")
	} else if !p.class.hasSuperclass {
		p.error("can't use 'super' in a class with no superclass")
	}
	p.consume(TokenDot, "expect '.' after 'super'")
	p.consume(TokenIdentifier, "expect superclass method name")
	nameConstant := p.identifierConstant(p.previous.Lexeme)

	p.namedVariable(Token{Type: TokenThis, Lexeme: "this"}, false)
	if p.match(TokenLeftParen) {
		argCount := p.argumentList()
		p.namedVariable(Token{Type: TokenSuper, Lexeme: "super"}, false)
		p.emitOp(vm.OpSuperInvoke)
		p.emitUint24(nameConstant)
		p.emitByte(byte(argCount))
		return
	}
	p.namedVariable(Token{Type: TokenSuper, Lexeme: "super"}, false)
	p.emitOp(vm.OpGetSuper)
	p.emitUint24(nameConstant)
}

func (p *parser) importExpr(canAssign bool) {
	p.consume(TokenLeftParen, "expect '(' after 'import'")
	p.expression()
	p.consume(TokenRightParen, "expect ')' after import path")
	p.emitOp(vm.OpImport)
}

// functionExpr compiles an anonymous `fun (...) { ... }` expression.
func (p *parser) functionExpr(canAssign bool) {
	p.function(vm.FuncFunction, "")
}

// lambdaExpr compiles `lambda (params) expr`, a function whose body is
// a single expression standing in for its return value.
func (p *parser) lambdaExpr(canAssign bool) {
	enclosing := p.fn
	fs := newFuncState(enclosing, vm.FuncLambda)
	p.fn = fs

	p.beginScope()
	p.consume(TokenLeftParen, "expect '(' after 'lambda'")
	p.parameterList(fs)
	p.consume(TokenRightParen, "expect ')' after lambda parameters")
	p.expression()
	p.emitOp(vm.OpReturn)

	p.closeFunction(enclosing)
}
