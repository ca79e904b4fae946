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

// OpCode is a single bytecode instruction. Multi-byte operands are
// little-endian; CONST24 operands are 24-bit constant-array indices.
type OpCode byte

const (
	OpConstant OpCode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpPopN

	OpGetLocal
	OpSetLocal
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue

	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal

	OpNewArray
	OpNewObject
	OpNewProperty
	OpGetSubscript
	OpSetSubscript
	OpGetProperty
	OpSetProperty

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
	OpNegate
	OpNot
	OpBitwise

	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpInstanceOf
	OpTypeOf

	OpJump
	OpLoop
	OpJumpIfFalse
	OpJumpIfFalsePop
	OpJumpIfTrue

	OpCall
	OpInvoke
	OpSuperInvoke
	OpReturn

	OpClosure
	OpClass
	OpInherit
	OpMethod
	OpGetSuper

	OpModuleBuiltin

	OpPrint
	OpThrow
	OpImport

	opCodeCount
)

// BitOp selects the operation performed by OpBitwise.
type BitOp byte

const (
	BitNot BitOp = iota
	BitAnd
	BitOr
	BitXor
	BitShl
	BitSar // arithmetic (signed) right shift, source `>>`
	BitShr // logical (unsigned) right shift, source `>>>`
)

var opcodeNames = [opCodeCount]string{
	OpConstant:        "CONSTANT",
	OpNil:             "NIL",
	OpTrue:            "TRUE",
	OpFalse:           "FALSE",
	OpPop:             "POP",
	OpPopN:            "POP_N",
	OpGetLocal:        "GET_LOCAL",
	OpSetLocal:        "SET_LOCAL",
	OpGetUpvalue:      "GET_UPVALUE",
	OpSetUpvalue:      "SET_UPVALUE",
	OpCloseUpvalue:    "CLOSE_UPVALUE",
	OpDefineGlobal:    "DEFINE_GLOBAL",
	OpGetGlobal:       "GET_GLOBAL",
	OpSetGlobal:       "SET_GLOBAL",
	OpNewArray:        "NEW_ARRAY",
	OpNewObject:       "NEW_OBJECT",
	OpNewProperty:     "NEW_PROPERTY",
	OpGetSubscript:    "GET_SUBSCRIPT",
	OpSetSubscript:    "SET_SUBSCRIPT",
	OpGetProperty:     "GET_PROPERTY",
	OpSetProperty:     "SET_PROPERTY",
	OpAdd:             "ADD",
	OpSubtract:        "SUBTRACT",
	OpMultiply:        "MULTIPLY",
	OpDivide:          "DIVIDE",
	OpModulus:         "MODULUS",
	OpNegate:          "NEGATE",
	OpNot:             "NOT",
	OpBitwise:         "BITWISE",
	OpEqual:           "EQUAL",
	OpNotEqual:        "NOT_EQUAL",
	OpLess:            "LESS",
	OpLessEqual:       "LESS_EQUAL",
	OpGreater:         "GREATER",
	OpGreaterEqual:    "GREATER_EQUAL",
	OpInstanceOf:      "INSTANCE_OF",
	OpTypeOf:          "TYPE_OF",
	OpJump:            "JUMP",
	OpLoop:            "LOOP",
	OpJumpIfFalse:     "JUMP_IF_FALSE",
	OpJumpIfFalsePop:  "JUMP_IF_FALSE_POP",
	OpJumpIfTrue:      "JUMP_IF_TRUE",
	OpCall:            "CALL",
	OpInvoke:          "INVOKE",
	OpSuperInvoke:     "SUPER_INVOKE",
	OpReturn:          "RETURN",
	OpClosure:         "CLOSURE",
	OpClass:           "CLASS",
	OpInherit:         "INHERIT",
	OpMethod:          "METHOD",
	OpGetSuper:        "GET_SUPER",
	OpModuleBuiltin:   "MODULE_BUILTIN",
	OpPrint:           "PRINT",
	OpThrow:           "THROW",
	OpImport:          "IMPORT",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "UNKNOWN"
}

// Module namespace indices for OpModuleBuiltin's operand.
const (
	ModuleMath ModuleIndex = iota
	ModuleArray
	ModuleObject
	ModuleString
	ModuleTime
	ModuleCtor
	ModuleSystem
	moduleCount
)

// ModuleIndex selects one of the seven frozen builtin namespaces.
type ModuleIndex byte

var moduleNames = [moduleCount]string{
	ModuleMath:   "math",
	ModuleArray:  "array",
	ModuleObject: "object",
	ModuleString: "string",
	ModuleTime:   "time",
	ModuleCtor:   "ctor",
	ModuleSystem: "system",
}
