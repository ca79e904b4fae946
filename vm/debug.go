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
	"io"
)

// Disassemble writes a human-readable listing of fn's chunk to w, one
// instruction per line, used by engine.RunFileTraced (the -trace flag). vmi
// resolves CONSTANT-family operands against the VM-global constant pool.
func Disassemble(w io.Writer, vmi *Instance, fn *ObjFunction, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	code := fn.Chunk.Code
	for offset := 0; offset < len(code); {
		offset = disassembleInstruction(w, vmi, fn, offset)
	}
}

func disassembleInstruction(w io.Writer, vmi *Instance, fn *ObjFunction, offset int) int {
	chunk := &fn.Chunk
	fmt.Fprintf(w, "%04d %4d ", offset, chunk.LineAt(offset))
	op := OpCode(chunk.Code[offset])
	switch op {
	case OpConstant, OpDefineGlobal, OpGetGlobal, OpSetGlobal,
		OpNewProperty, OpGetProperty, OpSetProperty,
		OpClass, OpMethod, OpGetSuper:
		idx := chunk.ReadUint24(offset + 1)
		fmt.Fprintf(w, "%-18s %4d\n", op, idx)
		return offset + 4
	case OpGetLocal, OpSetLocal, OpNewArray, OpPopN,
		OpJump, OpLoop, OpJumpIfFalse, OpJumpIfFalsePop, OpJumpIfTrue:
		operand := chunk.ReadUint16(offset + 1)
		fmt.Fprintf(w, "%-18s %4d\n", op, operand)
		return offset + 3
	case OpGetUpvalue, OpSetUpvalue, OpCall, OpBitwise, OpModuleBuiltin:
		operand := chunk.Code[offset+1]
		if op == OpModuleBuiltin {
			fmt.Fprintf(w, "%-18s %s\n", op, moduleNames[operand])
		} else {
			fmt.Fprintf(w, "%-18s %4d\n", op, operand)
		}
		return offset + 2
	case OpInvoke, OpSuperInvoke:
		idx := chunk.ReadUint24(offset + 1)
		argc := chunk.Code[offset+4]
		fmt.Fprintf(w, "%-18s %4d (%d args)\n", op, idx, argc)
		return offset + 5
	case OpClosure:
		idx := chunk.ReadUint24(offset + 1)
		fmt.Fprintf(w, "%-18s %4d\n", op, idx)
		next := offset + 4
		nested := vmi.constants[idx].AsFunction()
		for i := 0; i < nested.UpvalueCount; i++ {
			isLocal := chunk.Code[next]
			index := chunk.ReadUint16(next + 1)
			kind := "upvalue"
			if isLocal != 0 {
				kind = "local"
			}
			fmt.Fprintf(w, "%04d      |                     %s %d\n", next, kind, index)
			next += 3
		}
		return next
	case OpImport:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}
