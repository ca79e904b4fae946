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

// Package vm implements the stack-based bytecode interpreter: value
// representation, heap objects, the collector, and the instruction
// dispatch loop. It has no knowledge of source syntax; compiled chunks
// reach it through the Instance.Compiler hook, injected by package
// engine to avoid an import cycle between the interpreter and the
// compiler that targets it.
package vm

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/loxflux/loxflux/internal/pathutil"
	"github.com/loxflux/loxflux/internal/prng"
)

// CompileFunc compiles source into a callable script-level function.
// moduleName is the absolute path used for import-cache keys and error
// messages. Implemented by package compiler, injected by package engine.
type CompileFunc func(vmi *Instance, source, moduleName string) (*ObjFunction, error)

// Instance is one VM: its stack, call frames, heap, globals and the
// seven frozen builtin module namespaces.
type Instance struct {
	stack []Value
	sp    int

	frames     [MaxFrames]callFrame
	frameCount int

	globals      *Table
	strings      *stringPool
	openUpvalues *ObjUpvalue

	gcHead         *Obj
	staticHead     *Obj
	gcParity       bool
	grayStack      []*Obj
	bytesAllocated int
	nextGC         int
	nextFuncID     uint32

	// constants is the single VM-global, append-only constant pool every
	// compiled chunk's 24-bit CONSTANT-family operands index into.
	// constantHoles holds freed slots (see AddConstant) for reuse.
	constants     []Value
	constantHoles []uint32
	numbers       *NumberPool
	stringConsts  map[string]uint32

	Compiler     CompileFunc
	ModuleReader func(path string) (string, error)
	Rng          *prng.Xoshiro256SS
	Stdout       io.Writer
	Stderr       io.Writer
	BaseDir      string

	moduleCache   map[string]Value
	moduleLoading map[string]bool
	modules       [moduleCount]*ObjInstance
}

// stackMax is the value stack's initial capacity. It grows by doubling
// (see growStack) up to maxStackSlots rather than staying fixed.
const stackMax = MaxFrames * 64

// maxStackSlots upper-bounds stack growth; a push that would need more
// raises a value-stack-overflow runtime error instead of growing further.
const maxStackSlots = 16 * 1024 * 1024

// NewInstance builds a VM ready to run scripts, with globals and module
// namespaces empty; callers (package engine) populate modules via
// SetModule before the first Run.
func NewInstance() *Instance {
	vmi := &Instance{
		stack:         make([]Value, stackMax),
		globals:       NewTable(),
		gcParity:      true,
		nextGC:        gcInitialThreshold,
		Rng:           prng.NewFromTime(),
		Stdout:        io.Discard,
		Stderr:        io.Discard,
		moduleCache:   make(map[string]Value),
		moduleLoading: make(map[string]bool),
		numbers:       NewNumberPool(),
		stringConsts:  make(map[string]uint32),
	}
	vmi.strings = newStringPool()
	return vmi
}

// AddConstant appends v to the constant pool and returns its index,
// reusing a freed slot (pushed onto constantHoles) before growing the
// array. Callers (the compiler's interning layers) are responsible for
// dedup; this always allocates a fresh slot.
func (vmi *Instance) AddConstant(v Value) uint32 {
	if n := len(vmi.constantHoles); n > 0 {
		idx := vmi.constantHoles[n-1]
		vmi.constantHoles = vmi.constantHoles[:n-1]
		vmi.constants[idx] = v
		return idx
	}
	vmi.constants = append(vmi.constants, v)
	return uint32(len(vmi.constants) - 1)
}

// InternNumber returns the constant-pool index for the numeric literal
// n, sharing one global slot for every literal with the same bit
// pattern (so every NaN literal collapses onto one slot, regardless of
// which function it was compiled in).
func (vmi *Instance) InternNumber(n float64) uint32 {
	return vmi.numbers.Intern(vmi, n)
}

// InternNameConstant returns the constant-pool index for the interned
// name string, reusing the slot if any function compiled so far already
// referenced the same name (global names, property and method names).
func (vmi *Instance) InternNameConstant(name string) uint32 {
	if idx, ok := vmi.stringConsts[name]; ok {
		return idx
	}
	str := vmi.Intern(name)
	idx := vmi.AddConstant(ObjValue(&str.Obj))
	vmi.stringConsts[name] = idx
	return idx
}

// Intern returns the canonical *ObjString for s.
func (vmi *Instance) Intern(s string) *ObjString { return vmi.strings.Intern(vmi, s) }

// SetModule installs the frozen namespace instance for one of the
// seven builtin modules (@math, @array, ...).
func (vmi *Instance) SetModule(idx ModuleIndex, inst *ObjInstance) { vmi.modules[idx] = inst }

// DefineGlobal binds name to value in the top-level global table.
func (vmi *Instance) DefineGlobal(name string, value Value) {
	vmi.globals.SetGlobal(vmi.Intern(name), value)
}

// RegisterFunction assigns fn a unique id and links it into the static
// object list, called by package compiler once a function's chunk is
// fully emitted. Functions are static: never scanned or freed by the
// collector, only released when the Instance itself is discarded.
func (vmi *Instance) RegisterFunction(fn *ObjFunction) {
	vmi.nextFuncID++
	fn.ID = vmi.nextFuncID
	vmi.linkStatic(&fn.Obj, TypeFunction)
}

// push appends v to the value stack, growing it (doubling, upper-bounded
// at maxStackSlots) if it is full. Growth reallocates the backing array,
// so every open upvalue's Location is relocated to point into the new
// one; callers never hold a *Value across a push.
func (vmi *Instance) push(v Value) error {
	if vmi.sp == len(vmi.stack) {
		if err := vmi.growStack(); err != nil {
			return err
		}
	}
	vmi.stack[vmi.sp] = v
	vmi.sp++
	return nil
}

func (vmi *Instance) growStack() error {
	if len(vmi.stack) >= maxStackSlots {
		return vmi.runtimeErrorf("value stack overflow")
	}
	newCap := len(vmi.stack) * 2
	if newCap > maxStackSlots {
		newCap = maxStackSlots
	}
	newStack := make([]Value, newCap)
	copy(newStack, vmi.stack)
	oldBase := &vmi.stack[0]
	for uv := vmi.openUpvalues; uv != nil; uv = uv.NextOpen {
		uv.Location = &newStack[slotOf(oldBase, uv.Location)]
	}
	vmi.stack = newStack
	return nil
}

func (vmi *Instance) pop() Value {
	vmi.sp--
	return vmi.stack[vmi.sp]
}

func (vmi *Instance) popN(n int) { vmi.sp -= n }

func (vmi *Instance) peek(distance int) Value { return vmi.stack[vmi.sp-1-distance] }

// Interpret compiles and runs source as the top-level script of module
// moduleName (an absolute path, used for the import cache and traces).
func (vmi *Instance) Interpret(source, moduleName string) error {
	fn, err := vmi.Compiler(vmi, source, moduleName)
	if err != nil {
		return err
	}
	return vmi.Run(fn)
}

// Compile runs the configured Compiler without executing the result,
// for callers (the CLI's -trace flag) that need the function object
// before it starts mutating VM state.
func (vmi *Instance) Compile(source, moduleName string) (*ObjFunction, error) {
	return vmi.Compiler(vmi, source, moduleName)
}

// Run wraps fn in a closure and executes it in a fresh frame 0, the way
// Interpret does for a freshly compiled script.
func (vmi *Instance) Run(fn *ObjFunction) error {
	closure := &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
	vmi.linkManaged(&closure.Obj, TypeClosure)
	if err := vmi.push(ObjValue(&closure.Obj)); err != nil {
		return err
	}
	if err := vmi.call(closure, 0); err != nil {
		return err
	}
	return vmi.run()
}

func (vmi *Instance) run() error {
	for {
		frame := &vmi.frames[vmi.frameCount-1]
		code := frame.closure.Function.Chunk.Code
		op := OpCode(code[frame.ip])
		frame.ip++

		switch op {
		case OpConstant:
			idx := frame.closure.Function.Chunk.ReadUint24(frame.ip)
			frame.ip += 3
			if err := vmi.push(vmi.constants[idx]); err != nil {
				return err
			}

		case OpNil:
			if err := vmi.push(Nil); err != nil {
				return err
			}
		case OpTrue:
			if err := vmi.push(True); err != nil {
				return err
			}
		case OpFalse:
			if err := vmi.push(False); err != nil {
				return err
			}
		case OpPop:
			vmi.pop()
		case OpPopN:
			n := int(frame.closure.Function.Chunk.ReadUint16(frame.ip))
			frame.ip += 2
			vmi.popN(n)

		case OpGetLocal:
			slot := int(frame.closure.Function.Chunk.ReadUint16(frame.ip))
			frame.ip += 2
			if err := vmi.push(vmi.stack[frame.base+slot]); err != nil {
				return err
			}
		case OpSetLocal:
			slot := int(frame.closure.Function.Chunk.ReadUint16(frame.ip))
			frame.ip += 2
			vmi.stack[frame.base+slot] = vmi.peek(0)

		case OpGetUpvalue:
			idx := code[frame.ip]
			frame.ip++
			uv := frame.closure.Upvalues[idx]
			if err := vmi.push(*uv.Location); err != nil {
				return err
			}
		case OpSetUpvalue:
			idx := code[frame.ip]
			frame.ip++
			uv := frame.closure.Upvalues[idx]
			*uv.Location = vmi.peek(0)
		case OpCloseUpvalue:
			vmi.closeUpvalues(vmi.sp - 1)
			vmi.pop()

		case OpDefineGlobal:
			name := vmi.readConstantString(frame)
			vmi.globals.SetGlobal(name, vmi.peek(0))
			vmi.pop()
		case OpGetGlobal:
			name := vmi.readConstantString(frame)
			v, ok := vmi.globals.GetGlobal(name)
			if !ok {
				return vmi.runtimeErrorf("undefined variable '%s'", name.Chars)
			}
			if err := vmi.push(v); err != nil {
				return err
			}
		case OpSetGlobal:
			name := vmi.readConstantString(frame)
			if !vmi.globalExists(name) {
				return vmi.runtimeErrorf("undefined variable '%s'", name.Chars)
			}
			vmi.globals.SetGlobal(name, vmi.peek(0))

		case OpNewArray:
			count := int(frame.closure.Function.Chunk.ReadUint16(frame.ip))
			frame.ip += 2
			values := make([]Value, count)
			copy(values, vmi.stack[vmi.sp-count:vmi.sp])
			vmi.popN(count)
			arr := &ObjArray{Values: values}
			vmi.linkManaged(&arr.Obj, TypeArray)
			if err := vmi.push(ObjValue(&arr.Obj)); err != nil {
				return err
			}

		case OpNewObject:
			inst := &ObjInstance{Fields: NewTable()}
			vmi.linkManaged(&inst.Obj, TypeInstance)
			if err := vmi.push(ObjValue(&inst.Obj)); err != nil {
				return err
			}
		case OpNewProperty:
			name := vmi.readConstantString(frame)
			value := vmi.pop()
			inst := vmi.peek(0).AsInstance()
			inst.Fields.Set(name, value)

		case OpGetSubscript:
			if err := vmi.execGetSubscript(); err != nil {
				return err
			}
		case OpSetSubscript:
			if err := vmi.execSetSubscript(); err != nil {
				return err
			}
		case OpGetProperty:
			name := vmi.readConstantString(frame)
			if err := vmi.execGetProperty(name); err != nil {
				return err
			}
		case OpSetProperty:
			name := vmi.readConstantString(frame)
			value := vmi.pop()
			receiver := vmi.pop()
			if !receiver.IsInstance() {
				return vmi.runtimeErrorf("only objects have settable properties")
			}
			receiver.AsInstance().Fields.Set(name, value)
			if err := vmi.push(value); err != nil {
				return err
			}

		case OpAdd:
			if err := vmi.execAdd(); err != nil {
				return err
			}
		case OpSubtract:
			if err := vmi.binaryNumeric(func(a, b float64) float64 { return a - b }); err != nil {
				return err
			}
		case OpMultiply:
			if err := vmi.binaryNumeric(func(a, b float64) float64 { return a * b }); err != nil {
				return err
			}
		case OpDivide:
			if err := vmi.binaryNumeric(func(a, b float64) float64 { return a / b }); err != nil {
				return err
			}
		case OpModulus:
			if err := vmi.binaryNumeric(math.Mod); err != nil {
				return err
			}
		case OpNegate:
			if !vmi.peek(0).IsNumber() {
				return vmi.runtimeErrorf("operand must be a number")
			}
			if err := vmi.push(Number(-vmi.pop().AsNumber())); err != nil {
				return err
			}
		case OpNot:
			if err := vmi.push(Bool(vmi.pop().IsFalsey())); err != nil {
				return err
			}
		case OpBitwise:
			bop := BitOp(code[frame.ip])
			frame.ip++
			if err := vmi.execBitwise(bop); err != nil {
				return err
			}

		case OpEqual:
			b, a := vmi.pop(), vmi.pop()
			if err := vmi.push(Bool(Equals(a, b))); err != nil {
				return err
			}
		case OpNotEqual:
			b, a := vmi.pop(), vmi.pop()
			if err := vmi.push(Bool(!Equals(a, b))); err != nil {
				return err
			}
		case OpLess:
			if err := vmi.compare(func(a, b float64) bool { return a < b }); err != nil {
				return err
			}
		case OpLessEqual:
			if err := vmi.compare(func(a, b float64) bool { return a <= b }); err != nil {
				return err
			}
		case OpGreater:
			if err := vmi.compare(func(a, b float64) bool { return a > b }); err != nil {
				return err
			}
		case OpGreaterEqual:
			if err := vmi.compare(func(a, b float64) bool { return a >= b }); err != nil {
				return err
			}
		case OpInstanceOf:
			if err := vmi.execInstanceOf(); err != nil {
				return err
			}
		case OpTypeOf:
			if err := vmi.push(ObjValue(&vmi.Intern(typeOf(vmi.pop())).Obj)); err != nil {
				return err
			}

		case OpJump:
			offset := frame.closure.Function.Chunk.ReadUint16(frame.ip)
			frame.ip += 2 + int(offset)
		case OpLoop:
			offset := frame.closure.Function.Chunk.ReadUint16(frame.ip)
			frame.ip = frame.ip + 2 - int(offset)
		case OpJumpIfFalse:
			offset := frame.closure.Function.Chunk.ReadUint16(frame.ip)
			frame.ip += 2
			if vmi.peek(0).IsFalsey() {
				frame.ip += int(offset)
			}
		case OpJumpIfFalsePop:
			offset := frame.closure.Function.Chunk.ReadUint16(frame.ip)
			frame.ip += 2
			if vmi.pop().IsFalsey() {
				frame.ip += int(offset)
			}
		case OpJumpIfTrue:
			offset := frame.closure.Function.Chunk.ReadUint16(frame.ip)
			frame.ip += 2
			if !vmi.peek(0).IsFalsey() {
				frame.ip += int(offset)
			}

		case OpCall:
			argCount := int(code[frame.ip])
			frame.ip++
			if err := vmi.callValue(vmi.peek(argCount), argCount); err != nil {
				return err
			}
		case OpInvoke:
			name := vmi.readConstantString(frame)
			argCount := int(code[frame.ip])
			frame.ip++
			if err := vmi.invoke(name, argCount); err != nil {
				return err
			}
		case OpSuperInvoke:
			name := vmi.readConstantString(frame)
			argCount := int(code[frame.ip])
			frame.ip++
			superclass := vmi.pop().AsClass()
			if err := vmi.invokeFromClass(superclass, name, argCount); err != nil {
				return err
			}
		case OpReturn:
			result := vmi.pop()
			vmi.closeUpvalues(frame.base)
			if frame.moduleKey != "" {
				vmi.moduleCache[frame.moduleKey] = result
			}
			vmi.frameCount--
			if vmi.frameCount == 0 {
				vmi.pop()
				return nil
			}
			vmi.sp = frame.base
			if err := vmi.push(result); err != nil {
				return err
			}

		case OpClosure:
			fn := vmi.readConstantFunction(frame)
			closure := &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
			vmi.linkManaged(&closure.Obj, TypeClosure)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := code[frame.ip]
				frame.ip++
				index := int(frame.closure.Function.Chunk.ReadUint16(frame.ip))
				frame.ip += 2
				if isLocal != 0 {
					closure.Upvalues[i] = vmi.captureUpvalue(frame.base + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			if err := vmi.push(ObjValue(&closure.Obj)); err != nil {
				return err
			}

		case OpClass:
			name := vmi.readConstantString(frame)
			class := &ObjClass{Name: name, Methods: NewTable(), Init: Nil}
			vmi.linkManaged(&class.Obj, TypeClass)
			if err := vmi.push(ObjValue(&class.Obj)); err != nil {
				return err
			}
		case OpInherit:
			superVal := vmi.peek(1)
			if !superVal.IsClass() {
				return vmi.runtimeErrorf("superclass must be a class")
			}
			sub := vmi.peek(0).AsClass()
			sub.Methods.AddAll(superVal.AsClass().Methods)
			sub.Init = superVal.AsClass().Init
			vmi.pop()
		case OpMethod:
			name := vmi.readConstantString(frame)
			method := vmi.pop()
			class := vmi.peek(0).AsClass()
			class.Methods.Set(name, method)
			if name.Chars == "init" {
				class.Init = method
			}
		case OpGetSuper:
			name := vmi.readConstantString(frame)
			superclass := vmi.pop().AsClass()
			receiver := vmi.pop()
			if err := vmi.bindMethod(receiver, superclass, name); err != nil {
				return err
			}

		case OpModuleBuiltin:
			idx := ModuleIndex(code[frame.ip])
			frame.ip++
			ns := vmi.modules[idx]
			if ns == nil {
				return vmi.runtimeErrorf("module '@%s' is not registered", moduleNames[idx])
			}
			if err := vmi.push(ObjValue(&ns.Obj)); err != nil {
				return err
			}

		case OpPrint:
			fmt.Fprintln(vmi.Stdout, Stringify(vmi.pop()))

		case OpThrow:
			return vmi.throwError(vmi.pop())

		case OpImport:
			pathVal := vmi.pop()
			path := Stringify(pathVal)
			if !pathVal.IsString() && !pathVal.IsStringBuilder() {
				return vmi.runtimeErrorf("import path must be a string")
			}
			if err := vmi.execImport(path); err != nil {
				return err
			}

		default:
			return errors.Errorf("unknown opcode %d", op)
		}
	}
}

func (vmi *Instance) readConstantString(frame *callFrame) *ObjString {
	idx := frame.closure.Function.Chunk.ReadUint24(frame.ip)
	frame.ip += 3
	return vmi.constants[idx].AsString()
}

func (vmi *Instance) readConstantFunction(frame *callFrame) *ObjFunction {
	idx := frame.closure.Function.Chunk.ReadUint24(frame.ip)
	frame.ip += 3
	return vmi.constants[idx].AsFunction()
}

func (vmi *Instance) globalExists(name *ObjString) bool {
	_, ok := vmi.globals.GetGlobal(name)
	return ok
}

func typeOf(v Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		return "bool"
	case v.IsNumber():
		return "number"
	case v.IsObj():
		return v.AsObj().Type.typeNameKey()
	default:
		return "unknown"
	}
}

// execImport resolves path against BaseDir, compiling it once per
// absolute path and caching the resulting module's exports value. A
// module body runs as an ordinary zero-argument call; its OpReturn
// caches the result (see the OpReturn case above) before resuming the
// importer, so a module is only ever compiled and executed once no
// matter how many times it is imported.
func (vmi *Instance) execImport(rawPath string) error {
	abs, err := pathutil.Abs(vmi.BaseDir, rawPath)
	if err != nil {
		return vmi.runtimeErrorf("cannot resolve import '%s': %v", rawPath, err)
	}
	if cached, ok := vmi.moduleCache[abs]; ok {
		return vmi.push(cached)
	}
	if vmi.moduleLoading[abs] {
		return vmi.runtimeErrorf("circular import of '%s'", abs)
	}
	if vmi.ModuleReader == nil {
		return vmi.runtimeErrorf("no module reader configured")
	}
	src, err := vmi.ModuleReader(abs)
	if err != nil {
		return vmi.runtimeErrorf("cannot read module '%s': %v", abs, err)
	}
	vmi.moduleLoading[abs] = true
	fn, err := vmi.Compiler(vmi, src, abs)
	delete(vmi.moduleLoading, abs)
	if err != nil {
		return err
	}
	closure := &ObjClosure{Function: fn, Upvalues: make([]*ObjUpvalue, fn.UpvalueCount)}
	vmi.linkManaged(&closure.Obj, TypeClosure)
	if err := vmi.push(ObjValue(&closure.Obj)); err != nil {
		return err
	}
	if err := vmi.call(closure, 0); err != nil {
		return err
	}
	vmi.frames[vmi.frameCount-1].moduleKey = abs
	return nil
}
