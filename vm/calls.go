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

import "unsafe"

const valueSize = unsafe.Sizeof(Value(0))

func uintptrOf(v *Value) uintptr { return uintptr(unsafe.Pointer(v)) }

// callValue dispatches a CALL instruction: closures push a new frame,
// natives run to completion immediately, classes construct an instance
// and invoke `init`, bound methods rebind `this` and recurse.
func (vmi *Instance) callValue(callee Value, argCount int) error {
	if !callee.IsObj() {
		return vmi.runtimeErrorf("can only call functions and classes")
	}
	switch callee.AsObj().Type {
	case TypeClosure:
		return vmi.call(callee.AsClosure(), argCount)
	case TypeNative:
		return vmi.callNative(callee.AsNative(), argCount)
	case TypeClass:
		return vmi.instantiate(callee.AsClass(), argCount)
	case TypeBoundMethod:
		bm := callee.AsBoundMethod()
		vmi.stack[vmi.sp-argCount-1] = bm.Receiver
		return vmi.call(bm.Method, argCount)
	default:
		return vmi.runtimeErrorf("can only call functions and classes")
	}
}

func (vmi *Instance) call(closure *ObjClosure, argCount int) error {
	fn := closure.Function
	if argCount != fn.Arity {
		return vmi.runtimeErrorf("expected %d arguments but got %d", fn.Arity, argCount)
	}
	if vmi.frameCount == MaxFrames {
		return vmi.runtimeErrorf("stack overflow")
	}
	vmi.frames[vmi.frameCount] = callFrame{
		closure: closure,
		ip:      0,
		base:    vmi.sp - argCount - 1,
	}
	vmi.frameCount++
	return nil
}

func (vmi *Instance) callNative(native *ObjNative, argCount int) error {
	args := make([]Value, argCount)
	copy(args, vmi.stack[vmi.sp-argCount:vmi.sp])
	result, err := native.Fn(vmi, args)
	if err != nil {
		return err
	}
	vmi.popN(argCount + 1)
	return vmi.push(result)
}

func (vmi *Instance) instantiate(class *ObjClass, argCount int) error {
	inst := &ObjInstance{Class: class, Fields: NewTable()}
	vmi.linkManaged(&inst.Obj, TypeInstance)
	vmi.stack[vmi.sp-argCount-1] = ObjValue(&inst.Obj)
	if class.Init != Nil {
		return vmi.call(class.Init.AsClosure(), argCount)
	}
	if argCount != 0 {
		return vmi.runtimeErrorf("expected 0 arguments but got %d", argCount)
	}
	return nil
}

// invoke resolves and calls a method on the value argCount+1 slots down
// the stack in one step, skipping the intermediate bound-method
// allocation OpGetProperty+OpCall would otherwise require.
func (vmi *Instance) invoke(name *ObjString, argCount int) error {
	receiver := vmi.peek(argCount)
	if !receiver.IsInstance() {
		return vmi.runtimeErrorf("only objects have methods")
	}
	inst := receiver.AsInstance()
	if field, ok := inst.Fields.Get(name); ok {
		vmi.stack[vmi.sp-argCount-1] = field
		return vmi.callValue(field, argCount)
	}
	if inst.Class == nil {
		return vmi.runtimeErrorf("undefined property '%s'", name.Chars)
	}
	return vmi.invokeFromClass(inst.Class, name, argCount)
}

func (vmi *Instance) invokeFromClass(class *ObjClass, name *ObjString, argCount int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vmi.runtimeErrorf("undefined method '%s'", name.Chars)
	}
	return vmi.call(method.AsClosure(), argCount)
}

func (vmi *Instance) bindMethod(receiver Value, class *ObjClass, name *ObjString) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vmi.runtimeErrorf("undefined property '%s'", name.Chars)
	}
	bm := &ObjBoundMethod{Receiver: receiver, Method: method.AsClosure()}
	vmi.linkManaged(&bm.Obj, TypeBoundMethod)
	return vmi.push(ObjValue(&bm.Obj))
}

// captureUpvalue finds or creates the open upvalue for stack slot
// index, keeping Instance.openUpvalues sorted by descending slot so a
// linear scan finds shared captures in one pass.
func (vmi *Instance) captureUpvalue(index int) *ObjUpvalue {
	var prev *ObjUpvalue
	cur := vmi.openUpvalues
	for cur != nil && slotOf(&vmi.stack[0], cur.Location) > index {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && slotOf(&vmi.stack[0], cur.Location) == index {
		return cur
	}
	uv := &ObjUpvalue{Location: &vmi.stack[index]}
	vmi.linkManaged(&uv.Obj, TypeUpvalue)
	uv.NextOpen = cur
	if prev == nil {
		vmi.openUpvalues = uv
	} else {
		prev.NextOpen = uv
	}
	return uv
}

func slotOf(base, loc *Value) int {
	return int((uintptrOf(loc) - uintptrOf(base)) / valueSize)
}

// closeUpvalues hoists every open upvalue pointing at slot >= from into
// its own Closed field, detaching it from the stack before the frame
// that owns those slots is popped.
func (vmi *Instance) closeUpvalues(from int) {
	for vmi.openUpvalues != nil && slotOf(&vmi.stack[0], vmi.openUpvalues.Location) >= from {
		uv := vmi.openUpvalues
		uv.Closed = *uv.Location
		uv.Location = &uv.Closed
		vmi.openUpvalues = uv.NextOpen
	}
}
