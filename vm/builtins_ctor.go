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

// buildCtorModule exposes the constructors for the values the OpNewArray
// / OpNewObject opcodes don't cover directly: arrays from an explicit
// length, plain objects, typed arrays, and string builders.
func buildCtorModule(vmi *Instance) *ObjInstance {
	fields := map[string]Value{
		"Array": ObjValue(&NewNative(vmi, "ctor.Array", func(vmi *Instance, args []Value) (Value, error) {
			n := 0
			if len(args) == 1 {
				if !args[0].IsNumber() {
					return Nil, vmi.runtimeErrorf("Array expects a numeric length")
				}
				n = int(args[0].AsNumber())
				if n < 0 {
					return Nil, vmi.runtimeErrorf("Array length must be non-negative")
				}
			}
			values := make([]Value, n)
			for i := range values {
				values[i] = Nil
			}
			return ObjValue(&NewArray(vmi, values).Obj), nil
		}).Obj),

		"Object": ObjValue(&NewNative(vmi, "ctor.Object", func(vmi *Instance, args []Value) (Value, error) {
			inst := &ObjInstance{Fields: NewTable()}
			vmi.linkManaged(&inst.Obj, TypeInstance)
			return ObjValue(&inst.Obj), nil
		}).Obj),

		"StringBuilder": ObjValue(&NewNative(vmi, "ctor.StringBuilder", func(vmi *Instance, args []Value) (Value, error) {
			return ObjValue(&NewStringBuilder(vmi).Obj), nil
		}).Obj),
	}
	for name, kind := range map[string]TypedElemKind{
		"F64Array": ElemF64, "F32Array": ElemF32, "U32Array": ElemU32, "I32Array": ElemI32,
		"U16Array": ElemU16, "I16Array": ElemI16, "U8Array": ElemU8, "I8Array": ElemI8,
	} {
		ctorName, k := name, kind
		fields[ctorName] = ObjValue(&NewNative(vmi, "ctor."+ctorName, func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsNumber() {
				return Nil, vmi.runtimeErrorf("%s expects a numeric length", ctorName)
			}
			n := int(args[0].AsNumber())
			if n < 0 {
				return Nil, vmi.runtimeErrorf("%s length must be non-negative", ctorName)
			}
			return ObjValue(&NewTypedArray(vmi, k, n).Obj), nil
		}).Obj)
	}
	return NewNamespace(vmi, fields)
}
