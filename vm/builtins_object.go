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

func buildObjectModule(vmi *Instance) *ObjInstance {
	fields := map[string]Value{
		"keys": ObjValue(&NewNative(vmi, "object.keys", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsInstance() {
				return Nil, vmi.runtimeErrorf("keys expects an object")
			}
			keys := args[0].AsInstance().Fields.Keys()
			values := make([]Value, len(keys))
			for i, k := range keys {
				values[i] = ObjValue(&k.Obj)
			}
			return ObjValue(&NewArray(vmi, values).Obj), nil
		}).Obj),

		"has": ObjValue(&NewNative(vmi, "object.has", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsInstance() || !args[1].IsString() {
				return Nil, vmi.runtimeErrorf("has expects (object, string)")
			}
			_, ok := args[0].AsInstance().Fields.Get(args[1].AsString())
			return Bool(ok), nil
		}).Obj),

		"delete": ObjValue(&NewNative(vmi, "object.delete", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsInstance() || !args[1].IsString() {
				return Nil, vmi.runtimeErrorf("delete expects (object, string)")
			}
			return Bool(args[0].AsInstance().Fields.Delete(args[1].AsString())), nil
		}).Obj),

		"isString":        typePredicate(vmi, "isString", Value.IsString),
		"isNumber":        typePredicate(vmi, "isNumber", Value.IsNumber),
		"isBoolean":       typePredicate(vmi, "isBoolean", Value.IsBool),
		"isNil":           typePredicate(vmi, "isNil", Value.IsNil),
		"isArray":         typePredicate(vmi, "isArray", Value.IsArray),
		"isTypedArray":    typePredicate(vmi, "isTypedArray", Value.IsTypedArray),
		"isArrayLike":     typePredicate(vmi, "isArrayLike", Value.IsArrayLike),
		"isStringBuilder": typePredicate(vmi, "isStringBuilder", Value.IsStringBuilder),
		"isFunction":      typePredicate(vmi, "isFunction", func(v Value) bool { return v.IsClosure() || v.IsFunction() || v.IsBoundMethod() }),
		"isClass":         typePredicate(vmi, "isClass", Value.IsClass),
		"isInstance":      typePredicate(vmi, "isInstance", Value.IsInstance),

		"getGlobal": ObjValue(&NewNative(vmi, "object.getGlobal", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsString() {
				return Nil, vmi.runtimeErrorf("getGlobal expects a string name")
			}
			v, ok := vmi.globals.GetGlobal(args[0].AsString())
			if !ok {
				return Nil, vmi.runtimeErrorf("undefined global '%s'", args[0].AsString().Chars)
			}
			return v, nil
		}).Obj),

		"setGlobal": ObjValue(&NewNative(vmi, "object.setGlobal", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsString() {
				return Nil, vmi.runtimeErrorf("setGlobal expects (string name, value)")
			}
			vmi.globals.SetGlobal(args[0].AsString(), args[1])
			return args[1], nil
		}).Obj),
	}
	return NewNamespace(vmi, fields)
}

func typePredicate(vmi *Instance, name string, pred func(Value) bool) Value {
	return ObjValue(&NewNative(vmi, "object."+name, func(vmi *Instance, args []Value) (Value, error) {
		if len(args) != 1 {
			return Nil, vmi.runtimeErrorf("%s expects one argument", name)
		}
		return Bool(pred(args[0])), nil
	}).Obj)
}
