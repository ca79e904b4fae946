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

func buildArrayModule(vmi *Instance) *ObjInstance {
	fields := map[string]Value{
		"push": ObjValue(&NewNative(vmi, "array.push", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) < 1 || !args[0].IsArray() {
				return Nil, vmi.runtimeErrorf("push expects an array")
			}
			arr := args[0].AsArray()
			arr.Values = append(arr.Values, args[1:]...)
			return Number(float64(len(arr.Values))), nil
		}).Obj),
		"pop": ObjValue(&NewNative(vmi, "array.pop", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsArray() {
				return Nil, vmi.runtimeErrorf("pop expects an array")
			}
			arr := args[0].AsArray()
			if len(arr.Values) == 0 {
				return Nil, vmi.runtimeErrorf("pop on empty array")
			}
			last := arr.Values[len(arr.Values)-1]
			arr.Values = arr.Values[:len(arr.Values)-1]
			return last, nil
		}).Obj),
		"length": ObjValue(&NewNative(vmi, "array.length", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 {
				return Nil, vmi.runtimeErrorf("length expects one argument")
			}
			switch {
			case args[0].IsArray():
				return Number(float64(len(args[0].AsArray().Values))), nil
			case args[0].IsTypedArray():
				return Number(float64(args[0].AsTypedArray().Length)), nil
			case args[0].IsStringBuilder():
				return Number(float64(len(args[0].AsStringBuilder().Bytes))), nil
			default:
				return Nil, vmi.runtimeErrorf("length expects an array-like value")
			}
		}).Obj),
		"resize": ObjValue(&NewNative(vmi, "array.resize", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[1].IsNumber() {
				return Nil, vmi.runtimeErrorf("resize expects (array, length)")
			}
			n := int(args[1].AsNumber())
			if n < 0 {
				return Nil, vmi.runtimeErrorf("resize length must be non-negative")
			}
			switch {
			case args[0].IsArray():
				arr := args[0].AsArray()
				switch {
				case n <= len(arr.Values):
					arr.Values = arr.Values[:n]
				default:
					grown := make([]Value, n)
					copy(grown, arr.Values)
					for i := len(arr.Values); i < n; i++ {
						grown[i] = Nil
					}
					arr.Values = grown
				}
				return args[0], nil
			case args[0].IsTypedArray():
				args[0].AsTypedArray().Resize(n)
				return args[0], nil
			default:
				return Nil, vmi.runtimeErrorf("resize expects an array")
			}
		}).Obj),
		"fill": ObjValue(&NewNative(vmi, "array.fill", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsArray() {
				return Nil, vmi.runtimeErrorf("fill expects (array, value)")
			}
			arr := args[0].AsArray()
			for i := range arr.Values {
				arr.Values[i] = args[1]
			}
			return args[0], nil
		}).Obj),
		"slice": ObjValue(&NewNative(vmi, "array.slice", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 3 || !args[0].IsArray() || !args[1].IsNumber() || !args[2].IsNumber() {
				return Nil, vmi.runtimeErrorf("slice expects (array, start, end)")
			}
			src := args[0].AsArray().Values
			start, end := int(args[1].AsNumber()), int(args[2].AsNumber())
			if start < 0 || end > len(src) || start > end {
				return Nil, vmi.runtimeErrorf("slice bounds out of range")
			}
			copied := make([]Value, end-start)
			copy(copied, src[start:end])
			return ObjValue(&NewArray(vmi, copied).Obj), nil
		}).Obj),
		"join": ObjValue(&NewNative(vmi, "array.join", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsArray() || !args[1].IsString() {
				return Nil, vmi.runtimeErrorf("join expects (array, separator)")
			}
			sep := args[1].AsString().Chars
			values := args[0].AsArray().Values
			out := ""
			for i, v := range values {
				if i > 0 {
					out += sep
				}
				out += Stringify(v)
			}
			return ObjValue(&vmi.Intern(out).Obj), nil
		}).Obj),
	}
	return NewNamespace(vmi, fields)
}
