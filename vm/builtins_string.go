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
	"strings"
	"unicode/utf8"
)

func buildStringModule(vmi *Instance) *ObjInstance {
	fields := map[string]Value{
		"upper": stringUnary(vmi, "upper", strings.ToUpper),
		"lower": stringUnary(vmi, "lower", strings.ToLower),
		"trim":  stringUnary(vmi, "trim", strings.TrimSpace),

		"length": ObjValue(&NewNative(vmi, "string.length", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsString() {
				return Nil, vmi.runtimeErrorf("length expects a string")
			}
			return Number(float64(len(args[0].AsString().Chars))), nil
		}).Obj),

		"split": ObjValue(&NewNative(vmi, "string.split", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsString() || !args[1].IsString() {
				return Nil, vmi.runtimeErrorf("split expects (string, separator)")
			}
			parts := strings.Split(args[0].AsString().Chars, args[1].AsString().Chars)
			values := make([]Value, len(parts))
			for i, p := range parts {
				values[i] = ObjValue(&vmi.Intern(p).Obj)
			}
			return ObjValue(&NewArray(vmi, values).Obj), nil
		}).Obj),

		"contains": ObjValue(&NewNative(vmi, "string.contains", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsString() || !args[1].IsString() {
				return Nil, vmi.runtimeErrorf("contains expects two strings")
			}
			return Bool(strings.Contains(args[0].AsString().Chars, args[1].AsString().Chars)), nil
		}).Obj),

		"charAt": ObjValue(&NewNative(vmi, "string.charAt", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsString() || !args[1].IsNumber() {
				return Nil, vmi.runtimeErrorf("charAt expects (string, index)")
			}
			chars := args[0].AsString().Chars
			i := int(args[1].AsNumber())
			if i < 0 || i >= len(chars) {
				return Nil, vmi.runtimeErrorf("charAt index %d out of bounds for length %d", i, len(chars))
			}
			return ObjValue(&vmi.Intern(string(chars[i])).Obj), nil
		}).Obj),

		"utf8Len": ObjValue(&NewNative(vmi, "string.utf8Len", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsString() {
				return Nil, vmi.runtimeErrorf("utf8Len expects a string")
			}
			return Number(float64(utf8.RuneCountInString(args[0].AsString().Chars))), nil
		}).Obj),

		"utf8At": ObjValue(&NewNative(vmi, "string.utf8At", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsString() || !args[1].IsNumber() {
				return Nil, vmi.runtimeErrorf("utf8At expects (string, index)")
			}
			s := args[0].AsString().Chars
			target := int(args[1].AsNumber())
			if target < 0 {
				return Nil, vmi.runtimeErrorf("utf8At index out of bounds")
			}
			i := 0
			for _, r := range s {
				if i == target {
					return ObjValue(&vmi.Intern(string(r)).Obj), nil
				}
				i++
			}
			return Nil, vmi.runtimeErrorf("utf8At index out of bounds")
		}).Obj),

		"intern": ObjValue(&NewNative(vmi, "string.intern", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsString() {
				return Nil, vmi.runtimeErrorf("intern expects a string")
			}
			return ObjValue(&vmi.Intern(args[0].AsString().Chars).Obj), nil
		}).Obj),

		"equals": ObjValue(&NewNative(vmi, "string.equals", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsString() || !args[1].IsString() {
				return Nil, vmi.runtimeErrorf("equals expects two strings")
			}
			return Bool(args[0].AsString().Chars == args[1].AsString().Chars), nil
		}).Obj),

		"Builder": ObjValue(&NewNative(vmi, "string.Builder", func(vmi *Instance, args []Value) (Value, error) {
			return ObjValue(&NewStringBuilder(vmi).Obj), nil
		}).Obj),

		"append": ObjValue(&NewNative(vmi, "string.append", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 2 || !args[0].IsStringBuilder() {
				return Nil, vmi.runtimeErrorf("append expects (builder, value)")
			}
			sb := args[0].AsStringBuilder()
			sb.Bytes = append(sb.Bytes, Stringify(args[1])...)
			return args[0], nil
		}).Obj),

		"build": ObjValue(&NewNative(vmi, "string.build", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsStringBuilder() {
				return Nil, vmi.runtimeErrorf("build expects a builder")
			}
			return ObjValue(&vmi.Intern(string(args[0].AsStringBuilder().Bytes)).Obj), nil
		}).Obj),

		"reset": ObjValue(&NewNative(vmi, "string.reset", func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsStringBuilder() {
				return Nil, vmi.runtimeErrorf("reset expects a builder")
			}
			args[0].AsStringBuilder().Bytes = args[0].AsStringBuilder().Bytes[:0]
			return args[0], nil
		}).Obj),
	}
	return NewNamespace(vmi, fields)
}

func stringUnary(vmi *Instance, name string, f func(string) string) Value {
	return ObjValue(&NewNative(vmi, "string."+name, func(vmi *Instance, args []Value) (Value, error) {
		if len(args) != 1 || !args[0].IsString() {
			return Nil, vmi.runtimeErrorf("%s expects a string", name)
		}
		return ObjValue(&vmi.Intern(f(args[0].AsString().Chars)).Obj), nil
	}).Obj)
}
