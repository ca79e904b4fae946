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

// NewNative wraps a Go function as a callable ObjNative, linked into
// the static object list since natives never move and are never
// collected individually.
func NewNative(vmi *Instance, name string, fn NativeFn) *ObjNative {
	n := &ObjNative{Fn: fn, Name: name}
	vmi.linkStatic(&n.Obj, TypeNative)
	return n
}

// NewNamespace builds a frozen ObjInstance (no backing class) whose
// fields are the given name -> native/value bindings, the shape every
// builtin module namespace (@math, @array, ...) takes.
func NewNamespace(vmi *Instance, fields map[string]Value) *ObjInstance {
	inst := &ObjInstance{Fields: NewTable()}
	vmi.linkStatic(&inst.Obj, TypeInstance)
	for name, v := range fields {
		inst.Fields.Set(vmi.Intern(name), v)
	}
	return inst
}

// NewArray allocates a reference array from the given values.
func NewArray(vmi *Instance, values []Value) *ObjArray {
	a := &ObjArray{Values: values}
	vmi.linkManaged(&a.Obj, TypeArray)
	return a
}

// NewStringBuilder allocates an empty mutable string buffer.
func NewStringBuilder(vmi *Instance) *ObjStringBuilder {
	sb := &ObjStringBuilder{}
	vmi.linkManaged(&sb.Obj, TypeStringBuilder)
	return sb
}
