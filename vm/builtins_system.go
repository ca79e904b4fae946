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

import "fmt"

func buildSystemModule(vmi *Instance) *ObjInstance {
	fields := map[string]Value{
		"gc": ObjValue(&NewNative(vmi, "system.gc", func(vmi *Instance, args []Value) (Value, error) {
			vmi.CollectGarbage()
			return Nil, nil
		}).Obj),

		"gcNext": ObjValue(&NewNative(vmi, "system.gcNext", func(vmi *Instance, args []Value) (Value, error) {
			return Number(float64(vmi.nextGC)), nil
		}).Obj),

		"gcBegin": ObjValue(&NewNative(vmi, "system.gcBegin", func(vmi *Instance, args []Value) (Value, error) {
			return Number(float64(gcInitialThreshold)), nil
		}).Obj),

		"allocated": ObjValue(&NewNative(vmi, "system.allocated", func(vmi *Instance, args []Value) (Value, error) {
			return Number(float64(vmi.bytesAllocated)), nil
		}).Obj),

		"static": ObjValue(&NewNative(vmi, "system.static", func(vmi *Instance, args []Value) (Value, error) {
			count := 0
			for o := vmi.staticHead; o != nil; o = o.next {
				count++
			}
			return Number(float64(count)), nil
		}).Obj),

		"log": ObjValue(&NewNative(vmi, "system.log", func(vmi *Instance, args []Value) (Value, error) {
			for _, a := range args {
				fmt.Fprint(vmi.Stderr, Stringify(a))
			}
			fmt.Fprintln(vmi.Stderr)
			return Nil, nil
		}).Obj),
	}
	return NewNamespace(vmi, fields)
}
