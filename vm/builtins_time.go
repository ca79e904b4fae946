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

import "github.com/loxflux/loxflux/internal/clock"

func buildTimeModule(vmi *Instance) *ObjInstance {
	fields := map[string]Value{
		"second": ObjValue(&NewNative(vmi, "time.second", func(vmi *Instance, args []Value) (Value, error) {
			return Number(clock.Seconds()), nil
		}).Obj),
		"milli": ObjValue(&NewNative(vmi, "time.milli", func(vmi *Instance, args []Value) (Value, error) {
			return Number(float64(clock.Milliseconds())), nil
		}).Obj),
		"micro": ObjValue(&NewNative(vmi, "time.micro", func(vmi *Instance, args []Value) (Value, error) {
			return Number(float64(clock.Microseconds())), nil
		}).Obj),
		"nano": ObjValue(&NewNative(vmi, "time.nano", func(vmi *Instance, args []Value) (Value, error) {
			return Number(float64(clock.Nanoseconds())), nil
		}).Obj),
	}
	return NewNamespace(vmi, fields)
}

func buildClockNative(vmi *Instance) {
	vmi.DefineGlobal("clock", ObjValue(&NewNative(vmi, "clock", func(vmi *Instance, args []Value) (Value, error) {
		return Number(clock.Seconds()), nil
	}).Obj))
}
