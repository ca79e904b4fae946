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

import "math"

func buildMathModule(vmi *Instance) *ObjInstance {
	one := func(name string, f func(float64) float64) (string, Value) {
		return name, ObjValue(&NewNative(vmi, "math."+name, func(vmi *Instance, args []Value) (Value, error) {
			if len(args) != 1 || !args[0].IsNumber() {
				return Nil, vmi.runtimeErrorf("%s expects one number argument", name)
			}
			return Number(f(args[0].AsNumber())), nil
		}).Obj)
	}
	fields := map[string]Value{
		"pi": Number(math.Pi),
		"e":  Number(math.E),
	}
	for _, p := range []struct {
		name string
		f    func(float64) float64
	}{
		{"sqrt", math.Sqrt},
		{"abs", math.Abs},
		{"floor", math.Floor},
		{"ceil", math.Ceil},
		{"round", math.Round},
		{"trunc", math.Trunc},
		{"sin", math.Sin},
		{"cos", math.Cos},
		{"tan", math.Tan},
		{"asin", math.Asin},
		{"acos", math.Acos},
		{"atan", math.Atan},
		{"log", math.Log},
		{"log2", math.Log2},
		{"log10", math.Log10},
		{"exp", math.Exp},
		{"sign", func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return 0
			}
		}},
	} {
		n, v := one(p.name, p.f)
		fields[n] = v
	}

	fields["pow"] = ObjValue(&NewNative(vmi, "math.pow", func(vmi *Instance, args []Value) (Value, error) {
		if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
			return Nil, vmi.runtimeErrorf("pow expects two number arguments")
		}
		return Number(math.Pow(args[0].AsNumber(), args[1].AsNumber())), nil
	}).Obj)

	fields["clamp"] = ObjValue(&NewNative(vmi, "math.clamp", func(vmi *Instance, args []Value) (Value, error) {
		if len(args) != 3 || !args[0].IsNumber() || !args[1].IsNumber() || !args[2].IsNumber() {
			return Nil, vmi.runtimeErrorf("clamp expects three number arguments")
		}
		x, lo, hi := args[0].AsNumber(), args[1].AsNumber(), args[2].AsNumber()
		if x < lo {
			return Number(lo), nil
		}
		if x > hi {
			return Number(hi), nil
		}
		return Number(x), nil
	}).Obj)

	fields["isNaN"] = ObjValue(&NewNative(vmi, "math.isNaN", func(vmi *Instance, args []Value) (Value, error) {
		if len(args) != 1 || !args[0].IsNumber() {
			return Nil, vmi.runtimeErrorf("isNaN expects one number argument")
		}
		return Bool(math.IsNaN(args[0].AsNumber())), nil
	}).Obj)

	fields["isFinite"] = ObjValue(&NewNative(vmi, "math.isFinite", func(vmi *Instance, args []Value) (Value, error) {
		if len(args) != 1 || !args[0].IsNumber() {
			return Nil, vmi.runtimeErrorf("isFinite expects one number argument")
		}
		n := args[0].AsNumber()
		return Bool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	}).Obj)

	fields["random"] = ObjValue(&NewNative(vmi, "math.random", func(vmi *Instance, args []Value) (Value, error) {
		return Number(vmi.Rng.Float64()), nil
	}).Obj)

	fields["seed"] = ObjValue(&NewNative(vmi, "math.seed", func(vmi *Instance, args []Value) (Value, error) {
		if len(args) != 1 || !args[0].IsNumber() {
			return Nil, vmi.runtimeErrorf("seed expects one number argument")
		}
		vmi.Rng.Seed(uint64(int64(args[0].AsNumber())))
		return Nil, nil
	}).Obj)

	fields["max"] = ObjValue(&NewNative(vmi, "math.max", func(vmi *Instance, args []Value) (Value, error) {
		if len(args) == 0 {
			return Nil, vmi.runtimeErrorf("max expects at least one argument")
		}
		best := args[0]
		for _, a := range args[1:] {
			if !a.IsNumber() || !best.IsNumber() {
				return Nil, vmi.runtimeErrorf("max expects number arguments")
			}
			if a.AsNumber() > best.AsNumber() {
				best = a
			}
		}
		return best, nil
	}).Obj)

	fields["min"] = ObjValue(&NewNative(vmi, "math.min", func(vmi *Instance, args []Value) (Value, error) {
		if len(args) == 0 {
			return Nil, vmi.runtimeErrorf("min expects at least one argument")
		}
		best := args[0]
		for _, a := range args[1:] {
			if !a.IsNumber() || !best.IsNumber() {
				return Nil, vmi.runtimeErrorf("min expects number arguments")
			}
			if a.AsNumber() < best.AsNumber() {
				best = a
			}
		}
		return best, nil
	}).Obj)

	return NewNamespace(vmi, fields)
}

func buildTopLevelMathNatives(vmi *Instance) {
	vmi.DefineGlobal("max", ObjValue(&NewNative(vmi, "max", func(vmi *Instance, args []Value) (Value, error) {
		if len(args) == 0 {
			return Nil, vmi.runtimeErrorf("max expects at least one argument")
		}
		best := args[0]
		for _, a := range args[1:] {
			if !a.IsNumber() || !best.IsNumber() {
				return Nil, vmi.runtimeErrorf("max expects number arguments")
			}
			if a.AsNumber() > best.AsNumber() {
				best = a
			}
		}
		return best, nil
	}).Obj))

	vmi.DefineGlobal("min", ObjValue(&NewNative(vmi, "min", func(vmi *Instance, args []Value) (Value, error) {
		if len(args) == 0 {
			return Nil, vmi.runtimeErrorf("min expects at least one argument")
		}
		best := args[0]
		for _, a := range args[1:] {
			if !a.IsNumber() || !best.IsNumber() {
				return Nil, vmi.runtimeErrorf("min expects number arguments")
			}
			if a.AsNumber() < best.AsNumber() {
				best = a
			}
		}
		return best, nil
	}).Obj))
}
