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

import "testing"

func TestTableGetSetGlobalRoundTrip(t *testing.T) {
	vmi := NewInstance()
	table := NewTable()
	name := vmi.Intern("answer")

	if _, ok := table.GetGlobal(name); ok {
		t.Fatalf("expected no value before SetGlobal")
	}

	table.SetGlobal(name, Number(42))
	v, ok := table.GetGlobal(name)
	if !ok || v != Number(42) {
		t.Fatalf("got (%v, %v), want (42, true)", v, ok)
	}
}

func TestTableGetGlobalUsesCachedSymbol(t *testing.T) {
	vmi := NewInstance()
	table := NewTable()
	name := vmi.Intern("x")

	table.SetGlobal(name, Number(1))
	if _, ok := table.GetGlobal(name); !ok {
		t.Fatalf("expected GetGlobal to find the value")
	}
	if name.Symbol < 0 {
		t.Fatalf("expected SetGlobal/GetGlobal to populate Symbol, got %d", name.Symbol)
	}

	// Point the cached slot at a different, empty slot; a verified
	// GetGlobal must notice the key there does not match and fall back to
	// a full probe instead of trusting the stale Symbol.
	table.Set(name, Number(2))
	name.Symbol = (name.Symbol + 1) % len(table.entries)

	v, ok := table.GetGlobal(name)
	if !ok || v != Number(2) {
		t.Fatalf("got (%v, %v), want (2, true)", v, ok)
	}
}

func TestTableGetGlobalSurvivesGrow(t *testing.T) {
	vmi := NewInstance()
	table := NewTable()

	var names []*ObjString
	for i := 0; i < 64; i++ {
		name := vmi.Intern(string(rune('a' + i%26)) + string(rune('A'+i%26)) + string(rune(i)))
		names = append(names, name)
		table.SetGlobal(name, Number(float64(i)))
	}

	for i, name := range names {
		v, ok := table.GetGlobal(name)
		if !ok || v != Number(float64(i)) {
			t.Fatalf("entry %d: got (%v, %v), want (%d, true)", i, v, ok, i)
		}
	}
}
