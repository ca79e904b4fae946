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
	"math"
	"testing"
)

func TestNumberPoolDedup(t *testing.T) {
	vmi := NewInstance()
	pool := NewNumberPool()

	a := pool.Intern(vmi, 3.5)
	b := pool.Intern(vmi, 3.5)
	if a != b {
		t.Fatalf("expected same slot for repeated literal, got %d and %d", a, b)
	}
	if len(vmi.constants) != 1 {
		t.Fatalf("expected 1 constant, got %d", len(vmi.constants))
	}

	c := pool.Intern(vmi, 4.5)
	if c == a {
		t.Fatalf("expected distinct slot for a distinct literal")
	}
	if len(vmi.constants) != 2 {
		t.Fatalf("expected 2 constants, got %d", len(vmi.constants))
	}
}

func TestNumberPoolNaNCollapses(t *testing.T) {
	vmi := NewInstance()
	pool := NewNumberPool()

	a := pool.Intern(vmi, math.NaN())
	b := pool.Intern(vmi, math.NaN())
	if a != b {
		t.Fatalf("expected every NaN literal to share one pool slot, got %d and %d", a, b)
	}
}

func TestNumberPoolSharedAcrossCallers(t *testing.T) {
	vmi := NewInstance()

	a := vmi.InternNumber(7)
	b := vmi.InternNumber(7)
	if a != b {
		t.Fatalf("expected InternNumber to share the Instance-wide pool, got %d and %d", a, b)
	}
}
