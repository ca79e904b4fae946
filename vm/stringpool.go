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

import "github.com/loxflux/loxflux/internal/xhash"

// stringPool interns every ObjString the VM creates so that equal
// contents always share one allocation, letting Equals compare strings
// by pointer. Interned strings are static objects: they live in
// Instance.staticHead and are never visited by the collector.
type stringPool struct {
	table *Table
}

func newStringPool() *stringPool {
	return &stringPool{table: NewTable()}
}

// Intern returns the canonical *ObjString for s, allocating and linking
// it into staticHead on first use.
func (p *stringPool) Intern(vmi *Instance, s string) *ObjString {
	hash := xhash.String(s)
	if existing := p.table.FindString(s, hash); existing != nil {
		return existing
	}
	str := &ObjString{Chars: s, Hash: hash, Symbol: -1}
	vmi.linkStatic(&str.Obj, TypeString)
	p.table.Set(str, Nil)
	return str
}
