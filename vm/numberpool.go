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

// NumberPool deduplicates numeric constants across an entire compiled
// program, keyed by the hash (xhash.Bits) of the raw NaN-boxed bit
// pattern, so a NaN literal shares a slot with every literal of the same
// bit pattern even though it compares unequal to itself under IEEE-754
// rules; NaNs with different payloads get different slots. One Instance owns
// exactly one NumberPool, shared by every function it compiles, so the
// same literal reused in two different functions shares a slot too.
type NumberPool struct {
	index map[uint64]uint32
}

// NewNumberPool returns an empty pool for one Instance's constant table.
func NewNumberPool() *NumberPool {
	return &NumberPool{index: make(map[uint64]uint32)}
}

// Intern returns the constant-pool index for n, appending a new
// constant only the first time n's bit pattern is seen.
func (p *NumberPool) Intern(vmi *Instance, n float64) uint32 {
	v := Number(n)
	key := xhash.Bits(v.Bits())
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := vmi.AddConstant(v)
	p.index[key] = idx
	return idx
}
