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

// MemStats reports the heap counters @system exposes natively, for
// callers (the REPL's /mem command, a -gc-stats flag) that have no
// script context to call into.
type MemStats struct {
	Allocated    int
	NextGC       int
	StaticCount  int
	ManagedCount int
}

// Stats snapshots the collector's current counters.
func (vmi *Instance) Stats() MemStats {
	static := 0
	for o := vmi.staticHead; o != nil; o = o.next {
		static++
	}
	managed := 0
	for o := vmi.gcHead; o != nil; o = o.next {
		managed++
	}
	return MemStats{
		Allocated:    vmi.bytesAllocated,
		NextGC:       vmi.nextGC,
		StaticCount:  static,
		ManagedCount: managed,
	}
}
