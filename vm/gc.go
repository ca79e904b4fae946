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

import "unsafe"

func ptrOf(o *Obj) unsafe.Pointer { return unsafe.Pointer(o) }

// Tri-color mark-and-sweep over the GC-managed object list (gcHead).
// Static objects (interned strings, function prototypes, natives) live
// on staticHead and are never marked or swept; they are freed only when
// the whole Instance is discarded, by dropping Go's own references.
//
// Instead of clearing every mark bit before each cycle, the meaning of
// "marked" flips each collection: gcParity holds the bool value that
// means "reached this cycle". An object's mark field is compared against
// gcParity, so objects allocated between cycles (marked to the
// *previous* parity by linkManaged) are correctly seen as white without
// a separate reset pass.

func (vmi *Instance) linkManaged(o *Obj, t ObjType) {
	o.Type = t
	o.marked = !vmi.gcParity
	o.next = vmi.gcHead
	vmi.gcHead = o
	vmi.bytesAllocated += objSize(t)
	if vmi.bytesAllocated > vmi.nextGC {
		vmi.CollectGarbage()
	}
}

func (vmi *Instance) linkStatic(o *Obj, t ObjType) {
	o.Type = t
	o.next = vmi.staticHead
	vmi.staticHead = o
}

func objSize(t ObjType) int {
	switch t {
	case TypeClosure:
		return 64
	case TypeClass, TypeInstance:
		return 96
	case TypeArray, TypeStringBuilder:
		return 48
	default:
		return 32
	}
}

const gcGrowthFactor = 2
const gcInitialThreshold = 1 << 20 // 1 MiB of estimated object weight

// CollectGarbage runs one full mark-and-sweep cycle: mark every object
// reachable from a root, sweep everything left white, then grow the
// next-collection threshold from the surviving weight.
func (vmi *Instance) CollectGarbage() {
	vmi.markRoots()
	vmi.traceReferences()
	vmi.sweep()
	vmi.gcParity = !vmi.gcParity
	vmi.nextGC = vmi.bytesAllocated * gcGrowthFactor
	if vmi.nextGC < gcInitialThreshold {
		vmi.nextGC = gcInitialThreshold
	}
}

func (vmi *Instance) markRoots() {
	for i := 0; i < vmi.sp; i++ {
		vmi.markValue(vmi.stack[i])
	}
	for i := 0; i < vmi.frameCount; i++ {
		vmi.markObj(&vmi.frames[i].closure.Obj)
	}
	for uv := vmi.openUpvalues; uv != nil; uv = uv.NextOpen {
		vmi.markObj(&uv.Obj)
	}
	for _, e := range vmi.globals.entries {
		if e.key != nil {
			vmi.markValue(e.value)
		}
	}
	for _, mod := range vmi.moduleCache {
		vmi.markValue(mod)
	}
	for _, ns := range vmi.modules {
		if ns != nil {
			vmi.markTable(ns.Fields)
		}
	}
}

func (vmi *Instance) markValue(v Value) {
	if v.IsObj() {
		vmi.markObj(v.AsObj())
	}
}

func (vmi *Instance) markObj(o *Obj) {
	if o == nil || o.marked == vmi.gcParity {
		return
	}
	o.marked = vmi.gcParity
	vmi.grayStack = append(vmi.grayStack, o)
}

func (vmi *Instance) traceReferences() {
	for len(vmi.grayStack) > 0 {
		n := len(vmi.grayStack) - 1
		o := vmi.grayStack[n]
		vmi.grayStack = vmi.grayStack[:n]
		vmi.blacken(o)
	}
}

func (vmi *Instance) blacken(o *Obj) {
	switch o.Type {
	case TypeClosure:
		c := (*ObjClosure)(ptrOf(o))
		vmi.markObj(&c.Function.Obj)
		for _, uv := range c.Upvalues {
			vmi.markObj(&uv.Obj)
		}
	case TypeUpvalue:
		uv := (*ObjUpvalue)(ptrOf(o))
		vmi.markValue(uv.Closed)
	case TypeClass:
		cl := (*ObjClass)(ptrOf(o))
		if cl.Name != nil {
			vmi.markObj(&cl.Name.Obj)
		}
		vmi.markTable(cl.Methods)
		vmi.markValue(cl.Init)
	case TypeInstance:
		inst := (*ObjInstance)(ptrOf(o))
		if inst.Class != nil {
			vmi.markObj(&inst.Class.Obj)
		}
		vmi.markTable(inst.Fields)
	case TypeBoundMethod:
		bm := (*ObjBoundMethod)(ptrOf(o))
		vmi.markValue(bm.Receiver)
		vmi.markObj(&bm.Method.Obj)
	case TypeArray:
		arr := (*ObjArray)(ptrOf(o))
		for _, v := range arr.Values {
			vmi.markValue(v)
		}
	}
	// StringBuilder and typed arrays hold no Values; strings, functions
	// and natives are static and never reach the gray stack.
}

func (vmi *Instance) markTable(t *Table) {
	if t == nil {
		return
	}
	for _, e := range t.entries {
		if e.key != nil {
			vmi.markObj(&e.key.Obj)
			vmi.markValue(e.value)
		}
	}
}

func (vmi *Instance) sweep() {
	var prev *Obj
	obj := vmi.gcHead
	for obj != nil {
		if obj.marked == vmi.gcParity {
			prev = obj
			obj = obj.next
			continue
		}
		unreached := obj
		obj = obj.next
		if prev == nil {
			vmi.gcHead = obj
		} else {
			prev.next = obj
		}
		vmi.bytesAllocated -= objSize(unreached.Type)
	}
}
