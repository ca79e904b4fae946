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
import "encoding/binary"

// NewTypedArray allocates a zero-filled typed array of the given kind
// and element count.
func NewTypedArray(vmi *Instance, kind TypedElemKind, length int) *ObjTypedArray {
	a := &ObjTypedArray{
		Kind:    kind,
		Length:  length,
		payload: make([]byte, length*elemSize(kind)),
	}
	vmi.linkManaged(&a.Obj, typedObjTypeByKind[kind])
	return a
}

// GetElem returns element i widened to float64, the universal numeric
// representation used by script-visible Values.
func (a *ObjTypedArray) GetElem(i int) float64 {
	off := i * elemSize(a.Kind)
	switch a.Kind {
	case ElemF64:
		return math.Float64frombits(binary.LittleEndian.Uint64(a.payload[off:]))
	case ElemF32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(a.payload[off:])))
	case ElemU32:
		return float64(binary.LittleEndian.Uint32(a.payload[off:]))
	case ElemI32:
		return float64(int32(binary.LittleEndian.Uint32(a.payload[off:])))
	case ElemU16:
		return float64(binary.LittleEndian.Uint16(a.payload[off:]))
	case ElemI16:
		return float64(int16(binary.LittleEndian.Uint16(a.payload[off:])))
	case ElemU8:
		return float64(a.payload[off])
	case ElemI8:
		return float64(int8(a.payload[off]))
	default:
		return 0
	}
}

// SetElem stores n into element i, truncating it to the array's element
// width using C-style numeric conversion (wraparound for integer
// kinds, narrowing for f32).
func (a *ObjTypedArray) SetElem(i int, n float64) {
	off := i * elemSize(a.Kind)
	switch a.Kind {
	case ElemF64:
		binary.LittleEndian.PutUint64(a.payload[off:], math.Float64bits(n))
	case ElemF32:
		binary.LittleEndian.PutUint32(a.payload[off:], math.Float32bits(float32(n)))
	case ElemU32:
		binary.LittleEndian.PutUint32(a.payload[off:], uint32(int64(n)))
	case ElemI32:
		binary.LittleEndian.PutUint32(a.payload[off:], uint32(int32(int64(n))))
	case ElemU16:
		binary.LittleEndian.PutUint16(a.payload[off:], uint16(int64(n)))
	case ElemI16:
		binary.LittleEndian.PutUint16(a.payload[off:], uint16(int16(int64(n))))
	case ElemU8:
		a.payload[off] = byte(int64(n))
	case ElemI8:
		a.payload[off] = byte(int8(int64(n)))
	}
}

// Resize grows or shrinks a in place, zero-filling any newly added
// elements and truncating any dropped tail.
func (a *ObjTypedArray) Resize(newLength int) {
	want := newLength * elemSize(a.Kind)
	switch {
	case want <= len(a.payload):
		a.payload = a.payload[:want]
	default:
		a.payload = append(a.payload, make([]byte, want-len(a.payload))...)
	}
	a.Length = newLength
}
