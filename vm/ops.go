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

// execAdd implements `+`: numeric addition, or string concatenation
// when either operand is a string (the other is stringified).
func (vmi *Instance) execAdd() error {
	b, a := vmi.peek(0), vmi.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		vmi.pop()
		vmi.pop()
		return vmi.push(Number(a.AsNumber() + b.AsNumber()))
	case a.IsString() || b.IsString():
		vmi.pop()
		vmi.pop()
		return vmi.push(ObjValue(&vmi.Intern(Stringify(a) + Stringify(b)).Obj))
	default:
		return vmi.runtimeErrorf("operands must be two numbers or at least one string")
	}
}

func (vmi *Instance) binaryNumeric(f func(a, b float64) float64) error {
	b, a := vmi.peek(0), vmi.peek(1)
	if !a.IsNumber() || !b.IsNumber() {
		return vmi.runtimeErrorf("operands must be numbers")
	}
	vmi.pop()
	vmi.pop()
	return vmi.push(Number(f(a.AsNumber(), b.AsNumber())))
}

func (vmi *Instance) compare(f func(a, b float64) bool) error {
	b, a := vmi.peek(0), vmi.peek(1)
	if !a.IsNumber() || !b.IsNumber() {
		return vmi.runtimeErrorf("operands must be numbers")
	}
	vmi.pop()
	vmi.pop()
	return vmi.push(Bool(f(a.AsNumber(), b.AsNumber())))
}

// execBitwise implements the bitwise family. Operands truncate to
// int32, matching the reference VM's 32-bit integer coercion; `~` is
// unary and only consumes one operand. Shift counts truncate to int32
// too: negative counts yield 0, counts >= 32 wrap modulo 32.
func (vmi *Instance) execBitwise(op BitOp) error {
	if op == BitNot {
		a := vmi.pop()
		if !a.IsNumber() {
			return vmi.runtimeErrorf("operand must be a number")
		}
		return vmi.push(Number(float64(^int32(a.AsNumber()))))
	}
	b, a := vmi.pop(), vmi.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vmi.runtimeErrorf("operands must be numbers")
	}
	ai, bi := int32(a.AsNumber()), int32(b.AsNumber())
	var result int32
	switch op {
	case BitAnd:
		result = ai & bi
	case BitOr:
		result = ai | bi
	case BitXor:
		result = ai ^ bi
	case BitShl:
		if bi < 0 {
			result = 0
		} else {
			result = ai << (uint32(bi) & 31)
		}
	case BitSar:
		if bi < 0 {
			result = 0
		} else {
			result = ai >> (uint32(bi) & 31)
		}
	case BitShr:
		if bi < 0 {
			result = 0
		} else {
			result = int32(uint32(ai) >> (uint32(bi) & 31))
		}
	}
	return vmi.push(Number(float64(result)))
}

// execInstanceOf implements `instanceof`, comparing the instance's
// constructing class by identity. Right-hand side must be a class.
func (vmi *Instance) execInstanceOf() error {
	classVal, val := vmi.pop(), vmi.pop()
	if !classVal.IsClass() {
		return vmi.runtimeErrorf("right-hand side of 'instanceof' must be a class")
	}
	if !val.IsInstance() {
		return vmi.push(False)
	}
	return vmi.push(Bool(val.AsInstance().Class == classVal.AsClass()))
}

func (vmi *Instance) execGetProperty(name *ObjString) error {
	receiver := vmi.peek(0)
	if !receiver.IsInstance() {
		return vmi.runtimeErrorf("only objects have properties")
	}
	inst := receiver.AsInstance()
	if v, ok := inst.Fields.Get(name); ok {
		vmi.pop()
		return vmi.push(v)
	}
	if inst.Class != nil {
		if m, ok := inst.Class.Methods.Get(name); ok {
			vmi.pop()
			bm := &ObjBoundMethod{Receiver: receiver, Method: m.AsClosure()}
			vmi.linkManaged(&bm.Obj, TypeBoundMethod)
			return vmi.push(ObjValue(&bm.Obj))
		}
	}
	return vmi.runtimeErrorf("undefined property '%s'", name.Chars)
}

// execGetSubscript implements subscript reads. Unlike the write side, an
// out-of-range index is not an error: it yields nil, the same as the
// reference VM's getSubscript does for arrays, strings and typed arrays.
func (vmi *Instance) execGetSubscript() error {
	index, receiver := vmi.pop(), vmi.pop()
	if !receiver.IsObj() {
		return vmi.runtimeErrorf("value is not indexable")
	}
	switch receiver.AsObj().Type {
	case TypeArray:
		arr := receiver.AsArray()
		i, ok, err := vmi.indexForRead(index, len(arr.Values))
		if err != nil {
			return err
		}
		if !ok {
			return vmi.push(Nil)
		}
		return vmi.push(arr.Values[i])
	case TypeStringBuilder:
		sb := receiver.AsStringBuilder()
		i, ok, err := vmi.indexForRead(index, len(sb.Bytes))
		if err != nil {
			return err
		}
		if !ok {
			return vmi.push(Nil)
		}
		return vmi.push(ObjValue(&vmi.Intern(string(sb.Bytes[i])).Obj))
	case TypeString:
		s := receiver.AsString()
		i, ok, err := vmi.indexForRead(index, len(s.Chars))
		if err != nil {
			return err
		}
		if !ok {
			return vmi.push(Nil)
		}
		return vmi.push(ObjValue(&vmi.Intern(string(s.Chars[i])).Obj))
	default:
		if receiver.IsTypedArray() {
			ta := receiver.AsTypedArray()
			i, ok, err := vmi.indexForRead(index, ta.Length)
			if err != nil {
				return err
			}
			if !ok {
				return vmi.push(Nil)
			}
			return vmi.push(Number(ta.GetElem(i)))
		}
		return vmi.runtimeErrorf("value is not indexable")
	}
}

func (vmi *Instance) execSetSubscript() error {
	value, index, receiver := vmi.pop(), vmi.pop(), vmi.pop()
	if !receiver.IsObj() {
		return vmi.runtimeErrorf("value is not indexable")
	}
	switch {
	case receiver.IsArray():
		arr := receiver.AsArray()
		i, err := vmi.indexFor(index, len(arr.Values))
		if err != nil {
			return err
		}
		arr.Values[i] = value
	case receiver.IsTypedArray():
		// A non-numeric value coerces to zero rather than erroring,
		// matching setTypedArrayElement in the reference VM.
		if !value.IsNumber() {
			value = Number(0)
		}
		ta := receiver.AsTypedArray()
		i, err := vmi.indexFor(index, ta.Length)
		if err != nil {
			return err
		}
		ta.SetElem(i, value.AsNumber())
	default:
		return vmi.runtimeErrorf("value does not support index assignment")
	}
	return vmi.push(value)
}

// indexFor resolves a subscript-write index, raising a runtime error for
// a non-numeric index or one out of [0, length).
func (vmi *Instance) indexFor(index Value, length int) (int, error) {
	if !index.IsNumber() {
		return 0, vmi.runtimeErrorf("index must be a number")
	}
	i := int(index.AsNumber())
	if i < 0 || i >= length {
		return 0, vmi.runtimeErrorf("index %d out of bounds for length %d", i, length)
	}
	return i, nil
}

// indexForRead resolves a subscript-read index. A non-numeric index is
// still an error, but an out-of-range one returns ok=false instead,
// letting the caller push nil rather than fail the read.
func (vmi *Instance) indexForRead(index Value, length int) (i int, ok bool, err error) {
	if !index.IsNumber() {
		return 0, false, vmi.runtimeErrorf("index must be a number")
	}
	i = int(index.AsNumber())
	if i < 0 || i >= length {
		return 0, false, nil
	}
	return i, true, nil
}
