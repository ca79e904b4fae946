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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Stringify renders v the way `print` and string concatenation do.
func Stringify(v Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		return strconv.FormatBool(v.AsBool())
	case v.IsNumber():
		return formatNumber(v.AsNumber())
	case v.IsObj():
		return stringifyObj(v.AsObj())
	default:
		return "<?>"
	}
}

// formatNumber picks the shorter of a trimmed %.15e and a trimmed
// %.15f, so integral doubles print as "3" rather than
// "3.000000000000000" while still round-tripping fractional values.
func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	fixed := trimFixed(fmt.Sprintf("%.15f", n))
	exp := trimExponent(fmt.Sprintf("%.15e", n))
	if len(exp) < len(fixed) {
		return exp
	}
	return fixed
}

// trimFixed strips trailing fractional zeros (and a dangling decimal
// point) from a %f-formatted number.
func trimFixed(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// trimExponent strips trailing mantissa zeros (and a dangling decimal
// point) from an %e-formatted number, leaving the exponent untouched.
func trimExponent(s string) string {
	idx := strings.IndexByte(s, 'e')
	if idx < 0 {
		return s
	}
	mantissa, exp := s[:idx], s[idx:]
	return trimFixed(mantissa) + exp
}

func stringifyObj(o *Obj) string {
	switch o.Type {
	case TypeString:
		return (*ObjString)(ptrOf(o)).Chars
	case TypeStringBuilder:
		return string((*ObjStringBuilder)(ptrOf(o)).Bytes)
	case TypeFunction:
		return functionLabel((*ObjFunction)(ptrOf(o)))
	case TypeClosure:
		return functionLabel((*ObjClosure)(ptrOf(o)).Function)
	case TypeNative:
		return fmt.Sprintf("<native %s>", (*ObjNative)(ptrOf(o)).Name)
	case TypeClass:
		c := (*ObjClass)(ptrOf(o))
		return fmt.Sprintf("%s (class)", classLabel(c))
	case TypeInstance:
		inst := (*ObjInstance)(ptrOf(o))
		if inst.Class == nil {
			return "$anon (instance)"
		}
		return fmt.Sprintf("%s (instance)", classLabel(inst.Class))
	case TypeBoundMethod:
		return functionLabel((*ObjBoundMethod)(ptrOf(o)).Method.Function)
	case TypeArray:
		return stringifyArray((*ObjArray)(ptrOf(o)))
	case TypeArrayF64, TypeArrayF32, TypeArrayU32, TypeArrayI32,
		TypeArrayU16, TypeArrayI16, TypeArrayU8, TypeArrayI8:
		return stringifyTypedArray((*ObjTypedArray)(ptrOf(o)))
	default:
		return "<obj>"
	}
}

func functionLabel(fn *ObjFunction) string {
	if fn.Kind == FuncScript {
		return fmt.Sprintf("<script> (%d)", fn.ID)
	}
	if fn.Name == nil {
		return fmt.Sprintf("<lambda> (%d)", fn.ID)
	}
	return fmt.Sprintf("<fn %s> (%d)", fn.Name.Chars, fn.ID)
}

func classLabel(c *ObjClass) string {
	if c.Name == nil {
		return "$anon"
	}
	return c.Name.Chars
}

func stringifyArray(a *ObjArray) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range a.Values {
		if i > 0 {
			b.WriteString(", ")
		}
		if v.IsString() {
			b.WriteByte('"')
			b.WriteString(v.AsString().Chars)
			b.WriteByte('"')
		} else {
			b.WriteString(Stringify(v))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func stringifyTypedArray(a *ObjTypedArray) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s>[", a.Kind.tagName())
	for i := 0; i < a.Length; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatNumber(a.GetElem(i)))
	}
	b.WriteByte(']')
	return b.String()
}

func (k TypedElemKind) tagName() string {
	switch k {
	case ElemF64:
		return "f64"
	case ElemF32:
		return "f32"
	case ElemU32:
		return "u32"
	case ElemI32:
		return "i32"
	case ElemU16:
		return "u16"
	case ElemI16:
		return "i16"
	case ElemU8:
		return "u8"
	case ElemI8:
		return "i8"
	default:
		return "?"
	}
}
