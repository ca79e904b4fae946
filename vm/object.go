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

// ObjType tags the variant of a heap object.
type ObjType uint8

const (
	objTypeInvalid ObjType = iota

	// Static objects: never scanned or freed by the collector.
	TypeString
	TypeFunction
	TypeNative

	// GC-managed objects.
	TypeClosure
	TypeUpvalue
	TypeClass
	TypeInstance
	TypeBoundMethod
	TypeArray

	// Typed (packed primitive) arrays, also GC-managed but never scanned.
	TypeArrayF64
	TypeArrayF32
	TypeArrayU32
	TypeArrayI32
	TypeArrayU16
	TypeArrayI16
	TypeArrayU8
	TypeArrayI8

	TypeStringBuilder
)

// Obj is the common header every heap object begins with. It must be the
// first field of every concrete object struct so that *Obj and
// *ObjWhatever share an address and unsafe.Pointer round-trips are valid.
type Obj struct {
	Type   ObjType
	marked bool
	next   *Obj // intrusive link in the owning object list
}

// ObjString is an immutable, interned, UTF-8 byte string.
type ObjString struct {
	Obj
	Chars  string
	Hash   uint64
	Symbol int // last successful global-table probe slot; -1 if unknown
}

// ObjFunction is a compiled function prototype: arity, chunk, metadata.
// Functions are static (never GC'd individually; freed at VM teardown).
type ObjFunction struct {
	Obj
	Arity        int
	UpvalueCount int
	ID           uint32
	Chunk        Chunk
	Name         *ObjString // nil for anonymous/lambda/script
	Kind         FunctionKind
}

// FunctionKind distinguishes how a compiled function was declared, for
// formatting and for the compiler's return/this/super rules.
type FunctionKind uint8

const (
	FuncScript FunctionKind = iota
	FuncFunction
	FuncLambda
	FuncMethod
	FuncInitializer
	FuncModule
)

// NativeFn is a Go function registered as a VM-callable native.
type NativeFn func(vmi *Instance, args []Value) (Value, error)

// ObjNative wraps a Go-implemented builtin callable from bytecode.
type ObjNative struct {
	Obj
	Fn   NativeFn
	Name string
}

// ObjUpvalue is a captured-variable cell: open while Location points into
// a live stack slot, closed once Location points at &Closed.
type ObjUpvalue struct {
	Obj
	Location *Value
	Closed   Value
	NextOpen *ObjUpvalue // next in the VM's sorted open-upvalue list
}

// ObjClosure pairs a function prototype with its captured upvalues.
type ObjClosure struct {
	Obj
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

// ObjClass is a class value: optional name, method table, and a cached
// initializer for fast construction.
type ObjClass struct {
	Obj
	Name    *ObjString // nil for anonymous classes ("$anon")
	Methods *Table
	Init    Value // cached `init` method, Nil if none
}

// ObjInstance is an instance of a class (or a bare object literal, whose
// Class is nil).
type ObjInstance struct {
	Obj
	Class  *ObjClass
	Fields *Table
}

// ObjBoundMethod binds a receiver to a method closure, produced by
// GET_PROPERTY/GET_SUPER when the resolved value is callable on an
// instance.
type ObjBoundMethod struct {
	Obj
	Receiver Value
	Method   *ObjClosure
}

// ObjArray is a growable array of Values (the reference-array variant).
type ObjArray struct {
	Obj
	Values []Value
}

// ObjStringBuilder is a mutable UTF-8 byte buffer, distinct from the
// immutable interned ObjString.
type ObjStringBuilder struct {
	Obj
	Bytes []byte
}

// TypedElemKind identifies the packed primitive type of a typed array.
type TypedElemKind uint8

const (
	ElemF64 TypedElemKind = iota
	ElemF32
	ElemU32
	ElemI32
	ElemU16
	ElemI16
	ElemU8
	ElemI8
)

var typedObjTypeByKind = [...]ObjType{
	ElemF64: TypeArrayF64,
	ElemF32: TypeArrayF32,
	ElemU32: TypeArrayU32,
	ElemI32: TypeArrayI32,
	ElemU16: TypeArrayU16,
	ElemI16: TypeArrayI16,
	ElemU8:  TypeArrayU8,
	ElemI8:  TypeArrayI8,
}

// ObjTypedArray is a heap object holding a packed payload of one
// primitive numeric type. Reads materialize a Value; writes coerce by
// C-style truncation (see SetElem).
type ObjTypedArray struct {
	Obj
	Kind    TypedElemKind
	Length  int
	payload []byte
}

func elemSize(k TypedElemKind) int {
	switch k {
	case ElemF64:
		return 8
	case ElemF32, ElemU32, ElemI32:
		return 4
	case ElemU16, ElemI16:
		return 2
	default:
		return 1
	}
}

// typeNameKey returns the type-name string typeof reports for an object
// of type t.
func (t ObjType) typeNameKey() string {
	switch t {
	case TypeString:
		return "string"
	case TypeStringBuilder:
		return "stringBuilder"
	case TypeFunction:
		return "function"
	case TypeNative:
		return "native"
	case TypeClosure:
		return "function"
	case TypeClass:
		return "class"
	case TypeInstance:
		return "object"
	case TypeBoundMethod:
		return "function"
	case TypeArray:
		return "array"
	case TypeArrayF64:
		return "arrayF64"
	case TypeArrayF32:
		return "arrayF32"
	case TypeArrayU32:
		return "arrayU32"
	case TypeArrayI32:
		return "arrayI32"
	case TypeArrayU16:
		return "arrayU16"
	case TypeArrayI16:
		return "arrayI16"
	case TypeArrayU8:
		return "arrayU8"
	case TypeArrayI8:
		return "arrayI8"
	default:
		return "unknown"
	}
}
