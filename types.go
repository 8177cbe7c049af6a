package shaderlink

import (
	"fmt"
)

// ElemKind is the numeric element of a DataType. Spellings follow the
// WebGPU vertex format families (Sint/Uint, not Int).
type ElemKind uint8

const (
	ElemInvalid ElemKind = iota
	ElemFloat32
	ElemFloat16
	ElemSint32
	ElemUint32
	ElemSint16
	ElemUint16
	ElemSint8
	ElemUint8
)

var elemNames = map[ElemKind]string{
	ElemFloat32: "float32",
	ElemFloat16: "float16",
	ElemSint32:  "sint32",
	ElemUint32:  "uint32",
	ElemSint16:  "sint16",
	ElemUint16:  "uint16",
	ElemSint8:   "sint8",
	ElemUint8:   "uint8",
}

var elemBytes = map[ElemKind]int{
	ElemFloat32: 4,
	ElemFloat16: 2,
	ElemSint32:  4,
	ElemUint32:  4,
	ElemSint16:  2,
	ElemUint16:  2,
	ElemSint8:   1,
	ElemUint8:   1,
}

func (e ElemKind) String() string {
	if name, ok := elemNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ElemKind(%d)", uint8(e))
}

// Bytes returns the storage size of one element.
func (e ElemKind) Bytes() int {
	return elemBytes[e]
}

// DataType is a scalar (Width 1) or fixed-size vector of a numeric element.
// The zero value is invalid and, on an Attribute's Store field, means
// "stored exactly as the logical type".
type DataType struct {
	Elem  ElemKind
	Width int
}

var (
	Float32   = DataType{ElemFloat32, 1}
	Float32x2 = DataType{ElemFloat32, 2}
	Float32x3 = DataType{ElemFloat32, 3}
	Float32x4 = DataType{ElemFloat32, 4}

	Float16x2 = DataType{ElemFloat16, 2}
	Float16x4 = DataType{ElemFloat16, 4}

	Sint32   = DataType{ElemSint32, 1}
	Sint32x2 = DataType{ElemSint32, 2}
	Sint32x3 = DataType{ElemSint32, 3}
	Sint32x4 = DataType{ElemSint32, 4}

	Uint32   = DataType{ElemUint32, 1}
	Uint32x2 = DataType{ElemUint32, 2}
	Uint32x3 = DataType{ElemUint32, 3}
	Uint32x4 = DataType{ElemUint32, 4}

	Sint16x2 = DataType{ElemSint16, 2}
	Sint16x4 = DataType{ElemSint16, 4}
	Uint16x2 = DataType{ElemUint16, 2}
	Uint16x4 = DataType{ElemUint16, 4}

	Sint8x2 = DataType{ElemSint8, 2}
	Sint8x4 = DataType{ElemSint8, 4}
	Uint8x2 = DataType{ElemUint8, 2}
	Uint8x4 = DataType{ElemUint8, 4}
)

// IsZero reports whether the type is the "unset" zero value.
func (t DataType) IsZero() bool {
	return t == DataType{}
}

func (t DataType) String() string {
	if t.IsZero() {
		return "unset"
	}
	if 1 == t.Width {
		return t.Elem.String()
	}
	return fmt.Sprintf("%sx%d", t.Elem, t.Width)
}

// Bytes returns the tightly packed size of the type in a vertex buffer.
func (t DataType) Bytes() int {
	return t.Elem.Bytes() * t.Width
}

// valid reports whether the element and width describe a representable
// scalar/vector shape at all. Whether a hardware vertex format exists for
// it is a separate question answered by VertexFormatOf.
func (t DataType) valid() bool {
	if _, ok := elemNames[t.Elem]; !ok {
		return false
	}
	return t.Width >= 1 && t.Width <= 4
}
