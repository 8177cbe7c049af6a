package shaderlink

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// directFormats is the fixed enumeration of hardware vertex formats for
// types stored exactly as consumed. 8- and 16-bit elements only exist at
// widths 2 and 4; that is a WebGPU restriction, not ours.
var directFormats = map[DataType]wgpu.VertexFormat{
	Float32:   wgpu.VertexFormatFloat32,
	Float32x2: wgpu.VertexFormatFloat32x2,
	Float32x3: wgpu.VertexFormatFloat32x3,
	Float32x4: wgpu.VertexFormatFloat32x4,

	Float16x2: wgpu.VertexFormatFloat16x2,
	Float16x4: wgpu.VertexFormatFloat16x4,

	Sint32:   wgpu.VertexFormatSint32,
	Sint32x2: wgpu.VertexFormatSint32x2,
	Sint32x3: wgpu.VertexFormatSint32x3,
	Sint32x4: wgpu.VertexFormatSint32x4,

	Uint32:   wgpu.VertexFormatUint32,
	Uint32x2: wgpu.VertexFormatUint32x2,
	Uint32x3: wgpu.VertexFormatUint32x3,
	Uint32x4: wgpu.VertexFormatUint32x4,

	Sint16x2: wgpu.VertexFormatSint16x2,
	Sint16x4: wgpu.VertexFormatSint16x4,
	Uint16x2: wgpu.VertexFormatUint16x2,
	Uint16x4: wgpu.VertexFormatUint16x4,

	Sint8x2: wgpu.VertexFormatSint8x2,
	Sint8x4: wgpu.VertexFormatSint8x4,
	Uint8x2: wgpu.VertexFormatUint8x2,
	Uint8x4: wgpu.VertexFormatUint8x4,
}

// normalizedFormats maps an integer stored type to the format that widens it
// to [0,1] (unsigned) or [-1,1] (signed) floats on the way into the shader.
var normalizedFormats = map[DataType]wgpu.VertexFormat{
	Uint8x2:  wgpu.VertexFormatUnorm8x2,
	Uint8x4:  wgpu.VertexFormatUnorm8x4,
	Sint8x2:  wgpu.VertexFormatSnorm8x2,
	Sint8x4:  wgpu.VertexFormatSnorm8x4,
	Uint16x2: wgpu.VertexFormatUnorm16x2,
	Uint16x4: wgpu.VertexFormatUnorm16x4,
	Sint16x2: wgpu.VertexFormatSnorm16x2,
	Sint16x4: wgpu.VertexFormatSnorm16x4,
}

// vertexFormatBytes gives the packed byte size of every format this mapper
// can produce.
var vertexFormatBytes = map[wgpu.VertexFormat]int{
	wgpu.VertexFormatFloat32:   4,
	wgpu.VertexFormatFloat32x2: 8,
	wgpu.VertexFormatFloat32x3: 12,
	wgpu.VertexFormatFloat32x4: 16,
	wgpu.VertexFormatFloat16x2: 4,
	wgpu.VertexFormatFloat16x4: 8,
	wgpu.VertexFormatSint32:    4,
	wgpu.VertexFormatSint32x2:  8,
	wgpu.VertexFormatSint32x3:  12,
	wgpu.VertexFormatSint32x4:  16,
	wgpu.VertexFormatUint32:    4,
	wgpu.VertexFormatUint32x2:  8,
	wgpu.VertexFormatUint32x3:  12,
	wgpu.VertexFormatUint32x4:  16,
	wgpu.VertexFormatSint16x2:  4,
	wgpu.VertexFormatSint16x4:  8,
	wgpu.VertexFormatUint16x2:  4,
	wgpu.VertexFormatUint16x4:  8,
	wgpu.VertexFormatSint8x2:   2,
	wgpu.VertexFormatSint8x4:   4,
	wgpu.VertexFormatUint8x2:   2,
	wgpu.VertexFormatUint8x4:   4,
	wgpu.VertexFormatUnorm8x2:  2,
	wgpu.VertexFormatUnorm8x4:  4,
	wgpu.VertexFormatSnorm8x2:  2,
	wgpu.VertexFormatSnorm8x4:  4,
	wgpu.VertexFormatUnorm16x2: 4,
	wgpu.VertexFormatUnorm16x4: 8,
	wgpu.VertexFormatSnorm16x2: 4,
	wgpu.VertexFormatSnorm16x4: 8,
}

// VertexFormatBytes returns the packed byte size of a vertex format produced
// by this package, or 0 for formats it never emits.
func VertexFormatBytes(f wgpu.VertexFormat) int {
	return vertexFormatBytes[f]
}

// VertexFormatOf maps an attribute's (logical, stored) type pair onto the
// hardware vertex format enumeration.
//
// Stored == logical: the logical type is matched directly.
// Stored differs: the logical type must be a float32 vector of the same
// width as the stored integer vector, and the "_normalized" variant of the
// stored type's format is selected. The two-path split exists because
// normalized formats let the CPU keep small integers while the GPU reads
// floats, with the widening done in fixed hardware.
func VertexFormatOf(a Attribute) (wgpu.VertexFormat, error) {
	store := a.StoreType()
	if store == a.Type {
		f, ok := directFormats[a.Type]
		if !ok {
			return wgpu.VertexFormatUndefined,
				fmt.Errorf("%w: no hardware format for %s", ErrUnsupportedFormat, a.Type)
		}
		return f, nil
	}

	if a.Type.Elem != ElemFloat32 {
		return wgpu.VertexFormatUndefined,
			fmt.Errorf("%w: stored %s is consumed as %s; normalized attributes are always consumed as float32 vectors",
				ErrUnsupportedFormat, store, a.Type)
	}
	if a.Type.Width != store.Width {
		return wgpu.VertexFormatUndefined,
			fmt.Errorf("%w: stored %s has width %d but logical %s has width %d",
				ErrUnsupportedFormat, store, store.Width, a.Type, a.Type.Width)
	}
	f, ok := normalizedFormats[store]
	if !ok {
		return wgpu.VertexFormatUndefined,
			fmt.Errorf("%w: no normalized format widens stored %s", ErrUnsupportedFormat, store)
	}
	return f, nil
}
