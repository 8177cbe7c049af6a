package shaderlink

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexBytes reinterprets a vertex slice as the raw bytes the GPU reads.
// No copy is made; the slice must stay alive until the upload completes.
func VertexBytes[T any](vertices []T) []byte {
	if len(vertices) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*size)
}

// NewVertexBuffer uploads vertices for the given layout. The element size
// must equal the layout's stride, otherwise the buffer contents would shear
// against the attribute offsets.
func NewVertexBuffer[T any](dev *Device, label string, vertices []T, layout *VertexLayout) (*wgpu.Buffer, error) {
	var zero T
	if size := uint64(unsafe.Sizeof(zero)); size != layout.Stride {
		return nil, fmt.Errorf("shaderlink: buffer %q: element size %d does not match layout stride %d: %w",
			label, size, layout.Stride, ErrFieldTypeMismatch)
	}
	buf, err := dev.WGPU().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: VertexBytes(vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: buffer %q: %w", label, err)
	}
	return buf, nil
}

// NewIndexBuffer uploads uint16 indices.
func NewIndexBuffer(dev *Device, label string, indices []uint16) (*wgpu.Buffer, error) {
	buf, err := dev.WGPU().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: wgpu.ToBytes(indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: buffer %q: %w", label, err)
	}
	return buf, nil
}

// NewMeshBuffers uploads a vertex and index buffer pair.
func NewMeshBuffers[T any](dev *Device, label string, vertices []T, indices []uint16, layout *VertexLayout) (vertexBuf *wgpu.Buffer, indexBuf *wgpu.Buffer, err error) {
	vertexBuf, err = NewVertexBuffer(dev, label+" vertices", vertices, layout)
	if err != nil {
		return nil, nil, err
	}
	indexBuf, err = NewIndexBuffer(dev, label+" indices", indices)
	if err != nil {
		vertexBuf.Release()
		return nil, nil, err
	}
	return vertexBuf, indexBuf, nil
}

// NewUniformBuffer serializes data with UniformBytes and uploads it with
// uniform and copy-dst usage so it can be rewritten each frame.
func NewUniformBuffer(dev *Device, label string, data any) (*wgpu.Buffer, error) {
	contents, err := UniformBytes(data)
	if err != nil {
		return nil, fmt.Errorf("shaderlink: buffer %q: %w", label, err)
	}
	buf, err := dev.WGPU().CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: buffer %q: %w", label, err)
	}
	return buf, nil
}

// WriteUniform overwrites a uniform buffer with freshly serialized data.
func WriteUniform(dev *Device, buf *wgpu.Buffer, data any) error {
	contents, err := UniformBytes(data)
	if err != nil {
		return err
	}
	return dev.Queue().WriteBuffer(buf, 0, contents)
}
