package shaderlink

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

func TestDeriveLayout_PositionColor(t *testing.T) {
	reg := buildTestRegistry(t)

	layout, err := reg.DeriveLayout(VertexBinding{
		Vertex:  PosColorVertex{},
		Program: "mesh.vert",
	})
	if err != nil {
		t.Fatalf("Failed to derive layout: %v", err)
	}

	// 12 bytes of position + 4 bytes of color, no padding.
	if layout.Stride != 16 {
		t.Errorf("Expected stride 16, got %d", layout.Stride)
	}
	if len(layout.Attributes) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(layout.Attributes))
	}

	pos := layout.Attributes[0]
	if pos.Name != "position" || pos.Location != 0 || pos.Offset != 0 {
		t.Errorf("Unexpected position attribute: %+v", pos)
	}
	if pos.Format != wgpu.VertexFormatFloat32x3 {
		t.Errorf("Expected Float32x3 for position, got %v", pos.Format)
	}

	color := layout.Attributes[1]
	if color.Name != "color" || color.Location != 1 || color.Offset != 12 {
		t.Errorf("Unexpected color attribute: %+v", color)
	}
	if color.Format != wgpu.VertexFormatUnorm8x4 {
		t.Errorf("Expected Unorm8x4 for color, got %v", color.Format)
	}
}

func TestDeriveLayout_Deterministic(t *testing.T) {
	reg := buildTestRegistry(t)
	binding := VertexBinding{Vertex: PosColorVertex{}, Program: "mesh.vert"}

	first, err := reg.DeriveLayout(binding)
	if err != nil {
		t.Fatalf("Failed to derive layout: %v", err)
	}
	second, err := reg.DeriveLayout(binding)
	if err != nil {
		t.Fatalf("Failed to derive layout: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical layouts, got %+v and %+v", first, second)
	}
}

func TestDeriveLayout_NamedVectorTypes(t *testing.T) {
	// mgl32.Vec3 is a named [3]float32; matching is structural.
	type vertex struct {
		Position mgl32.Vec3
		Color    [4]uint8
	}
	reg := buildTestRegistry(t)

	layout, err := reg.DeriveLayout(VertexBinding{Vertex: vertex{}, Program: "mesh.vert"})
	if err != nil {
		t.Fatalf("Failed to derive layout for named vector type: %v", err)
	}
	if layout.Stride != 16 {
		t.Errorf("Expected stride 16, got %d", layout.Stride)
	}
}

func TestDeriveLayout_StrideIncludesPadding(t *testing.T) {
	// float32 + [2]uint8 packs to 6 bytes but Go pads the struct to 8; the
	// stride must follow the struct, not the formats.
	type vertex struct {
		Weight float32
		Flags  [2]uint8
	}
	reg, err := NewRegistryBuilder().
		VertexProgram("p",
			VertexIn("weight", 0, Float32),
			VertexIn("flags", 1, Uint8x2),
		).
		Build()
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	layout, err := reg.DeriveLayout(VertexBinding{Vertex: vertex{}, Program: "p"})
	if err != nil {
		t.Fatalf("Failed to derive layout: %v", err)
	}
	if layout.Stride != 8 {
		t.Errorf("Expected padded stride 8, got %d", layout.Stride)
	}
	if layout.Attributes[0].Offset != 0 || layout.Attributes[1].Offset != 4 {
		t.Errorf("Unexpected offsets: %d and %d",
			layout.Attributes[0].Offset, layout.Attributes[1].Offset)
	}
	packed := 0
	for _, a := range layout.Attributes {
		packed += VertexFormatBytes(a.Format)
	}
	if uint64(packed) > layout.Stride {
		t.Errorf("Packed attribute bytes %d exceed the stride %d", packed, layout.Stride)
	}
}

func TestDeriveLayout_FieldCountMismatch(t *testing.T) {
	reg := buildTestRegistry(t)

	// One field too many.
	type tooMany struct {
		Position [3]float32
		Color    [4]uint8
		Extra    float32
	}
	_, err := reg.DeriveLayout(VertexBinding{Vertex: tooMany{}, Program: "mesh.vert"})
	if !errors.Is(err, ErrFieldCountMismatch) {
		t.Errorf("Expected ErrFieldCountMismatch, got %v", err)
	}

	// One field too few.
	type tooFew struct {
		Position [3]float32
	}
	_, err = reg.DeriveLayout(VertexBinding{Vertex: tooFew{}, Program: "mesh.vert"})
	if !errors.Is(err, ErrFieldCountMismatch) {
		t.Errorf("Expected ErrFieldCountMismatch, got %v", err)
	}
}

func TestDeriveLayout_FieldTypeMismatch(t *testing.T) {
	reg := buildTestRegistry(t)

	type wrongWidth struct {
		Position [4]float32
		Color    [4]uint8
	}
	_, err := reg.DeriveLayout(VertexBinding{Vertex: wrongWidth{}, Program: "mesh.vert"})
	if !errors.Is(err, ErrFieldTypeMismatch) {
		t.Errorf("Expected ErrFieldTypeMismatch for wrong width, got %v", err)
	}

	type wrongElem struct {
		Position [3]float64
		Color    [4]uint8
	}
	_, err = reg.DeriveLayout(VertexBinding{Vertex: wrongElem{}, Program: "mesh.vert"})
	if !errors.Is(err, ErrFieldTypeMismatch) {
		t.Errorf("Expected ErrFieldTypeMismatch for float64, got %v", err)
	}
}

func TestDeriveLayout_FieldOrderMatters(t *testing.T) {
	// Matching is positional; swapping the fields is a type mismatch, not a
	// silent reorder.
	type swapped struct {
		Color    [4]uint8
		Position [3]float32
	}
	reg := buildTestRegistry(t)

	_, err := reg.DeriveLayout(VertexBinding{Vertex: swapped{}, Program: "mesh.vert"})
	if !errors.Is(err, ErrFieldTypeMismatch) {
		t.Errorf("Expected ErrFieldTypeMismatch for swapped fields, got %v", err)
	}
}

func TestDeriveLayout_NotAStruct(t *testing.T) {
	reg := buildTestRegistry(t)

	for _, v := range []any{42, "vertex", nil, &PosColorVertex{}} {
		_, err := reg.DeriveLayout(VertexBinding{Vertex: v, Program: "mesh.vert"})
		if !errors.Is(err, ErrFieldTypeMismatch) {
			t.Errorf("Expected ErrFieldTypeMismatch for %T, got %v", v, err)
		}
	}
}

func TestDeriveLayout_SplitAcrossBuffers(t *testing.T) {
	reg, err := NewRegistryBuilder().
		VertexProgram("split.vert",
			VertexIn("position", 0, Float32x3),
			VertexInStored("color", 1, Float32x4, Uint8x4),
			VertexIn("uv", 2, Float32x2),
		).
		Build()
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	type positionOnly struct {
		Position [3]float32
	}
	type colorUV struct {
		Color [4]uint8
		UV    [2]float32
	}

	posLayout, err := reg.DeriveLayout(VertexBinding{
		Vertex:     positionOnly{},
		Program:    "split.vert",
		Slot:       0,
		Attributes: []string{"position"},
	})
	if err != nil {
		t.Fatalf("Failed to derive position layout: %v", err)
	}
	if posLayout.Stride != 12 || len(posLayout.Attributes) != 1 {
		t.Errorf("Unexpected position layout: %+v", posLayout)
	}

	colorLayout, err := reg.DeriveLayout(VertexBinding{
		Vertex:     colorUV{},
		Program:    "split.vert",
		Slot:       1,
		Attributes: []string{"color", "uv"},
	})
	if err != nil {
		t.Fatalf("Failed to derive color/uv layout: %v", err)
	}
	if colorLayout.Stride != 12 || len(colorLayout.Attributes) != 2 {
		t.Errorf("Unexpected color/uv layout: %+v", colorLayout)
	}
	if colorLayout.Attributes[0].Location != 1 || colorLayout.Attributes[1].Location != 2 {
		t.Errorf("Expected locations 1 and 2, got %d and %d",
			colorLayout.Attributes[0].Location, colorLayout.Attributes[1].Location)
	}
	if colorLayout.Attributes[1].Offset != 4 {
		t.Errorf("Expected uv offset 4, got %d", colorLayout.Attributes[1].Offset)
	}
	if colorLayout.Slot != 1 {
		t.Errorf("Expected slot 1, got %d", colorLayout.Slot)
	}
}

func TestDeriveLayout_SubsetErrors(t *testing.T) {
	reg := buildTestRegistry(t)

	type positionOnly struct {
		Position [3]float32
	}

	_, err := reg.DeriveLayout(VertexBinding{
		Vertex:     positionOnly{},
		Program:    "mesh.vert",
		Attributes: []string{"normal"},
	})
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Expected ErrUnknownAttribute, got %v", err)
	}

	_, err = reg.DeriveLayout(VertexBinding{
		Vertex:     positionOnly{},
		Program:    "mesh.vert",
		Attributes: []string{"position", "position"},
	})
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}

}

func TestDeriveLayout_SubsetOrderDefinesMatching(t *testing.T) {
	// The named order, not declaration order, is what fields are matched
	// against.
	type colorPosition struct {
		Color    [4]uint8
		Position [3]float32
	}
	reg := buildTestRegistry(t)

	layout, err := reg.DeriveLayout(VertexBinding{
		Vertex:     colorPosition{},
		Program:    "mesh.vert",
		Attributes: []string{"color", "position"},
	})
	if err != nil {
		t.Fatalf("Failed to derive reordered layout: %v", err)
	}
	if layout.Attributes[0].Location != 1 || layout.Attributes[1].Location != 0 {
		t.Errorf("Expected locations 1 then 0, got %d then %d",
			layout.Attributes[0].Location, layout.Attributes[1].Location)
	}
	if layout.Attributes[0].Offset != 0 || layout.Attributes[1].Offset != 4 {
		t.Errorf("Unexpected offsets: %d and %d",
			layout.Attributes[0].Offset, layout.Attributes[1].Offset)
	}
}

func TestDeriveLayout_InstanceStep(t *testing.T) {
	reg := buildTestRegistry(t)

	layout, err := reg.DeriveLayout(VertexBinding{
		Vertex:  PosColorVertex{},
		Program: "mesh.vert",
		Slot:    1,
		Step:    StepInstance,
	})
	if err != nil {
		t.Fatalf("Failed to derive layout: %v", err)
	}

	wgpuLayout := layout.WGPU()
	if wgpuLayout.StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("Expected instance step mode, got %v", wgpuLayout.StepMode)
	}
}

func TestDeriveLayout_WrongProgramKind(t *testing.T) {
	reg := buildTestRegistry(t)

	_, err := reg.DeriveLayout(VertexBinding{Vertex: PosColorVertex{}, Program: "mesh.frag"})
	if !errors.Is(err, ErrWrongStage) {
		t.Errorf("Expected ErrWrongStage, got %v", err)
	}
}

func TestDeriveLayout_UnknownProgram(t *testing.T) {
	reg := buildTestRegistry(t)

	_, err := reg.DeriveLayout(VertexBinding{Vertex: PosColorVertex{}, Program: "missing"})
	if !errors.Is(err, ErrUnknownProgram) {
		t.Errorf("Expected ErrUnknownProgram, got %v", err)
	}
}

func TestDeriveLayout_HalfFloatBits(t *testing.T) {
	// Half floats have no Go type; their raw bits live in uint16 fields.
	type vertex struct {
		Position [4]uint16
	}
	reg, err := NewRegistryBuilder().
		VertexProgram("half.vert", VertexIn("position", 0, Float16x4)).
		Build()
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	layout, err := reg.DeriveLayout(VertexBinding{Vertex: vertex{}, Program: "half.vert"})
	if err != nil {
		t.Fatalf("Failed to derive layout: %v", err)
	}
	if layout.Attributes[0].Format != wgpu.VertexFormatFloat16x4 {
		t.Errorf("Expected Float16x4, got %v", layout.Attributes[0].Format)
	}
	if layout.Stride != 8 {
		t.Errorf("Expected stride 8, got %d", layout.Stride)
	}
}

func TestDeriveLayout_ScalarFields(t *testing.T) {
	type vertex struct {
		Index  uint32
		Weight float32
	}
	reg, err := NewRegistryBuilder().
		VertexProgram("scalar.vert",
			VertexIn("index", 0, Uint32),
			VertexIn("weight", 1, Float32),
		).
		Build()
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	layout, err := reg.DeriveLayout(VertexBinding{Vertex: vertex{}, Program: "scalar.vert"})
	if err != nil {
		t.Fatalf("Failed to derive layout: %v", err)
	}
	if layout.Stride != 8 {
		t.Errorf("Expected stride 8, got %d", layout.Stride)
	}
	if layout.Attributes[0].Format != wgpu.VertexFormatUint32 {
		t.Errorf("Expected Uint32, got %v", layout.Attributes[0].Format)
	}
}

func TestMustDeriveLayout_Panics(t *testing.T) {
	reg := buildTestRegistry(t)

	defer func() {
		if recover() == nil {
			t.Errorf("Expected MustDeriveLayout to panic on a bad binding")
		}
	}()
	reg.MustDeriveLayout(VertexBinding{Vertex: 42, Program: "mesh.vert"})
}

func TestVertexLayout_WGPU(t *testing.T) {
	reg := buildTestRegistry(t)

	layout := reg.MustDeriveLayout(VertexBinding{Vertex: PosColorVertex{}, Program: "mesh.vert"})
	got := layout.WGPU()

	if got.ArrayStride != 16 {
		t.Errorf("Expected array stride 16, got %d", got.ArrayStride)
	}
	if got.StepMode != wgpu.VertexStepModeVertex {
		t.Errorf("Expected vertex step mode, got %v", got.StepMode)
	}
	if len(got.Attributes) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(got.Attributes))
	}
	if got.Attributes[1].ShaderLocation != 1 || got.Attributes[1].Offset != 12 {
		t.Errorf("Unexpected second attribute: %+v", got.Attributes[1])
	}
}
