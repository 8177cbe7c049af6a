package shaderlink

import (
	"errors"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func splitTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistryBuilder().
		VertexProgram("split.vert",
			VertexIn("position", 0, Float32x3),
			VertexInStored("color", 1, Float32x4, Uint8x4),
		).
		Build()
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}
	return reg
}

func TestDerivePipelineLayouts_SingleBinding(t *testing.T) {
	reg := buildTestRegistry(t)

	layouts, err := derivePipelineLayouts(reg, "mesh.vert", PipelineDescriptor{
		Name: "mesh",
		Bindings: []VertexBinding{
			{Vertex: PosColorVertex{}, Program: "mesh.vert"},
		},
	})
	if err != nil {
		t.Fatalf("Failed to derive pipeline layouts: %v", err)
	}
	if len(layouts) != 1 {
		t.Fatalf("Expected 1 layout, got %d", len(layouts))
	}
	if layouts[0].Stride != 16 {
		t.Errorf("Expected stride 16, got %d", layouts[0].Stride)
	}
}

func TestDerivePipelineLayouts_SplitBuffers(t *testing.T) {
	type positionOnly struct {
		Position [3]float32
	}
	type colorOnly struct {
		Color [4]uint8
	}
	reg := splitTestRegistry(t)

	layouts, err := derivePipelineLayouts(reg, "split.vert", PipelineDescriptor{
		Name: "split",
		Bindings: []VertexBinding{
			{Vertex: colorOnly{}, Program: "split.vert", Slot: 1, Attributes: []string{"color"}},
			{Vertex: positionOnly{}, Program: "split.vert", Slot: 0, Attributes: []string{"position"}},
		},
	})
	if err != nil {
		t.Fatalf("Failed to derive pipeline layouts: %v", err)
	}
	if len(layouts) != 2 {
		t.Fatalf("Expected 2 layouts, got %d", len(layouts))
	}
	// Returned in slot order regardless of binding order.
	if layouts[0].Slot != 0 || layouts[1].Slot != 1 {
		t.Errorf("Expected slot order 0, 1; got %d, %d", layouts[0].Slot, layouts[1].Slot)
	}
	if layouts[0].Attributes[0].Name != "position" {
		t.Errorf("Expected slot 0 to carry position, got %q", layouts[0].Attributes[0].Name)
	}
}

func TestDerivePipelineLayouts_Errors(t *testing.T) {
	type positionOnly struct {
		Position [3]float32
	}
	type colorOnly struct {
		Color [4]uint8
	}
	reg := splitTestRegistry(t)

	// No bindings at all.
	_, err := derivePipelineLayouts(reg, "split.vert", PipelineDescriptor{Name: "p"})
	if err == nil {
		t.Errorf("Expected an error for no bindings")
	}

	// Duplicate slot.
	_, err = derivePipelineLayouts(reg, "split.vert", PipelineDescriptor{
		Name: "p",
		Bindings: []VertexBinding{
			{Vertex: positionOnly{}, Program: "split.vert", Slot: 0, Attributes: []string{"position"}},
			{Vertex: colorOnly{}, Program: "split.vert", Slot: 0, Attributes: []string{"color"}},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate vertex buffer slot") {
		t.Errorf("Expected a duplicate slot error, got %v", err)
	}

	// Sparse slots.
	_, err = derivePipelineLayouts(reg, "split.vert", PipelineDescriptor{
		Name: "p",
		Bindings: []VertexBinding{
			{Vertex: positionOnly{}, Program: "split.vert", Slot: 0, Attributes: []string{"position"}},
			{Vertex: colorOnly{}, Program: "split.vert", Slot: 2, Attributes: []string{"color"}},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "dense") {
		t.Errorf("Expected a dense slot error, got %v", err)
	}

	// Attribute claimed by two bindings.
	_, err = derivePipelineLayouts(reg, "split.vert", PipelineDescriptor{
		Name: "p",
		Bindings: []VertexBinding{
			{Vertex: positionOnly{}, Program: "split.vert", Slot: 0, Attributes: []string{"position"}},
			{Vertex: positionOnly{}, Program: "split.vert", Slot: 1, Attributes: []string{"position"}},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "bound by slots") {
		t.Errorf("Expected a double-claim error, got %v", err)
	}

	// A vertex input left unbound.
	_, err = derivePipelineLayouts(reg, "split.vert", PipelineDescriptor{
		Name: "p",
		Bindings: []VertexBinding{
			{Vertex: positionOnly{}, Program: "split.vert", Slot: 0, Attributes: []string{"position"}},
		},
	})
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("Expected ErrUnknownAttribute for the unbound color input, got %v", err)
	}

	// Binding targets a different program than the pipeline's vertex shader.
	_, err = derivePipelineLayouts(reg, "split.vert", PipelineDescriptor{
		Name: "p",
		Bindings: []VertexBinding{
			{Vertex: positionOnly{}, Program: "other.vert", Slot: 0},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "targets program") {
		t.Errorf("Expected a program mismatch error, got %v", err)
	}
}

func TestColorTargets_ImplicitSingleTarget(t *testing.T) {
	reg := buildTestRegistry(t)

	targets, err := colorTargets(reg, "mesh.frag", wgpu.TextureFormatBGRA8Unorm, nil)
	if err != nil {
		t.Fatalf("Failed to build color targets: %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("Expected 1 implicit target, got %d", len(targets))
	}
	if targets[0].Format != wgpu.TextureFormatBGRA8Unorm {
		t.Errorf("Expected the surface format, got %v", targets[0].Format)
	}
}

func TestColorTargets_DeclaredOutputs(t *testing.T) {
	reg, err := NewRegistryBuilder().
		FragmentProgram("gbuffer.frag",
			FragOut("material", 1, Float32x4),
			FragOut("albedo", 0, Float32x4),
		).
		Build()
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	targets, err := colorTargets(reg, "gbuffer.frag", wgpu.TextureFormatBGRA8Unorm, nil)
	if err != nil {
		t.Fatalf("Failed to build color targets: %v", err)
	}
	if len(targets) != 2 {
		t.Errorf("Expected 2 targets, got %d", len(targets))
	}
}

func TestColorTargets_BlendPropagates(t *testing.T) {
	reg := buildTestRegistry(t)

	blend := &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
	targets, err := colorTargets(reg, "mesh.frag", wgpu.TextureFormatBGRA8Unorm, blend)
	if err != nil {
		t.Fatalf("Failed to build color targets: %v", err)
	}
	if targets[0].Blend != blend {
		t.Errorf("Expected the blend state on the target, got %v", targets[0].Blend)
	}
}

func TestColorTargets_SparseLocations(t *testing.T) {
	reg, err := NewRegistryBuilder().
		FragmentProgram("sparse.frag",
			FragOut("albedo", 0, Float32x4),
			FragOut("material", 2, Float32x4),
		).
		Build()
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}

	_, err = colorTargets(reg, "sparse.frag", wgpu.TextureFormatBGRA8Unorm, nil)
	if err == nil || !strings.Contains(err.Error(), "dense") {
		t.Errorf("Expected a dense location error, got %v", err)
	}
}

func TestTopology_Modes(t *testing.T) {
	if got := Topology(0).wgpu(); got != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("Expected the zero value to draw triangle lists, got %v", got)
	}
	modes := map[Topology]wgpu.PrimitiveTopology{
		TriangleList:  wgpu.PrimitiveTopologyTriangleList,
		TriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
		LineList:      wgpu.PrimitiveTopologyLineList,
		LineStrip:     wgpu.PrimitiveTopologyLineStrip,
		PointList:     wgpu.PrimitiveTopologyPointList,
	}
	for mode, want := range modes {
		if got := mode.wgpu(); got != want {
			t.Errorf("Expected %v for mode %d, got %v", want, mode, got)
		}
	}
}
