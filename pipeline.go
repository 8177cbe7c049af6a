package shaderlink

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// Topology selects how vertices are assembled into primitives. The zero
// value draws triangle lists.
type Topology uint8

const (
	TriangleList Topology = iota
	TriangleStrip
	LineList
	LineStrip
	PointList
)

func (t Topology) wgpu() wgpu.PrimitiveTopology {
	switch t {
	case TriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case LineList:
		return wgpu.PrimitiveTopologyLineList
	case LineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case PointList:
		return wgpu.PrimitiveTopologyPointList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

// PipelineDescriptor names everything a render pipeline is assembled from.
// Vertex and Fragment are shaders from the same store; Bindings describe the
// vertex buffers the pipeline pulls from, one per slot.
type PipelineDescriptor struct {
	Name     string
	Vertex   Shader
	Fragment Shader
	Bindings []VertexBinding
	// Topology's zero value draws triangle lists.
	Topology Topology
	CullMode wgpu.CullMode
	// DepthFormat zero means no depth attachment.
	DepthFormat wgpu.TextureFormat
	// Blend applies to every color target; nil means opaque writes.
	Blend *wgpu.BlendState
}

// Pipeline is a render pipeline together with the vertex layouts it was
// built from, in slot order.
type Pipeline struct {
	name     string
	pipeline *wgpu.RenderPipeline
	layouts  []VertexLayout
}

func (p *Pipeline) Name() string { return p.name }

func (p *Pipeline) WGPU() *wgpu.RenderPipeline { return p.pipeline }

// Layouts returns the derived vertex layouts in slot order.
func (p *Pipeline) Layouts() []VertexLayout { return p.layouts }

func (p *Pipeline) Release() { p.pipeline.Release() }

// CreateRenderPipeline checks the descriptor's programs against each other
// and against its vertex bindings, composes both shader sources, and only
// then touches the device. Nothing is created on the GPU unless the whole
// descriptor is statically sound.
func CreateRenderPipeline(dev *Device, store *ShaderStore, reg *Registry, desc PipelineDescriptor) (*Pipeline, error) {
	vsAsset, ok := store.get(desc.Vertex)
	if !ok {
		return nil, fmt.Errorf("shaderlink: pipeline %q: unknown vertex shader handle", desc.Name)
	}
	fsAsset, ok := store.get(desc.Fragment)
	if !ok {
		return nil, fmt.Errorf("shaderlink: pipeline %q: unknown fragment shader handle", desc.Name)
	}

	if err := reg.CheckCompatible(vsAsset.program, fsAsset.program); err != nil {
		return nil, fmt.Errorf("shaderlink: pipeline %q: %w", desc.Name, err)
	}

	layouts, err := derivePipelineLayouts(reg, vsAsset.program, desc)
	if err != nil {
		return nil, err
	}
	if dev.logger.DebugEnabled() {
		for _, l := range layouts {
			dev.logger.Debugf("pipeline %q slot %d: stride %d, %d attributes from %q",
				desc.Name, l.Slot, l.Stride, len(l.Attributes), l.Program)
		}
	}

	targets, err := colorTargets(reg, fsAsset.program, dev.SurfaceFormat(), desc.Blend)
	if err != nil {
		return nil, fmt.Errorf("shaderlink: pipeline %q: %w", desc.Name, err)
	}

	vsSource, err := store.ComposedSource(reg, desc.Vertex)
	if err != nil {
		return nil, err
	}
	fsSource, err := store.ComposedSource(reg, desc.Fragment)
	if err != nil {
		return nil, err
	}
	dev.logger.Debugf("pipeline %q: composed %q (%d bytes) and %q (%d bytes)",
		desc.Name, vsAsset.name, len(vsSource), fsAsset.name, len(fsSource))

	vsModule, err := dev.WGPU().CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          vsAsset.name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vsSource},
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: pipeline %q: vertex module: %w", desc.Name, err)
	}
	defer vsModule.Release()

	fsModule, err := dev.WGPU().CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          fsAsset.name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fsSource},
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: pipeline %q: fragment module: %w", desc.Name, err)
	}
	defer fsModule.Release()

	buffers := make([]wgpu.VertexBufferLayout, len(layouts))
	for i, l := range layouts {
		buffers[i] = l.WGPU()
	}

	var depthStencil *wgpu.DepthStencilState
	if desc.DepthFormat != wgpu.TextureFormat(0) {
		depthStencil = &wgpu.DepthStencilState{
			Format:            desc.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	pipeline, err := dev.WGPU().CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: desc.Name,
		Vertex: wgpu.VertexState{
			Module:     vsModule,
			EntryPoint: "vs_main",
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fsModule,
			EntryPoint: "fs_main",
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  desc.Topology.wgpu(),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  desc.CullMode,
		},
		DepthStencil: depthStencil,
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: pipeline %q: %w", desc.Name, err)
	}

	return &Pipeline{
		name:     desc.Name,
		pipeline: pipeline,
		layouts:  layouts,
	}, nil
}

// derivePipelineLayouts derives one layout per binding and checks the slot
// assignment as a whole: every binding targets the vertex shader's program,
// slots are unique and dense from zero, and no attribute is claimed by two
// bindings.
func derivePipelineLayouts(reg *Registry, vertexProgram string, desc PipelineDescriptor) ([]VertexLayout, error) {
	if len(desc.Bindings) == 0 {
		return nil, fmt.Errorf("shaderlink: pipeline %q: no vertex bindings", desc.Name)
	}

	bySlot := make(map[uint32]VertexLayout, len(desc.Bindings))
	claimed := make(map[string]uint32)
	for _, binding := range desc.Bindings {
		if binding.Program != vertexProgram {
			return nil, fmt.Errorf("shaderlink: pipeline %q: binding slot %d targets program %q, pipeline uses %q",
				desc.Name, binding.Slot, binding.Program, vertexProgram)
		}
		layout, err := reg.DeriveLayout(binding)
		if err != nil {
			return nil, fmt.Errorf("shaderlink: pipeline %q: %w", desc.Name, err)
		}
		if _, dup := bySlot[binding.Slot]; dup {
			return nil, fmt.Errorf("shaderlink: pipeline %q: duplicate vertex buffer slot %d", desc.Name, binding.Slot)
		}
		for _, attr := range layout.Attributes {
			if other, dup := claimed[attr.Name]; dup {
				return nil, fmt.Errorf("shaderlink: pipeline %q: attribute %q bound by slots %d and %d",
					desc.Name, attr.Name, other, binding.Slot)
			}
			claimed[attr.Name] = binding.Slot
		}
		bySlot[binding.Slot] = *layout
	}

	// every vertex input must come from some binding
	si := reg.programs[vertexProgram]
	for _, a := range si.VertexInputs() {
		if _, ok := claimed[a.Name]; !ok {
			return nil, fmt.Errorf("shaderlink: pipeline %q: vertex input %q not bound by any slot: %w",
				desc.Name, a.Name, ErrUnknownAttribute)
		}
	}

	layouts := make([]VertexLayout, 0, len(bySlot))
	for slot := uint32(0); slot < uint32(len(bySlot)); slot++ {
		layout, ok := bySlot[slot]
		if !ok {
			return nil, fmt.Errorf("shaderlink: pipeline %q: vertex buffer slots must be dense, slot %d missing", desc.Name, slot)
		}
		layouts = append(layouts, layout)
	}
	return layouts, nil
}

// colorTargets builds one color target per declared fragment output, in
// location order. A program with no declared outputs gets the implicit
// single target at location 0. All targets use the surface format.
func colorTargets(reg *Registry, fragProgram string, format wgpu.TextureFormat, blend *wgpu.BlendState) ([]wgpu.ColorTargetState, error) {
	si := reg.programs[fragProgram]
	outs := si.FragmentOutputs()
	if len(outs) == 0 {
		return []wgpu.ColorTargetState{{
			Format:    format,
			Blend:     blend,
			WriteMask: wgpu.ColorWriteMaskAll,
		}}, nil
	}

	sorted := make([]Attribute, len(outs))
	copy(sorted, outs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Location < sorted[j].Location })
	targets := make([]wgpu.ColorTargetState, 0, len(sorted))
	for i, a := range sorted {
		if a.Location != i {
			return nil, fmt.Errorf("fragment outputs of %q must use dense locations from 0, got %d for %q",
				fragProgram, a.Location, a.Name)
		}
		targets = append(targets, wgpu.ColorTargetState{
			Format:    format,
			Blend:     blend,
			WriteMask: wgpu.ColorWriteMaskAll,
		})
	}
	return targets, nil
}
