package shaderlink

import (
	"fmt"
	"strings"
)

// Fixed struct names of the generated stage interfaces. Shader bodies are
// written against these: a vertex body defines
// `@vertex fn vs_main(in: VertexInput) -> VertexOutput`, a fragment body
// `@fragment fn fs_main(in: FragmentInput) -> FragmentOutput`.
const (
	wgslVertexInput    = "VertexInput"
	wgslVertexOutput   = "VertexOutput"
	wgslFragmentInput  = "FragmentInput"
	wgslFragmentOutput = "FragmentOutput"
)

// InterfaceWGSL emits the stage-local symbol table a program's WGSL body
// compiles against: one struct per interface direction, every registry
// attribute as a @location field, plus the implicit symbols every stage has
// without declaring them. Those are vertex_index and instance_index
// (read-only, vertex stage), clip_position (the mandatory position output,
// vertex stage) and the lone color output of fragment programs that declare
// no outputs of their own.
//
// The output is deterministic: fields follow attribute declaration order, so
// composing the same registry twice yields byte-identical source.
func (r *Registry) InterfaceWGSL(program string) (string, error) {
	si, err := r.Interface(program)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	switch si.Kind {
	case KindVertex:
		writeVertexInterface(&b, si)
	case KindFragment:
		writeFragmentInterface(&b, si)
	}
	return b.String(), nil
}

func writeVertexInterface(b *strings.Builder, si *ShaderInterface) {
	b.WriteString("struct " + wgslVertexInput + " {\n")
	b.WriteString("    @builtin(vertex_index) vertex_index: u32,\n")
	b.WriteString("    @builtin(instance_index) instance_index: u32,\n")
	for _, a := range si.VertexInputs() {
		writeAttrField(b, a)
	}
	b.WriteString("}\n\n")

	b.WriteString("struct " + wgslVertexOutput + " {\n")
	b.WriteString("    @builtin(position) clip_position: vec4<f32>,\n")
	for _, a := range si.Varyings() {
		writeAttrField(b, a)
	}
	b.WriteString("}\n")
}

func writeFragmentInterface(b *strings.Builder, si *ShaderInterface) {
	// WGSL forbids empty structs; a fragment program with no varyings gets
	// no FragmentInput at all and its body takes no input parameter.
	if ins := si.Varyings(); len(ins) > 0 {
		b.WriteString("struct " + wgslFragmentInput + " {\n")
		for _, a := range ins {
			writeAttrField(b, a)
		}
		b.WriteString("}\n\n")
	}

	b.WriteString("struct " + wgslFragmentOutput + " {\n")
	outs := si.FragmentOutputs()
	if len(outs) == 0 {
		b.WriteString("    @location(0) color: vec4<f32>,\n")
	}
	for _, a := range outs {
		writeAttrField(b, a)
	}
	b.WriteString("}\n")
}

func writeAttrField(b *strings.Builder, a Attribute) {
	interp := ""
	if a.Stage == StageVarying && isIntegerElem(a.Type.Elem) {
		// Integer varyings cannot be interpolated.
		interp = " @interpolate(flat)"
	}
	fmt.Fprintf(b, "    @location(%d)%s %s: %s,\n", a.Location, interp, a.Name, wgslTypeName(a.Type))
}

func isIntegerElem(e ElemKind) bool {
	switch e {
	case ElemSint8, ElemSint16, ElemSint32, ElemUint8, ElemUint16, ElemUint32:
		return true
	}
	return false
}

// wgslTypeName renders the shader-side spelling of a logical type. The
// hardware widens vertex fetches to 32-bit lanes, so 8/16-bit integer
// logical types read as u32/i32 vectors and float16 reads as f32, matching
// what a portable WGSL module (no f16 extension) declares.
func wgslTypeName(t DataType) string {
	var scalar string
	switch t.Elem {
	case ElemFloat32, ElemFloat16:
		scalar = "f32"
	case ElemSint8, ElemSint16, ElemSint32:
		scalar = "i32"
	case ElemUint8, ElemUint16, ElemUint32:
		scalar = "u32"
	default:
		scalar = "f32"
	}
	if 1 == t.Width {
		return scalar
	}
	return fmt.Sprintf("vec%d<%s>", t.Width, scalar)
}
