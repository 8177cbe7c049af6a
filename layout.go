package shaderlink

import (
	"fmt"
	"reflect"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexStep selects the rate at which a bound buffer advances.
type VertexStep uint8

const (
	StepVertex VertexStep = iota
	StepInstance
)

func (s VertexStep) wgpu() wgpu.VertexStepMode {
	if StepInstance == s {
		return wgpu.VertexStepModeInstance
	}
	return wgpu.VertexStepModeVertex
}

// VertexBinding binds a CPU vertex struct to a program's vertex-input
// attributes. Vertex is a (zero) value of the struct type; fields are matched
// positionally, in declaration order, against the bound attributes.
// Attributes nil binds every vertex input of the program; naming a subset is
// how one program's inputs are split across several simultaneously bound
// buffers, each binding with its own Slot. A struct with more or fewer fields
// than the bound attribute list is always an error; partial binding is never
// inferred.
type VertexBinding struct {
	Vertex     any
	Program    string
	Slot       uint32
	Step       VertexStep
	Attributes []string
}

// LayoutAttribute is one derived attribute: where the shader reads it
// (Location), how the hardware decodes it (Format), and where it lives in
// the buffer (Offset, Slot).
type LayoutAttribute struct {
	Name     string
	Location uint32
	Format   wgpu.VertexFormat
	Offset   uint64
	Slot     uint32
}

// VertexLayout is the derived byte-level description of one vertex buffer:
// stride, step rate and per-attribute formats/offsets, ordered by attribute
// declaration order. Derived once from static declarations and immutable;
// WGPU() hands it to pipeline creation.
type VertexLayout struct {
	Program    string
	Slot       uint32
	Step       VertexStep
	Stride     uint64
	Attributes []LayoutAttribute
}

// WGPU converts the derived layout to the device's vertex buffer layout
// description.
func (l *VertexLayout) WGPU() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = wgpu.VertexAttribute{
			ShaderLocation: a.Location,
			Offset:         a.Offset,
			Format:         a.Format,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: l.Stride,
		StepMode:    l.Step.wgpu(),
		Attributes:  attrs,
	}
}

// DeriveLayout derives the vertex buffer layout for a binding: per attribute
// the byte offset of its struct field, the hardware format for its
// (logical, stored) type pair, and the shader location; stride is the
// struct's size so array indexing on the GPU matches Go's own field
// placement. Field count and every positional field type are checked against
// the bound attribute list first; a mismatch names the struct type, the
// program and the offending index rather than truncating or padding.
func (r *Registry) DeriveLayout(b VertexBinding) (*VertexLayout, error) {
	si, err := r.Interface(b.Program)
	if err != nil {
		return nil, err
	}
	if si.Kind != KindVertex {
		return nil, fmt.Errorf("%w: cannot bind a vertex buffer to %s program %q",
			ErrWrongStage, si.Kind, b.Program)
	}

	attrs, err := bindingAttributes(si, b.Attributes)
	if err != nil {
		return nil, err
	}

	t := reflect.TypeOf(b.Vertex)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: vertex prototype for %q must be a struct, got %T",
			ErrFieldTypeMismatch, b.Program, b.Vertex)
	}
	if t.NumField() != len(attrs) {
		return nil, fmt.Errorf("%w: struct %s has %d fields, program %q binds %d attributes",
			ErrFieldCountMismatch, t, t.NumField(), b.Program, len(attrs))
	}

	layout := &VertexLayout{
		Program:    b.Program,
		Slot:       b.Slot,
		Step:       b.Step,
		Stride:     uint64(t.Size()),
		Attributes: make([]LayoutAttribute, len(attrs)),
	}
	for i, attr := range attrs {
		field := t.Field(i)
		want := attr.StoreType()
		if !goTypeMatches(field.Type, want) {
			return nil, fmt.Errorf("%w: struct %s field %d (%s %s) does not store attribute %q of %q (want %s)",
				ErrFieldTypeMismatch, t, i, field.Name, field.Type, attr.Name, b.Program, want)
		}
		format, err := VertexFormatOf(attr)
		if err != nil {
			return nil, fmt.Errorf("attribute %q of %q: %w", attr.Name, b.Program, err)
		}
		layout.Attributes[i] = LayoutAttribute{
			Name:     attr.Name,
			Location: uint32(attr.Location),
			Format:   format,
			Offset:   uint64(field.Offset),
			Slot:     b.Slot,
		}
	}
	return layout, nil
}

// MustDeriveLayout panics on any derivation error; for layouts declared
// alongside a package-level registry.
func (r *Registry) MustDeriveLayout(b VertexBinding) *VertexLayout {
	l, err := r.DeriveLayout(b)
	if err != nil {
		panic(fmt.Sprintf("shaderlink: %v", err))
	}
	return l
}

// bindingAttributes resolves the attribute list a binding covers: all vertex
// inputs in declaration order, or the explicitly named subset (in the named
// order).
func bindingAttributes(si *ShaderInterface, names []string) ([]Attribute, error) {
	if len(names) == 0 {
		return si.VertexInputs(), nil
	}
	out := make([]Attribute, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("%w: attribute %q named twice in binding for %q",
				ErrDuplicateName, name, si.Name)
		}
		seen[name] = true
		a, ok := si.attributeByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no vertex input named %q",
				ErrUnknownAttribute, si.Name, name)
		}
		out = append(out, a)
	}
	return out, nil
}

// elemKinds maps Go scalar kinds onto vertex element kinds. Float16 has no
// Go representation; half floats are stored as their raw uint16 bits, so
// reflect.Uint16 satisfies both ElemUint16 and ElemFloat16.
var elemKinds = map[reflect.Kind][]ElemKind{
	reflect.Float32: {ElemFloat32},
	reflect.Int32:   {ElemSint32},
	reflect.Uint32:  {ElemUint32},
	reflect.Int16:   {ElemSint16},
	reflect.Uint16:  {ElemUint16, ElemFloat16},
	reflect.Int8:    {ElemSint8},
	reflect.Uint8:   {ElemUint8},
}

// goTypeMatches checks a struct field type against a stored DataType
// structurally, so named vector types (mgl32.Vec3) and plain arrays
// ([3]float32) both match float32x3.
func goTypeMatches(t reflect.Type, want DataType) bool {
	if want.Width == 1 {
		return kindMatches(t.Kind(), want.Elem)
	}
	if t.Kind() != reflect.Array || t.Len() != want.Width {
		return false
	}
	return kindMatches(t.Elem().Kind(), want.Elem)
}

func kindMatches(k reflect.Kind, e ElemKind) bool {
	for _, ek := range elemKinds[k] {
		if ek == e {
			return true
		}
	}
	return false
}
