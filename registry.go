package shaderlink

import (
	"fmt"
	"sort"
)

// Registry is the single source of truth for shader program interfaces,
// mapping program name to its declared attribute set. It is constructed once
// through a RegistryBuilder and never mutated afterwards, so every consumer
// (format mapping, compatibility checks, layout derivation, the binding
// surface) reads the same declarations in any order.
type Registry struct {
	programs map[string]*ShaderInterface
	names    []string
}

// RegistryBuilder accumulates program declarations. Nothing is validated
// until Build, so declarations read as one block; Build then checks every
// program invariant and freezes the result.
//
// Usage:
//
//	reg, err := shaderlink.NewRegistryBuilder().
//		VertexProgram("position_color.vert",
//			shaderlink.VertexIn("position", 0, shaderlink.Float32x3),
//			shaderlink.VertexInStored("color", 1, shaderlink.Float32x4, shaderlink.Uint8x4),
//			shaderlink.Varying("color", 0, shaderlink.Float32x4),
//		).
//		FragmentProgram("position_color.frag",
//			shaderlink.Varying("color", 0, shaderlink.Float32x4),
//		).
//		Build()
type RegistryBuilder struct {
	interfaces []*ShaderInterface
}

func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// VertexProgram declares the interface of a vertex program. Allowed stages:
// vertex inputs and varyings (its outputs).
func (b *RegistryBuilder) VertexProgram(name string, attrs ...Attribute) *RegistryBuilder {
	b.interfaces = append(b.interfaces, &ShaderInterface{
		Name:       name,
		Kind:       KindVertex,
		Attributes: attrs,
	})
	return b
}

// FragmentProgram declares the interface of a fragment program. Allowed
// stages: varyings (its inputs) and fragment outputs.
func (b *RegistryBuilder) FragmentProgram(name string, attrs ...Attribute) *RegistryBuilder {
	b.interfaces = append(b.interfaces, &ShaderInterface{
		Name:       name,
		Kind:       KindFragment,
		Attributes: attrs,
	})
	return b
}

// Build validates every declared program and returns the frozen registry.
// Any invariant violation fails the whole build; nothing partial survives.
func (b *RegistryBuilder) Build() (*Registry, error) {
	reg := &Registry{programs: make(map[string]*ShaderInterface, len(b.interfaces))}
	for _, si := range b.interfaces {
		if "" == si.Name {
			return nil, fmt.Errorf("%w: empty program name", ErrInvalidName)
		}
		if _, dup := reg.programs[si.Name]; dup {
			return nil, fmt.Errorf("%w: program %q declared twice", ErrDuplicateName, si.Name)
		}
		if err := si.validate(); err != nil {
			return nil, err
		}
		reg.programs[si.Name] = si
		reg.names = append(reg.names, si.Name)
	}
	return reg, nil
}

// MustBuild is Build for package-level registry declarations: a bad
// declaration dies at init time, long before any GPU call.
func (b *RegistryBuilder) MustBuild() *Registry {
	reg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("shaderlink: registry build failed: %v", err))
	}
	return reg
}

// Interface returns the declared interface of a program.
func (r *Registry) Interface(name string) (*ShaderInterface, error) {
	si, ok := r.programs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownProgram, name, r.ProgramNames())
	}
	return si, nil
}

// MustInterface panics on unregistered names; misspelled program names must
// never survive past startup.
func (r *Registry) MustInterface(name string) *ShaderInterface {
	si, err := r.Interface(name)
	if err != nil {
		panic(fmt.Sprintf("shaderlink: %v", err))
	}
	return si
}

// ProgramNames returns the registered program names, sorted.
func (r *Registry) ProgramNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	sort.Strings(out)
	return out
}
