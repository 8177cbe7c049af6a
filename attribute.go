package shaderlink

import (
	"fmt"
	"regexp"
)

// ShaderStage is the pipeline role of an attribute slot. Locations are scoped
// per stage: a vertex input at location 0 and a varying at location 0 are
// unrelated slots.
type ShaderStage uint8

const (
	// StageVertexInput is a per-vertex (or per-instance) value read from a
	// bound vertex buffer.
	StageVertexInput ShaderStage = iota
	// StageVarying is written by the vertex stage and read by the fragment
	// stage.
	StageVarying
	// StageFragmentOutput is a fragment stage render target output.
	StageFragmentOutput
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertexInput:
		return "vertex-input"
	case StageVarying:
		return "varying"
	case StageFragmentOutput:
		return "fragment-output"
	}
	return fmt.Sprintf("ShaderStage(%d)", uint8(s))
}

// ProgramKind tags a ShaderInterface as describing a vertex or a fragment
// program.
type ProgramKind uint8

const (
	KindVertex ProgramKind = iota
	KindFragment
)

func (k ProgramKind) String() string {
	if KindVertex == k {
		return "vertex"
	}
	return "fragment"
}

// Attribute is one named, located, typed slot of a shader stage interface.
// Type is what the shader consumes; Store, when set, is the narrower CPU-side
// encoding the hardware widens for free (e.g. a color kept as uint8x4 and
// read as float32x4). Construct attributes through VertexIn, VertexInStored,
// Varying and FragOut so the stage tag always matches the fields that are
// meaningful for it.
type Attribute struct {
	Name     string
	Location int
	Type     DataType
	Store    DataType
	Stage    ShaderStage
}

// VertexIn declares a vertex-buffer input slot stored exactly as consumed.
func VertexIn(name string, location int, typ DataType) Attribute {
	return Attribute{Name: name, Location: location, Type: typ, Stage: StageVertexInput}
}

// VertexInStored declares a vertex-buffer input slot with a normalized CPU
// encoding: the shader consumes typ (a float32 vector), the buffer stores
// store (a small integer vector of the same width).
func VertexInStored(name string, location int, typ DataType, store DataType) Attribute {
	return Attribute{Name: name, Location: location, Type: typ, Store: store, Stage: StageVertexInput}
}

// Varying declares a vertex-output/fragment-input slot.
func Varying(name string, location int, typ DataType) Attribute {
	return Attribute{Name: name, Location: location, Type: typ, Stage: StageVarying}
}

// FragOut declares a fragment render-target output slot.
func FragOut(name string, location int, typ DataType) Attribute {
	return Attribute{Name: name, Location: location, Type: typ, Stage: StageFragmentOutput}
}

// StoreType resolves the CPU-side representation: Store when declared,
// otherwise the logical type itself.
func (a Attribute) StoreType() DataType {
	if a.Store.IsZero() {
		return a.Type
	}
	return a.Store
}

// ShaderInterface is the ordered attribute set declared for one shader
// program. It is immutable once its Registry is built.
type ShaderInterface struct {
	Name       string
	Kind       ProgramKind
	Attributes []Attribute
}

// byStage returns the attributes of one stage, in declaration order.
func (si *ShaderInterface) byStage(stage ShaderStage) []Attribute {
	var out []Attribute
	for _, a := range si.Attributes {
		if a.Stage == stage {
			out = append(out, a)
		}
	}
	return out
}

// VertexInputs returns the program's vertex-input attributes in declaration
// order.
func (si *ShaderInterface) VertexInputs() []Attribute {
	return si.byStage(StageVertexInput)
}

// Varyings returns the program's varying attributes in declaration order.
func (si *ShaderInterface) Varyings() []Attribute {
	return si.byStage(StageVarying)
}

// FragmentOutputs returns the program's render-target outputs in declaration
// order.
func (si *ShaderInterface) FragmentOutputs() []Attribute {
	return si.byStage(StageFragmentOutput)
}

// attributeByName finds a vertex-input attribute by name.
func (si *ShaderInterface) attributeByName(name string) (Attribute, bool) {
	for _, a := range si.Attributes {
		if a.Stage == StageVertexInput && a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedNames are the implicit stage symbols the binding surface always
// declares; registry entries must not collide with them.
var reservedNames = map[string]bool{
	"vertex_index":   true,
	"instance_index": true,
	"clip_position":  true,
}

// allowedStages lists which attribute stages each program kind may declare.
var allowedStages = map[ProgramKind][]ShaderStage{
	KindVertex:   {StageVertexInput, StageVarying},
	KindFragment: {StageVarying, StageFragmentOutput},
}

// validate checks every per-program invariant: stage roles legal for the
// kind, names valid and unique per stage, locations non-negative and unique
// per stage, and every vertex input mappable to a hardware format.
func (si *ShaderInterface) validate() error {
	type slot struct {
		stage    ShaderStage
		location int
	}
	type named struct {
		stage ShaderStage
		name  string
	}
	seenSlot := map[slot]string{}
	seenName := map[named]bool{}

	for i, a := range si.Attributes {
		if !identRe.MatchString(a.Name) {
			return fmt.Errorf("%w: %q (attribute %d of %q) is not a WGSL identifier",
				ErrInvalidName, a.Name, i, si.Name)
		}
		if reservedNames[a.Name] {
			return fmt.Errorf("%w: %q (attribute %d of %q) collides with an implicit stage symbol",
				ErrInvalidName, a.Name, i, si.Name)
		}
		if !stageAllowed(si.Kind, a.Stage) {
			return fmt.Errorf("%w: %q declares %s attribute %q in a %s program",
				ErrWrongStage, si.Name, a.Stage, a.Name, si.Kind)
		}
		if a.Location < 0 {
			return fmt.Errorf("%w: attribute %q of %q has negative location %d",
				ErrInvalidName, a.Name, si.Name, a.Location)
		}
		if !a.Type.valid() {
			return fmt.Errorf("%w: attribute %q of %q has type %s",
				ErrUnsupportedFormat, a.Name, si.Name, a.Type)
		}

		s := slot{a.Stage, a.Location}
		if prev, dup := seenSlot[s]; dup {
			return fmt.Errorf("%w: %q declares both %q and %q at %s location %d",
				ErrDuplicateLocation, si.Name, prev, a.Name, a.Stage, a.Location)
		}
		seenSlot[s] = a.Name

		n := named{a.Stage, a.Name}
		if seenName[n] {
			return fmt.Errorf("%w: %q declares %s attribute %q twice",
				ErrDuplicateName, si.Name, a.Stage, a.Name)
		}
		seenName[n] = true

		// Vertex inputs must land on a hardware format; catching that here
		// keeps the failure at the declaration, not at first derivation.
		if a.Stage == StageVertexInput {
			if _, err := VertexFormatOf(a); err != nil {
				return fmt.Errorf("%s attribute %q: %w", si.Name, a.Name, err)
			}
		} else if !a.Store.IsZero() {
			return fmt.Errorf("%w: %s attribute %q of %q declares a stored type; only vertex inputs have one",
				ErrWrongStage, a.Stage, a.Name, si.Name)
		}
	}
	return nil
}

func stageAllowed(kind ProgramKind, stage ShaderStage) bool {
	for _, s := range allowedStages[kind] {
		if s == stage {
			return true
		}
	}
	return false
}
