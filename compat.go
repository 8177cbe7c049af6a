package shaderlink

import (
	"fmt"
)

// CheckCompatible verifies that fragProg can be linked after vertexProg:
// every varying the fragment program reads must be produced by the vertex
// program with identical name, location and type. The check is directional.
// Extra vertex outputs the fragment program ignores are fine, a fragment
// input with no matching vertex output is not. The mismatch is fully
// determined by the declarations, so it must surface here and never as a
// pipeline-creation error inside the driver.
func (r *Registry) CheckCompatible(vertexProg, fragProg string) error {
	vs, err := r.Interface(vertexProg)
	if err != nil {
		return err
	}
	fs, err := r.Interface(fragProg)
	if err != nil {
		return err
	}
	if vs.Kind != KindVertex {
		return fmt.Errorf("%w: %q is a %s program, want vertex", ErrIncompatibleStages, vertexProg, vs.Kind)
	}
	if fs.Kind != KindFragment {
		return fmt.Errorf("%w: %q is a %s program, want fragment", ErrIncompatibleStages, fragProg, fs.Kind)
	}

	outs := vs.Varyings()
	for _, in := range fs.Varyings() {
		if err := findVarying(outs, in); err != nil {
			return fmt.Errorf("%w: fragment %q input %q has no matching output in vertex %q: %v",
				ErrIncompatibleStages, fragProg, in.Name, vertexProg, err)
		}
	}
	return nil
}

// findVarying locates a produced varying identical to the consumed one.
// Name, location and type must all agree; a near miss is reported with what
// actually differed.
func findVarying(outs []Attribute, in Attribute) error {
	for _, out := range outs {
		if out.Name != in.Name {
			continue
		}
		if out.Location != in.Location {
			return fmt.Errorf("vertex output %q is at location %d, fragment reads location %d",
				out.Name, out.Location, in.Location)
		}
		if out.Type != in.Type {
			return fmt.Errorf("vertex output %q is %s, fragment reads %s",
				out.Name, out.Type, in.Type)
		}
		return nil
	}
	return fmt.Errorf("no vertex output named %q", in.Name)
}
