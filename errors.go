package shaderlink

import (
	"errors"
)

// Every declaration or derivation failure wraps one of these sentinels, so
// callers can branch with errors.Is while the message carries the program
// name, attribute name and index needed to fix the declaration. None of them
// are recoverable: a shader-interface mismatch is fully determined by static
// declarations, and proceeding would only defer the bug to an opaque driver
// failure at runtime.
var (
	// ErrUnknownProgram is returned when a referenced program name has no
	// registry entry.
	ErrUnknownProgram = errors.New("shaderlink: unknown shader program")

	// ErrDuplicateLocation is returned when two attributes of one program
	// share a (stage, location) pair.
	ErrDuplicateLocation = errors.New("shaderlink: duplicate attribute location")

	// ErrDuplicateName is returned when two attributes of one program share
	// a name within the same stage set.
	ErrDuplicateName = errors.New("shaderlink: duplicate attribute name")

	// ErrInvalidName is returned for attribute names that are not valid WGSL
	// identifiers or that collide with the implicit stage symbols.
	ErrInvalidName = errors.New("shaderlink: invalid attribute name")

	// ErrWrongStage is returned when an attribute's stage role is not allowed
	// in the program kind it was declared for.
	ErrWrongStage = errors.New("shaderlink: attribute stage not valid for program")

	// ErrIncompatibleStages is returned when a fragment program consumes a
	// varying the paired vertex program does not produce.
	ErrIncompatibleStages = errors.New("shaderlink: incompatible shader stages")

	// ErrFieldCountMismatch is returned when a bound CPU struct's field count
	// differs from the bound attribute count.
	ErrFieldCountMismatch = errors.New("shaderlink: vertex struct field count mismatch")

	// ErrFieldTypeMismatch is returned when a CPU struct field does not match
	// the corresponding attribute's stored type.
	ErrFieldTypeMismatch = errors.New("shaderlink: vertex struct field type mismatch")

	// ErrUnsupportedFormat is returned when no hardware vertex format exists
	// for a declared (logical, stored) type pair.
	ErrUnsupportedFormat = errors.New("shaderlink: unsupported vertex format")

	// ErrUnknownAttribute is returned when a binding names an attribute the
	// program does not declare.
	ErrUnknownAttribute = errors.New("shaderlink: unknown attribute")
)
