package shaderlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
)

// UniformBytes serializes a uniform value to the little-endian bytes WGSL
// reads. Structs are walked field by field in declaration order, slices and
// arrays element-wise, pointers through the pointer; scalars must be 32-bit
// or narrower. Nil values, top-level or nested, are errors. Callers remain
// responsible for WGSL alignment, usually by padding their structs to
// 16-byte boundaries.
func UniformBytes(data any) ([]byte, error) {
	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	buf := new(bytes.Buffer)
	if err := writeUniformBytes(val, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeUniformBytes(field reflect.Value, buf *bytes.Buffer) error {
	// Dereferencing a nil pointer leaves an invalid value behind; reject it
	// here so every path reports an error instead of panicking in reflect.
	if !field.IsValid() {
		return fmt.Errorf("shaderlink: unsupported uniform value: nil")
	}
	switch field.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < field.Len(); i++ {
			elem := field.Index(i)
			if elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
			if err := writeUniformBytes(elem, buf); err != nil {
				return err
			}
		}

	case reflect.Struct:
		for i := 0; i < field.NumField(); i++ {
			if err := writeUniformBytes(field.Field(i), buf); err != nil {
				return err
			}
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Float32:
		if err := binary.Write(buf, binary.LittleEndian, field.Interface()); err != nil {
			return fmt.Errorf("shaderlink: write uniform scalar: %w", err)
		}

	default:
		return fmt.Errorf("shaderlink: unsupported uniform type %v", field.Type())
	}
	return nil
}
