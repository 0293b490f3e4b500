package renderer

import "fmt"

// UniformField is one named, fixed-size field of a uniform buffer.
type UniformField struct {
	Name string
	Size uint64
}

// UniformLayout is an ordered list of named fields. Field offsets are derived once from the field order
// and sizes, so call sites address sub-regions by name rather than by raw byte offset.
// The order is the binary contract with the shader: reordering fields is a breaking change.
type UniformLayout struct {
	label   string
	fields  []UniformField
	offsets map[string]uint64
	size    uint64
}

// NewUniformLayout builds a layout from fields in declaration order.
// Duplicate names and zero-sized fields are programming errors and panic.
//
// Parameters:
//   - label: a name for the layout used in error messages
//   - fields: the fields in shader declaration order
//
// Returns:
//   - UniformLayout: the layout with derived offsets
func NewUniformLayout(label string, fields ...UniformField) UniformLayout {
	l := UniformLayout{
		label:   label,
		fields:  append([]UniformField(nil), fields...),
		offsets: make(map[string]uint64, len(fields)),
	}
	for _, f := range fields {
		if f.Size == 0 {
			panic(fmt.Sprintf("uniform layout %s: field %q has zero size", label, f.Name))
		}
		if _, dup := l.offsets[f.Name]; dup {
			panic(fmt.Sprintf("uniform layout %s: duplicate field %q", label, f.Name))
		}
		l.offsets[f.Name] = l.size
		l.size += f.Size
	}
	return l
}

// Label returns the layout's name.
func (l UniformLayout) Label() string {
	return l.label
}

// Size returns the total byte size of the layout.
func (l UniformLayout) Size() uint64 {
	return l.size
}

// Fields returns the fields in declaration order.
func (l UniformLayout) Fields() []UniformField {
	return l.fields
}

// Offset returns the byte offset of the named field.
//
// Parameters:
//   - name: the field name
//
// Returns:
//   - uint64: the byte offset of the field
//   - bool: false if the layout has no such field
func (l UniformLayout) Offset(name string) (uint64, bool) {
	off, ok := l.offsets[name]
	return off, ok
}

// Place resolves where data for the named field goes, rejecting data that would spill into the next field.
//
// Parameters:
//   - name: the field name
//   - data: the bytes to place into the field
//
// Returns:
//   - uint64: the byte offset to write data at
//   - error: ErrOutOfBoundsWrite if the field is unknown or data is larger than the field
func (l UniformLayout) Place(name string, data []byte) (uint64, error) {
	off, ok := l.offsets[name]
	if !ok {
		return 0, fmt.Errorf("uniform layout %s: unknown field %q: %w", l.label, name, ErrOutOfBoundsWrite)
	}
	for _, f := range l.fields {
		if f.Name == name && uint64(len(data)) > f.Size {
			return 0, fmt.Errorf("uniform layout %s: %d bytes do not fit field %q of %d bytes: %w",
				l.label, len(data), name, f.Size, ErrOutOfBoundsWrite)
		}
	}
	return off, nil
}
