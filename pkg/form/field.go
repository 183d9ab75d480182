package form

import (
	"github.com/goliatone/go-resource/pkg/resource"
)

// Kind is the simplified enum of control types a bound field maps to.
type Kind string

const (
	KindText    Kind = "text"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindList    Kind = "list"
	KindObject  Kind = "object"
)

// Field is a pure view over one model attribute: it never holds a copy of
// the value, so the model stays the single source of truth. Reads go through
// Value, writes through SetValue, and re-rendering is driven by the model's
// change subscription held by the owning Form.
type Field struct {
	model *resource.Model
	name  string
	label string
	kind  Kind
}

// Name returns the attribute this field is bound to.
func (f Field) Name() string { return f.name }

// Label returns the human-friendly label derived from the attribute name.
func (f Field) Label() string { return f.label }

// Kind returns the control type inferred from the schema default.
func (f Field) Kind() Kind { return f.kind }

// Required reports whether the attribute is declared required.
func (f Field) Required() bool {
	return f.model.Descriptor().Required != nil && contains(f.model.Descriptor().Required, f.name)
}

// Value reads the current working value from the model.
func (f Field) Value() any {
	return f.model.Get(f.name)
}

// SetValue writes a user edit through to the model, which notifies all
// subscribers so dirty state and derived UI react.
func (f Field) SetValue(value any) error {
	return f.model.Set(f.name, value)
}

// Dirty reports whether this attribute differs from the last-synced value.
func (f Field) Dirty() bool {
	for _, name := range f.model.DirtyFields() {
		if name == f.name {
			return true
		}
	}
	return false
}

func contains(names []string, name string) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}
	return false
}

// kindOf infers the control type from a schema default value.
func kindOf(def any) Kind {
	switch def.(type) {
	case bool:
		return KindBoolean
	case int, int64, float64:
		return KindNumber
	case []any:
		return KindList
	case map[string]any:
		return KindObject
	default:
		return KindText
	}
}
