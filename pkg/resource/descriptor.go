package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const defaultIDField = "id"

// DefaultDeleteConfirm is the generic confirmation message used when a
// Descriptor does not supply its own wording.
const DefaultDeleteConfirm = "Are you sure you want to delete this record?"

// Descriptor configures one resource type. Concrete resources are described
// as data rather than subclasses: the collection endpoint, the identifier
// attribute, the attribute schema with defaults, and optional per-type
// customisations such as required attributes and delete wording.
type Descriptor struct {
	// Name identifies the resource type (for example "quiz_question"). Used
	// for lookup and diagnostics only.
	Name string
	// Root is the collection endpoint path, e.g. "/quiz/question".
	Root string
	// IDField names the unique identifier attribute. Defaults to "id".
	IDField string
	// Schema maps attribute names to their default values. A Model always
	// carries exactly these keys, no more, no less.
	Schema map[string]any
	// Required lists attributes that must be non-empty before a save is
	// allowed. Unsatisfied requirements disable save, they never error.
	Required []string
	// DeleteConfirm overrides the generic delete confirmation message.
	DeleteConfirm string
}

var (
	errDescriptorRootMissing   = errors.New("resource: descriptor root is required")
	errDescriptorSchemaMissing = errors.New("resource: descriptor schema is required")
)

// Validate reports whether the descriptor can back a Model.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Root) == "" {
		return errDescriptorRootMissing
	}
	if len(d.Schema) == 0 {
		return errDescriptorSchemaMissing
	}
	for _, name := range d.Required {
		if _, ok := d.Schema[name]; !ok {
			return fmt.Errorf("resource: required attribute %q not in schema", name)
		}
	}
	return nil
}

// AttributeNames returns the schema keys in stable sorted order.
func (d Descriptor) AttributeNames() []string {
	names := make([]string, 0, len(d.Schema))
	for name := range d.Schema {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d Descriptor) idField() string {
	if strings.TrimSpace(d.IDField) == "" {
		return defaultIDField
	}
	return d.IDField
}

func (d Descriptor) requires(name string) bool {
	for _, required := range d.Required {
		if required == name {
			return true
		}
	}
	return false
}

// defaults materialises a fresh attribute map from the schema defaults.
func (d Descriptor) defaults() map[string]any {
	attrs := make(map[string]any, len(d.Schema))
	for name, value := range d.Schema {
		attrs[name] = cloneValue(value)
	}
	return attrs
}

func normalizeRoot(root string) string {
	trimmed := strings.TrimSpace(root)
	trimmed = strings.TrimRight(trimmed, "/")
	if trimmed == "" {
		return "/"
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}
