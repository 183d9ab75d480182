// Package openapi derives resource descriptors from OpenAPI 3 documents and
// loads descriptor data files, so resource types stay data instead of code.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-resource/pkg/resource"
)

// DeriveDescriptors extracts one resource.Descriptor per CRUD resource in an
// OpenAPI 3 document: a collection path carrying POST paired with a
// "{collection}/{param}" item path. Attribute defaults and required names
// come from the create operation's request body schema. The result is keyed
// by resource name (the last static segment of the collection path).
func DeriveDescriptors(ctx context.Context, raw []byte) (map[string]resource.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	paths := spec.Paths.Map()
	descriptors := make(map[string]resource.Descriptor)

	for path, item := range paths {
		if item == nil || item.Post == nil {
			continue
		}
		if !hasItemPath(paths, path) {
			continue
		}

		schema, required := requestAttributes(item.Post.RequestBody)
		if len(schema) == 0 {
			continue
		}

		name := resourceName(path)
		descriptors[name] = resource.Descriptor{
			Name:     name,
			Root:     path,
			Schema:   schema,
			Required: required,
		}
	}

	if len(descriptors) == 0 {
		return nil, errors.New("openapi: no CRUD resources found")
	}
	return descriptors, nil
}

// DeriveDescriptor is DeriveDescriptors narrowed to one resource name.
func DeriveDescriptor(ctx context.Context, raw []byte, name string) (resource.Descriptor, error) {
	descriptors, err := DeriveDescriptors(ctx, raw)
	if err != nil {
		return resource.Descriptor{}, err
	}
	desc, ok := descriptors[name]
	if !ok {
		available := make([]string, 0, len(descriptors))
		for key := range descriptors {
			available = append(available, key)
		}
		sort.Strings(available)
		return resource.Descriptor{}, fmt.Errorf("openapi: resource %q not found (have: %s)", name, strings.Join(available, ", "))
	}
	return desc, nil
}

// hasItemPath reports whether the document declares "{collection}/{param}"
// with at least one of read/update/delete.
func hasItemPath(paths map[string]*openapi3.PathItem, collection string) bool {
	prefix := strings.TrimRight(collection, "/") + "/{"
	for path, item := range paths {
		if item == nil {
			continue
		}
		if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, "}") {
			continue
		}
		rest := path[len(prefix):]
		if strings.Contains(rest, "/") {
			continue
		}
		if item.Get != nil || item.Put != nil || item.Patch != nil || item.Delete != nil {
			return true
		}
	}
	return false
}

func requestAttributes(requestBody *openapi3.RequestBodyRef) (map[string]any, []string) {
	schemaRef := requestSchema(requestBody)
	if schemaRef == nil || schemaRef.Value == nil {
		return nil, nil
	}
	src := schemaRef.Value
	if len(src.Properties) == 0 {
		return nil, nil
	}

	attrs := make(map[string]any, len(src.Properties))
	for name, property := range src.Properties {
		attrs[name] = defaultValueFor(property)
	}

	var required []string
	if len(src.Required) > 0 {
		required = append([]string(nil), src.Required...)
		sort.Strings(required)
	}
	return attrs, required
}

func requestSchema(requestBody *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if requestBody == nil || requestBody.Value == nil {
		return nil
	}
	content := requestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			return mt.Schema
		}
	}
	for _, mt := range content {
		return mt.Schema
	}
	return nil
}

// defaultValueFor picks the schema default, falling back to the zero value
// of the declared type.
func defaultValueFor(ref *openapi3.SchemaRef) any {
	if ref == nil || ref.Value == nil {
		return nil
	}
	src := ref.Value
	if src.Default != nil {
		return src.Default
	}
	switch firstSchemaType(src.Type) {
	case "string":
		return ""
	case "integer":
		return float64(0)
	case "number":
		return float64(0)
	case "boolean":
		return false
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	default:
		return nil
	}
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func resourceName(collection string) string {
	trimmed := strings.Trim(collection, "/")
	if trimmed == "" {
		return collection
	}
	segments := strings.Split(trimmed, "/")
	return segments[len(segments)-1]
}
