package openapi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-resource/pkg/resource"
)

// descriptorFile is the YAML shape of a resource descriptor data file:
//
//	name: quiz_question
//	root: /quiz/question
//	id_field: id
//	schema:
//	  question: ""
//	  answer_description: ""
//	required: [question]
//	delete_confirm: "Are you sure you want to delete this question?"
type descriptorFile struct {
	Name          string         `yaml:"name"`
	Root          string         `yaml:"root"`
	IDField       string         `yaml:"id_field"`
	Schema        map[string]any `yaml:"schema"`
	Required      []string       `yaml:"required"`
	DeleteConfirm string         `yaml:"delete_confirm"`
}

// ParseDescriptor reads one descriptor from YAML bytes.
func ParseDescriptor(raw []byte) (resource.Descriptor, error) {
	var file descriptorFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return resource.Descriptor{}, fmt.Errorf("openapi: parse descriptor: %w", err)
	}
	desc := resource.Descriptor{
		Name:          file.Name,
		Root:          file.Root,
		IDField:       file.IDField,
		Schema:        file.Schema,
		Required:      file.Required,
		DeleteConfirm: file.DeleteConfirm,
	}
	if err := desc.Validate(); err != nil {
		return resource.Descriptor{}, err
	}
	return desc, nil
}

// LoadDescriptorFile reads one descriptor from a YAML file on disk.
func LoadDescriptorFile(path string) (resource.Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return resource.Descriptor{}, fmt.Errorf("openapi: read descriptor file: %w", err)
	}
	return ParseDescriptor(raw)
}
