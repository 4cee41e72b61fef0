package fhir

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

var (
	ErrNotResourceArray = errors.New("expected a JSON array of resource objects")
	ErrNotResource      = errors.New("expected a resource object or an array of resource objects")
)

// DecodeResourceArray decodes a body that must be a JSON array whose
// elements are all objects.
func DecodeResourceArray(data []byte) ([]Resource, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotResourceArray
	}

	var elements []interface{}
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, err
	}
	return asResources(elements, ErrNotResourceArray)
}

// DecodeResources accepts either one resource object or an array of them,
// the two shapes found in export files.
func DecodeResources(data []byte) ([]Resource, error) {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	switch value := decoded.(type) {
	case map[string]interface{}:
		return []Resource{Resource(value)}, nil
	case []interface{}:
		return asResources(value, ErrNotResource)
	default:
		return nil, ErrNotResource
	}
}

func asResources(elements []interface{}, notObject error) ([]Resource, error) {
	resources := make([]Resource, 0, len(elements))
	for i, element := range elements {
		object, ok := element.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("element %d: %w", i, notObject)
		}
		resources = append(resources, Resource(object))
	}
	return resources, nil
}
