// Package fhir holds the pure, storage-agnostic logic applied to incoming
// FHIR resources: tolerant field lookup, structural validation and patient
// link derivation.
package fhir

import (
	"strconv"

	"fhir-ingestion-service/internal/pkg/constvars"
)

// Resource is a decoded FHIR resource. Values follow encoding/json
// conventions: objects are map[string]interface{}, arrays are
// []interface{}, numbers are float64.
type Resource map[string]interface{}

// ResourceType returns the resourceType field rendered as text, or "" when
// it is absent, empty or not a scalar.
func (r Resource) ResourceType() string {
	return r.lookupScalar(constvars.FhirFieldResourceType)
}

// ID returns the id field rendered as text. A numeric id such as 123 is
// reported as "123".
func (r Resource) ID() string {
	return r.lookupScalar(constvars.FhirFieldID)
}

// lookupScalar renders a present string, number or true boolean. Values
// that are falsy in JSON terms, objects and arrays report "".
func (r Resource) lookupScalar(path ...string) string {
	value, ok := r.Lookup(path...)
	if !ok || !isPresent(value) {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

// Lookup walks path through nested objects. Absence, JSON null or a
// non-object on the way all report false; it never fails.
func (r Resource) Lookup(path ...string) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}

	var current interface{} = map[string]interface{}(r)
	for _, key := range path {
		object, ok := asObject(current)
		if !ok {
			return nil, false
		}
		value, exists := object[key]
		if !exists || value == nil {
			return nil, false
		}
		current = value
	}
	return current, true
}

// LookupString is Lookup restricted to string leaves.
func (r Resource) LookupString(path ...string) string {
	value, ok := r.Lookup(path...)
	if !ok {
		return ""
	}
	str, _ := value.(string)
	return str
}

// Has reports whether the value at path is present and non-empty.
func (r Resource) Has(path ...string) bool {
	value, ok := r.Lookup(path...)
	return ok && isPresent(value)
}

// Contained returns the embedded resources in their original order,
// skipping entries that are not objects.
func (r Resource) Contained() []Resource {
	value, ok := r.Lookup(constvars.FhirFieldContained)
	if !ok {
		return nil
	}
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}

	contained := make([]Resource, 0, len(items))
	for _, item := range items {
		if object, ok := asObject(item); ok {
			contained = append(contained, Resource(object))
		}
	}
	return contained
}

// Clone returns a deep copy so that stored documents never alias caller
// owned maps or slices.
func (r Resource) Clone() Resource {
	if r == nil {
		return nil
	}
	return Resource(cloneValue(map[string]interface{}(r)).(map[string]interface{}))
}

func cloneValue(value interface{}) interface{} {
	switch typed := value.(type) {
	case map[string]interface{}:
		copied := make(map[string]interface{}, len(typed))
		for key, item := range typed {
			copied[key] = cloneValue(item)
		}
		return copied
	case Resource:
		return Resource(cloneValue(map[string]interface{}(typed)).(map[string]interface{}))
	case []interface{}:
		copied := make([]interface{}, len(typed))
		for i, item := range typed {
			copied[i] = cloneValue(item)
		}
		return copied
	default:
		return typed
	}
}

func asObject(value interface{}) (map[string]interface{}, bool) {
	switch typed := value.(type) {
	case map[string]interface{}:
		return typed, true
	case Resource:
		return typed, true
	default:
		return nil, false
	}
}

// isPresent mirrors JSON truthiness: empty strings, arrays, objects, false
// and zero count as absent.
func isPresent(value interface{}) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	case bool:
		return typed
	case float64:
		return typed != 0
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case []interface{}:
		return len(typed) > 0
	case map[string]interface{}:
		return len(typed) > 0
	case Resource:
		return len(typed) > 0
	default:
		return true
	}
}
