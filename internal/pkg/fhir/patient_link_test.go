package fhir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePatientLink(t *testing.T) {
	tests := []struct {
		name     string
		resource Resource
		wantID   string
		wantOK   bool
	}{
		{
			name: "Subject Reference",
			resource: Resource{
				"resourceType": "Observation",
				"subject":      map[string]interface{}{"reference": "Patient/123"},
			},
			wantID: "123",
			wantOK: true,
		},
		{
			name: "Patient Reference",
			resource: Resource{
				"resourceType": "AllergyIntolerance",
				"patient":      map[string]interface{}{"reference": "Patient/abc"},
			},
			wantID: "abc",
			wantOK: true,
		},
		{
			name: "Subject Wins Over Patient",
			resource: Resource{
				"resourceType": "Observation",
				"subject":      map[string]interface{}{"reference": "Patient/first"},
				"patient":      map[string]interface{}{"reference": "Patient/second"},
			},
			wantID: "first",
			wantOK: true,
		},
		{
			name: "Direct Reference Wins Over Contained",
			resource: Resource{
				"resourceType": "Observation",
				"subject":      map[string]interface{}{"reference": "Patient/123"},
				"contained": []interface{}{
					map[string]interface{}{"resourceType": "Patient", "id": "999"},
				},
			},
			wantID: "123",
			wantOK: true,
		},
		{
			name: "Encounter Nested Subject",
			resource: Resource{
				"resourceType": "Encounter",
				"encounter": map[string]interface{}{
					"subject": map[string]interface{}{"reference": "Patient/e1"},
				},
			},
			wantID: "e1",
			wantOK: true,
		},
		{
			name: "Nested Subject Ignored For Other Types",
			resource: Resource{
				"resourceType": "Observation",
				"encounter": map[string]interface{}{
					"subject": map[string]interface{}{"reference": "Patient/e1"},
				},
			},
			wantOK: false,
		},
		{
			name: "First Contained Patient",
			resource: Resource{
				"resourceType": "Condition",
				"contained": []interface{}{
					map[string]interface{}{"resourceType": "Practitioner", "id": "pr1"},
					map[string]interface{}{"resourceType": "Patient", "id": "c1"},
					map[string]interface{}{"resourceType": "Patient", "id": "c2"},
				},
			},
			wantID: "c1",
			wantOK: true,
		},
		{
			name: "Contained Patient Without ID Skipped",
			resource: Resource{
				"resourceType": "Condition",
				"contained": []interface{}{
					map[string]interface{}{"resourceType": "Patient"},
					map[string]interface{}{"resourceType": "Patient", "id": "c2"},
				},
			},
			wantID: "c2",
			wantOK: true,
		},
		{
			name: "Subject Of Other Type Falls Through",
			resource: Resource{
				"resourceType": "Observation",
				"subject":      map[string]interface{}{"reference": "Group/g1"},
				"patient":      map[string]interface{}{"reference": "Patient/p2"},
			},
			wantID: "p2",
			wantOK: true,
		},
		{
			name: "Absolute URL Ignored",
			resource: Resource{
				"resourceType": "Observation",
				"subject":      map[string]interface{}{"reference": "https://fhir.example.org/Patient/p1"},
			},
			wantOK: false,
		},
		{
			name: "Empty Id After Prefix Ignored",
			resource: Resource{
				"resourceType": "Observation",
				"subject":      map[string]interface{}{"reference": "Patient/"},
			},
			wantOK: false,
		},
		{
			name: "Non String Reference Ignored",
			resource: Resource{
				"resourceType": "Observation",
				"subject":      map[string]interface{}{"reference": 42.0},
			},
			wantOK: false,
		},
		{
			name: "Patient Links To Itself",
			resource: Resource{
				"resourceType": "Patient",
				"id":           "p1",
			},
			wantID: "p1",
			wantOK: true,
		},
		{
			name: "Self Id Comes After References",
			resource: Resource{
				"resourceType": "Patient",
				"id":           "p1",
				"subject":      map[string]interface{}{"reference": "Patient/p9"},
			},
			wantID: "p9",
			wantOK: true,
		},
		{
			name:     "Nothing To Resolve",
			resource: Resource{"resourceType": "Procedure", "id": "x"},
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOK := DerivePatientLink(tt.resource)
			assert.Equal(t, tt.wantOK, gotOK)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestParseReference(t *testing.T) {
	id, ok := ParseReference("Encounter/enc-1", "Encounter/")
	assert.True(t, ok)
	assert.Equal(t, "enc-1", id)

	_, ok = ParseReference("patient/p1", "Patient/")
	assert.False(t, ok, "prefix match is case sensitive")

	_, ok = ParseReference("", "Patient/")
	assert.False(t, ok)
}
