package fhir

import (
	"fhir-ingestion-service/internal/pkg/constvars"
	"strings"
)

// DerivePatientLink finds the id of the patient a resource concerns. The
// first match in this order wins: subject.reference, patient.reference,
// encounter.subject.reference (Encounter only), the first contained
// Patient, and finally a Patient's own id. A missing link is not an error;
// callers decide what it means.
func DerivePatientLink(resource Resource) (string, bool) {
	referencePaths := [][]string{
		{constvars.FhirFieldSubject, constvars.FhirFieldReference},
		{constvars.FhirFieldPatient, constvars.FhirFieldReference},
	}
	if resource.ResourceType() == string(constvars.ResourceEncounter) {
		referencePaths = append(referencePaths, []string{
			constvars.FhirFieldEncounter,
			constvars.FhirFieldSubject,
			constvars.FhirFieldReference,
		})
	}

	for _, path := range referencePaths {
		if patientID, ok := ParseReference(resource.LookupString(path...), constvars.FhirReferencePatientPrefix); ok {
			return patientID, true
		}
	}

	for _, contained := range resource.Contained() {
		if contained.ResourceType() != string(constvars.ResourcePatient) {
			continue
		}
		if patientID := contained.ID(); patientID != "" {
			return patientID, true
		}
	}

	if resource.ResourceType() == string(constvars.ResourcePatient) {
		if patientID := resource.ID(); patientID != "" {
			return patientID, true
		}
	}

	return "", false
}

// ParseReference extracts <id> from a relative reference of the form
// <prefix><id>. Anything else, absolute URLs included, is rejected.
func ParseReference(reference, prefix string) (string, bool) {
	if !strings.HasPrefix(reference, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(reference, prefix)
	if id == "" {
		return "", false
	}
	return id, true
}
