package fhir

import (
	"fhir-ingestion-service/internal/pkg/constvars"
	"fmt"
)

const (
	ViolationMissingResourceType      = "Missing resourceType"
	ViolationMissingID                = "Missing id"
	ViolationUnsupportedResourceType  = "Unsupported resourceType: %s"
	ViolationPatientMissingName       = "Patient missing name"
	ViolationObservationMissingStatus = "Observation missing status"
	ViolationObservationMissingCode   = "Observation missing code"
	ViolationObservationMissingDate   = "Observation missing effectiveDateTime or effectivePeriod"
	ViolationEncounterMissingStatus   = "Encounter missing status"
	ViolationConditionMissingCode     = "Condition missing code"
	ViolationNoPatientLink            = "Cannot derive patientId from resource"
)

// ValidationResult is the verdict for one resource. PatientID carries the
// link derived while validating so callers do not resolve it twice.
type ValidationResult struct {
	Violations []string
	PatientID  string
}

func (r ValidationResult) Valid() bool {
	return len(r.Violations) == 0
}

// IsSupported reports whether resourceType has a collection mapping.
func IsSupported(resourceType string) bool {
	_, ok := constvars.SupportedResources[constvars.ResourceType(resourceType)]
	return ok
}

// CollectionFor returns the collection documents of resourceType live in.
func CollectionFor(resourceType string) (string, bool) {
	collection, ok := constvars.SupportedResources[constvars.ResourceType(resourceType)]
	return collection, ok
}

// Validate checks identity first and stops at the first identity failure;
// type specific rules and the patient link check are then all evaluated.
func Validate(resource Resource) ValidationResult {
	resourceType := resource.ResourceType()
	if resourceType == "" {
		return ValidationResult{Violations: []string{ViolationMissingResourceType}}
	}
	if resource.ID() == "" {
		return ValidationResult{Violations: []string{ViolationMissingID}}
	}
	if !IsSupported(resourceType) {
		return ValidationResult{Violations: []string{fmt.Sprintf(ViolationUnsupportedResourceType, resourceType)}}
	}

	violations := []string{}

	switch constvars.ResourceType(resourceType) {
	case constvars.ResourcePatient:
		if !resource.Has(constvars.FhirFieldName) {
			violations = append(violations, ViolationPatientMissingName)
		}
	case constvars.ResourceObservation:
		if !resource.Has(constvars.FhirFieldStatus) {
			violations = append(violations, ViolationObservationMissingStatus)
		}
		if !resource.Has(constvars.FhirFieldCode) {
			violations = append(violations, ViolationObservationMissingCode)
		}
		if !resource.Has(constvars.FhirFieldEffectiveDateTime) && !resource.Has(constvars.FhirFieldEffectivePeriod) {
			violations = append(violations, ViolationObservationMissingDate)
		}
	case constvars.ResourceEncounter:
		if !resource.Has(constvars.FhirFieldStatus) {
			violations = append(violations, ViolationEncounterMissingStatus)
		}
	case constvars.ResourceCondition:
		if !resource.Has(constvars.FhirFieldCode) {
			violations = append(violations, ViolationConditionMissingCode)
		}
	}

	patientID, ok := DerivePatientLink(resource)
	if !ok {
		violations = append(violations, ViolationNoPatientLink)
	}

	return ValidationResult{Violations: violations, PatientID: patientID}
}
