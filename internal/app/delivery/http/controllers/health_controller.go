package controllers

import (
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/dto/responses"
	"fhir-ingestion-service/internal/pkg/utils"
	"net/http"
	"time"
)

// Health reports liveness only; it does not touch the pipeline or storage.
func Health(w http.ResponseWriter, r *http.Request) {
	utils.BuildJSONResponse(w, constvars.StatusOK, responses.Health{
		Status:    constvars.HealthStatusHealthy,
		Timestamp: time.Now().UTC(),
	})
}
