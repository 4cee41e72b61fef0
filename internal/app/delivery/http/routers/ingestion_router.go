package routers

import (
	"fhir-ingestion-service/internal/app/delivery/http/controllers"

	"github.com/go-chi/chi/v5"
)

func attachIngestionRoutes(router chi.Router, ingestionController *controllers.IngestionController) {
	router.Post("/", ingestionController.Ingest)
	router.Get("/runs/{runID}", ingestionController.GetRun)
}

func attachCollectionRoutes(router chi.Router, ingestionController *controllers.IngestionController) {
	router.Get("/counts", ingestionController.CollectionCounts)
}
