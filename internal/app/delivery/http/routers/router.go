package routers

import (
	"fhir-ingestion-service/internal/app/config"
	"fhir-ingestion-service/internal/app/delivery/http/controllers"
	"fhir-ingestion-service/internal/app/delivery/http/middlewares"
	"fhir-ingestion-service/internal/pkg/constvars"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	ingestionController *controllers.IngestionController,
) {
	router.Use(middlewares.RequestID)
	router.Use(middlewares.Logging)
	router.Use(middlewares.ErrorHandler)

	corsOptions := cors.Options{
		AllowedOrigins:   strings.Split(internalConfig.App.CorsAllowedOrigins, ","),
		AllowedMethods:   []string{constvars.MethodGet, constvars.MethodPost, constvars.MethodOptions},
		AllowedHeaders:   []string{constvars.HeaderAccept, constvars.HeaderContentType, constvars.HeaderXRequestID},
		ExposedHeaders:   []string{constvars.HeaderXRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))
	router.Use(middlewares.RateLimiter())
	router.Use(middlewares.BodyLimit)

	router.NotFound(middlewares.NotFound)

	router.Get("/health", controllers.Health)

	prefix := strings.TrimSuffix(internalConfig.App.EndpointPrefix, "/")
	router.Route(prefix+"/ingest", func(r chi.Router) {
		attachIngestionRoutes(r, ingestionController)
	})
	router.Route(prefix+"/collections", func(r chi.Router) {
		attachCollectionRoutes(r, ingestionController)
	})
}
