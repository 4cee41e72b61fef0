package controllers

import (
	"context"
	"errors"
	"fhir-ingestion-service/internal/app/config"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/dto/requests"
	"fhir-ingestion-service/internal/pkg/dto/responses"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"fhir-ingestion-service/internal/pkg/fhir"
	"fhir-ingestion-service/internal/pkg/utils"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type IngestionController struct {
	Log              *zap.Logger
	IngestionUsecase contracts.IngestionUsecase
	InternalConfig   *config.InternalConfig
}

var (
	ingestionControllerInstance *IngestionController
	onceIngestionController     sync.Once
)

func NewIngestionController(logger *zap.Logger, ingestionUsecase contracts.IngestionUsecase, internalConfig *config.InternalConfig) *IngestionController {
	onceIngestionController.Do(func() {
		instance := &IngestionController{
			Log:              logger,
			IngestionUsecase: ingestionUsecase,
			InternalConfig:   internalConfig,
		}
		ingestionControllerInstance = instance
	})
	return ingestionControllerInstance
}

func (ctrl *IngestionController) Ingest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("IngestionController.Ingest requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("IngestionController.Ingest called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	query := new(requests.IngestQuery)
	if raw := r.URL.Query().Get(constvars.QueryParamBatchSize); raw != "" {
		batchSize, err := strconv.Atoi(raw)
		if err != nil {
			ctrl.Log.Error("IngestionController.Ingest invalid batch size",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInvalidQueryParam(err, constvars.QueryParamBatchSize))
			return
		}
		query.BatchSize = &batchSize
	}

	if err := utils.ValidateStruct(query); err != nil {
		ctrl.Log.Error("IngestionController.Ingest validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		ctrl.Log.Error("IngestionController.Ingest error reading body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRequestBodyTooLarge(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrReadBody(err))
		return
	}

	resources, err := fhir.DecodeResourceArray(body)
	if err != nil {
		ctrl.Log.Error("IngestionController.Ingest error decoding JSON",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		if errors.Is(err, fhir.ErrNotResourceArray) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrExpectedResourceArray(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ctrl.InternalConfig.App.RequestTimeout())
	defer cancel()

	var batchSize int
	if query.BatchSize != nil {
		batchSize = *query.BatchSize
	}

	run := ctrl.IngestionUsecase.StartRun(ctx, constvars.RunSourceHTTP)
	stats, err := ctrl.IngestionUsecase.IngestBatch(ctx, &models.IngestBatchRequest{
		Resources: resources,
		BatchSize: batchSize,
		Source:    constvars.RunSourceHTTP,
		Run:       run,
	})
	ctrl.IngestionUsecase.FinishRun(context.WithoutCancel(ctx), run)

	status := constvars.ResponseSuccess
	if err != nil && stats != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		// every counted resource is stored or dead-lettered, so the partial
		// summary is still accurate
		ctrl.Log.Warn("IngestionController.Ingest interrupted, returning partial statistics",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRunIDKey, run.RunID),
			zap.Error(err),
		)
		status = constvars.ResponseInterrupted
		err = nil
	}
	if err != nil {
		ctrl.Log.Error("IngestionController.Ingest error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRunIDKey, run.RunID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("IngestionController.Ingest succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRunIDKey, run.RunID),
		zap.Any(constvars.LoggingStatisticsKey, stats),
	)

	utils.BuildJSONResponse(w, constvars.StatusOK, responses.Ingest{
		Status:       status,
		Processed:    stats.Processed,
		Inserted:     stats.Inserted,
		Updated:      stats.Updated,
		Errors:       stats.Errors,
		DeadLettered: stats.DeadLettered,
		RunID:        run.RunID,
	})
}

func (ctrl *IngestionController) GetRun(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("IngestionController.GetRun requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("IngestionController.GetRun called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	request := &requests.GetIngestionRun{RunID: chi.URLParam(r, constvars.URLParamRunID)}
	if err := utils.ValidateStruct(request); err != nil {
		ctrl.Log.Error("IngestionController.GetRun validation error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	run, err := ctrl.IngestionUsecase.GetRun(r.Context(), request.RunID)
	if err != nil {
		ctrl.Log.Error("IngestionController.GetRun error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRunIDKey, request.RunID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetIngestionRunSuccessMessage, run)
}

func (ctrl *IngestionController) CollectionCounts(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("IngestionController.CollectionCounts requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("IngestionController.CollectionCounts called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	counts, err := ctrl.IngestionUsecase.CollectionCounts(r.Context())
	if err != nil {
		ctrl.Log.Error("IngestionController.CollectionCounts error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	response := responses.CollectionCounts{Collections: make([]responses.CollectionCount, 0, len(counts))}
	for _, count := range counts {
		response.Collections = append(response.Collections, responses.CollectionCount{
			Collection: count.Collection,
			Count:      count.Count,
		})
		response.Total += count.Count
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetCollectionCountsSuccessMessage, response)
}
