package redis

import (
	"context"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type runRegistry struct {
	RedisRepository contracts.RedisRepository
	Expiry          time.Duration
}

// NewRunRegistry stores run snapshots as JSON under ingestion:run:<id>.
func NewRunRegistry(redisRepository contracts.RedisRepository, expiry time.Duration) contracts.RunRegistry {
	return &runRegistry{
		RedisRepository: redisRepository,
		Expiry:          expiry,
	}
}

func (r *runRegistry) Save(ctx context.Context, snapshot *models.RunSnapshot) error {
	return r.RedisRepository.Set(ctx, runKey(snapshot.RunID), snapshot, r.Expiry)
}

func (r *runRegistry) Find(ctx context.Context, runID string) (*models.RunSnapshot, error) {
	data, err := r.RedisRepository.Get(ctx, runKey(runID))
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, exceptions.ErrRunNotFound(nil, runID)
	}

	var snapshot models.RunSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return &snapshot, nil
}

func runKey(runID string) string {
	return fmt.Sprintf(constvars.RedisKeyIngestionRunFormat, runID)
}
