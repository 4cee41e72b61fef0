package resources

import (
	"context"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type ResourceMongoRepository struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewResourceMongoRepository(db *mongo.Database, logger *zap.Logger) contracts.ResourceRepository {
	return &ResourceMongoRepository{
		DB:  db,
		Log: logger,
	}
}

// Upsert replaces the document keyed by (resourceType, id) or creates it in
// a single server-side operation.
func (repo *ResourceMongoRepository) Upsert(ctx context.Context, collection string, document *models.StoredDocument) (models.UpsertResult, error) {
	filter := bson.D{
		{Key: constvars.FhirFieldResourceType, Value: document.ResourceType},
		{Key: constvars.FhirFieldID, Value: document.ID},
	}

	result, err := repo.DB.Collection(collection).ReplaceOne(ctx, filter, document, options.Replace().SetUpsert(true))
	if err != nil {
		return 0, exceptions.ErrMongoDBUpsertDocument(err)
	}

	if result.UpsertedCount > 0 {
		return models.UpsertInserted, nil
	}
	return models.UpsertUpdated, nil
}

func (repo *ResourceMongoRepository) Count(ctx context.Context, collection string) (int64, error) {
	count, err := repo.DB.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, exceptions.ErrMongoDBCountDocuments(err)
	}
	return count, nil
}

// EnsureIndexes creates the identity and patient indexes on every resource
// collection. Date indexes are best-effort.
func (repo *ResourceMongoRepository) EnsureIndexes(ctx context.Context) error {
	for _, resourceType := range constvars.SupportedResourceOrder {
		collectionName := constvars.SupportedResources[resourceType]
		collection := repo.DB.Collection(collectionName)

		_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: constvars.FhirFieldResourceType, Value: 1},
					{Key: constvars.FhirFieldID, Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: constvars.MongoFieldPatientID, Value: 1}},
			},
		})
		if err != nil {
			return exceptions.ErrMongoDBCreateIndex(err, collectionName)
		}

		for _, field := range constvars.FhirDateFields {
			_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
				Keys: bson.D{{Key: field, Value: 1}},
			})
			if err != nil {
				repo.Log.Warn("ResourceMongoRepository.EnsureIndexes date index skipped",
					zap.String(constvars.LoggingCollectionKey, collectionName),
					zap.String(constvars.LoggingIndexFieldKey, field),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}
