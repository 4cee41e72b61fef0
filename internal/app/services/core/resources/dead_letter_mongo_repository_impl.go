package resources

import (
	"context"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type DeadLetterMongoRepository struct {
	Collection *mongo.Collection
}

func NewDeadLetterMongoRepository(db *mongo.Database) contracts.DeadLetterRepository {
	return &DeadLetterMongoRepository{
		Collection: db.Collection(constvars.MongoCollectionDeadLetter),
	}
}

func (repo *DeadLetterMongoRepository) Insert(ctx context.Context, entry *models.DeadLetterEntry) error {
	_, err := repo.Collection.InsertOne(ctx, entry)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (repo *DeadLetterMongoRepository) Count(ctx context.Context) (int64, error) {
	count, err := repo.Collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, exceptions.ErrMongoDBCountDocuments(err)
	}
	return count, nil
}

// EnsureIndexes indexes (resourceType, id) without uniqueness since the same
// resource may be dead-lettered by several runs.
func (repo *DeadLetterMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := repo.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: constvars.FhirFieldResourceType, Value: 1},
				{Key: constvars.FhirFieldID, Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: constvars.MongoFieldReason, Value: 1}},
		},
	})
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err, constvars.MongoCollectionDeadLetter)
	}
	return nil
}
