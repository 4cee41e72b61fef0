package ingestion

import (
	"context"
	"errors"
	"fhir-ingestion-service/internal/app/config"
	"fhir-ingestion-service/internal/app/models"
	"fhir-ingestion-service/internal/pkg/constvars"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"fhir-ingestion-service/internal/pkg/fhir"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The fakes fail on a done context the way the mongo driver does.
type fakeResourceRepository struct {
	documents map[string]map[string]models.StoredDocument
	failures  map[string]error
	countErr  error
	onUpsert  func()
}

func newFakeResourceRepository() *fakeResourceRepository {
	return &fakeResourceRepository{
		documents: map[string]map[string]models.StoredDocument{},
		failures:  map[string]error{},
	}
}

func (f *fakeResourceRepository) Upsert(ctx context.Context, collection string, document *models.StoredDocument) (models.UpsertResult, error) {
	if f.onUpsert != nil {
		f.onUpsert()
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err, ok := f.failures[document.ID]; ok {
		return 0, err
	}
	if f.documents[collection] == nil {
		f.documents[collection] = map[string]models.StoredDocument{}
	}
	key := document.ResourceType + "/" + document.ID
	_, existed := f.documents[collection][key]
	f.documents[collection][key] = *document
	if existed {
		return models.UpsertUpdated, nil
	}
	return models.UpsertInserted, nil
}

func (f *fakeResourceRepository) Count(ctx context.Context, collection string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.documents[collection])), nil
}

func (f *fakeResourceRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}

type fakeDeadLetterRepository struct {
	entries []models.DeadLetterEntry
	err     error
}

func (f *fakeDeadLetterRepository) Insert(ctx context.Context, entry *models.DeadLetterEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeDeadLetterRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(f.entries)), nil
}

func (f *fakeDeadLetterRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}

type mockDeadLetterNotifier struct {
	mock.Mock
}

func (m *mockDeadLetterNotifier) Publish(ctx context.Context, notification models.DeadLetterNotification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

type fakeRunRegistry struct {
	saved []models.RunSnapshot
}

func (f *fakeRunRegistry) Save(ctx context.Context, snapshot *models.RunSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.saved = append(f.saved, *snapshot)
	return nil
}

func (f *fakeRunRegistry) Find(ctx context.Context, runID string) (*models.RunSnapshot, error) {
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].RunID == runID {
			snapshot := f.saved[i]
			return &snapshot, nil
		}
	}
	return nil, exceptions.ErrRunNotFound(nil, runID)
}

type fixture struct {
	usecase     *ingestionUsecase
	resources   *fakeResourceRepository
	deadLetters *fakeDeadLetterRepository
	registry    *fakeRunRegistry
}

func newFixture() *fixture {
	f := &fixture{
		resources:   newFakeResourceRepository(),
		deadLetters: &fakeDeadLetterRepository{},
		registry:    &fakeRunRegistry{},
	}
	internalConfig := &config.InternalConfig{Ingestion: config.Ingestion{BatchSize: constvars.DefaultIngestionBatchSize}}
	f.usecase = newIngestionUsecase(f.resources, f.deadLetters, nil, f.registry, internalConfig, zap.NewNop())
	f.usecase.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func patientP1() fhir.Resource {
	return fhir.Resource{
		"resourceType": "Patient",
		"id":           "p1",
		"name":         []interface{}{map[string]interface{}{"family": "Doe"}},
	}
}

func observationO1() fhir.Resource {
	return fhir.Resource{
		"resourceType":      "Observation",
		"id":                "o1",
		"status":            "final",
		"code":              map[string]interface{}{"text": "Heart rate"},
		"effectiveDateTime": "2024-01-01T10:00:00Z",
		"subject":           map[string]interface{}{"reference": "Patient/p1"},
	}
}

func TestIngestBatch_PatientAndObservation(t *testing.T) {
	f := newFixture()

	stats, err := f.usecase.IngestBatch(context.Background(), &models.IngestBatchRequest{
		Resources: []fhir.Resource{patientP1(), observationO1()},
		Source:    constvars.RunSourceHTTP,
	})

	require.NoError(t, err)
	assert.Equal(t, models.RunStatistics{Processed: 2, Inserted: 2}, *stats)

	patient := f.resources.documents[constvars.MongoCollectionPatients]["Patient/p1"]
	observation := f.resources.documents[constvars.MongoCollectionObservations]["Observation/o1"]
	assert.Equal(t, "p1", patient.PatientID)
	assert.Equal(t, "p1", observation.PatientID)
	assert.Empty(t, f.deadLetters.entries)
}

func TestIngestBatch_IsIdempotent(t *testing.T) {
	f := newFixture()
	request := func() *models.IngestBatchRequest {
		return &models.IngestBatchRequest{Resources: []fhir.Resource{patientP1(), observationO1()}}
	}

	_, err := f.usecase.IngestBatch(context.Background(), request())
	require.NoError(t, err)
	first := f.resources.documents[constvars.MongoCollectionObservations]["Observation/o1"]

	stats, err := f.usecase.IngestBatch(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, models.RunStatistics{Processed: 2, Updated: 2}, *stats)
	assert.Len(t, f.resources.documents[constvars.MongoCollectionObservations], 1)
	assert.Equal(t, first, f.resources.documents[constvars.MongoCollectionObservations]["Observation/o1"])
}

func TestIngestOne_ReferenceBeatsContainedPatient(t *testing.T) {
	f := newFixture()
	resource := observationO1()
	resource["subject"] = map[string]interface{}{"reference": "Patient/123"}
	resource["contained"] = []interface{}{
		map[string]interface{}{"resourceType": "Patient", "id": "999"},
	}

	outcome := f.usecase.IngestOne(context.Background(), resource, models.NewRunStatistics())

	assert.Equal(t, models.OutcomeInserted, outcome.Kind)
	assert.Equal(t, "123", f.resources.documents[constvars.MongoCollectionObservations]["Observation/o1"].PatientID)
}

func TestIngestOne_CumulativeValidation(t *testing.T) {
	f := newFixture()
	resource := observationO1()
	delete(resource, "status")
	delete(resource, "code")
	stats := models.NewRunStatistics()

	outcome := f.usecase.IngestOne(context.Background(), resource, stats)

	assert.Equal(t, models.OutcomeDeadLettered, outcome.Kind)
	assert.Equal(t, models.DeadLetterReasonValidationError, outcome.Reason)
	assert.Equal(t, []string{fhir.ViolationObservationMissingStatus, fhir.ViolationObservationMissingCode}, outcome.Details)
	assert.Equal(t, models.RunStatistics{Processed: 1, Errors: 1, DeadLettered: 1}, *stats)

	require.Len(t, f.deadLetters.entries, 1)
	entry := f.deadLetters.entries[0]
	assert.Equal(t, "Observation", entry.ResourceType)
	assert.Equal(t, "o1", entry.ID)
	assert.Equal(t, outcome.Details, entry.Details)
	assert.Equal(t, resource, entry.Resource)
	assert.Empty(t, f.resources.documents)
}

func TestIngestOne_UnsupportedResourceType(t *testing.T) {
	f := newFixture()
	resource := fhir.Resource{"resourceType": "Medication", "id": "med1"}

	outcome := f.usecase.IngestOne(context.Background(), resource, models.NewRunStatistics())

	assert.Equal(t, models.DeadLetterReasonValidationError, outcome.Reason)
	assert.Equal(t, []string{"Unsupported resourceType: Medication"}, outcome.Details)
}

func TestIngestOne_MissingPatientLink(t *testing.T) {
	f := newFixture()
	resource := observationO1()
	delete(resource, "subject")

	outcome := f.usecase.IngestOne(context.Background(), resource, models.NewRunStatistics())

	assert.Equal(t, models.OutcomeDeadLettered, outcome.Kind)
	assert.Equal(t, models.DeadLetterReasonValidationError, outcome.Reason)
	assert.Equal(t, []string{fhir.ViolationNoPatientLink}, outcome.Details)
}

func TestIngestOne_StorageFailure(t *testing.T) {
	f := newFixture()
	f.resources.failures["o1"] = exceptions.ErrMongoDBUpsertDocument(errors.New("connection reset"))
	stats := models.NewRunStatistics()

	outcome := f.usecase.IngestOne(context.Background(), observationO1(), stats)

	assert.Equal(t, models.OutcomeDeadLettered, outcome.Kind)
	assert.Equal(t, models.DeadLetterReasonStorageError, outcome.Reason)
	require.Len(t, outcome.Details, 1)
	assert.Contains(t, outcome.Details[0], "connection reset")
	assert.Equal(t, models.RunStatistics{Processed: 1, Errors: 1, DeadLettered: 1}, *stats)
}

func TestIngestOne_DeadLetterWriteFailureIsDropped(t *testing.T) {
	f := newFixture()
	f.deadLetters.err = exceptions.ErrMongoDBInsertDocument(errors.New("disk full"))
	stats := models.NewRunStatistics()

	outcome := f.usecase.IngestOne(context.Background(), fhir.Resource{"id": "x"}, stats)

	assert.Equal(t, models.OutcomeDeadLettered, outcome.Kind)
	assert.Equal(t, []string{fhir.ViolationMissingResourceType}, outcome.Details)
	assert.Equal(t, models.RunStatistics{Processed: 1, Errors: 1}, *stats)
}

func TestIngestOne_NotifiesDeadLetters(t *testing.T) {
	f := newFixture()
	notifier := new(mockDeadLetterNotifier)
	f.usecase.DeadLetterNotifier = notifier
	notifier.On("Publish", mock.Anything, mock.MatchedBy(func(n models.DeadLetterNotification) bool {
		return n.ID == "med1" && n.Reason == models.DeadLetterReasonValidationError
	})).Return(errors.New("broker down"))
	stats := models.NewRunStatistics()

	outcome := f.usecase.IngestOne(context.Background(), fhir.Resource{"resourceType": "Medication", "id": "med1"}, stats)

	assert.Equal(t, models.OutcomeDeadLettered, outcome.Kind)
	assert.Equal(t, 1, stats.DeadLettered)
	notifier.AssertExpectations(t)
}

func TestIngestBatch_RunSnapshots(t *testing.T) {
	f := newFixture()

	stats, err := f.usecase.IngestBatch(context.Background(), &models.IngestBatchRequest{
		Resources: []fhir.Resource{patientP1(), observationO1(), {"resourceType": "Medication", "id": "m"}},
		BatchSize: 2,
		Source:    constvars.RunSourceHTTP,
	})
	require.NoError(t, err)

	// start, two chunks, finish
	require.Len(t, f.registry.saved, 4)
	last := f.registry.saved[3]
	assert.Equal(t, constvars.RunStateCompleted, last.State)
	assert.Equal(t, constvars.RunSourceHTTP, last.Source)
	assert.NotNil(t, last.FinishedAt)
	assert.Equal(t, *stats, last.Statistics)
	assert.Equal(t, models.RunStatistics{Processed: 2, Inserted: 2}, f.registry.saved[1].Statistics)

	require.Len(t, f.deadLetters.entries, 1)
	assert.Equal(t, last.RunID, f.deadLetters.entries[0].RunID)
}

func TestIngestBatch_CallerOwnedRun(t *testing.T) {
	f := newFixture()
	run := f.usecase.StartRun(context.Background(), constvars.RunSourceDirectory)

	for _, resource := range []fhir.Resource{patientP1(), observationO1()} {
		_, err := f.usecase.IngestBatch(context.Background(), &models.IngestBatchRequest{
			Resources: []fhir.Resource{resource},
			Run:       run,
		})
		require.NoError(t, err)
	}

	assert.Equal(t, constvars.RunStateRunning, run.State)
	assert.Equal(t, models.RunStatistics{Processed: 2, Inserted: 2}, run.Statistics)

	f.usecase.FinishRun(context.Background(), run)
	snapshot, err := f.usecase.GetRun(context.Background(), run.RunID)
	require.NoError(t, err)
	assert.Equal(t, constvars.RunStateCompleted, snapshot.State)
}

func TestIngestBatch_CancelledBeforeStart(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := f.usecase.IngestBatch(ctx, &models.IngestBatchRequest{
		Resources: []fhir.Resource{patientP1()},
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.RunStatistics{}, *stats)
	require.NotEmpty(t, f.registry.saved)
	assert.Equal(t, constvars.RunStateInterrupted, f.registry.saved[len(f.registry.saved)-1].State)
}

func TestIngestBatch_CancelledMidChunk(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.resources.onUpsert = cancel

	patient := func(id string) fhir.Resource {
		return fhir.Resource{"resourceType": "Patient", "id": id}
	}

	stats, err := f.usecase.IngestBatch(ctx, &models.IngestBatchRequest{
		Resources: []fhir.Resource{patient("p1"), patient("p2"), patient("p3")},
	})

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.ErrorIs(t, err, context.Canceled)

	// the resource in flight completes; the rest are never started
	assert.Equal(t, models.RunStatistics{Processed: 1, Inserted: 1}, *stats)
	assert.Len(t, f.resources.documents[constvars.MongoCollectionPatients], 1)
	assert.Empty(t, f.deadLetters.entries)

	last := f.registry.saved[len(f.registry.saved)-1]
	assert.Equal(t, constvars.RunStateInterrupted, last.State)
	assert.Equal(t, *stats, last.Statistics)
	assert.NotNil(t, last.FinishedAt)
}

func TestIngestOne_WritesIgnoreCancelledContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := models.NewRunStatistics()

	stored := f.usecase.IngestOne(ctx, patientP1(), stats)
	rejected := f.usecase.IngestOne(ctx, fhir.Resource{"resourceType": "Observation", "id": "o2"}, stats)

	assert.Equal(t, models.OutcomeInserted, stored.Kind)
	assert.Equal(t, models.OutcomeDeadLettered, rejected.Kind)
	assert.Equal(t, models.RunStatistics{Processed: 2, Inserted: 1, Errors: 1, DeadLettered: 1}, *stats)
	require.Len(t, f.deadLetters.entries, 1)
	assert.Equal(t, "o2", f.deadLetters.entries[0].ID)
}

func TestFinishRun_KeepsInterruptedState(t *testing.T) {
	f := newFixture()
	run := f.usecase.StartRun(context.Background(), constvars.RunSourceDirectory)
	run.State = constvars.RunStateInterrupted

	f.usecase.FinishRun(context.Background(), run)

	assert.Equal(t, constvars.RunStateInterrupted, run.State)
	assert.NotNil(t, run.FinishedAt)
}

func TestCollectionCounts(t *testing.T) {
	f := newFixture()
	_, err := f.usecase.IngestBatch(context.Background(), &models.IngestBatchRequest{
		Resources: []fhir.Resource{patientP1(), observationO1(), {"resourceType": "Medication", "id": "m"}},
	})
	require.NoError(t, err)

	counts, err := f.usecase.CollectionCounts(context.Background())

	require.NoError(t, err)
	require.Len(t, counts, len(constvars.SupportedResourceOrder)+1)
	assert.Equal(t, models.CollectionCount{Collection: constvars.MongoCollectionPatients, Count: 1}, counts[0])
	assert.Equal(t, models.CollectionCount{Collection: constvars.MongoCollectionObservations, Count: 1}, counts[1])
	assert.Equal(t, models.CollectionCount{Collection: constvars.MongoCollectionDeadLetter, Count: 1}, counts[len(counts)-1])
}

func TestCollectionCounts_Error(t *testing.T) {
	f := newFixture()
	f.resources.countErr = exceptions.ErrMongoDBCountDocuments(errors.New("timeout"))

	_, err := f.usecase.CollectionCounts(context.Background())

	assert.Error(t, err)
}

func TestGetRun_WithoutRegistry(t *testing.T) {
	f := newFixture()
	f.usecase.RunRegistry = nil

	_, err := f.usecase.GetRun(context.Background(), "run-1")

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
}
