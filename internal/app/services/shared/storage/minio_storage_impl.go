package storage

import (
	"context"
	"fhir-ingestion-service/internal/app/contracts"
	"fhir-ingestion-service/internal/pkg/exceptions"
	"io"
	"sort"

	"github.com/minio/minio-go/v7"
)

type minioStorage struct {
	MinioClient *minio.Client
}

func NewMinioStorage(minioClient *minio.Client) contracts.ObjectStorage {
	return &minioStorage{
		MinioClient: minioClient,
	}
}

// ListObjectKeys returns the keys directly under prefix, sorted. Nested
// prefixes are not descended into.
func (m *minioStorage) ListObjectKeys(ctx context.Context, bucketName, prefix string) ([]string, error) {
	var keys []string
	for object := range m.MinioClient.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, exceptions.ErrMinioListObjects(object.Err, bucketName)
		}
		keys = append(keys, object.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *minioStorage) GetObject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error) {
	object, err := m.MinioClient.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, exceptions.ErrMinioGetObject(err, objectKey)
	}
	return object, nil
}
