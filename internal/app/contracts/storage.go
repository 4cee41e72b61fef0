package contracts

import (
	"context"
	"io"
)

type ObjectStorage interface {
	ListObjectKeys(ctx context.Context, bucketName, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error)
}
