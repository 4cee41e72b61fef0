package storage

import (
	"context"
	"fhir-ingestion-service/internal/app/config"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinio builds the client and checks that the source bucket exists.
func NewMinio(driverConfig *config.DriverConfig) *minio.Client {
	endPoint := fmt.Sprintf("%s:%s", driverConfig.Minio.Host, driverConfig.Minio.Port)
	minioClient, err := minio.New(endPoint, &minio.Options{
		Creds:  credentials.NewStaticV4(driverConfig.Minio.Username, driverConfig.Minio.Password, ""),
		Secure: driverConfig.Minio.UseSSL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize Minio Client: %s", err.Error())
	}

	exists, err := minioClient.BucketExists(context.Background(), driverConfig.Minio.BucketName)
	if err != nil {
		log.Fatalf("Failed to check minio bucket %s: %s", driverConfig.Minio.BucketName, err.Error())
	}
	if !exists {
		log.Fatalf("Minio bucket %s does not exist", driverConfig.Minio.BucketName)
	}

	log.Println("Successfully connected to minio")
	return minioClient
}
