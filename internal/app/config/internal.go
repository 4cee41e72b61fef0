package config

import "time"

type InternalConfig struct {
	App             App
	Ingestion       Ingestion
	RunRegistry     RunRegistry
	DeadLetterQueue DeadLetterQueue
}

type App struct {
	Env                        string `validate:"required"`
	Port                       string `validate:"required"`
	Version                    string
	Address                    string
	EndpointPrefix             string
	CorsAllowedOrigins         string
	MaxRequests                int `validate:"gt=0"`
	MaxTimeRequestsPerSeconds  int `validate:"gt=0"`
	ShutdownTimeoutInSeconds   int `validate:"gt=0"`
	RequestTimeoutInSeconds    int `validate:"gt=0"`
	RequestBodyLimitInMegabyte int `validate:"gt=0"`
}

type Ingestion struct {
	BatchSize    int `validate:"min=1,max=10000"`
	InputDir     string
	BucketPrefix string
}

type RunRegistry struct {
	ExpiryTimeInHours int `validate:"gt=0"`
}

type DeadLetterQueue struct {
	QueueName               string `validate:"required"`
	PublishTimeoutInSeconds int    `validate:"gt=0"`
}

func (a App) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutInSeconds) * time.Second
}

func (a App) ShutdownTimeout() time.Duration {
	return time.Duration(a.ShutdownTimeoutInSeconds) * time.Second
}

func (r RunRegistry) Expiry() time.Duration {
	return time.Duration(r.ExpiryTimeInHours) * time.Hour
}

func (d DeadLetterQueue) PublishTimeout() time.Duration {
	return time.Duration(d.PublishTimeoutInSeconds) * time.Second
}
