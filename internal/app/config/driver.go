package config

import "fmt"

type (
	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		Logger   Logger
		RabbitMQ RabbitMQ
		Minio    Minio
	}
	MongoDB struct {
		// URI overrides the host based connection string, e.g. for Atlas.
		URI      string
		Port     string `validate:"required_without=URI"`
		Host     string `validate:"required_without=URI"`
		DbName   string `validate:"required"`
		Username string
		Password string
	}
	Redis struct {
		Enabled  bool
		Host     string `validate:"required_if=Enabled true"`
		Port     string `validate:"required_if=Enabled true"`
		Password string
	}
	Logger struct {
		Level               string `validate:"required,oneof=debug info warn error"`
		OutputFileName      string `validate:"required"`
		OutputErrorFileName string `validate:"required"`
	}
	RabbitMQ struct {
		Enabled  bool
		Port     string `validate:"required_if=Enabled true"`
		Host     string `validate:"required_if=Enabled true"`
		Username string
		Password string
	}
	Minio struct {
		Enabled    bool
		Port       string `validate:"required_if=Enabled true"`
		Host       string `validate:"required_if=Enabled true"`
		Username   string
		Password   string
		BucketName string `validate:"required_if=Enabled true"`
		UseSSL     bool
	}
)

// ConnectionURI returns URI when set, otherwise a mongodb:// string built
// from the host settings.
func (m MongoDB) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	if m.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s", m.Host, m.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s", m.Username, m.Password, m.Host, m.Port)
}

func (r RabbitMQ) ConnectionURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.Username, r.Password, r.Host, r.Port)
}
