package storage

import (
	"fmt"
	"strings"
)

// Config holds configuration for the storage provider.
type Config struct {
	// Endpoint is the host[:port] of the MinIO/S3 service. Empty disables exports.
	Endpoint string `mapstructure:"endpoint" default:""`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket cluster snapshots are written to.
	Bucket string `mapstructure:"bucket" default:"identity-exports"`
	// Prefix is the object key prefix for snapshots.
	Prefix string `mapstructure:"prefix" default:"snapshots"`
	// Retain is how many snapshots to keep under Prefix. Zero keeps all.
	Retain int `mapstructure:"retain" default:"0"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Validate checks the storage settings.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("storage bucket must not be empty")
	}
	if c.Retain < 0 {
		return fmt.Errorf("storage retain must not be negative")
	}
	return nil
}

// Configured reports whether an endpoint is set.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}
