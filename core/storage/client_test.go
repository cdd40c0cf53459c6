package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"identity-reconciler/core/storage"
	"identity-reconciler/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "identity-exports",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	client, err := storage.NewClient(storage.Config{Endpoint: "  ", Bucket: "identity-exports"})
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
	assert.Nil(t, client)
	assert.False(t, storage.Config{}.Configured())
	assert.True(t, storage.Config{Endpoint: "localhost:9000"}.Configured())
}

func TestCheck(t *testing.T) {
	t.Run("Reachable", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "identity-exports").Return(false, nil)

		assert.NoError(t, storage.Check(context.Background(), client, "identity-exports"))
		client.AssertExpectations(t)
	})

	t.Run("Unreachable", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "identity-exports").Return(false, errors.New("dial tcp: connection refused"))

		err := storage.Check(context.Background(), client, "identity-exports")
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestConnect(t *testing.T) {
	t.Run("NotConfigured", func(t *testing.T) {
		client, err := storage.Connect(context.Background(), storage.Config{Bucket: "identity-exports"})
		assert.ErrorIs(t, err, storage.ErrNotConfigured)
		assert.Nil(t, client)
	})

	t.Run("Unreachable", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		client, err := storage.Connect(ctx, storage.Config{
			Endpoint:       "127.0.0.1:1",
			AccessKey:      "testkey",
			SecretKey:      "testsecret",
			Bucket:         "identity-exports",
			TimeoutSeconds: 1,
		})
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, storage.Config{Bucket: "identity-exports"}.Validate())
	assert.Error(t, storage.Config{}.Validate())
}
