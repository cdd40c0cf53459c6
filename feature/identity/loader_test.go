package identity

import (
	"testing"
	"time"

	"identity-reconciler/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	logger := zap.NewNop()
	// The engine is not exercised by Load.
	engine := reconcile.NewEngine(nil, logger, reconcile.Config{LockTimeout: time.Second})
	feature := NewFeature(engine, logger)

	assert.Equal(t, "identity", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	err := feature.Load(app)
	assert.NoError(t, err)
}
