package integrity

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"identity-reconciler/core/contact"
	"identity-reconciler/core/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, contact.EnsureSchema(context.Background(), db))
	t.Cleanup(func() { _ = database.Close(db) })

	app := fiber.New()
	NewHandler(NewService(db, zap.NewNop())).RegisterRoutes(app)
	return app, db
}

func seedBroken(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	email := "orphan@x.com"
	linked := int64(42)
	require.NoError(t, db.Create(&contact.Contact{
		Email:          &email,
		LinkedID:       &linked,
		LinkPrecedence: contact.Secondary,
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error)
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleSchemaCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := getJSON(t, app, "/integrity/schema")
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["matched"])
}

func TestHandleClusterCheck(t *testing.T) {
	app, db := setupTestApp(t)
	seedBroken(t, db)

	status, body := getJSON(t, app, "/integrity/clusters")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	report := body["report"].(map[string]any)
	assert.Equal(t, false, report["healthy"])
	assert.Len(t, report["issues"], 1)
}

func TestHandleClusterCheck_Fix(t *testing.T) {
	app, db := setupTestApp(t)
	seedBroken(t, db)

	status, body := getJSON(t, app, "/integrity/clusters?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
	fixed := body["fixed"].(map[string]any)
	assert.Equal(t, []any{float64(1)}, fixed["promoted"])

	_, body = getJSON(t, app, "/integrity/clusters")
	assert.Equal(t, true, body["report"].(map[string]any)["healthy"])
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := getJSON(t, app, "/integrity")
	assert.Equal(t, 200, status)
	assert.Contains(t, body, "schema")
	assert.Contains(t, body, "clusters")
}

func TestHandleIntegrityCheck_NoDatabase(t *testing.T) {
	app := fiber.New()
	NewHandler(NewService(nil, zap.NewNop())).RegisterRoutes(app)

	status, body := getJSON(t, app, "/integrity")
	assert.Equal(t, 200, status)
	assert.Equal(t, "error", body["schema"].(map[string]any)["status"])
	assert.Equal(t, "error", body["clusters"].(map[string]any)["status"])

	status, _ = getJSON(t, app, "/integrity/clusters")
	assert.Equal(t, 500, status)
}
