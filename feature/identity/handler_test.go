package identity

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"identity-reconciler/core/contact"
	"identity-reconciler/core/database"
	"identity-reconciler/core/reconcile"

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

	logger := zap.NewNop()
	engine := reconcile.NewEngine(contact.NewGormStore(db), logger, reconcile.Config{LockTimeout: 5 * time.Second, MergePrimaries: true})

	app := fiber.New()
	NewHandler(NewService(engine, logger)).RegisterRoutes(app)
	return app, db
}

func postIdentify(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/identify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandleIdentify(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := postIdentify(t, app, `{"email":"lorraine@hillvalley.edu","phoneNumber":"123456"}`)
	require.Equal(t, fiber.StatusOK, status)
	first := body["contact"].(map[string]any)
	assert.Equal(t, []any{"lorraine@hillvalley.edu"}, first["emails"])
	assert.Equal(t, []any{"123456"}, first["phoneNumbers"])
	assert.Equal(t, []any{}, first["secondaryContactIds"])

	// Numeric phone numbers match their string form.
	status, body = postIdentify(t, app, `{"email":"mcfly@hillvalley.edu","phoneNumber":123456}`)
	require.Equal(t, fiber.StatusOK, status)
	second := body["contact"].(map[string]any)
	assert.Equal(t, first["primaryContactId"], second["primaryContactId"])
	assert.Equal(t, []any{"lorraine@hillvalley.edu", "mcfly@hillvalley.edu"}, second["emails"])
	assert.Equal(t, []any{"123456"}, second["phoneNumbers"])
	assert.Len(t, second["secondaryContactIds"], 1)
}

func TestHandleIdentify_InvalidInput(t *testing.T) {
	app, db := setupTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"BothNull", `{"email":null,"phoneNumber":null}`},
		{"Empty", `{}`},
		{"EmptyStrings", `{"email":"","phoneNumber":""}`},
		{"Malformed", `{"email":`},
		{"WrongType", `{"phoneNumber":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postIdentify(t, app, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.NotEmpty(t, body["error"])
		})
	}

	var n int64
	require.NoError(t, db.Model(&contact.Contact{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestHandleIdentify_StorageFailure(t *testing.T) {
	app, db := setupTestApp(t)
	require.NoError(t, db.Migrator().DropTable(&contact.Contact{}))

	status, body := postIdentify(t, app, `{"email":"doc@hillvalley.edu"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["error"])
}

func TestHandleGetContact(t *testing.T) {
	app, _ := setupTestApp(t)

	postIdentify(t, app, `{"email":"lorraine@hillvalley.edu","phoneNumber":"123456"}`)
	_, body := postIdentify(t, app, `{"email":"mcfly@hillvalley.edu","phoneNumber":"123456"}`)
	linked := body["contact"].(map[string]any)
	secondaryID := int64(linked["secondaryContactIds"].([]any)[0].(float64))

	t.Run("ResolvesSecondary", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/contacts/"+jsonInt(secondaryID), nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, linked, out["contact"])
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/contacts/999", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("BadID", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/contacts/abc", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func jsonInt(i int64) string {
	b, _ := json.Marshal(i)
	return string(b)
}
