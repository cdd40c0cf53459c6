package export

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"identity-reconciler/core/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleExport(t *testing.T) {
	svc, client, db := setupService(t, storage.Config{Bucket: "identity-exports", Prefix: "snapshots"})
	seedCluster(t, db)
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)

	client.On("BucketExists", mock.Anything, "identity-exports").Return(true, nil)
	client.On("PutObject", mock.Anything, "identity-exports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/export", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var res Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 2, res.Clusters)
}

func TestHandleExport_Failure(t *testing.T) {
	svc, client, _ := setupService(t, storage.Config{Bucket: "identity-exports"})
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)

	client.On("BucketExists", mock.Anything, "identity-exports").Return(false, errors.New("dial tcp: connection refused"))

	resp, err := app.Test(httptest.NewRequest("POST", "/export", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleList(t *testing.T) {
	svc, client, _ := setupService(t, storage.Config{Bucket: "identity-exports", Prefix: "snapshots"})
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)

	client.On("ListObjects", mock.Anything, "identity-exports", mock.Anything).
		Return(listChan("snapshots/clusters-20230420T050400Z.json"))

	resp, err := app.Test(httptest.NewRequest("GET", "/export", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"snapshots/clusters-20230420T050400Z.json"}, body["snapshots"])
}

func TestHandleDownload(t *testing.T) {
	svc, client, _ := setupService(t, storage.Config{Bucket: "identity-exports", Prefix: "snapshots"})
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)

	client.On("GetObject", mock.Anything, "identity-exports", "snapshots/clusters-1.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(`{"clusters":[]}`)), nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/export/clusters-1.json", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"clusters":[]}`, string(body))
}
