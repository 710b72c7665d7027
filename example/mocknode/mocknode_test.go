package mocknode

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/syncboard"
)

func newTestNode(t *testing.T) (*Node, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(mock, slog.New(slog.NewTextHandler(io.Discard, nil)), 1), mock
}

func get(t *testing.T, h http.Handler, path string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec.Body.String()
}

func TestPeers_DecodeAsDevices(t *testing.T) {
	node, _ := newTestNode(t)

	devices, err := syncboard.DecodeDevices([]byte(get(t, node.Handler(), "/peers")))
	require.NoError(t, err)
	require.Len(t, devices, 4)
	assert.Equal(t, "laptop", devices[0].Name)
	assert.Equal(t, "dev-laptop", devices[0].ID)
	assert.Equal(t, "Online", devices[0].Label())
	assert.Equal(t, "Offline", devices[2].Label())
}

func TestMetadata_NullUntilFirstFile(t *testing.T) {
	node, _ := newTestNode(t)

	body := get(t, node.Handler(), "/metadata")
	assert.Equal(t, "null", strings.TrimSpace(body))

	files, err := syncboard.DecodeFiles([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMetadata_FilesArriveOverTime(t *testing.T) {
	node, mock := newTestNode(t)

	mock.Add(30 * time.Second)
	files, err := syncboard.DecodeFiles([]byte(get(t, node.Handler(), "/metadata")))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "docs/report.pdf", files[0].Path)
	assert.Equal(t, "3", files[0].ChunkCount())

	mock.Add(10 * time.Minute)
	files, err = syncboard.DecodeFiles([]byte(get(t, node.Handler(), "/metadata")))
	require.NoError(t, err)
	require.Len(t, files, len(catalog))
	assert.Equal(t, "?", files[1].ChunkCount(), "unsplit files omit the chunk list")
}

func TestPeers_PresenceFlips(t *testing.T) {
	node, mock := newTestNode(t)
	h := node.Handler()

	before, err := syncboard.DecodeDevices([]byte(get(t, h, "/peers")))
	require.NoError(t, err)

	// every device changes within 60 seconds
	mock.Add(61 * time.Second)
	after, err := syncboard.DecodeDevices([]byte(get(t, h, "/peers")))
	require.NoError(t, err)

	for i := range before {
		assert.NotEqual(t, before[i].Online, after[i].Online, "device %s", before[i].Name)
	}
}

func TestUnknownRoute(t *testing.T) {
	node, _ := newTestNode(t)

	rec := httptest.NewRecorder()
	node.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
