package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRecordCommand(t *testing.T) {
	RecordCommand("read_notebook_file", 5*time.Millisecond, false)
	RecordCommand("get_recent_files", time.Millisecond, true)

	body := scrape(t)
	assert.Contains(t, body, `tangent_bridge_commands_total{command="read_notebook_file",status="error"}`)
	assert.Contains(t, body, `tangent_bridge_commands_total{command="get_recent_files",status="success"}`)
	assert.Contains(t, body, `tangent_bridge_command_duration_seconds_count{command="read_notebook_file"}`)
}

func TestGauges(t *testing.T) {
	SetRecentFiles(7)
	ConnectionOpened("websocket")
	ConnectionOpened("websocket")
	ConnectionClosed("websocket")

	body := scrape(t)
	assert.Contains(t, body, "tangent_recent_files 7")
	assert.Contains(t, body, `tangent_bridge_active_connections{transport="websocket"} 1`)

	ConnectionClosed("websocket")
}

func TestNotebookCounters(t *testing.T) {
	RecordNotebookWrite(42)
	RecordNotebookRead(10)

	body := scrape(t)
	assert.Contains(t, body, "tangent_notebook_bytes_written_total")
	assert.Contains(t, body, "tangent_notebook_bytes_read_total")
}
