package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingServer captures every request body the client posts.
type recordingServer struct {
	mu     sync.Mutex
	bodies [][]byte
	server *httptest.Server
}

func newRecordingServer(t *testing.T) *recordingServer {
	rs := &recordingServer{}
	rs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		rs.mu.Lock()
		rs.bodies = append(rs.bodies, body)
		rs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{}}`)
	}))
	t.Cleanup(rs.server.Close)
	return rs
}

func TestSendRequest_OmitsParamsWhenAbsent(t *testing.T) {
	rs := newRecordingServer(t)
	c := NewWithOutput(rs.server.URL, &bytes.Buffer{})

	_, err := c.SendRequest(context.Background(), "tools/list", nil, 2)
	require.NoError(t, err)

	require.Len(t, rs.bodies, 1)
	assert.Equal(t, `{"jsonrpc":"2.0","method":"tools/list","id":2}`, string(rs.bodies[0]))
}

func TestSendRequest_IncludesParamsWhenSupplied(t *testing.T) {
	rs := newRecordingServer(t)
	c := NewWithOutput(rs.server.URL, &bytes.Buffer{})

	params := map[string]interface{}{
		"name": "add_note",
		"arguments": map[string]interface{}{
			"name":    "test-note",
			"content": "# Test Note",
		},
	}
	_, err := c.SendRequest(context.Background(), "tools/call", params, 4)
	require.NoError(t, err)

	require.Len(t, rs.bodies, 1)
	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(rs.bodies[0], &sent))

	assert.Equal(t, "2.0", sent["jsonrpc"])
	assert.Equal(t, "tools/call", sent["method"])
	assert.Equal(t, float64(4), sent["id"])
	if diff := cmp.Diff(params, sent["params"]); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestSendRequest_ReturnsDecodedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{"tools":[]}}`)
	}))
	defer server.Close()

	c := NewWithOutput(server.URL, &bytes.Buffer{})
	result, err := c.SendRequest(context.Background(), "tools/list", nil, 1)
	require.NoError(t, err)

	assert.Equal(t, "2.0", result["jsonrpc"])
	assert.Contains(t, result, "result")
}

func TestSendRequest_TransportErrorPropagates(t *testing.T) {
	// Nothing is listening here
	c := NewWithOutput("http://127.0.0.1:1/mcp", &bytes.Buffer{})

	_, err := c.SendRequest(context.Background(), "initialize", nil, 1)
	assert.Error(t, err)
}

func TestSendRequest_NonJSONBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	}))
	defer server.Close()

	c := NewWithOutput(server.URL, &bytes.Buffer{})
	_, err := c.SendRequest(context.Background(), "initialize", nil, 1)
	assert.Error(t, err)
}

func TestRunSequence_SixCallsInOrder(t *testing.T) {
	rs := newRecordingServer(t)
	c := NewWithOutput(rs.server.URL, &bytes.Buffer{})

	require.NoError(t, c.RunSequence(context.Background()))
	require.Len(t, rs.bodies, 6)

	type call struct {
		method string
		id     float64
		tool   string // tools/call only
	}
	want := []call{
		{method: "initialize", id: 1},
		{method: "tools/list", id: 2},
		{method: "tools/call", id: 3, tool: "list_notes"},
		{method: "tools/call", id: 4, tool: "add_note"},
		{method: "tools/call", id: 5, tool: "list_notes"},
		{method: "tools/call", id: 6, tool: "add_notification"},
	}

	for i, w := range want {
		var sent map[string]interface{}
		require.NoError(t, json.Unmarshal(rs.bodies[i], &sent))

		assert.Equal(t, "2.0", sent["jsonrpc"], "call %d", i+1)
		assert.Equal(t, w.method, sent["method"], "call %d", i+1)
		assert.Equal(t, w.id, sent["id"], "call %d", i+1)

		if w.tool != "" {
			params, ok := sent["params"].(map[string]interface{})
			require.True(t, ok, "call %d should carry params", i+1)
			assert.Equal(t, w.tool, params["name"], "call %d", i+1)
		}
	}

	// tools/list must not carry a params key at all
	var toolsList map[string]interface{}
	require.NoError(t, json.Unmarshal(rs.bodies[1], &toolsList))
	assert.NotContains(t, toolsList, "params")
}

func TestRunSequence_PayloadDetails(t *testing.T) {
	rs := newRecordingServer(t)
	c := NewWithOutput(rs.server.URL, &bytes.Buffer{})

	require.NoError(t, c.RunSequence(context.Background()))
	require.Len(t, rs.bodies, 6)

	var initCall map[string]interface{}
	require.NoError(t, json.Unmarshal(rs.bodies[0], &initCall))
	initParams := initCall["params"].(map[string]interface{})
	assert.Equal(t, "2024-11-05", initParams["protocolVersion"])
	clientInfo := initParams["clientInfo"].(map[string]interface{})
	assert.Equal(t, "test-client", clientInfo["name"])
	assert.Equal(t, "1.0.0", clientInfo["version"])

	var addNote map[string]interface{}
	require.NoError(t, json.Unmarshal(rs.bodies[3], &addNote))
	addArgs := addNote["params"].(map[string]interface{})["arguments"].(map[string]interface{})
	assert.Equal(t, "test-note", addArgs["name"])
	assert.Contains(t, addArgs["content"], "# Test Note")

	var notify map[string]interface{}
	require.NoError(t, json.Unmarshal(rs.bodies[5], &notify))
	notifyArgs := notify["params"].(map[string]interface{})["arguments"].(map[string]interface{})
	assert.Equal(t, "info", notifyArgs["level"])
	assert.Equal(t, "Test notification from client", notifyArgs["message"])
	data := notifyArgs["data"].(map[string]interface{})
	assert.Equal(t, true, data["test"])
	assert.Equal(t, "2025-07-19", data["timestamp"])
}

func TestRunSequence_StopsOnFirstFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls >= 3 {
			io.WriteString(w, "not json")
			return
		}
		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{}}`)
	}))
	defer server.Close()

	c := NewWithOutput(server.URL, &bytes.Buffer{})
	err := c.RunSequence(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}
