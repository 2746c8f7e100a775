package api

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/mcpnotes/mcpnotes/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The full smoke sequence against a real server instance: initialize,
// list tools, list notes, add a note, list again, notify.
func TestSmokeSequenceAgainstServer(t *testing.T) {
	a, _ := newTestAPI(t)

	router := mux.NewRouter()
	router.HandleFunc("/mcp", a.HandleMCP).Methods("POST")
	server := httptest.NewServer(router)
	defer server.Close()

	var out bytes.Buffer
	c := client.NewWithOutput(server.URL+"/mcp", &out)
	require.NoError(t, c.RunSequence(context.Background()))

	// The second list_notes dump shows the note added in step 4
	assert.Contains(t, out.String(), "test-note")
	assert.Equal(t, []string{"test-note"}, a.storage.List())
}
