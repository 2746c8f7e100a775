package api

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/mcpnotes/mcpnotes/internal/config"
	"github.com/mcpnotes/mcpnotes/internal/detection"
	"github.com/mcpnotes/mcpnotes/internal/jsonrpc"
	"github.com/mcpnotes/mcpnotes/internal/mcp"
	"github.com/mcpnotes/mcpnotes/internal/notes"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Session represents an active SSE subscriber on the notification feed
type Session struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	done    chan struct{}

	mu sync.Mutex // serializes event writes
}

type API struct {
	config          *config.Config
	storage         *notes.Storage
	detectionEngine *detection.Engine
	sessions        sync.Map

	initialized atomic.Bool

	mu              sync.RWMutex
	clientInfo      mcp.ClientInfo
	protocolVersion string
}

func NewNotesAPI(config *config.Config, storage *notes.Storage, detectionEngine *detection.Engine) *API {
	return &API{
		config:          config,
		storage:         storage,
		detectionEngine: detectionEngine,
	}
}

// envelope is the decoded request before method dispatch. Params stays
// raw because its shape depends on the method.
type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// HandleMCP serves POST /mcp: one JSON-RPC request per HTTP exchange.
func (api *API) HandleMCP(w http.ResponseWriter, r *http.Request) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Error reading request body", http.StatusInternalServerError)
		return
	}
	r.Body.Close()

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		writeReply(w, jsonrpc.NewError(nil, jsonrpc.CodeParseError, "Parse error"))
		return
	}

	switch env.Method {
	case mcp.MethodInitialize:
		api.handleInitialize(w, env)
	case mcp.MethodToolsList:
		api.handleToolsList(w, env)
	case mcp.MethodToolsCall:
		api.handleToolsCall(w, env, bodyBytes)
	default:
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeMethodNotFound,
			fmt.Sprintf("Method not found: %s", env.Method)))
	}
}

func (api *API) handleInitialize(w http.ResponseWriter, env envelope) {
	var params mcp.InitializeParams
	if len(env.Params) > 0 {
		if err := json.Unmarshal(env.Params, &params); err != nil {
			writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInvalidParams, "Invalid initialize params"))
			return
		}
	}
	if params.ProtocolVersion == "" {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInvalidParams, "Missing protocolVersion"))
		return
	}

	api.mu.Lock()
	api.clientInfo = params.ClientInfo
	api.protocolVersion = params.ProtocolVersion
	api.mu.Unlock()
	api.initialized.Store(true)

	log.Printf("Client initialized: %s %s (protocol %s)",
		params.ClientInfo.Name, params.ClientInfo.Version, params.ProtocolVersion)

	// Echo the client's protocol version back
	writeReply(w, jsonrpc.NewResponse(env.ID, mcp.InitializeResult{
		ProtocolVersion: params.ProtocolVersion,
		Capabilities: mcp.ServerCapabilities{
			Tools: mcp.ToolsCapability{ListChanged: false},
		},
		ServerInfo: mcp.ServerInfo{
			Name:    api.config.ServerName,
			Version: api.config.ServerVersion,
		},
	}))
}

func (api *API) handleToolsList(w http.ResponseWriter, env envelope) {
	if !api.initialized.Load() {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeNotInitialized, "Session not initialized"))
		return
	}
	writeReply(w, jsonrpc.NewResponse(env.ID, mcp.ListToolsResult{Tools: mcp.NotesTools()}))
}

func (api *API) handleToolsCall(w http.ResponseWriter, env envelope, bodyBytes []byte) {
	if !api.initialized.Load() {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeNotInitialized, "Session not initialized"))
		return
	}

	var mcpRequest mcp.Request
	if err := json.Unmarshal(bodyBytes, &mcpRequest); err != nil {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInvalidParams, "Invalid tools/call params"))
		return
	}
	if mcpRequest.Params.Name == "" {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInvalidParams, "Missing tool name"))
		return
	}

	// Screen string arguments for leaked secrets before dispatching
	if results := api.detectionEngine.Detect(mcpRequest); len(results) > 0 {
		resultString := "Detected: "
		for _, result := range results {
			resultString += fmt.Sprintf("%s\n", result.Description)
		}
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInternalError,
			"Blocked: the call contains sensitive information. Details: "+resultString))
		return
	}

	args := mcpRequest.Params.Arguments
	switch mcpRequest.Params.Name {
	case mcp.ToolAddNote:
		api.callAddNote(w, env, args)
	case mcp.ToolListNotes:
		api.callListNotes(w, env)
	case mcp.ToolAddNotification:
		api.callAddNotification(w, env, args)
	default:
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeMethodNotFound,
			fmt.Sprintf("Unknown tool: %s", mcpRequest.Params.Name)))
	}
}

func (api *API) callAddNote(w http.ResponseWriter, env envelope, args map[string]interface{}) {
	name, ok := args["name"].(string)
	if !ok || name == "" {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInvalidParams, "Missing 'name' parameter"))
		return
	}
	content, ok := args["content"].(string)
	if !ok {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInvalidParams, "Missing 'content' parameter"))
		return
	}

	if err := api.storage.Save(name, content); err != nil {
		log.Printf("Failed to save note %q: %v", name, err)
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInternalError, "Failed to save note"))
		return
	}

	api.Broadcast(mcp.Notification{
		JSONRPC: jsonrpc.Version,
		Method:  mcp.NotificationMessage,
		Params: mcp.NotificationParams{
			Level:   "info",
			Logger:  "notes",
			Message: fmt.Sprintf("Note '%s' has been saved", name),
			Data: map[string]interface{}{
				"note_name": name,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		},
	})

	writeToolReply(w, env.ID, map[string]interface{}{
		"message": fmt.Sprintf("Note '%s' saved successfully", name),
	})
}

func (api *API) callListNotes(w http.ResponseWriter, env envelope) {
	writeToolReply(w, env.ID, api.storage.List())
}

func (api *API) callAddNotification(w http.ResponseWriter, env envelope, args map[string]interface{}) {
	level, ok := args["level"].(string)
	if !ok {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInvalidParams, "Missing 'level' parameter"))
		return
	}
	message, ok := args["message"].(string)
	if !ok {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInvalidParams, "Missing 'message' parameter"))
		return
	}
	if !mcp.NotificationLevels[level] {
		writeReply(w, jsonrpc.NewError(env.ID, jsonrpc.CodeInvalidParams,
			fmt.Sprintf("Invalid log level: %s", level)))
		return
	}

	api.Broadcast(mcp.Notification{
		JSONRPC: jsonrpc.Version,
		Method:  mcp.NotificationMessage,
		Params: mcp.NotificationParams{
			Level:   level,
			Logger:  "custom",
			Message: message,
			Data:    args["data"],
		},
	})

	writeToolReply(w, env.ID, map[string]interface{}{"success": true})
}

// Events serves GET /mcp/events: an SSE feed of server notifications.
// The connection stays open until the client goes away.
func (api *API) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	session := &Session{
		writer:  w,
		flusher: flusher,
		done:    make(chan struct{}),
	}
	sessionID := uuid.NewString()
	api.sessions.Store(sessionID, session)
	defer api.sessions.Delete(sessionID)
	defer close(session.done)

	log.Printf("Notification subscriber connected: %s", sessionID)
	<-r.Context().Done()
	log.Printf("Notification subscriber disconnected: %s", sessionID)
}

// Broadcast pushes a notification to every connected subscriber. A
// subscriber with nothing listening is not an error.
func (api *API) Broadcast(n mcp.Notification) {
	b, err := json.Marshal(n)
	if err != nil {
		log.Printf("Failed to marshal notification: %v", err)
		return
	}
	event := fmt.Sprintf("event: message\ndata: %s\n\n", b)

	api.sessions.Range(func(_, value interface{}) bool {
		session := value.(*Session)
		select {
		case <-session.done:
			// Session is closed
		default:
			session.mu.Lock()
			fmt.Fprint(session.writer, event)
			session.flusher.Flush()
			session.mu.Unlock()
		}
		return true
	})
}

// Health serves GET /health.
func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"name":    api.config.ServerName,
		"version": api.config.ServerVersion,
	})
}

// writeToolReply wraps a tool's JSON output in the tools/call result
// shape: a single text content chunk holding the serialized value.
func writeToolReply(w http.ResponseWriter, id interface{}, result interface{}) {
	text, err := json.Marshal(result)
	if err != nil {
		writeReply(w, jsonrpc.NewError(id, jsonrpc.CodeInternalError, "Failed to encode tool result"))
		return
	}
	writeReply(w, jsonrpc.NewResponse(id, mcp.TextResult(string(text))))
}

func writeReply(w http.ResponseWriter, reply interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}
