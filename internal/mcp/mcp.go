package mcp

// Methods the server understands.
const (
	MethodInitialize = "initialize"
	MethodToolsList  = "tools/list"
	MethodToolsCall  = "tools/call"

	// NotificationMessage is pushed to subscribers, never requested.
	NotificationMessage = "notifications/message"
)

// Request is an incoming JSON-RPC request with the params shape used
// by tools/call. For initialize the raw params are decoded separately.
type Request struct {
	ID     interface{} `json:"id"`
	Method string      `json:"method"`
	Params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments,omitempty"`
	} `json:"params"`
}

// ClientInfo identifies the connecting client.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams are the params of an initialize request.
type InitializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ClientInfo      ClientInfo             `json:"clientInfo"`
}

// ServerInfo identifies this server in the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsCapability advertises tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ServerCapabilities lists what the server supports.
type ServerCapabilities struct {
	Tools ToolsCapability `json:"tools"`
}

// InitializeResult echoes the client's protocol version back, per the
// negotiation behavior MCP clients expect.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// Tool describes one callable tool for tools/list.
type Tool struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema,omitempty"`
}

// ListToolsResult is the tools/list result payload.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// Content is one chunk of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the tools/call result payload.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

// TextResult wraps a single text chunk as a tool result.
func TextResult(text string) ToolResult {
	return ToolResult{
		Content: []Content{{Type: "text", Text: text}},
		IsError: false,
	}
}

// Notification is a server-initiated notifications/message payload,
// streamed to SSE subscribers.
type Notification struct {
	JSONRPC string             `json:"jsonrpc"`
	Method  string             `json:"method"`
	Params  NotificationParams `json:"params"`
}

type NotificationParams struct {
	Level   string      `json:"level"`
	Logger  string      `json:"logger,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
