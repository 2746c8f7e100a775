package jsonrpc

// Version is the protocol tag carried by every message.
const Version = "2.0"

// Standard JSON-RPC error codes, plus the MCP-specific code for
// requests issued before the session was initialized.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotInitialized = -32002
)

// Request is one outgoing JSON-RPC call. Params is omitted from the
// wire entirely when nil or empty.
type Request struct {
	JSONRPC string                 `json:"jsonrpc"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params,omitempty"`
	ID      int64                  `json:"id"`
}

// NewRequest builds a request envelope with the protocol tag set.
// An empty params map is dropped so it never serializes as "params":{}.
func NewRequest(method string, params map[string]interface{}, id int64) Request {
	if len(params) == 0 {
		params = nil
	}
	return Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      id,
	}
}

// Response is one incoming JSON-RPC reply.
type Response struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      interface{}  `json:"id"`
	Result  interface{}  `json:"result,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	// The error type that occurred.
	Code int `json:"code"`
	// A short description of the error. The message SHOULD be limited
	// to a concise single sentence.
	Message string `json:"message"`
	// Additional information about the error. The value of this member
	// is defined by the sender (e.g. detailed error information, nested errors etc.).
	Data interface{} `json:"data,omitempty"`
}

// Error is a full error reply envelope.
type Error struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Error   ErrorDetail `json:"error"`
}

// NewError builds an error reply for the given request id.
func NewError(id interface{}, code int, message string) Error {
	return Error{
		JSONRPC: Version,
		ID:      id,
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewResponse builds a success reply for the given request id.
func NewResponse(id interface{}, result interface{}) Response {
	return Response{
		JSONRPC: Version,
		ID:      id,
		Result:  result,
	}
}
