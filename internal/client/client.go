// Package client implements the smoke-test sequencer: a fixed series
// of JSON-RPC calls against a running notes server, with every payload
// and response dumped for manual review. It is a throwaway inspection
// tool, not an SDK: no retries, no assertions on responses, and the
// first transport failure ends the run.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mcpnotes/mcpnotes/internal/jsonrpc"
	"github.com/mcpnotes/mcpnotes/internal/mcp"
)

type Client struct {
	endpoint   string
	httpClient *http.Client
	out        io.Writer
}

func New(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		out:        os.Stdout,
	}
}

// NewWithOutput routes the progress dumps somewhere other than stdout.
func NewWithOutput(endpoint string, out io.Writer) *Client {
	c := New(endpoint)
	c.out = out
	return c
}

// SendRequest posts one JSON-RPC request and returns the decoded
// response body. Params are omitted from the wire when empty. The
// payload is printed before the call and the response after it.
func (c *Client) SendRequest(ctx context.Context, method string, params map[string]interface{}, id int64) (map[string]interface{}, error) {
	payload := jsonrpc.NewRequest(method, params, id)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	fmt.Fprintf(c.out, "\nSending: %s\n", method)
	if params != nil {
		pretty, _ := json.MarshalIndent(params, "   ", "  ")
		fmt.Fprintf(c.out, "   Params: %s\n", pretty)
	} else {
		fmt.Fprintf(c.out, "   Params: none\n")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	pretty, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintf(c.out, "Response: %s\n", pretty)
	return result, nil
}

// RunSequence performs the six-step smoke run in fixed order. Nothing
// in a response feeds the next step; only an error stops the run.
func (c *Client) RunSequence(ctx context.Context) error {
	fmt.Fprintf(c.out, "Testing notes MCP server\n")
	fmt.Fprintf(c.out, "   Server: %s\n", c.endpoint)

	fmt.Fprintf(c.out, "\n1) Initializing session...\n")
	if _, err := c.SendRequest(ctx, mcp.MethodInitialize, map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    "test-client",
			"version": "1.0.0",
		},
	}, 1); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n2) Listing available tools...\n")
	if _, err := c.SendRequest(ctx, mcp.MethodToolsList, nil, 2); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n3) Listing notes...\n")
	if _, err := c.SendRequest(ctx, mcp.MethodToolsCall, map[string]interface{}{
		"name":      mcp.ToolListNotes,
		"arguments": map[string]interface{}{},
	}, 3); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n4) Adding a note...\n")
	if _, err := c.SendRequest(ctx, mcp.MethodToolsCall, map[string]interface{}{
		"name": mcp.ToolAddNote,
		"arguments": map[string]interface{}{
			"name":    "test-note",
			"content": "# Test Note\n\nThis is a test note created by the MCP test client.",
		},
	}, 4); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n5) Listing notes again...\n")
	if _, err := c.SendRequest(ctx, mcp.MethodToolsCall, map[string]interface{}{
		"name":      mcp.ToolListNotes,
		"arguments": map[string]interface{}{},
	}, 5); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n6) Sending a notification...\n")
	if _, err := c.SendRequest(ctx, mcp.MethodToolsCall, map[string]interface{}{
		"name": mcp.ToolAddNotification,
		"arguments": map[string]interface{}{
			"level":   "info",
			"message": "Test notification from client",
			"data": map[string]interface{}{
				"test":      true,
				"timestamp": "2025-07-19",
			},
		},
	}, 6); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\nTest complete\n")
	return nil
}
