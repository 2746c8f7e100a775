package mcp

// Tool names exposed by the notes server.
const (
	ToolAddNote         = "add_note"
	ToolListNotes       = "list_notes"
	ToolAddNotification = "add_notification"
)

// NotificationLevels are the accepted values for add_notification's
// level argument.
var NotificationLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warning": true,
	"error":   true,
}

// NotesTools returns the definitions served by tools/list.
func NotesTools() []Tool {
	return []Tool{
		{
			Name:        ToolAddNote,
			Description: "Save a note to the notes directory",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "The name of the note (without .md extension)",
					},
					"content": map[string]interface{}{
						"type":        "string",
						"description": "The content of the note",
					},
				},
				"required": []string{"name", "content"},
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"message": map[string]interface{}{"type": "string"},
				},
			},
		},
		{
			Name:        ToolListNotes,
			Description: "List all available notes",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
			OutputSchema: map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		{
			Name:        ToolAddNotification,
			Description: "Send a notification to the client",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"level": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"debug", "info", "warning", "error"},
						"description": "The log level of the notification",
					},
					"message": map[string]interface{}{
						"type":        "string",
						"description": "The notification message",
					},
					"data": map[string]interface{}{
						"type":        "object",
						"description": "Optional additional data for the notification",
					},
				},
				"required": []string{"level", "message"},
			},
			OutputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"success": map[string]interface{}{"type": "boolean"},
				},
			},
		},
	}
}
