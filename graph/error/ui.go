package grapherror

import "fmt"

// defaultMessages provides user-friendly error messages for each category
var defaultMessages = map[Category]string{
	CategoryLoad:      "Failed to load graph data - the visualization cannot start",
	CategoryValidate:  "Graph data is inconsistent - some elements were skipped",
	CategoryLayout:    "Layout simulation error - positions may be stale",
	CategoryWebSocket: "Connection error - attempting to reconnect...",
	CategoryRender:    "Failed to render the current view",
	CategoryInternal:  "An internal error occurred - please try again",
}

// ToUIMessage converts the error to a user-friendly message suitable for UI display
func (e *GraphError) ToUIMessage() string {
	// If a custom user message was provided, use it
	if e.UserMessage != "" {
		return e.UserMessage
	}

	if msg, ok := defaultMessages[e.Category]; ok {
		return msg
	}
	return "An error occurred"
}

// ToGraphMeta formats the error for inclusion in graph metadata
// This is sent to the UI as part of the graph response
func (e *GraphError) ToGraphMeta() map[string]string {
	meta := map[string]string{
		"error":       e.Error(),
		"category":    string(e.Category),
		"description": e.ToUIMessage(),
		"timestamp":   e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}

	if e.Subcategory != "" {
		meta["subcategory"] = e.Subcategory
	}

	// Add context as formatted string for debugging
	if len(e.Context) > 0 {
		meta["context"] = fmt.Sprintf("%v", e.Context)
	}

	return meta
}

// ToLogFields converts error to structured log fields
// This is useful for passing to logger.Errorw()
func (e *GraphError) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_category", e.Category,
		"error_message", e.Error(),
		"user_message", e.UserMessage,
	}

	if e.Subcategory != "" {
		fields = append(fields, "error_subcategory", e.Subcategory)
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// IsCategory checks if the error matches a specific category
func (e *GraphError) IsCategory(cat Category) bool {
	return e.Category == cat
}
