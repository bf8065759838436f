package api

import (
	"encoding/json"

	"github.com/satriahrh/snapspeak/domain/entities"
)

// DescribeResponse is the result of one stateless describe request
type DescribeResponse struct {
	Description string          `json:"description"`
	Found       bool            `json:"found"`
	Confidence  float64         `json:"confidence,omitempty"`
	Model       string          `json:"model"`
	ElapsedMs   int64           `json:"elapsed_ms"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// SessionsResponse lists the connected capture sessions
type SessionsResponse struct {
	Count    int                    `json:"count"`
	Sessions []entities.SessionView `json:"sessions"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
