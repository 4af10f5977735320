package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing           CommandType = "PING"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandOpenWindow     CommandType = "OPEN_WINDOW"
	CommandCloseWindow    CommandType = "CLOSE_WINDOW"
	CommandFocusWindow    CommandType = "FOCUS_WINDOW"
	CommandMinimizeWindow CommandType = "MINIMIZE_WINDOW"
	CommandToggleMaximize CommandType = "TOGGLE_MAXIMIZE"
	CommandMoveWindow     CommandType = "MOVE_WINDOW"
	CommandResizeWindow   CommandType = "RESIZE_WINDOW"
)

// Request represents an IPC request from client to shell
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from shell to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	ShellRunning  bool   `json:"shell_running"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	OpenWindows   int    `json:"open_windows"`
	FocusedWindow string `json:"focused_window,omitempty"`
	ViewportCols  int    `json:"viewport_cols"`
	ViewportRows  int    `json:"viewport_rows"`
	NodeURL       string `json:"node_url"`
	NodeOnline    bool   `json:"node_online"`
}

// WindowInfo describes one window's state for LIST_WINDOWS
type WindowInfo struct {
	Kind      string  `json:"kind"`
	Title     string  `json:"title"`
	Open      bool    `json:"open"`
	Minimized bool    `json:"minimized"`
	Maximized bool    `json:"maximized"`
	Focused   bool    `json:"focused"`
	ZIndex    int     `json:"z_index"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowPayload targets a single window by kind.
type WindowPayload struct {
	Kind string `json:"kind"`
}

// MovePayload positions a window by kind.
type MovePayload struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ResizePayload sizes a window by kind.
type ResizePayload struct {
	Kind   string  `json:"kind"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
