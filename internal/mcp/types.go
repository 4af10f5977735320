package mcp

// ShellStatusInput is the input for the shell_status tool.
type ShellStatusInput struct{}

// ShellStatusOutput is the output for the shell_status tool.
type ShellStatusOutput struct {
	ShellRunning  bool   `json:"shell_running"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	OpenWindows   int    `json:"open_windows"`
	FocusedWindow string `json:"focused_window,omitempty"`
	ViewportCols  int    `json:"viewport_cols"`
	ViewportRows  int    `json:"viewport_rows"`
	NodeURL       string `json:"node_url"`
	NodeOnline    bool   `json:"node_online"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowInfo describes one window of the running shell.
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

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowInput selects one window kind for the single-window tools.
type WindowInput struct {
	Kind string `json:"kind" jsonschema:"required,Window kind (e.g. wallet, scrolls, patterns, settings)"`
}

// WindowStateOutput reports the window's state after the command applied.
type WindowStateOutput struct {
	Window WindowInfo `json:"window"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	Kind string  `json:"kind" jsonschema:"required,Window kind to move"`
	X    float64 `json:"x" jsonschema:"required,Target left edge in cells; clamped to the margin band"`
	Y    float64 `json:"y" jsonschema:"required,Target top edge in cells; clamped to the margin band"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	Kind   string  `json:"kind" jsonschema:"required,Window kind to resize"`
	Width  float64 `json:"width" jsonschema:"required,Target width in cells; clamped to the layout minimum and the viewport maximum"`
	Height float64 `json:"height" jsonschema:"required,Target height in cells; clamped to the layout minimum and the viewport maximum"`
}
