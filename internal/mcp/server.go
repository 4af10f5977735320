package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/beenode/hivedesk/internal/ipc"
)

const (
	ServerName    = "hivedesk"
	ServerVersion = "0.1.0"
)

// Server exposes the shell's window controls as MCP tools over stdio. Every
// handler is a thin IPC call against the running shell; the MCP process
// holds no window state of its own.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates an MCP server talking to the shell on the given socket.
// An empty socketPath selects the default runtime socket.
func NewServer(socketPath string) *Server {
	client := ipc.NewClient()
	if socketPath != "" {
		client = ipc.NewClientAt(socketPath)
	}

	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "shell_status",
		Description: "Report whether the hivedesk shell is running, its uptime, viewport size, open window count, focused window, and hive node reachability.",
	}, s.handleShellStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every window the shell knows with open/minimized/maximized/focused state, stacking order, and geometry in cells.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a window by kind, or raise and focus it when it is already open. A minimized window is restored from the dock.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window by kind. Its geometry is kept for the next open.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus an open window by kind, restoring it from the dock when minimized. Fails when the window is closed.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Minimize an open window to the dock on the status bar.",
	}, s.handleMinimizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_maximize",
		Description: "Maximize a window to the viewport margin band, or restore its pre-maximize geometry when already maximized.",
	}, s.handleToggleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window to the given cell position. Coordinates are clamped so the window stays inside the viewport margins; the returned state carries the effective position.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a window to the given cell size. Dimensions are clamped to the layout minimum and the viewport maximum; the returned state carries the effective size.",
	}, s.handleResizeWindow)
}

func (s *Server) handleShellStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ ShellStatusInput) (*mcpsdk.CallToolResult, ShellStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, ShellStatusOutput{}, err
	}
	return nil, ShellStatusOutput{
		ShellRunning:  status.ShellRunning,
		UptimeSeconds: status.UptimeSeconds,
		OpenWindows:   status.OpenWindows,
		FocusedWindow: status.FocusedWindow,
		ViewportCols:  status.ViewportCols,
		ViewportRows:  status.ViewportRows,
		NodeURL:       status.NodeURL,
		NodeOnline:    status.NodeOnline,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.client.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(windows.Windows))}
	for _, w := range windows.Windows {
		out.Windows = append(out.Windows, windowInfoFromIPC(w))
	}
	return nil, out, nil
}

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowCommand(args.Kind, s.client.OpenWindow)
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowCommand(args.Kind, s.client.CloseWindow)
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowCommand(args.Kind, s.client.FocusWindow)
}

func (s *Server) handleMinimizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowCommand(args.Kind, s.client.MinimizeWindow)
}

func (s *Server) handleToggleMaximize(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowCommand(args.Kind, s.client.ToggleMaximize)
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowCommand(args.Kind, func(kind string) error {
		return s.client.MoveWindow(kind, args.X, args.Y)
	})
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.windowCommand(args.Kind, func(kind string) error {
		return s.client.ResizeWindow(kind, args.Width, args.Height)
	})
}

// windowCommand runs one single-window verb and answers with the window's
// state afterwards, so callers see the effective (possibly clamped) result.
func (s *Server) windowCommand(kind string, run func(string) error) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	if err := run(kind); err != nil {
		return nil, WindowStateOutput{}, err
	}
	out, err := s.windowState(kind)
	if err != nil {
		return nil, WindowStateOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) windowState(kind string) (WindowStateOutput, error) {
	windows, err := s.client.ListWindows()
	if err != nil {
		return WindowStateOutput{}, err
	}
	for _, w := range windows.Windows {
		if w.Kind == kind {
			return WindowStateOutput{Window: windowInfoFromIPC(w)}, nil
		}
	}
	return WindowStateOutput{}, fmt.Errorf("window %q not reported by the shell", kind)
}

func windowInfoFromIPC(w ipc.WindowInfo) WindowInfo {
	return WindowInfo{
		Kind:      w.Kind,
		Title:     w.Title,
		Open:      w.Open,
		Minimized: w.Minimized,
		Maximized: w.Maximized,
		Focused:   w.Focused,
		ZIndex:    w.ZIndex,
		X:         w.X,
		Y:         w.Y,
		Width:     w.Width,
		Height:    w.Height,
	}
}
