package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/beenode/hivedesk/internal/ipc"
)

// shellStub answers IPC requests the way the running shell would, recording
// the commands it saw. The IPC server calls it from connection goroutines.
type shellStub struct {
	mu       sync.Mutex
	commands []ipc.CommandType
	windows  map[string]*ipc.WindowInfo
}

func newShellStub() *shellStub {
	return &shellStub{
		windows: map[string]*ipc.WindowInfo{
			"wallet":  {Kind: "wallet", Title: "Wallet", Open: true, Focused: true, X: 20, Y: 5, Width: 40, Height: 15},
			"scrolls": {Kind: "scrolls", Title: "Scrolls"},
		},
	}
}

func (h *shellStub) seen() []ipc.CommandType {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ipc.CommandType(nil), h.commands...)
}

func (h *shellStub) HandleCommand(req *ipc.Request) *ipc.Response {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = append(h.commands, req.Command)

	switch req.Command {
	case ipc.CommandGetStatus:
		resp, _ := ipc.NewOKResponse(ipc.StatusData{
			ShellRunning:  true,
			UptimeSeconds: 42,
			OpenWindows:   1,
			FocusedWindow: "wallet",
			ViewportCols:  120,
			ViewportRows:  40,
			NodeURL:       "http://127.0.0.1:8080",
			NodeOnline:    true,
		})
		return resp

	case ipc.CommandListWindows:
		data := ipc.WindowsData{}
		for _, kind := range []string{"wallet", "scrolls"} {
			data.Windows = append(data.Windows, *h.windows[kind])
		}
		resp, _ := ipc.NewOKResponse(data)
		return resp

	case ipc.CommandOpenWindow:
		var p ipc.WindowPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		w, ok := h.windows[p.Kind]
		if !ok {
			return ipc.NewErrorResponse(fmt.Sprintf("unknown window kind %q", p.Kind))
		}
		w.Open = true
		resp, _ := ipc.NewOKResponse(nil)
		return resp

	case ipc.CommandMoveWindow:
		var p ipc.MovePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		w, ok := h.windows[p.Kind]
		if !ok {
			return ipc.NewErrorResponse(fmt.Sprintf("unknown window kind %q", p.Kind))
		}
		// Clamp the way the shell would for a 120x39 viewport with margin 2.
		w.X, w.Y = p.X, p.Y
		if max := 120 - 2 - w.Width; w.X > max {
			w.X = max
		}
		resp, _ := ipc.NewOKResponse(nil)
		return resp

	default:
		return ipc.NewErrorResponse(fmt.Sprintf("unknown command %q", req.Command))
	}
}

func startStubShell(t *testing.T) (*Server, *shellStub) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "hivedesk-test.sock")
	stub := newShellStub()

	srv, err := ipc.NewServer(socket, stub)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	return NewServer(socket), stub
}

func TestShellStatus_MapsStatusData(t *testing.T) {
	s, _ := startStubShell(t)

	_, out, err := s.handleShellStatus(context.Background(), nil, ShellStatusInput{})
	if err != nil {
		t.Fatalf("shell_status: %v", err)
	}
	if !out.ShellRunning || out.UptimeSeconds != 42 {
		t.Fatalf("expected a running shell at 42s uptime, got %+v", out)
	}
	if out.ViewportCols != 120 || out.FocusedWindow != "wallet" || !out.NodeOnline {
		t.Fatalf("unexpected status mapping: %+v", out)
	}
}

func TestListWindows_MapsWindowInfo(t *testing.T) {
	s, _ := startStubShell(t)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if len(out.Windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(out.Windows))
	}
	if out.Windows[0].Kind != "wallet" || !out.Windows[0].Open || out.Windows[0].Width != 40 {
		t.Fatalf("unexpected wallet mapping: %+v", out.Windows[0])
	}
}

func TestOpenWindow_ReturnsResultingState(t *testing.T) {
	s, stub := startStubShell(t)

	_, out, err := s.handleOpenWindow(context.Background(), nil, WindowInput{Kind: "scrolls"})
	if err != nil {
		t.Fatalf("open_window: %v", err)
	}
	if !out.Window.Open || out.Window.Kind != "scrolls" {
		t.Fatalf("expected scrolls reported open, got %+v", out.Window)
	}

	seen := stub.seen()
	if len(seen) != 2 || seen[0] != ipc.CommandOpenWindow || seen[1] != ipc.CommandListWindows {
		t.Fatalf("expected open then list, got %v", seen)
	}
}

func TestOpenWindow_UnknownKindSurfacesShellError(t *testing.T) {
	s, _ := startStubShell(t)

	_, _, err := s.handleOpenWindow(context.Background(), nil, WindowInput{Kind: "mixtape"})
	if err == nil || !strings.Contains(err.Error(), "unknown window kind") {
		t.Fatalf("expected the shell's error, got %v", err)
	}
}

func TestMoveWindow_ReportsClampedGeometry(t *testing.T) {
	s, _ := startStubShell(t)

	_, out, err := s.handleMoveWindow(context.Background(), nil, MoveWindowInput{Kind: "wallet", X: 5000, Y: 5})
	if err != nil {
		t.Fatalf("move_window: %v", err)
	}
	if out.Window.X != 78 || out.Window.Y != 5 {
		t.Fatalf("expected the clamped position (78,5), got (%v,%v)", out.Window.X, out.Window.Y)
	}
}

func TestTools_ErrorWhenShellNotRunning(t *testing.T) {
	s := NewServer(filepath.Join(t.TempDir(), "nobody-home.sock"))

	_, _, err := s.handleShellStatus(context.Background(), nil, ShellStatusInput{})
	if err == nil || !strings.Contains(err.Error(), "is hivedesk running?") {
		t.Fatalf("expected a connection hint, got %v", err)
	}
}
