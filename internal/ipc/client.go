package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/beenode/hivedesk/internal/runtimepath"
)

// Client handles IPC communication with the running shell
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates an IPC client on the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates an IPC client on a specific socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to shell: %w (is hivedesk running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("shell error: %s", resp.Error)
	}

	return &resp, nil
}

// sendWindowCommand sends a command that targets one window kind.
func (c *Client) sendWindowCommand(cmd CommandType, kind string) error {
	payload, err := json.Marshal(WindowPayload{Kind: kind})
	if err != nil {
		return fmt.Errorf("failed to marshal window payload: %w", err)
	}
	_, err = c.sendRequest(&Request{Command: cmd, Payload: payload})
	return err
}

// Ping checks if the shell is responding
func (c *Client) Ping() error {
	_, err := c.sendRequest(&Request{Command: CommandPing})
	return err
}

// GetStatus retrieves shell status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// ListWindows retrieves every window's state in catalog order.
func (c *Client) ListWindows() (*WindowsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListWindows})
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}
	return &data, nil
}

// OpenWindow opens (or re-focuses) the window of the given kind.
func (c *Client) OpenWindow(kind string) error {
	return c.sendWindowCommand(CommandOpenWindow, kind)
}

// CloseWindow closes the window of the given kind.
func (c *Client) CloseWindow(kind string) error {
	return c.sendWindowCommand(CommandCloseWindow, kind)
}

// FocusWindow raises the window of the given kind.
func (c *Client) FocusWindow(kind string) error {
	return c.sendWindowCommand(CommandFocusWindow, kind)
}

// MinimizeWindow minimizes the window of the given kind.
func (c *Client) MinimizeWindow(kind string) error {
	return c.sendWindowCommand(CommandMinimizeWindow, kind)
}

// ToggleMaximize toggles the window of the given kind between maximized and
// its remembered geometry.
func (c *Client) ToggleMaximize(kind string) error {
	return c.sendWindowCommand(CommandToggleMaximize, kind)
}

// MoveWindow places a window at an exact position.
func (c *Client) MoveWindow(kind string, x, y float64) error {
	payload, err := json.Marshal(MovePayload{Kind: kind, X: x, Y: y})
	if err != nil {
		return fmt.Errorf("failed to marshal move payload: %w", err)
	}
	_, err = c.sendRequest(&Request{Command: CommandMoveWindow, Payload: payload})
	return err
}

// ResizeWindow sets a window's size, recorded as a user preference.
func (c *Client) ResizeWindow(kind string, width, height float64) error {
	payload, err := json.Marshal(ResizePayload{Kind: kind, Width: width, Height: height})
	if err != nil {
		return fmt.Errorf("failed to marshal resize payload: %w", err)
	}
	_, err = c.sendRequest(&Request{Command: CommandResizeWindow, Payload: payload})
	return err
}
