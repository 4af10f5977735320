package ipc

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/beenode/hivedesk/internal/runtimepath"
)

// Handler processes parsed IPC requests. The shell implements this by
// forwarding commands into its update loop and waiting for the reply.
type Handler interface {
	HandleCommand(req *Request) *Response
}

// Server accepts IPC connections on a unix socket and hands each request to
// the Handler.
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates an IPC server. An empty socketPath selects the default
// runtime location.
func NewServer(socketPath string, handler Handler) (*Server, error) {
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = path
	}

	// A socket left behind by an earlier run would block the listen.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
	}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start listens on the socket and serves connections until Stop. Failures
// past this point are logged via slog, never written to the terminal the
// shell is drawing on.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Only the owning user may drive the shell.
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			slog.Warn("ipc accept failed", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection answers one request per connection: a single JSON line
// in, a single JSON line out.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		slog.Warn("ipc read failed", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handler.HandleCommand(req)
	if resp == nil {
		resp = NewErrorResponse("no response from shell")
	}

	respData, err := resp.Marshal()
	if err != nil {
		slog.Warn("ipc response marshal failed", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		slog.Warn("ipc response write failed", "error", err)
	}
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
