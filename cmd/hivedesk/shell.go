package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"

	"github.com/beenode/hivedesk/internal/config"
	"github.com/beenode/hivedesk/internal/ipc"
	"github.com/beenode/hivedesk/internal/runtimepath"
	"github.com/beenode/hivedesk/internal/shell"
	"github.com/beenode/hivedesk/internal/store"
)

func runShell(args []string) int {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hivedesk shell [--config <path>]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the terminal desktop shell.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file (default: $HIVEDESK_CONFIG or ~/.config/hivedesk/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "shell takes no arguments")
		fs.Usage()
		return 2
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "the shell requires an interactive terminal (stdin/stdout must be TTYs)")
		return 1
	}

	cfgPath := *configPath
	if cfgPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cfgPath = path
	}

	cfg, err := config.LoadFromPath(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
	}
	if closeLog != nil {
		defer closeLog()
	}

	shell.ApplyColorProfile(cfg.ColorProfile)

	cols, rows := terminalSize()
	slog.Info("shell starting", "version", version, "cols", cols, "rows", rows)

	sizesPath, err := store.DefaultPath()
	if err != nil {
		slog.Warn("size store unavailable, preferences will not persist", "error", err)
	}
	sizes := store.Open(sizesPath)

	m := shell.New(cfg, cfgPath, sizes)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Degraded subsystems log a warning and the shell keeps running.
	srv, err := ipc.NewServer(cfg.Socket, shell.NewHandler(prog))
	if err != nil {
		slog.Warn("control socket unavailable", "error", err)
	} else if err := srv.Start(); err != nil {
		slog.Warn("control socket unavailable", "error", err)
	} else {
		slog.Info("control socket listening", "path", srv.SocketPath())
		defer srv.Stop()
	}

	stopWatch, err := watchConfig(prog, cfgPath)
	if err != nil {
		slog.Warn("config watch unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	if _, err := prog.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// terminalSize probes the controlling terminal, falling back to 80x24 when
// the probe fails.
func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

// setupLogging routes slog to a file. The alternate screen owns the terminal
// while the shell runs, so nothing may log to stdout or stderr.
func setupLogging(cfg *config.Config) (func(), error) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if !cfg.Logging.Enabled {
		slog.SetDefault(discard)
		return nil, nil
	}

	path := cfg.Logging.File
	if path == "" {
		p, err := runtimepath.LogPath()
		if err != nil {
			slog.SetDefault(discard)
			return nil, err
		}
		path = p
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.SetDefault(discard)
		return nil, err
	}

	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return func() { f.Close() }, nil
}

// watchConfig reloads the config file on change and hands the validated
// result to the running shell. The directory is watched rather than the file
// so editors that replace-by-rename keep triggering events.
func watchConfig(prog *tea.Program, path string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		var last time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				// Editors fire bursts of events per save.
				if time.Since(last) < 200*time.Millisecond {
					continue
				}
				last = time.Now()

				cfg, err := config.LoadFromPath(path)
				if err != nil {
					slog.Warn("config reload skipped", "error", err)
					continue
				}
				prog.Send(shell.ConfigReloadedMsg{Config: cfg})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "error", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
