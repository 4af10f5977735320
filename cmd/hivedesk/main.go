package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/beenode/hivedesk/internal/config"
	"github.com/beenode/hivedesk/internal/ipc"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		os.Exit(runShell(nil))
	}

	switch os.Args[1] {
	case "shell":
		os.Exit(runShell(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "open":
		os.Exit(runWindowVerb("open", os.Args[2:], (*ipc.Client).OpenWindow,
			"Open a window by kind, raising it when already open."))
	case "close":
		os.Exit(runWindowVerb("close", os.Args[2:], (*ipc.Client).CloseWindow,
			"Close a window by kind."))
	case "focus":
		os.Exit(runWindowVerb("focus", os.Args[2:], (*ipc.Client).FocusWindow,
			"Focus an open window, restoring it from the dock when minimized."))
	case "minimize":
		os.Exit(runWindowVerb("minimize", os.Args[2:], (*ipc.Client).MinimizeWindow,
			"Minimize an open window to the dock."))
	case "maximize":
		os.Exit(runWindowVerb("maximize", os.Args[2:], (*ipc.Client).ToggleMaximize,
			"Maximize a window, or restore it when already maximized."))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "resize":
		os.Exit(runResize(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version":
		fmt.Printf("hivedesk %s\n", version)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hivedesk [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Running hivedesk without a command starts the shell.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  shell               Run the terminal desktop shell (default)")
	fmt.Fprintln(w, "  status              Show the running shell's status")
	fmt.Fprintln(w, "  list                List windows and their state")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  open <kind>         Open a window")
	fmt.Fprintln(w, "  close <kind>        Close a window")
	fmt.Fprintln(w, "  focus <kind>        Focus a window")
	fmt.Fprintln(w, "  minimize <kind>     Minimize a window to the dock")
	fmt.Fprintln(w, "  maximize <kind>     Toggle a window's maximize state")
	fmt.Fprintln(w, "  move <kind> <x> <y> Move a window (cells; clamped)")
	fmt.Fprintln(w, "  resize <kind> <w> <h>  Resize a window (cells; clamped)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config path         Print the config file location")
	fmt.Fprintln(w, "  config show         Print the effective configuration")
	fmt.Fprintln(w, "  config validate     Validate the configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp                 Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "  version             Print the version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'hivedesk <command> --help' for command-specific options.")
}

// controlClient builds an IPC client honoring the config's socket override.
func controlClient() *ipc.Client {
	if cfg, err := config.Load(); err == nil && cfg.Socket != "" {
		return ipc.NewClientAt(cfg.Socket)
	}
	return ipc.NewClient()
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hivedesk status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the running shell's status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := controlClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("shell_running:  %v\n", status.ShellRunning)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Printf("open_windows:   %d\n", status.OpenWindows)
	fmt.Printf("focused_window: %s\n", status.FocusedWindow)
	fmt.Printf("viewport:       %dx%d\n", status.ViewportCols, status.ViewportRows)
	fmt.Printf("node_url:       %s\n", status.NodeURL)
	fmt.Printf("node_online:    %v\n", status.NodeOnline)
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hivedesk list [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List every window with its state and geometry.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output window details as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := controlClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		out, err := json.MarshalIndent(data.Windows, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	for _, w := range data.Windows {
		state := "closed"
		switch {
		case w.Maximized:
			state = "maximized"
		case w.Minimized:
			state = "minimized"
		case w.Open:
			state = "open"
		}
		marker := " "
		if w.Focused {
			marker = "*"
		}
		fmt.Printf("%s %-10s %-9s %4.0f,%-4.0f %3.0fx%-3.0f %s\n",
			marker, w.Kind, state, w.X, w.Y, w.Width, w.Height, w.Title)
	}
	return 0
}

// runWindowVerb handles the single-argument window commands, which differ
// only in the client call they make.
func runWindowVerb(name string, args []string, send func(*ipc.Client, string) error, describe string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hivedesk %s <kind>\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, describe)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires exactly one <kind>\n", name)
		fs.Usage()
		return 2
	}

	if err := send(controlClient(), fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMove(args []string) int {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hivedesk move <kind> <x> <y>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move a window to the given cell position. The shell clamps the")
		fmt.Fprintln(os.Stderr, "position so the window stays inside the viewport margins.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "move requires <kind> <x> <y>")
		fs.Usage()
		return 2
	}

	x, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid x %q\n", fs.Arg(1))
		return 2
	}
	y, err := strconv.ParseFloat(fs.Arg(2), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid y %q\n", fs.Arg(2))
		return 2
	}

	if err := controlClient().MoveWindow(fs.Arg(0), x, y); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runResize(args []string) int {
	fs := flag.NewFlagSet("resize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hivedesk resize <kind> <width> <height>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Resize a window. The shell clamps the size to the layout minimum")
		fmt.Fprintln(os.Stderr, "and the viewport maximum.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "resize requires <kind> <width> <height>")
		fs.Usage()
		return 2
	}

	w, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid width %q\n", fs.Arg(1))
		return 2
	}
	h, err := strconv.ParseFloat(fs.Arg(2), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid height %q\n", fs.Arg(2))
		return 2
	}

	if err := controlClient().ResizeWindow(fs.Arg(0), w, h); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
