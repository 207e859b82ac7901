// Package main implements gridboard, a terminal dashboard whose widgets are
// laid out on a collision-free grid and rearranged by dragging, resizing and
// dropping new widgets from a palette.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode    bool
	ephemeral    bool
	noAnimations bool
	asciiOnly    bool
	themeName    string
	boardName    string
	backend      string
	redisAddr    string
	columns      int
	compactMode  string
	noDrag       bool
	noResize     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridboard",
		Short: "Terminal dashboard on a draggable grid",
		Long: `gridboard - a terminal dashboard on a draggable grid

Widgets sit on a column grid that never lets them overlap. Drag a widget by
its title bar, resize it from a corner, or drag a new one in from the
palette. Boards are saved as you go and stay in sync across sessions that
share a store.`,
		Example: `  # Open the default board
  gridboard

  # Open a named board without saving anything
  gridboard --board ops --ephemeral

  # Share boards through redis
  gridboard --backend redis --redis-addr localhost:6379

  # Serve boards over SSH
  gridboard ssh --port 2222

  # Serve the layout API
  gridboard api --addr :8080`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocal(cmd.Context())
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debugMode, "debug", false, "Enable debug logging")
	flags.BoolVar(&ephemeral, "ephemeral", false, "Keep boards in memory only")
	flags.BoolVar(&noAnimations, "no-animations", false, "Disable drop and morph animations")
	flags.BoolVar(&asciiOnly, "ascii", false, "Draw with ASCII characters only")
	flags.StringVar(&themeName, "theme", "", "Color theme")
	flags.StringVarP(&boardName, "board", "b", "", "Board to open")
	flags.StringVar(&backend, "backend", "", "Storage backend: file, redis or memory")
	flags.StringVar(&redisAddr, "redis-addr", "", "Redis address for the redis backend")
	flags.IntVar(&columns, "columns", 0, "Grid columns on wide terminals")
	flags.StringVar(&compactMode, "compact", "", "Compaction: vertical, horizontal or none")
	flags.BoolVar(&noDrag, "no-drag", false, "Disable dragging widgets")
	flags.BoolVar(&noResize, "no-resize", false, "Disable resizing widgets")

	var sshPort, sshHost, sshKeyPath, sshBoard string

	sshCmd := &cobra.Command{
		Use:   "ssh",
		Short: "Serve boards over SSH",
		Long: `Serve boards over SSH

Every connection gets its own session. The board is picked from the --board
flag, then an "attach <board>" command, then the SSH user name. Sessions on
the same board see each other's changes. A host key is generated if none
exists.`,
		Example: `  # Start on the default port
  gridboard ssh

  # Connect to the ops board
  ssh -p 2222 -t localhost attach ops`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSSHServer(cmd.Context(), sshHost, sshPort, sshKeyPath, sshBoard)
		},
	}
	sshCmd.Flags().StringVar(&sshPort, "port", "2222", "SSH server port")
	sshCmd.Flags().StringVar(&sshHost, "host", "localhost", "SSH server host")
	sshCmd.Flags().StringVar(&sshKeyPath, "key-path", "", "Path to SSH host key (auto-generated if not specified)")
	sshCmd.Flags().StringVar(&sshBoard, "default-board", "", "Board every connection opens")

	var apiAddr string

	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Serve the HTTP layout API",
		Long: `Serve the HTTP layout API

Scripts can read boards and move, resize, add and remove widgets. Every
change goes through the same layout rules as the interactive grid.`,
		Example: `  gridboard api --addr :8080
  curl -X POST localhost:8080/boards/default/move -d '{"id":"...","x":4,"y":0}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPIServer(cmd.Context(), apiAddr)
		},
	}
	apiCmd.Flags().StringVar(&apiAddr, "addr", "localhost:8080", "Listen address")

	rootCmd.AddCommand(sshCmd, apiCmd, newConfigCmd(), newKeybindsCmd(), newLayoutCmd())

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}
