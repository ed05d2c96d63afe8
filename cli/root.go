// Package cli provides the command-line interface for the topicsync daemon.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags
var (
	dataDir string
	addr    string
	dev     bool
)

// defaultDataDir returns the default data directory ($HOME/data/topicsync).
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, "data", "topicsync")
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "topicsyncd",
		Short: "Transactional topic state machine server",
		Long: `topicsyncd serves a transactional, reactively-propagating key/value
store whose values are typed topics and whose mutations are invertible
changes.

Features include:
  - Typed topics (string, int, float, bool, set, list, dict, event, generic)
  - Invertible changes with transactional rollback on listener failure
  - Cascading listener propagation with cycle detection
  - Undo/redo over recorded transitions
  - Real-time sync to clients via WebSocket
  - RPC-style services alongside the sync channel`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate("topicsyncd {{.Version}}\n")
	root.Version = versionString()
	root.PersistentFlags().StringVar(&dataDir, "data", defaultDataDir(), "Data directory")
	root.PersistentFlags().StringVar(&addr, "addr", ":8080", "Server address")
	root.PersistentFlags().BoolVar(&dev, "dev", false, "Development mode")

	root.AddCommand(
		NewServe(),
	)

	if err := fang.Execute(ctx, root,
		fang.WithVersion(Version),
		fang.WithCommit(Commit),
	); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(iconCross+" "+err.Error()))
		return err
	}
	return nil
}

func versionString() string {
	if strings.TrimSpace(Version) != "" && Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
	}
	return "dev"
}
