// Package cli implements the blockplan command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/planwright/blockplan/pkg/buildinfo"
	"github.com/planwright/blockplan/pkg/cache"
	"github.com/planwright/blockplan/pkg/pipeline"
	"github.com/planwright/blockplan/pkg/rules"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "blockplan"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "blockplan",
		Short:        "Blockplan solves declarative room layouts",
		Long:         `Blockplan turns per-room-type placement rules and a room inventory into a non-overlapping floor layout with door placements, solved as a constraint program.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the solve cache backend.
type cacheFlags struct {
	noCache  bool
	redisURL string
	mongoURI string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the solve cache")
	cmd.Flags().StringVar(&f.redisURL, "redis-url", "", "use Redis as the solve cache (redis://...)")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "use MongoDB as the solve cache (mongodb://...)")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cmd *cobra.Command, flags cacheFlags) (*pipeline.Runner, error) {
	store, err := newCache(cmd, flags)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(cmd *cobra.Command, flags cacheFlags) (cache.Cache, error) {
	switch {
	case flags.noCache:
		return cache.NewNullCache(), nil
	case flags.redisURL != "":
		return cache.NewRedisCache(cmd.Context(), flags.redisURL)
	case flags.mongoURI != "":
		return cache.NewMongoCache(cmd.Context(), flags.mongoURI, appName, "solves")
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/blockplan/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag Parsing Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return strings.Split(s, ",")
}

// parseInventory parses repeated "type=count" flags into an inventory map.
func parseInventory(pairs []string) (map[rules.RoomType]int, error) {
	inv := make(map[rules.RoomType]int, len(pairs))
	for _, pair := range pairs {
		name, count, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid room spec %q (want type=count)", pair)
		}
		var n int
		if _, err := fmt.Sscanf(count, "%d", &n); err != nil {
			return nil, fmt.Errorf("invalid count in %q: %w", pair, err)
		}
		inv[rules.RoomType(strings.TrimSpace(name))] += n
	}
	return inv, nil
}
