// pong plays Pong in the terminal, locally or over SSH, on a choice of
// physics engines.
//
// Usage:
//
//	pong play               - Play a match (vs CPU or two players)
//	pong menu               - Pick a mode interactively
//	pong serve              - Start SSH server for remote play
//	pong sim                - Run a headless CPU vs CPU match
//	pong results            - Browse recorded matches
//	pong config             - Print the effective configuration
//	pong backends           - List physics backends
//
// Global flags:
//
//	--fps <rate>          - Set frame rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible launches
//	--db <path>           - Set database path (default: ~/.pong/results.db)
//	--config <path>       - Load a custom match config YAML
//	--log-level <level>   - debug, info, warn or error
//	--log-file <path>     - Rotate logs into a file
//	--difficulty <name>   - easy, normal or hard
//	--backend <name>      - box2d or kinematic
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/physics"

	// Import physics backends to register them
	_ "github.com/vovakirdan/tui-pong/internal/physics/box2d"
	_ "github.com/vovakirdan/tui-pong/internal/physics/kinematic"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagLogLevel   string
	flagDifficulty string
	flagBackend    string

	// Log file flags
	flagLogFile       string
	flagLogMaxSize    int
	flagLogMaxBackups int
	flagLogMaxAge     int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pong",
	Short: "Pong in your terminal",
	Long: `Pong is a two-paddle match played in the terminal, locally or over SSH.
The ball runs on a selectable physics engine (box2d or kinematic).

Available commands:
  play      - Play a match directly
  menu      - Interactive mode picker
  serve     - Start SSH server for remote play
  sim       - Run a headless CPU vs CPU match
  results   - Browse recorded matches
  config    - Print the effective configuration
  backends  - List physics backends

Examples:
  pong play --vs-cpu
  pong play --backend kinematic --difficulty hard
  pong serve --ssh :2222 --log-file ./pong.log
  pong sim --seconds 120 --save
  pong results --plain`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagFPS, "fps", 60, "Frame rate (frames per second)")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", "~/.pong/results.db", "Path to results database")
	pf.StringVar(&flagConfig, "config", "", "Path to custom match config YAML")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	pf.StringVar(&flagBackend, "backend", "", "Physics backend (overrides the config)")

	pf.StringVar(&flagLogFile, "log-file", "", "Write logs to a rotating file")
	pf.IntVar(&flagLogMaxSize, "log-max-size", 10, "Log file size in megabytes before rotation")
	pf.IntVar(&flagLogMaxBackups, "log-max-backups", 3, "Rotated log files to keep")
	pf.IntVar(&flagLogMaxAge, "log-max-age", 28, "Days to keep rotated log files")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(backendsCmd)
}

// loadConfig loads the match config and applies --difficulty and --backend.
func loadConfig() (config.PongConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.PongConfig{}, err
	}

	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.PongConfig{}, err
	}
	config.ApplyPreset(&cfg, preset)

	if flagBackend != "" {
		if !physics.Exists(flagBackend) {
			return config.PongConfig{}, fmt.Errorf("%w %q (registered: %s)",
				physics.ErrUnknownBackend, flagBackend, strings.Join(physics.List(), ", "))
		}
		cfg.Physics.Backend = flagBackend
	}

	return cfg, cfg.Validate()
}

// newLogger builds the command logger. With --log-file logs go to a
// rotating file; otherwise they go to fallback.
func newLogger(prefix string, fallback io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	w := fallback
	if flagLogFile != "" {
		if err := os.MkdirAll(filepath.Dir(flagLogFile), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		w = &lumberjack.Logger{
			Filename:   flagLogFile,
			MaxSize:    flagLogMaxSize,
			MaxBackups: flagLogMaxBackups,
			MaxAge:     flagLogMaxAge,
		}
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	}), nil
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
