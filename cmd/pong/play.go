package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-pong/internal/audio"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/platform/tui"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

var (
	flagVsCPU  bool
	flagSound  bool
	flagVolume float64
	flagName   string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a match",
	Long: `Start a match in the terminal.

Controls:
  Up/Down    - Right paddle (player 1)
  W/S        - Left paddle (player 2, unless --vs-cpu)
  Space      - Launch the ball
  P          - Pause
  R          - Reset the match
  Q/Ctrl+C   - Quit

The result is saved when a player reaches the win score or when you quit
after at least one goal.

Examples:
  pong play --vs-cpu
  pong play --vs-cpu --difficulty hard --sound
  pong play --backend kinematic
  pong play --config ./my-pong.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagVsCPU, "vs-cpu", false, "CPU plays the left paddle")
	playCmd.Flags().BoolVar(&flagSound, "sound", false, "Play hit and goal sounds")
	playCmd.Flags().Float64Var(&flagVolume, "volume", 0.5, "Sound volume, 0 to 1")
	playCmd.Flags().StringVar(&flagName, "name", "", "Player 1 name stored with results")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	// The TUI owns the terminal, so logs only go to --log-file
	logger, err := newLogger("pong", io.Discard)
	if err != nil {
		fail("%v", err)
	}

	store := openStoreOrWarn(logger)
	if store != nil {
		defer store.Close()
	}

	var sound *audio.Player
	if flagSound {
		if sound, err = audio.New(flagVolume); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: sound disabled: %v\n", err)
			sound = nil
		}
	}

	width, height := terminalSize()

	opts := tui.Options{
		Match: cfg,
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: flagFPS,
			Seed:     flagSeed,
		},
		VsCPU:   flagVsCPU,
		Players: [2]string{flagName, ""},
		Store:   store,
		Sound:   sound,
		Logger:  logger,
	}

	if err := tui.Run(opts); err != nil {
		fail("running match: %v", err)
	}
}

// openStoreOrWarn opens the results database. Matches still run without it.
func openStoreOrWarn(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open results database: %v\n", err)
		logger.Warn("results disabled", "err", err)
		return nil
	}
	return store
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}
