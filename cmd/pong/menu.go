package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/audio"
	"github.com/vovakirdan/tui-pong/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a mode interactively",
	Long: `Start Pong with a mode picker.

Use arrow keys or j/k to navigate, Enter to select. Esc in a match returns
to the menu.

Examples:
  pong menu
  pong menu --fps 30 --sound
  pong menu --db ./results.db`,
	Args: cobra.NoArgs,
	Run:  runMenu,
}

func init() {
	menuCmd.Flags().BoolVar(&flagSound, "sound", false, "Play hit and goal sounds")
	menuCmd.Flags().Float64Var(&flagVolume, "volume", 0.5, "Sound volume, 0 to 1")
	menuCmd.Flags().StringVar(&flagName, "name", "", "Player 1 name stored with results")
}

func runMenu(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

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

	err = tui.RunSession(tui.SessionConfig{
		Match:      cfg,
		Store:      store,
		Sound:      sound,
		Logger:     logger,
		Username:   flagName,
		TwoPlayers: true,
		TickRate:   flagFPS,
		Seed:       flagSeed,
		Width:      width,
		Height:     height,
	})
	if err != nil {
		fail("%v", err)
	}
}
