package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/core"
	"github.com/vovakirdan/tui-pong/internal/match"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

// simServeDelay keeps a headless match going when the config waits for a
// manual launch.
const simServeDelay = 1.0

var (
	flagSimSeconds float64
	flagSimSave    bool
	flagSimFixed   bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a headless CPU vs CPU match",
	Long: `Simulate a match between two CPU paddles without a terminal UI.

The match runs for --seconds of simulated time or until a player reaches
the win score, stepping at --fps frames per second. Goals are logged at
info, hits at debug.
Launches are random unless --fixed is given, so rallies vary with --seed.

Examples:
  pong sim
  pong sim --seconds 300 --backend kinematic --log-level debug
  pong sim --seed 42 --save`,
	Args: cobra.NoArgs,
	Run:  runSim,
}

func init() {
	simCmd.Flags().Float64Var(&flagSimSeconds, "seconds", 60, "Simulated seconds to run")
	simCmd.Flags().BoolVar(&flagSimSave, "save", false, "Save the result to the database")
	simCmd.Flags().BoolVar(&flagSimFixed, "fixed", false, "Keep the configured launch mode")
}

func runSim(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	if !flagSimFixed {
		cfg.Launch.Mode = config.LaunchRandom
	}
	if cfg.Serve.AutoLaunchDelay == 0 {
		cfg.Serve.AutoLaunchDelay = simServeDelay
	}

	logger, err := newLogger("pong-sim", os.Stderr)
	if err != nil {
		fail("%v", err)
	}

	m, err := match.New(cfg, match.WithLogger(logger), match.WithSeed(flagSeed))
	if err != nil {
		fail("%v", err)
	}

	timedOut := simulate(m, flagSimSeconds, flagFPS)
	s := m.Summary()

	fmt.Printf("Backend:       %s (seed %d)\n", s.Backend, s.Seed)
	fmt.Printf("Score:         %d - %d\n", s.Score1, s.Score2)
	if s.Winner.Valid() {
		fmt.Printf("Winner:        %s\n", s.Winner)
	}
	fmt.Printf("Hits:          %d - %d\n", s.Hits1, s.Hits2)
	fmt.Printf("Longest rally: %d\n", s.LongestRally)
	fmt.Printf("Simulated:     %.2fs (%d ticks)\n", s.Duration, s.Ticks)

	if !flagSimSave {
		return
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening results database: %v", err)
	}
	defer store.Close()

	r := storage.FromSummary(s, "sim", "CPU", "CPU")
	if timedOut {
		r.EndReason = storage.EndTimeout
	}
	id, err := store.SaveMatch(r)
	if err != nil {
		logger.Error("could not save result", "err", err)
		return
	}
	fmt.Printf("Saved:         %s\n", id)
}

// simulate drives both paddles with CPUs and steps the match at fps until
// it is over or seconds of frames have run. It reports whether time ran out.
func simulate(m *match.Match, seconds float64, fps int) bool {
	if fps <= 0 {
		fps = 60
	}
	dt := 1 / float64(fps)
	skill := m.Config().CPU.Skill
	cpus := []*match.CPU{
		match.NewCPU(core.Player1, skill),
		match.NewCPU(core.Player2, skill),
	}

	if m.State() == match.AtRest {
		m.LaunchBall()
	}

	frames := int(math.Ceil(seconds * float64(fps)))
	for range frames {
		if m.State() == match.Over {
			return false
		}
		for _, c := range cpus {
			c.Drive(m, dt)
		}
		m.Update(dt)
	}
	return m.State() != match.Over
}
