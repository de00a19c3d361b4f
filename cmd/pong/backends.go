package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/physics"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List physics backends",
	Long:  `Shows the physics engines registered in this build.`,
	Args:  cobra.NoArgs,
	Run:   runBackends,
}

func runBackends(_ *cobra.Command, _ []string) {
	names := physics.List()
	if len(names) == 0 {
		fmt.Println("No physics backends available.")
		return
	}

	current := config.Default().Physics.Backend
	if cfg, err := loadConfig(); err == nil {
		current = cfg.Physics.Backend
	}

	fmt.Println("Physics backends:")
	fmt.Println()
	for _, name := range names {
		marker := " "
		if name == current {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, name)
	}

	fmt.Println()
	fmt.Println("Select one with --backend <name> or physics.backend in the config.")
}
