package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-pong/internal/platform/tui"
	"github.com/vovakirdan/tui-pong/internal/storage"
)

var (
	flagPlain bool
	flagLimit int
	flagClear bool
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Browse recorded matches",
	Long: `Show recent match results, newest first, with totals.

In a terminal this opens a scrollable table; --plain (or a redirected
stdout) prints text instead.

Examples:
  pong results
  pong results --plain --limit 20
  pong results --clear`,
	Args: cobra.NoArgs,
	Run:  runResults,
}

func init() {
	resultsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print results as text")
	resultsCmd.Flags().IntVar(&flagLimit, "limit", tui.DefaultResultsLimit, "Maximum matches to show")
	resultsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all recorded matches")
}

func runResults(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening results database: %v", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearMatches(); err != nil {
			fail("clearing results: %v", err)
		}
		fmt.Println("All results deleted.")
		return
	}

	if !flagPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := terminalSize()
		if err := tui.RunResults(store, flagLimit, width, height); err != nil {
			fail("%v", err)
		}
		return
	}

	if err := printResults(store, flagLimit); err != nil {
		fail("%v", err)
	}
}

// printResults writes recent matches as an aligned text table.
func printResults(store *storage.Store, limit int) error {
	results, err := store.RecentMatches(limit)
	if err != nil {
		return fmt.Errorf("retrieving results: %w", err)
	}

	fmt.Println("Recent Matches")
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'pong play --vs-cpu' to record the first one!")
		return nil
	}

	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, tui.ResultColumns)
	for _, r := range results {
		rows = append(rows, tui.ResultRow(r))
	}

	widths := make([]int, len(tui.ResultColumns))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	for i, row := range rows {
		printRow(row, widths)
		if i == 0 {
			dashes := make([]string, len(row))
			for j := range row {
				dashes[j] = strings.Repeat("-", widths[j])
			}
			printRow(dashes, widths)
		}
	}

	totals, err := store.Totals()
	if err != nil {
		return fmt.Errorf("retrieving totals: %w", err)
	}
	fmt.Println()
	fmt.Println(tui.FormatTotals(totals))
	return nil
}

func printRow(row []string, widths []int) {
	var b strings.Builder
	b.WriteString(" ")
	for i, cell := range row {
		fmt.Fprintf(&b, " %-*s", widths[i], cell)
	}
	fmt.Println(strings.TrimRight(b.String(), " "))
}
