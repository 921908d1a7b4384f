package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tomato/internal/core/model"
	"tomato/internal/log"
	"tomato/internal/ui/terminal"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the timer in the terminal",
	Long: `Run the timer in the terminal.

Keys: space starts or pauses, s restarts the current session, r resets
everything and q quits. --repeat 0 repeats sets until you quit.`,
	Args: cobra.NoArgs,
	RunE: runTerminal,
}

var (
	runPaused         bool
	runMute           bool
	runExitOnComplete bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runPaused, "paused", false, "Wait for space before starting the first session")
	runCmd.Flags().BoolVar(&runMute, "mute", false, "Ring the terminal bell only")
	runCmd.Flags().BoolVar(&runExitOnComplete, "exit-on-complete", true, "Quit after the last set")
}

func runTerminal(cmd *cobra.Command, _ []string) error {
	settings := loaded.settings
	logger := log.WithComponent("main")

	out := cmd.OutOrStdout()
	inPlace := false
	if file, ok := out.(*os.File); ok {
		inPlace = term.IsTerminal(int(file.Fd()))
	}

	player := newPlayer(settings, runMute)
	renderer := terminal.NewRenderer(out, player, inPlace)
	keeper := newKeeper(settings, renderer, renderer)
	defer keeper.Close()

	config, _ := sessionFromFlags(cmd, settings)
	if err := keeper.ApplyConfiguration(config); err != nil {
		return exitError{code: 2, err: err}
	}

	options := terminalOptions(config, runExitOnComplete)
	options.Events = keeper.Subscribe(16)
	options.Logger = &logger
	session := terminal.NewSession(cmd.InOrStdin(), keeper, renderer, options)

	fmt.Fprintln(out, terminal.Help())
	keeper.Render()
	if !runPaused {
		if err := keeper.Toggle(); err != nil {
			return err
		}
	}

	if err := session.Run(cmd.Context()); err != nil {
		return err
	}

	snapshot := keeper.Snapshot()
	logger.Debug().
		Str("state", snapshot.State.String()).
		Int("sets", snapshot.Progress.Completed).
		Msg("terminal session ended")
	return nil
}

// terminalOptions only exits on completion for finite runs; an unbounded run
// never completes.
func terminalOptions(config model.SessionConfig, exitOnComplete bool) terminal.Options {
	return terminal.Options{ExitOnComplete: exitOnComplete && !config.Infinite()}
}
