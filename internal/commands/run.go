package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/classtimer/internal/timer"
	"github.com/balkashynov/classtimer/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the countdown",
	Long: `Open the interactive countdown. A saved session is picked up where it left off.

Examples:
  classtimer run                 # Interactive timer
  classtimer run --no-ui --start # Print the countdown until Ctrl+C`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		noUI, _ := cmd.Flags().GetBool("no-ui")
		start, _ := cmd.Flags().GetBool("start")

		if noUI {
			runHeadless(cmd, a, start)
			return
		}

		display := tui.NewDisplay()
		engine := a.engine(display, timer.SystemClock)
		defer engine.Close()

		if start {
			engine.Start()
		}
		if err := tui.RunTimerTUI(engine, display, a.settings, a.kv); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}),
}

// runHeadless prints frames until interrupted. The session stays saved on exit.
func runHeadless(cmd *cobra.Command, a *app, start bool) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := a.engine(newLinePresenter(os.Stdout, true), timer.SystemClock)
	if start {
		engine.Start()
	}

	<-ctx.Done()
	engine.Close()

	snapshot := engine.Snapshot()
	fmt.Println()
	printStatus(os.Stdout, snapshot)
}

func init() {
	runCmd.Flags().Bool("no-ui", false, "Print the countdown as plain lines instead of the interactive UI")
	runCmd.Flags().Bool("start", false, "Start or resume the current period right away")
}
