package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/classtimer/internal/timer"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume the current period",
	Long: `Start the current period, or resume it when paused. The countdown keeps
going in storage; open it with 'classtimer run' or check it with 'classtimer status'.`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		engine := a.engine(newLinePresenter(os.Stdout, false), timer.IdleClock)
		defer engine.Close()

		engine.Start()
		snapshot := engine.Snapshot()
		if snapshot.State != timer.StateRunning {
			printStatus(os.Stdout, snapshot)
			return
		}
		fmt.Printf("▶️  Period %d of %d running: %s left\n",
			snapshot.Session.PeriodIndex+1, snapshot.TotalPeriods, formatClock(snapshot.Session.Remaining))
	}),
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running period",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		engine := a.engine(newLinePresenter(os.Stdout, false), timer.IdleClock)
		defer engine.Close()

		if engine.Snapshot().State != timer.StateRunning {
			fmt.Println("Nothing is running")
			return
		}

		engine.Pause()
		snapshot := engine.Snapshot()
		if snapshot.State != timer.StatePaused {
			printStatus(os.Stdout, snapshot)
			return
		}
		fmt.Printf("⏸️  Period %d of %d paused: %s left\n",
			snapshot.Session.PeriodIndex+1, snapshot.TotalPeriods, formatClock(snapshot.Session.Remaining))
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Abandon the session and go back to the first period",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		engine := a.engine(newLinePresenter(io.Discard, false), timer.IdleClock)
		defer engine.Close()

		engine.Reset()
		snapshot := engine.Snapshot()
		fmt.Printf("⏹️  Reset to period 1 of %d (%s)\n", snapshot.TotalPeriods, formatClock(snapshot.Session.Remaining))
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current period and time left",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		var out io.Writer = os.Stdout
		if jsonOutput {
			out = io.Discard
		}
		engine := a.engine(newLinePresenter(out, false), timer.IdleClock)
		defer engine.Close()

		snapshot := engine.Snapshot()
		if jsonOutput {
			if err := renderStatusJSON(os.Stdout, snapshot); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
		printStatus(os.Stdout, snapshot)
	}),
}

func init() {
	statusCmd.Flags().Bool("json", false, "Output as JSON")
}

// statusJSON is the machine-readable form of a snapshot
type statusJSON struct {
	State            string `json:"state"`
	Period           int    `json:"period"`
	TotalPeriods     int    `json:"total_periods"`
	PeriodSeconds    int    `json:"period_seconds"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Remaining        string `json:"remaining"`
	Paused           bool   `json:"paused"`
}

func newStatusJSON(snapshot timer.Snapshot) statusJSON {
	session := snapshot.Session
	return statusJSON{
		State:            snapshot.State.String(),
		Period:           session.PeriodIndex + 1,
		TotalPeriods:     snapshot.TotalPeriods,
		PeriodSeconds:    int(session.PeriodDuration / time.Second),
		RemainingSeconds: int(session.Remaining / time.Second),
		Remaining:        formatClock(session.Remaining),
		Paused:           session.Paused,
	}
}

func renderStatusJSON(w io.Writer, snapshot timer.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(newStatusJSON(snapshot)); err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	return nil
}

func printStatus(w io.Writer, snapshot timer.Snapshot) {
	session := snapshot.Session
	period := session.PeriodIndex + 1

	switch snapshot.State {
	case timer.StateRunning:
		fmt.Fprintf(w, "⏱️  Period %d of %d running\n", period, snapshot.TotalPeriods)
		fmt.Fprintf(w, "Time left: %s of %s\n", formatClock(session.Remaining), formatClock(session.PeriodDuration))
	case timer.StatePaused:
		fmt.Fprintf(w, "⏸️  Period %d of %d paused\n", period, snapshot.TotalPeriods)
		fmt.Fprintf(w, "Time left: %s of %s\n", formatClock(session.Remaining), formatClock(session.PeriodDuration))
	case timer.StateExpired:
		// The index already points at the period that chains next
		fmt.Fprintf(w, "⏰ Period %d of %d is up\n", session.PeriodIndex, snapshot.TotalPeriods)
	case timer.StateAllComplete:
		fmt.Fprintf(w, "✅ All %d periods complete\n", snapshot.TotalPeriods)
	default:
		fmt.Fprintf(w, "No period running. Period %d of %d is ready (%s)\n",
			period, snapshot.TotalPeriods, formatClock(session.Remaining))
	}
}

// formatClock formats a duration as MM:SS
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
