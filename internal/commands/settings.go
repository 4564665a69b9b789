package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/classtimer/internal/parser"
	"github.com/balkashynov/classtimer/internal/settings"
	"github.com/balkashynov/classtimer/internal/timer"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the period schedule",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved settings",
	Args:  cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		printSettings(os.Stdout, a.settings.Current())
	}),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the settings",
	Long: `Change the settings. Flags that are not given keep their saved value.
Saving resets the timer to the first period.

Examples:
  classtimer settings set --schedule 25,5,25,5,30
  classtimer settings set --schedule "" --default 45
  classtimer settings set --vibrate=false`,
	Args: cobra.NoArgs,
	Run: withApp(func(cmd *cobra.Command, args []string, a *app) {
		input := settingsInput(cmd, a.settings.Current())

		engine := a.engine(newLinePresenter(io.Discard, false), timer.IdleClock)
		defer engine.Close()

		updated, err := engine.UpdateSettings(input)
		if err != nil {
			var validationErr *settings.ValidationError
			if errors.As(err, &validationErr) {
				fmt.Printf("Error: %v\n", validationErr)
			} else {
				fmt.Printf("Error: failed to save settings: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Println("✅ Settings saved. Timer reset to period 1.")
		printSettings(os.Stdout, updated)
	}),
}

// settingsInput starts from current and overrides whatever flags were given
func settingsInput(cmd *cobra.Command, current settings.Settings) settings.Input {
	input := settings.Input{
		Schedule:        parser.FormatSchedule(current.ScheduleMinutes()),
		DefaultDuration: strconv.Itoa(int(current.DefaultDuration / time.Minute)),
		Vibrate:         current.VibrateOnExpire,
	}

	if cmd.Flags().Changed("schedule") {
		input.Schedule, _ = cmd.Flags().GetString("schedule")
	}
	if cmd.Flags().Changed("default") {
		input.DefaultDuration, _ = cmd.Flags().GetString("default")
	}
	if cmd.Flags().Changed("vibrate") {
		input.Vibrate, _ = cmd.Flags().GetBool("vibrate")
	}
	return input
}

func printSettings(w io.Writer, s settings.Settings) {
	schedule := parser.FormatSchedule(s.ScheduleMinutes())
	if schedule == "" {
		schedule = "(none, single period)"
	}
	vibrate := "off"
	if s.VibrateOnExpire {
		vibrate = "on"
	}

	fmt.Fprintf(w, "Schedule:        %s\n", schedule)
	fmt.Fprintf(w, "Default period:  %d minutes\n", int(s.DefaultDuration/time.Minute))
	fmt.Fprintf(w, "Vibrate:         %s\n", vibrate)

	effective := s.Effective()
	fmt.Fprintf(w, "Periods:         %d\n", len(effective))
	for i, d := range effective {
		fmt.Fprintf(w, "  %d. %s\n", i+1, formatClock(d))
	}
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("schedule", "", fmt.Sprintf("Comma-separated minutes per period, up to %d (empty for a single period)", parser.MaxPeriods))
	cmd.Flags().String("default", "", "Minutes for the single period used when the schedule is empty")
	cmd.Flags().Bool("vibrate", true, "Vibrate when a period runs out")
}

func init() {
	addSettingsFlags(settingsSetCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
