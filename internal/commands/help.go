package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show comprehensive help for classtimer",
	Long:  `Display detailed help for all classtimer commands and flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		showCustomHelp()
	},
}

func showCustomHelp() {
	fmt.Print(`
 ██████╗██╗      █████╗ ███████╗███████╗
██╔════╝██║     ██╔══██╗██╔════╝██╔════╝
██║     ██║     ███████║███████╗███████╗
██║     ██║     ██╔══██║╚════██║╚════██║
╚██████╗███████╗██║  ██║███████║███████║
 ╚═════╝╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝

classtimer - countdown for class periods

COMMANDS:

  run                     Open the interactive countdown
    --no-ui               Print the countdown as plain lines until Ctrl+C
    --start               Start or resume right away

    Keys:
      space/s       Start or resume
      p             Pause
      r             Reset to period 1
      e             Edit settings
      t             Toggle dark/light theme
      q/esc         Quit (the session keeps running)

  start                   Start or resume the current period
  pause                   Pause the running period
  reset                   Go back to period 1 at full length
  status                  Show the current period and time left
    --json                JSON output

  settings show           Show the saved schedule
  settings set            Change the schedule (resets the timer)
    --schedule            Comma-separated minutes, up to 8 periods
    --default             Minutes for a single period when the schedule is empty
    --vibrate             Vibrate when a period runs out

    Example:
      classtimer settings set --schedule 25,5,25,5,30

  config init             Write a config file with default values
    --force               Overwrite an existing file
  config path             Print the config file location

  version                 Print version information
  help                    Show this help

GLOBAL FLAGS:
  --db                    SQLite database path
  --config                YAML config file path

`)
}
