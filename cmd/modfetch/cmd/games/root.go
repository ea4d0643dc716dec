package games

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "games",
	Short: "The 'games' subcommand lists and refreshes the supported games cache.",
}
