package games

import (
	"log/slog"

	"modfetch/cmd/modfetch/globals"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the games cache from the catalog landing page.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())
		cat, err := value.Catalog.Get(cmd.Context(), true)
		if err != nil {
			return err
		}
		slog.Info("games cache refreshed", "count", len(cat.Entries), "path", value.Catalog.Path)
		return nil
	},
}
