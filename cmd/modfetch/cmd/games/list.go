package games

import (
	"fmt"

	"modfetch/cmd/modfetch/globals"
	"modfetch/cmd/modfetch/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	listSearch  string
	listLimit   int
	listRefresh bool
)

func init() {
	flags := listCmd.Flags()
	flags.StringVarP(&listSearch, "search", "s", "", "filter by english or chinese name")
	flags.IntVarP(&listLimit, "limit", "n", 0, "show at most n games")
	flags.BoolVar(&listRefresh, "refresh", false, "refresh the cache first")
	RootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported games.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())

		cat, err := value.Catalog.Get(cmd.Context(), listRefresh || value.Config.RefreshGamesCache)
		if err != nil {
			return err
		}

		entries := cat.Filter(listSearch)
		total := len(entries)
		if listLimit > 0 && len(entries) > listLimit {
			entries = entries[:listLimit]
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"AppId", "Slug", "English", "Chinese"})
		for _, e := range entries {
			english, chinese := e.Names()
			t.AppendRow(table.Row{e.AppId, e.DecodedSlug(), english, chinese})
		}
		t.AppendFooter(table.Row{"", "", "shown", fmt.Sprintf("%d of %d", len(entries), total)})
		t.Render()
		return nil
	},
}
