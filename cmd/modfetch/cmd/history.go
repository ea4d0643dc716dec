package cmd

import (
	"fmt"

	"modfetch/cmd/modfetch/globals"
	"modfetch/cmd/modfetch/utils"
	"modfetch/services/history"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of outcomes to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent keyword outcomes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())

		store, err := history.Open(value.Config.HistoryDb)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		totals, err := store.Totals(cmd.Context())
		if err != nil {
			return err
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Time", "Game", "Keyword", "Status", "Title", "Link / Error"})
		for _, r := range records {
			detail := r.DirectUrl
			if detail == "" {
				detail = r.Error
			}
			t.AppendRow(table.Row{
				r.CreatedAt.Format("2006-01-02 15:04"),
				r.Game,
				r.Keyword,
				r.Status,
				r.Title,
				detail,
			})
		}
		t.AppendFooter(table.Row{"", "", "", "", "resolved", fmt.Sprintf("%d of %d", totals["resolved"], sum(totals))})
		t.Render()
		return nil
	},
}

func sum(totals map[string]int64) int64 {
	var n int64
	for _, v := range totals {
		n += v
	}
	return n
}
