package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"modfetch/cmd/modfetch/globals"
	"modfetch/lib/keywords"
	"modfetch/lib/scrapers/smods/catalog"
	"modfetch/services/fetch"
	"modfetch/services/history"

	"github.com/spf13/cobra"
)

var fetchFlags struct {
	game          string
	appId         int
	global        bool
	keyword       string
	listFile      string
	outDir        string
	limit         int
	linkOnly      bool
	refresh       bool
	steamFallback bool
	noHistory     bool
}

func init() {
	flags := fetchCmd.Flags()
	flags.StringVarP(&fetchFlags.game, "game", "g", "", "game name, slug, alias or app id")
	flags.IntVar(&fetchFlags.appId, "appid", 0, "steam app id of the game")
	flags.BoolVar(&fetchFlags.global, "global", false, "search every game, exact titles only")
	flags.StringVarP(&fetchFlags.keyword, "keyword", "k", "", "a single search keyword")
	flags.StringVarP(&fetchFlags.listFile, "list-file", "f", "", "keyword file, one keyword per line")
	flags.StringVarP(&fetchFlags.outDir, "out-dir", "o", "", "output directory (default from config)")
	flags.IntVar(&fetchFlags.limit, "limit", 0, "only process the first n keywords")
	flags.BoolVar(&fetchFlags.linkOnly, "link-only", false, "print direct links without downloading")
	flags.BoolVar(&fetchFlags.refresh, "refresh", false, "refresh the games cache before resolving the game")
	flags.BoolVar(&fetchFlags.steamFallback, "steam-fallback", false, "fall back to the steam workshop when the catalog has no link")
	flags.BoolVar(&fetchFlags.noHistory, "no-history", false, "do not record outcomes in the history db")

	rootCmd.AddCommand(fetchCmd)
}

// resolveTarget picks the game scope for a run, nil means a global search.
func resolveTarget(cmd *cobra.Command, value *globals.Value) (*catalog.Entry, error) {
	if fetchFlags.global {
		return nil, nil
	}
	if fetchFlags.game == "" && fetchFlags.appId == 0 {
		slog.Info("no game given, using global search")
		return nil, nil
	}

	forceRefresh := fetchFlags.refresh || value.Config.RefreshGamesCache
	cat, err := value.Catalog.Get(cmd.Context(), forceRefresh)
	if err != nil {
		return nil, err
	}

	if fetchFlags.appId != 0 {
		entry := catalog.ResolveId(cat, fetchFlags.appId)
		return &entry, nil
	}
	entry, err := catalog.Resolve(cat, fetchFlags.game)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Resolve keywords to direct download links and optionally download them.",
	Example: `  modfetch fetch -g "Men of War: Assault Squad 2" -k "Omaha Beach" --link-only
  modfetch fetch --appid 244450 -f keywords.txt -o ./mods
  modfetch fetch --global -k "Bridge Too Far"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value := globals.Get(cmd.Context())
		cfg := value.Config

		kws, err := keywords.Collect(fetchFlags.keyword, fetchFlags.listFile)
		if err != nil {
			return err
		}
		if len(kws) == 0 {
			return errors.New("provide --keyword or --list-file")
		}
		if fetchFlags.limit > 0 && len(kws) > fetchFlags.limit {
			kws = kws[:fetchFlags.limit]
		}

		target, err := resolveTarget(cmd, value)
		if err != nil {
			return err
		}

		outDir := cfg.DownloadDir
		if fetchFlags.outDir != "" {
			outDir = fetchFlags.outDir
		}
		service := fetch.NewService(value.Session, cfg, fetch.Options{
			LinkOnly:      fetchFlags.linkOnly,
			OutDir:        outDir,
			SteamFallback: fetchFlags.steamFallback || cfg.SteamFallback,
		})

		if !fetchFlags.noHistory && cfg.HistoryDb != "" {
			store, err := history.Open(cfg.HistoryDb)
			if err != nil {
				slog.Warn("history disabled", "err", err)
			} else {
				defer store.Close()
				service.History = store
			}
		}

		summary, err := service.Run(cmd.Context(), target, kws)
		if fetchFlags.linkOnly {
			for _, r := range summary.Results {
				if r.Ok() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Keyword, r.DirectUrl)
				}
			}
		}
		return err
	},
}
