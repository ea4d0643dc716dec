package catalog

import (
	"context"
	"log/slog"

	"modfetch/lib/scrapers/smods/core"
)

// Store serves the catalog from a snapshot file, refreshing it from the site
// when there is no usable snapshot.
type Store struct {
	Path    string
	Source  string
	Session *core.Session
}

func (s Store) source() string {
	if s.Source == "" {
		return DefaultSource
	}
	return s.Source
}

// Get returns the cached catalog unless `forceRefresh` is set or the cache is
// unusable, in which case the site is read and the snapshot rewritten.
func (s Store) Get(ctx context.Context, forceRefresh bool) (Catalog, error) {
	if !forceRefresh {
		c, ok := Load(s.Path)
		if ok {
			slog.Debug("using games cache", "path", s.Path, "count", len(c.Entries))
			return c, nil
		}
	}

	slog.Info("fetching supported games", "source", s.source())
	c, err := Refresh(ctx, s.Session, s.source())
	if err != nil {
		return Catalog{}, err
	}

	err = Save(s.Path, c)
	if err != nil {
		// the fresh catalog is still good for this run.
		slog.Warn("failed to save games cache", "path", s.Path, "err", err)
		return c, nil
	}
	slog.Info("games cache saved", "path", s.Path, "count", len(c.Entries))
	return c, nil
}
