package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"modfetch/lib/textutil"
)

// ErrCatalogUnavailable wraps every failure to build the catalog from the site.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Entry is one game the catalog site supports.
type Entry struct {
	AppId   int      `json:"AppId"`
	Slug    string   `json:"Slug"`
	Game    string   `json:"Game"`
	Aliases []string `json:"Aliases"`
}

// DecodedSlug is the slug with percent escapes decoded.
func (e Entry) DecodedSlug() string {
	return textutil.DecodeSlug(e.Slug)
}

func (e Entry) IsPlaceholder() bool {
	return e.Slug == "" && e.Game == PlaceholderName
}

// Catalog is a snapshot of every supported game, ordered by ascending AppId
// with no duplicate ids.
type Catalog struct {
	GeneratedAt time.Time
	Source      string
	Entries     []Entry
}

// NewCatalog orders entries by id and drops repeated ids, keeping the first.
func NewCatalog(generatedAt time.Time, source string, entries []Entry) Catalog {
	seen := map[int]struct{}{}
	unique := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AppId]; ok {
			continue
		}
		seen[e.AppId] = struct{}{}
		unique = append(unique, e)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].AppId < unique[j].AppId
	})
	return Catalog{
		GeneratedAt: generatedAt,
		Source:      source,
		Entries:     unique,
	}
}

func (c Catalog) Lookup(appId int) (Entry, bool) {
	i := sort.Search(len(c.Entries), func(i int) bool {
		return c.Entries[i].AppId >= appId
	})
	if i < len(c.Entries) && c.Entries[i].AppId == appId {
		return c.Entries[i], true
	}
	return Entry{}, false
}

type snapshot struct {
	GeneratedAt string  `json:"generated_at"`
	Source      string  `json:"source"`
	Count       int     `json:"count"`
	Games       []Entry `json:"games"`
}

// older snapshots carry a local timestamp without a zone.
var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

func parseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// Load reads a snapshot. ok is false when the file is missing, unreadable,
// undecodable or lists no games, all of which mean there is no usable cache.
func Load(path string) (Catalog, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read games cache", "path", path, "err", err)
		}
		return Catalog{}, false
	}

	var snap snapshot
	err = json.Unmarshal(data, &snap)
	if err != nil {
		slog.Warn("games cache is malformed", "path", path, "err", err)
		return Catalog{}, false
	}
	if len(snap.Games) == 0 {
		return Catalog{}, false
	}

	return NewCatalog(parseTimestamp(snap.GeneratedAt), snap.Source, snap.Games), true
}

// Save rewrites the snapshot at `path` entirely.
func Save(path string, c Catalog) error {
	snap := snapshot{
		GeneratedAt: c.GeneratedAt.Format(time.RFC3339),
		Source:      c.Source,
		Count:       len(c.Entries),
		Games:       c.Entries,
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(snap)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	_, err = tmp.Write(buf.Bytes())
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
