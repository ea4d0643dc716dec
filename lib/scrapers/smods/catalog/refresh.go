package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"modfetch/lib/scrapers/smods/core"
	"modfetch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/smods/catalog")

const DefaultSource = "https://catalogue.smods.ru/"

// tileSlug returns the path after /game/ in a tile link, left percent-encoded.
func tileSlug(href string) string {
	_, slug, ok := strings.Cut(href, "/game/")
	if !ok {
		return ""
	}
	slug, _, _ = strings.Cut(slug, "?")
	slug, _, _ = strings.Cut(slug, "#")
	return strings.Trim(strings.TrimSpace(slug), "/")
}

// tileAppId reads the numeric id out of a steam store link.
func tileAppId(href string) (int, bool) {
	_, rest, ok := strings.Cut(href, "store.steampowered.com/app/")
	if !ok {
		return 0, false
	}
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		rest = rest[:end]
	}
	appId, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return appId, true
}

// ParseTiles extracts every game tile from the landing page in document order.
func ParseTiles(page string) []Entry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var entries []Entry
	doc.Find("div.game-tile-wrapper").Each(func(_ int, tile *goquery.Selection) {
		slug := tileSlug(tile.Find("a.game-hover[href]").First().AttrOr("href", ""))
		if slug == "" {
			return
		}
		appId, ok := tileAppId(tile.Find("a.game-buy-btn[href]").First().AttrOr("href", ""))
		if !ok {
			return
		}
		name := strings.TrimSpace(tile.Find("h2.game-title").First().Text())

		entries = append(entries, Entry{
			AppId:   appId,
			Slug:    slug,
			Game:    name,
			Aliases: textutil.ExpandAliases(name, slug),
		})
	})
	return entries
}

// Refresh rebuilds the catalog from the landing page at `source`.
func Refresh(ctx context.Context, session *core.Session, source string) (Catalog, error) {
	ctx, span := tracer.Start(ctx, "Refresh")
	defer span.End()
	span.SetAttributes(attribute.String("source", source))

	page, err := session.Get(ctx, source, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch landing page")
		return Catalog{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	entries := ParseTiles(page)
	if len(entries) == 0 {
		err := fmt.Errorf("%w: no game tiles found on %s", ErrCatalogUnavailable, source)
		span.RecordError(err)
		span.SetStatus(codes.Error, "no game tiles")
		return Catalog{}, err
	}

	c := NewCatalog(time.Now(), source, entries)
	span.SetAttributes(attribute.Int("count", len(c.Entries)))
	return c, nil
}
