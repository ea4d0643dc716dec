package search

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"modfetch/lib/htmlutil"
	"modfetch/lib/scrapers/smods/core"
	"modfetch/lib/textutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/smods/search")

const DefaultBase = "https://catalogue.smods.ru"

// Hit is one search result pointing at a mirror page.
type Hit struct {
	ArchiveId  string
	Title      string
	MirrorLink string
	SearchUrl  string
}

var hitRegex = regexp.MustCompile(
	`(?is)<h2 class="post-title entry-title">\s*<a href="(?:https?:)?//[^/"]+/archives/(\d+)"[^>]*>(.*?)</a>.*?` +
		`<a class="skymods-excerpt-btn[^"]*" href="(https?://[^"]+)"`,
)

type Searcher struct {
	Session *core.Session
	Base    string
}

func NewSearcher(session *core.Session) Searcher {
	return Searcher{Session: session, Base: DefaultBase}
}

// SearchUrl builds the search url for `keyword`, an appId of 0 searches
// every game.
func (s Searcher) SearchUrl(appId int, keyword string) string {
	base := strings.TrimSuffix(s.Base, "/")
	if base == "" {
		base = DefaultBase
	}
	u := fmt.Sprintf("%s/?s=%s", base, url.QueryEscape(keyword))
	if appId > 0 {
		u += "&app=" + strconv.Itoa(appId)
	}
	return u
}

// ParseHits extracts every result on a search page in document order.
func ParseHits(page, searchUrl string) []Hit {
	var hits []Hit
	for _, match := range hitRegex.FindAllStringSubmatch(page, -1) {
		hits = append(hits, Hit{
			ArchiveId:  match[1],
			Title:      htmlutil.StripTags(match[2]),
			MirrorLink: html.UnescapeString(match[3]),
			SearchUrl:  searchUrl,
		})
	}
	return hits
}

// FindHits runs a search and returns every result on the first page.
func (s Searcher) FindHits(ctx context.Context, appId int, keyword string) ([]Hit, error) {
	ctx, span := tracer.Start(ctx, "FindHits")
	defer span.End()

	searchUrl := s.SearchUrl(appId, keyword)
	span.SetAttributes(
		attribute.String("url", searchUrl),
		attribute.Int("app_id", appId),
	)

	page, err := s.Session.Get(ctx, searchUrl, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch search page")
		return nil, err
	}

	hits := ParseHits(page, searchUrl)
	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

// FindFirstHit returns the first search result, ok is false when the search
// found nothing.
func (s Searcher) FindFirstHit(ctx context.Context, appId int, keyword string) (Hit, bool, error) {
	hits, err := s.FindHits(ctx, appId, keyword)
	if err != nil || len(hits) == 0 {
		return Hit{}, false, err
	}
	return hits[0], true, nil
}

// FindExactHit returns the first result whose title equals the keyword,
// ignoring case, entities and runs of whitespace.
func (s Searcher) FindExactHit(ctx context.Context, appId int, keyword string) (Hit, bool, error) {
	hits, err := s.FindHits(ctx, appId, keyword)
	if err != nil {
		return Hit{}, false, err
	}
	key := exactKey(keyword)
	for _, h := range hits {
		if exactKey(h.Title) == key {
			return h, true, nil
		}
	}
	return Hit{}, false, nil
}

func exactKey(text string) string {
	return textutil.CollapseWhitespace(html.UnescapeString(text))
}
