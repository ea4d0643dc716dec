package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"modfetch/lib/downloader"
	"modfetch/lib/fileutil"
	"modfetch/lib/keywords"
	"modfetch/lib/scrapers/modsbase"
	"modfetch/lib/scrapers/smods/catalog"
	"modfetch/lib/scrapers/smods/core"
	"modfetch/lib/scrapers/smods/search"
	"modfetch/lib/scrapers/steam"
	"modfetch/lib/scrapers/swdl"
	"modfetch/services/history"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/fetch")

// Recorder persists the outcomes of a run.
type Recorder interface {
	Save(ctx context.Context, run history.Run, records []history.Record) error
}

type Options struct {
	// resolve links without downloading them.
	LinkOnly      bool
	OutDir        string
	SteamFallback bool
}

// Service resolves keywords to direct links one at a time over a single
// session.
type Service struct {
	Searcher   search.Searcher
	Resolver   *modsbase.Resolver
	Workshop   steam.Workshop
	Swdl       swdl.Client
	Downloader *downloader.Downloader
	History    Recorder
	Options    Options
}

func NewService(session *core.Session, cfg Config, opts Options) Service {
	resolver := modsbase.NewResolver(session)
	resolver.FormDelay = cfg.FormDelay()
	return Service{
		Searcher:   search.NewSearcher(session),
		Resolver:   resolver,
		Workshop:   steam.NewWorkshop(session),
		Swdl:       swdl.NewClient(session),
		Downloader: downloader.New(session.Http, cfg.Retries),
		Options:    opts,
	}
}

func failed(r Result, err error) Result {
	r.Outcome = Failed
	r.Err = err
	return r
}

// resolveCatalog searches the catalog and follows the first usable hit to a
// direct link. a nil target searches every game and only accepts an exact
// title match.
func (s Service) resolveCatalog(ctx context.Context, target *catalog.Entry, keyword string, r *Result) (string, bool, error) {
	var (
		hit search.Hit
		ok  bool
		err error
	)
	if target == nil {
		hit, ok, err = s.Searcher.FindExactHit(ctx, 0, keyword)
	} else {
		hit, ok, err = s.Searcher.FindFirstHit(ctx, target.AppId, keyword)
	}
	if err != nil || !ok {
		return "", false, err
	}

	r.Title = hit.Title
	r.Outcome = NoDirectLink
	return s.Resolver.Resolve(ctx, hit.MirrorLink, hit.SearchUrl)
}

// resolveSteam looks the keyword up on the steam workshop, then tries the
// catalog by workshop id and finally steamworkshop.download.
func (s Service) resolveSteam(ctx context.Context, target *catalog.Entry, keyword string, r *Result) (string, bool, error) {
	item, ok, err := s.Workshop.FindFirstItem(ctx, target.AppId, keyword)
	if err != nil || !ok {
		return "", false, err
	}
	r.WorkshopUrl = item.ItemUrl
	if r.Title == "" {
		r.Title = item.Title
	}
	r.Outcome = NoDirectLink

	hit, ok, err := s.Searcher.FindFirstHit(ctx, item.AppId, item.ItemId)
	if err != nil {
		return "", false, err
	}
	if ok {
		r.Title = hit.Title
		direct, ok, err := s.Resolver.Resolve(ctx, hit.MirrorLink, hit.SearchUrl)
		if err != nil || ok {
			return direct, ok, err
		}
	}

	return s.Swdl.Resolve(ctx, item.ItemUrl, item.ItemId, item.AppId)
}

// Resolve runs the whole pipeline for one keyword. it never returns early on
// a request failure, the failure is captured in the result instead.
func (s Service) Resolve(ctx context.Context, target *catalog.Entry, keyword string) Result {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()

	r := Result{Keyword: keyword, Outcome: NoSearchResult}
	query := keywords.Clean(keyword)
	span.SetAttributes(attribute.String("query", query))
	if query == "" {
		r.Err = ErrEmptyKeyword
		return r
	}

	direct, ok, err := s.resolveCatalog(ctx, target, query, &r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog resolution failed")
		return failed(r, err)
	}
	if !ok && s.Options.SteamFallback && target != nil {
		slog.DebugContext(ctx, "trying steam workshop fallback", "keyword", query)
		direct, ok, err = s.resolveSteam(ctx, target, query, &r)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "steam fallback failed")
			return failed(r, err)
		}
	}
	if !ok {
		if r.Outcome == NoDirectLink {
			r.Err = ErrNoDirectLink
		} else {
			r.Err = ErrNoSearchResult
		}
		span.SetAttributes(attribute.String("outcome", string(r.Outcome)))
		return r
	}

	r.DirectUrl = direct
	if r.Title == "" {
		r.Title = query
	}
	if s.Options.LinkOnly {
		r.Outcome = Resolved
		return r
	}

	dest := filepath.Join(s.Options.OutDir, fileutil.DeriveFilename(direct, r.Title))
	_, err = s.Downloader.Download(ctx, direct, "", dest)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "download failed")
		return failed(r, fmt.Errorf("download: %w", err))
	}
	r.File = dest
	r.Outcome = Resolved
	return r
}

func logResult(ctx context.Context, r Result, single bool) {
	switch {
	case r.Ok() && r.File != "":
		slog.InfoContext(ctx, "downloaded", "keyword", r.Keyword, "file", r.File)
	case r.Ok():
		slog.InfoContext(ctx, "resolved", "keyword", r.Keyword, "url", r.DirectUrl)
	case r.Outcome == Failed:
		slog.ErrorContext(ctx, "keyword failed", "keyword", r.Keyword, "err", r.Err)
	default:
		slog.WarnContext(ctx, "keyword not resolved", "keyword", r.Keyword, "outcome", r.Outcome, "err", r.Err)
	}
	if single && r.WorkshopUrl != "" {
		slog.InfoContext(ctx, "workshop item", "keyword", r.Keyword, "url", r.WorkshopUrl)
	}
}

func toRecords(results []Result) []history.Record {
	records := make([]history.Record, len(results))
	for i, r := range results {
		records[i] = history.Record{
			Keyword:     r.Keyword,
			Status:      string(r.Outcome),
			Title:       r.Title,
			DirectUrl:   r.DirectUrl,
			WorkshopUrl: r.WorkshopUrl,
			File:        r.File,
			Error:       r.ErrorString(),
		}
	}
	return records
}

// Run resolves every keyword in order. misses and request failures are
// recorded per keyword, only cancellation stops the run early. batches of
// more than one keyword also get a mapping report in the output dir.
func (s Service) Run(ctx context.Context, target *catalog.Entry, kws []string) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.Int("keywords", len(kws)))

	startedAt := time.Now()
	run := history.Run{StartedAt: startedAt, LinkOnly: s.Options.LinkOnly}
	if target != nil {
		run.AppId = target.AppId
		run.Game = target.Game
		slog.InfoContext(ctx, "game selected", "game", target.Game, "app_id", target.AppId, "slug", target.Slug)
	} else {
		slog.InfoContext(ctx, "global search, only exact title matches are accepted")
	}

	var summary Summary
	for _, kw := range kws {
		if ctx.Err() != nil {
			break
		}
		r := s.Resolve(ctx, target, kw)
		r.Keyword = kw
		summary.Results = append(summary.Results, r)
		logResult(ctx, r, len(kws) == 1)
	}

	success, failedCount := summary.Counts()
	slog.InfoContext(ctx, "summary", "success", success, "failed", failedCount)
	span.SetAttributes(attribute.Int("success", success), attribute.Int("failed", failedCount))

	if len(kws) > 1 && len(summary.Results) > 0 {
		path, err := WriteReport(s.Options.OutDir, startedAt, summary.Results)
		if err != nil {
			slog.WarnContext(ctx, "failed to write batch mapping", "err", err)
		} else {
			summary.ReportPath = path
			slog.InfoContext(ctx, "batch mapping saved", "path", path)
		}
	}

	if s.History != nil && len(summary.Results) > 0 {
		err := s.History.Save(context.WithoutCancel(ctx), run, toRecords(summary.Results))
		if err != nil {
			slog.WarnContext(ctx, "failed to record history", "err", err)
		}
	}

	return summary, ctx.Err()
}
