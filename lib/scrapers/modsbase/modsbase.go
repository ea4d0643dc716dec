package modsbase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"modfetch/lib/scrapers/smods/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/modsbase")

const (
	DefaultOrigin    = "https://modsbase.com"
	DefaultFormDelay = 3 * time.Second
)

// Resolver turns a mirror page link into a direct download url.
type Resolver struct {
	Session *core.Session
	// wait before submitting the gated form, zero disables the wait.
	FormDelay time.Duration
	// origin root-relative form actions are joined to.
	MirrorOrigin string
}

func NewResolver(session *core.Session) *Resolver {
	return &Resolver{
		Session:      session,
		FormDelay:    DefaultFormDelay,
		MirrorOrigin: DefaultOrigin,
	}
}

func (r *Resolver) origin() string {
	if r.MirrorOrigin == "" {
		return DefaultOrigin
	}
	return r.MirrorOrigin
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Resolve fetches the mirror page and looks for a direct link on it. when
// there is none, the page's gated form is submitted once and the response is
// searched the same way. ok is false when neither page carried a link.
func (r *Resolver) Resolve(ctx context.Context, mirrorLink, refererUrl string) (direct string, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("mirror_link", mirrorLink))

	page, err := r.Session.Get(ctx, mirrorLink, refererUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch mirror page")
		return "", false, err
	}

	direct, rule, ok := ExtractDirect(page)
	if ok {
		span.SetAttributes(attribute.String("rule", rule), attribute.Bool("form", false))
		slog.DebugContext(ctx, "direct link on mirror page", "rule", rule, "url", direct)
		return direct, true, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse mirror page")
		return "", false, err
	}
	form := BuildForm(doc, mirrorLink, r.origin())
	span.SetAttributes(
		attribute.String("form_action", form.Action),
		attribute.Int("form_fields", len(form.Fields)),
	)
	slog.DebugContext(ctx, "submitting gated form", "action", form.Action, "fields", len(form.Fields))

	err = wait(ctx, r.FormDelay)
	if err != nil {
		return "", false, err
	}

	page, err = r.Session.PostForm(ctx, form.Action, refererUrl, form.Fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit gated form")
		return "", false, err
	}

	direct, rule, ok = ExtractDirect(page)
	span.SetAttributes(attribute.Bool("form", true), attribute.Bool("found", ok))
	if ok {
		slog.DebugContext(ctx, "direct link after form", "rule", rule, "url", direct)
	}
	return direct, ok, nil
}
