package core

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"modfetch/lib/restyutil"
	"modfetch/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/smods/core")

const (
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	AcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
	DefaultTimeout = 25 * time.Second
)

// StatusError is returned when a page answers with a non-2xx status.
type StatusError struct {
	Url    string
	Status int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.Url)
}

// Session is the cookie-bearing http client shared by every request of a run.
// cookies picked up while reading the catalog stay visible to the mirror form.
type Session struct {
	Http *resty.Client
}

type SessionOptions struct {
	Timeout time.Duration
	// when set, every exchange is dumped here while debug logging is on.
	Dump restyutil.Output
}

func NewSession(opts SessionOptions) (*Session, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", UserAgent)
	client.SetHeader("accept-language", AcceptLanguage)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "scrapers/smods/http")
	restyutil.InstrumentDump(client, opts.Dump)

	return &Session{Http: client}, nil
}

func (s *Session) request(ctx context.Context, referer string) *resty.Request {
	req := s.Http.R().SetContext(ctx)
	if referer != "" {
		req.SetHeader("referer", referer)
	}
	return req
}

func checkResponse(res *resty.Response) error {
	if res.IsError() || res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return StatusError{Url: res.Request.URL, Status: res.StatusCode()}
	}
	return nil
}

// Get fetches a page and returns its body as text.
func (s *Session) Get(ctx context.Context, url, referer string) (string, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := s.request(ctx, referer).Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return "", err
	}
	err = checkResponse(res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status")
		return "", err
	}
	return res.String(), nil
}

// PostForm submits `fields` urlencoded and returns the response body.
func (s *Session) PostForm(ctx context.Context, url, referer string, fields map[string]string) (string, error) {
	ctx, span := tracer.Start(ctx, "PostForm")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", url),
		attribute.Int("fields", len(fields)),
	)

	res, err := s.request(ctx, referer).
		SetFormData(fields).
		Post(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return "", err
	}
	err = checkResponse(res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status")
		return "", err
	}
	return res.String(), nil
}
