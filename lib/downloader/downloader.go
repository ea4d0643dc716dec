package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/downloader")

// Downloader writes direct urls to disk through the run's http client.
type Downloader struct {
	Http      *resty.Client
	Retries   int
	RetryWait time.Duration
}

func New(client *resty.Client, retries int) *Downloader {
	return &Downloader{
		Http:      client,
		Retries:   retries,
		RetryWait: time.Second,
	}
}

// Download saves `directUrl` to `dest`, retrying failed attempts up to
// Retries times. the file only appears at `dest` once it is complete.
func (d *Downloader) Download(ctx context.Context, directUrl, referer, dest string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Download")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", directUrl),
		attribute.String("dest", dest),
	)

	err := os.MkdirAll(filepath.Dir(dest), 0755)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create output dir")
		return 0, err
	}

	var lastErr error
	for attempt := 0; attempt <= d.Retries; attempt++ {
		if attempt > 0 {
			slog.WarnContext(ctx, "retrying download", "url", directUrl, "attempt", attempt, "err", lastErr)
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(d.RetryWait):
			}
		}

		var size int64
		size, lastErr = d.attempt(ctx, directUrl, referer, dest)
		if lastErr == nil {
			span.SetAttributes(attribute.Int64("size", size))
			return size, nil
		}
		if ctx.Err() != nil {
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "download failed")
	return 0, lastErr
}

func (d *Downloader) attempt(ctx context.Context, directUrl, referer, dest string) (int64, error) {
	partial := dest + ".part"
	req := d.Http.R().
		SetContext(ctx).
		SetOutput(partial)
	if referer != "" {
		req.SetHeader("referer", referer)
	}

	res, err := req.Get(directUrl)
	if err != nil {
		os.Remove(partial)
		return 0, err
	}
	if res.IsError() {
		os.Remove(partial)
		return 0, fmt.Errorf("unexpected status %d from %s", res.StatusCode(), directUrl)
	}

	info, err := os.Stat(partial)
	if err != nil {
		return 0, err
	}
	err = os.Rename(partial, dest)
	if err != nil {
		os.Remove(partial)
		return 0, err
	}
	return info.Size(), nil
}
