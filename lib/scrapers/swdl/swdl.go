package swdl

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"modfetch/lib/scrapers/modsbase"
	"modfetch/lib/scrapers/smods/core"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/swdl")

// steamworkshop.download only serves plain http.
const DefaultHome = "http://steamworkshop.download/"

var itemAppRegex = regexp.MustCompile(`(?is)data:\s*\{\s*item:\s*(\d+),\s*app:\s*(\d+)\s*\}`)

// Client resolves workshop items through steamworkshop.download.
type Client struct {
	Session *core.Session
	Home    string
}

func NewClient(session *core.Session) Client {
	return Client{Session: session, Home: DefaultHome}
}

func (c Client) home() string {
	if c.Home == "" {
		return DefaultHome
	}
	return strings.TrimSuffix(c.Home, "/") + "/"
}

// ParseItemApp reads the item and app ids the landing page hands to its api
// call, falling back to the given ids when the page does not carry them.
func ParseItemApp(page, itemId string, appId int) (string, int) {
	match := itemAppRegex.FindStringSubmatch(page)
	if match == nil {
		return itemId, appId
	}
	app, err := strconv.Atoi(match[2])
	if err != nil {
		return match[1], appId
	}
	return match[1], app
}

// Resolve submits the workshop item url and returns a direct link, either
// from the landing page or from the follow-up api call.
func (c Client) Resolve(ctx context.Context, itemUrl, itemId string, appId int) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("item_url", itemUrl),
		attribute.Int("app_id", appId),
	)

	page, err := c.Session.PostForm(ctx, c.home(), itemUrl, map[string]string{"url": itemUrl})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit item url")
		return "", false, err
	}
	direct, _, ok := modsbase.ExtractDirect(page)
	if ok {
		return direct, true, nil
	}

	targetItem, targetApp := ParseItemApp(page, itemId, appId)
	referer := fmt.Sprintf("%sdownload/view/%s", c.home(), targetItem)
	page, err = c.Session.PostForm(ctx, c.home()+"online/steamonline.php", referer, map[string]string{
		"item": targetItem,
		"app":  strconv.Itoa(targetApp),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query download api")
		return "", false, err
	}
	direct, _, ok = modsbase.ExtractDirect(page)
	span.SetAttributes(attribute.Bool("found", ok))
	return direct, ok, nil
}
