package steam

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"modfetch/lib/htmlutil"
	"modfetch/lib/scrapers/smods/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/steam")

const DefaultBase = "https://steamcommunity.com"

// Item is a workshop item found by a browse search.
type Item struct {
	ItemId    string
	AppId     int
	Title     string
	ItemUrl   string
	SearchUrl string
}

var itemHrefRegex = regexp.MustCompile(`(?i)^https?://[^/]+/sharedfiles/filedetails/\?id=(\d+)`)

// anchors with these labels wrap the item thumbnail, not its title.
var ignoredLabels = map[string]struct{}{
	"learn more": {},
	"了解更多":       {},
}

type Workshop struct {
	Session *core.Session
	Base    string
}

func NewWorkshop(session *core.Session) Workshop {
	return Workshop{Session: session, Base: DefaultBase}
}

func (w Workshop) base() string {
	if w.Base == "" {
		return DefaultBase
	}
	return strings.TrimSuffix(w.Base, "/")
}

func (w Workshop) BrowseUrl(appId int, keyword string) string {
	params := url.Values{}
	params.Set("appid", strconv.Itoa(appId))
	params.Set("searchtext", keyword)
	params.Set("childpublishedfileid", "0")
	params.Set("browsesort", "trend")
	params.Set("section", "readytouseitems")
	params.Set("created_date_range_filter_start", "0")
	params.Set("created_date_range_filter_end", "0")
	params.Set("updated_date_range_filter_start", "0")
	params.Set("updated_date_range_filter_end", "0")
	return fmt.Sprintf("%s/workshop/browse/?%s", w.base(), params.Encode())
}

func (w Workshop) ItemUrl(itemId string) string {
	return fmt.Sprintf("%s/sharedfiles/filedetails/?id=%s", w.base(), itemId)
}

// ParseItems lists every titled item link on a browse page. a link carrying
// the search text is moved to the front since steam marks real results that way.
func ParseItems(ctx context.Context, doc *goquery.Document) []htmlutil.Anchor {
	var preferred, rest []htmlutil.Anchor
	for _, a := range htmlutil.GetAnchors(ctx, doc.Find("a[href]")) {
		if !itemHrefRegex.MatchString(a.Href) {
			continue
		}
		if _, ok := ignoredLabels[strings.ToLower(a.Name)]; ok || a.Name == "" {
			continue
		}
		if strings.Contains(strings.ToLower(a.Href), "searchtext=") {
			preferred = append(preferred, a)
			continue
		}
		rest = append(rest, a)
	}
	return append(preferred, rest...)
}

// FindFirstItem searches the workshop of `appId` and returns the best match.
func (w Workshop) FindFirstItem(ctx context.Context, appId int, keyword string) (Item, bool, error) {
	ctx, span := tracer.Start(ctx, "FindFirstItem")
	defer span.End()

	browseUrl := w.BrowseUrl(appId, keyword)
	span.SetAttributes(attribute.String("url", browseUrl))

	page, err := w.Session.Get(ctx, browseUrl, "")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch workshop browse page")
		return Item{}, false, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse workshop browse page")
		return Item{}, false, err
	}

	anchors := ParseItems(ctx, doc)
	if len(anchors) == 0 {
		return Item{}, false, nil
	}
	first := anchors[0]
	itemId := itemHrefRegex.FindStringSubmatch(first.Href)[1]
	span.SetAttributes(attribute.String("item_id", itemId))

	return Item{
		ItemId:    itemId,
		AppId:     appId,
		Title:     first.Name,
		ItemUrl:   w.ItemUrl(itemId),
		SearchUrl: browseUrl,
	}, true, nil
}
