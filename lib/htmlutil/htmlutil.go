package htmlutil

import (
	"bytes"
	"context"
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nethtml "golang.org/x/net/html"
)

var tracer = otel.Tracer("modfetch.lib.htmlutil")

func GetText(node *nethtml.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *nethtml.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == nethtml.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var tagRegex = regexp.MustCompile(`(?s)<.*?>`)

// StripTags removes inline markup from a captured html fragment and decodes
// its entities.
func StripTags(markup string) string {
	text := tagRegex.ReplaceAllString(markup, "")
	return html.UnescapeString(strings.TrimSpace(text))
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

func GetAnchors(ctx context.Context, sel *goquery.Selection) []Anchor {
	ctx, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}

		name := GetText(n)
		name = removeNonPrintable(name)
		name = strings.Trim(name, " \t\n")
		name = innerWhitespace.ReplaceAllString(name, " ")

		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}

// FindPostForm returns the action of the first form declaring method=post.
func FindPostForm(doc *goquery.Document) (action string, ok bool) {
	doc.Find("form").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		method := strings.TrimSpace(s.AttrOr("method", ""))
		if !strings.EqualFold(method, "post") {
			return true
		}
		action, ok = s.Attr("action")
		action = strings.TrimSpace(action)
		ok = ok && action != ""
		return false
	})
	return action, ok
}

// HiddenInputs collects every hidden input on the page as name -> value.
// Inputs without a name are skipped, inputs without a value map to "".
func HiddenInputs(doc *goquery.Document) map[string]string {
	fields := map[string]string{}
	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		if !strings.EqualFold(strings.TrimSpace(s.AttrOr("type", "")), "hidden") {
			return
		}
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		fields[name] = s.AttrOr("value", "")
	})
	return fields
}
