package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestStripTags(t *testing.T) {
	require.Equal(t, "Tiger & Panther", StripTags(" <b>Tiger</b> &amp; <i>Panther</i> "))
	require.Equal(t, "", StripTags("<br/>"))
	require.Equal(t, "a\"b", StripTags("a&quot;b"))
}

func TestFindPostForm(t *testing.T) {
	doc := parse(t, `
		<form method="get" action="/search"></form>
		<form action="/download/abc" METHOD="POST"><input type="submit"></form>`)
	action, ok := FindPostForm(doc)
	require.True(t, ok)
	require.Equal(t, "/download/abc", action)

	doc = parse(t, `<form method="post"><input type="hidden" name="op" value="download2"></form>`)
	_, ok = FindPostForm(doc)
	require.False(t, ok)
}

func TestHiddenInputs(t *testing.T) {
	doc := parse(t, `
		<form method="post">
			<input type="hidden" name="op" value="download2">
			<input type='HIDDEN' name='id' value='x1y2'>
			<input type="hidden" name="rand">
			<input type="hidden" value="orphan">
			<input type="text" name="visible" value="no">
		</form>`)
	require.Equal(t, map[string]string{
		"op":   "download2",
		"id":   "x1y2",
		"rand": "",
	}, HiddenInputs(doc))
}

func TestGetAnchors(t *testing.T) {
	doc := parse(t, `<ul>
		<li><a href="https://example.com/a?id=1">  First   link </a></li>
		<li><a href="/b">Second</a></li>
	</ul>`)
	anchors := GetAnchors(context.Background(), doc.Find("li a"))
	require.Equal(t, []Anchor{
		{Name: "First link", Href: "https://example.com/a?id=1"},
		{Name: "Second", Href: "/b"},
	}, anchors)
}
