package fileutil

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

var illegalRegex = regexp.MustCompile(`[\\/:*?"<>|]+`)

// SafeFilename replaces every run of characters windows refuses in a file
// name with `_`.
func SafeFilename(text string) string {
	return illegalRegex.ReplaceAllString(text, "_")
}

// unusable reports names that cannot stand for a file inside the output dir.
func unusable(name string) bool {
	switch strings.ToLower(name) {
	case "", ".", "..", "dl.cgi", "d.cgi":
		return true
	}
	return false
}

// DeriveFilename names a download after the last path segment of its url.
// urls ending in a bare gateway script, a dot segment or without a usable
// segment are named after `fallbackTitle` instead.
func DeriveFilename(directUrl, fallbackTitle string) string {
	name := ""
	u, err := url.Parse(directUrl)
	if err == nil {
		escaped := u.EscapedPath()
		name = escaped[strings.LastIndex(escaped, "/")+1:]
		unescaped, err := url.PathUnescape(name)
		if err == nil {
			name = unescaped
		}
		name = SafeFilename(html.UnescapeString(name))
	}
	if !unusable(name) {
		return name
	}

	title := SafeFilename(html.UnescapeString(strings.TrimSpace(fallbackTitle)))
	if unusable(title) {
		title = "download"
	}
	return title + ".zip"
}
