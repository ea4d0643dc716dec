package modsbase

import (
	"regexp"
	"strings"
)

// Rule is one direct-link extraction pattern. the first capture group holds
// the candidate url.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Rules are tried in order, the first rule producing an accepted candidate wins.
var Rules = []Rule{
	{
		Name:    "gateway-dq",
		Pattern: regexp.MustCompile(`(?is)href="((?:https?:)?//[^"\s]*?/cgi-bin/dl?\.cgi/[^"\s]+)"`),
	},
	{
		Name:    "gateway-sq",
		Pattern: regexp.MustCompile(`(?is)href='((?:https?:)?//[^'\s]*?/cgi-bin/dl?\.cgi/[^'\s]+)'`),
	},
	// the closing quote must follow `.zip` or its query string, so teaser
	// links ending in `.zip.html` never match here.
	{
		Name:    "zip-dq",
		Pattern: regexp.MustCompile(`(?is)href="((?:https?:)?//[^"\s]+\.zip(?:\?[^"\s]*)?)"`),
	},
	{
		Name:    "zip-sq",
		Pattern: regexp.MustCompile(`(?is)href='((?:https?:)?//[^'\s]+\.zip(?:\?[^'\s]*)?)'`),
	},
	{
		Name:    "script-redirect",
		Pattern: regexp.MustCompile(`(?is)(?:location\.href|window\.open)\s*\(\s*['"]((?:https?:)?//[^'"\s]+)['"]\s*\)`),
	},
}

var teaserRegex = regexp.MustCompile(`(?i)^https?://[^/]+/.+\.zip\.html`)

// NormalizeCandidate turns a protocol-relative link into an https one and
// rejects `.zip.html` teaser pages.
func NormalizeCandidate(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}
	if strings.HasPrefix(link, "//") {
		link = "https:" + link
	}
	if teaserRegex.MatchString(link) {
		return "", false
	}
	return link, true
}

// Find returns the first accepted candidate this rule matches in `body`.
func (r Rule) Find(body string) (string, bool) {
	for _, match := range r.Pattern.FindAllStringSubmatch(body, -1) {
		link, ok := NormalizeCandidate(match[1])
		if ok {
			return link, true
		}
	}
	return "", false
}

// ExtractDirect applies Rules in order and returns the first direct link.
// the name of the matching rule is returned alongside the link.
func ExtractDirect(body string) (string, string, bool) {
	for _, r := range Rules {
		link, ok := r.Find(body)
		if ok {
			return link, r.Name, true
		}
	}
	return "", "", false
}
