package textutil

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var percentEscapeRegex = regexp.MustCompile(`%[0-9a-f]{2}`)
var nonKeyRegex = regexp.MustCompile(`[^0-9a-z\x{4e00}-\x{9fff}]+`)

var cjkRunRegex = regexp.MustCompile(`[\x{4e00}-\x{9fff}]{2,}`)
var cjkAnyRunRegex = regexp.MustCompile(`[\x{4e00}-\x{9fff}]+`)
var latinRunRegex = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9 '&:;,+\-.]{2,}`)

// Normalize reduces a name to the key used for alias comparison: lowercase,
// percent-escapes removed, and only ascii alphanumerics and CJK ideographs kept.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = percentEscapeRegex.ReplaceAllString(name, " ")
	name = nonKeyRegex.ReplaceAllString(name, "")
	return name
}

func AliasEqual(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// AliasContains reports whether the normalized form of `name` contains the
// normalized form of `part`.
func AliasContains(name, part string) bool {
	return strings.Contains(Normalize(name), Normalize(part))
}

// CollapseWhitespace lowercases and collapses runs of whitespace into one space.
func CollapseWhitespace(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return whitespaceRegex.ReplaceAllString(text, " ")
}

func HasCJK(text string) bool {
	return cjkAnyRunRegex.MatchString(text)
}

// DecodeSlug percent-decodes a slug, returning it unchanged when malformed.
func DecodeSlug(slug string) string {
	decoded, err := url.PathUnescape(slug)
	if err != nil {
		return slug
	}
	return decoded
}

// ExpandAliases derives the alternate spellings a game can be searched by from
// its display name and its url slug. The result is a case-insensitive set,
// sorted for stable output.
func ExpandAliases(displayName, slug string) []string {
	seen := map[string]struct{}{}
	var aliases []string
	add := func(v string) {
		if v == "" {
			return
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		aliases = append(aliases, v)
	}

	if displayName != "" {
		add(strings.TrimSpace(displayName))
		for _, run := range cjkRunRegex.FindAllString(displayName, -1) {
			add(run)
		}
		for _, run := range latinRunRegex.FindAllString(displayName, -1) {
			add(strings.TrimSpace(run))
		}
	}
	if slug != "" {
		add(slug)
		decoded := DecodeSlug(slug)
		add(decoded)
		add(strings.ReplaceAll(decoded, "-", " "))
	}

	sort.Strings(aliases)
	return aliases
}

// SplitNames separates a mixed-script display name into its latin and CJK
// halves. When the name carries no CJK text the first alias that does is used.
func SplitNames(displayName string, aliases []string) (english, chinese string) {
	chinese = strings.TrimSpace(strings.Join(cjkAnyRunRegex.FindAllString(displayName, -1), " "))

	english = cjkAnyRunRegex.ReplaceAllString(displayName, " ")
	english = strings.TrimSpace(whitespaceRegex.ReplaceAllString(english, " "))

	if chinese == "" {
		for _, a := range aliases {
			parts := cjkAnyRunRegex.FindAllString(a, -1)
			if len(parts) > 0 {
				chinese = strings.TrimSpace(strings.Join(parts, " "))
				break
			}
		}
	}
	if english == "" {
		english = displayName
	}
	return english, chinese
}
