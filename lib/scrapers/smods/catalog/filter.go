package catalog

import (
	"strings"

	"modfetch/lib/textutil"
)

// Names splits the display name into its english and chinese parts.
func (e Entry) Names() (english, chinese string) {
	return textutil.SplitNames(e.Game, e.Aliases)
}

func (e Entry) matches(q string) bool {
	if q == "" {
		return true
	}

	english, chinese := e.Names()
	if textutil.HasCJK(q) {
		target := strings.TrimSpace(chinese + " " + strings.Join(e.Aliases, " "))
		return strings.Contains(target, q)
	}

	blob := strings.ToLower(english + " " + e.DecodedSlug() + " " + strings.Join(e.Aliases, " "))
	return strings.Contains(blob, strings.ToLower(q))
}

// Filter keeps the entries a listing search for `q` should show. a query with
// chinese text matches the chinese names, anything else the english ones.
func (c Catalog) Filter(q string) []Entry {
	q = strings.TrimSpace(q)
	var out []Entry
	for _, e := range c.Entries {
		if e.matches(q) {
			out = append(out, e)
		}
	}
	return out
}
