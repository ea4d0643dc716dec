package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"modfetch/lib/textutil"

	"github.com/antzucaro/matchr"
)

// PlaceholderName is the display name of an entry synthesized for an id the
// catalog does not list.
const PlaceholderName = "(unknown)"

// below this Jaro-Winkler similarity no suggestion is offered.
const suggestionThreshold = 0.75

// ErrAppIdRange is returned for all-digit input too large to be an app id.
var ErrAppIdRange = errors.New("app id out of range")

// ResolutionError means no catalog entry matches the input.
type ResolutionError struct {
	Input      string
	Suggestion string
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf(`no supported game matches %q, run "modfetch games list" for the full listing`, e.Input)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (closest: %q)", e.Suggestion)
	}
	return msg
}

type query struct {
	lower string
	key   string
}

type tier struct {
	name  string
	match func(q query, e Entry) bool
}

// tiers are tried in order, the first tier with a matching entry wins and
// within a tier the lowest id wins.
var tiers = []tier{
	{
		name: "slug",
		match: func(q query, e Entry) bool {
			return e.Slug != "" && strings.ToLower(e.Slug) == q.lower
		},
	},
	{
		name: "name",
		match: func(q query, e Entry) bool {
			return strings.ToLower(e.Game) == q.lower
		},
	},
	{
		name: "alias",
		match: func(q query, e Entry) bool {
			if q.key == "" {
				return false
			}
			for _, a := range e.Aliases {
				if textutil.Normalize(a) == q.key {
					return true
				}
			}
			return false
		},
	},
	{
		name: "substring",
		match: func(q query, e Entry) bool {
			if e.Slug != "" && strings.Contains(strings.ToLower(e.Slug), q.lower) {
				return true
			}
			if strings.Contains(strings.ToLower(e.Game), q.lower) {
				return true
			}
			if q.key == "" {
				return false
			}
			for _, a := range e.Aliases {
				if strings.Contains(textutil.Normalize(a), q.key) {
					return true
				}
			}
			return false
		},
	},
}

// ResolveId looks up an id, synthesizing a placeholder when it is not listed.
func ResolveId(c Catalog, appId int) Entry {
	e, ok := c.Lookup(appId)
	if ok {
		return e
	}
	return Entry{AppId: appId, Game: PlaceholderName}
}

// Resolve maps user input (an id, slug, name or alias) to one catalog entry.
func Resolve(c Catalog, input string) (Entry, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Entry{}, &ResolutionError{Input: input}
	}

	if digits, ok := asciiDigits(input); ok {
		appId, err := strconv.Atoi(digits)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: %s", ErrAppIdRange, input)
		}
		return ResolveId(c, appId), nil
	}

	q := query{
		lower: strings.ToLower(input),
		key:   textutil.Normalize(input),
	}
	for _, t := range tiers {
		for _, e := range c.Entries {
			if t.match(q, e) {
				slog.Debug("resolved game", "input", input, "tier", t.name, "app_id", e.AppId)
				return e, nil
			}
		}
	}

	return Entry{}, &ResolutionError{
		Input:      input,
		Suggestion: suggest(c, q.lower),
	}
}

// asciiDigits rewrites input made only of decimal digits (in any script,
// full-width included) as ascii digits.
func asciiDigits(input string) (string, bool) {
	var b strings.Builder
	for _, r := range input {
		if !unicode.Is(unicode.Nd, r) {
			return "", false
		}
		b.WriteByte(byte('0' + digitValue(r)))
	}
	return b.String(), true
}

// digitValue relies on Nd code points coming in contiguous runs of ten
// starting at zero.
func digitValue(r rune) int {
	start := r
	for unicode.Is(unicode.Nd, start-1) {
		start--
	}
	return int(r-start) % 10
}

func suggest(c Catalog, lower string) string {
	best := ""
	bestScore := suggestionThreshold
	for _, e := range c.Entries {
		score := matchr.JaroWinkler(lower, strings.ToLower(e.Game), false)
		if score > bestScore {
			best = e.Game
			bestScore = score
		}
	}
	return best
}
