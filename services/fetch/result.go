package fetch

import (
	"errors"
)

type Outcome string

const (
	Resolved       Outcome = "resolved"
	NoSearchResult Outcome = "no_search_result"
	NoDirectLink   Outcome = "no_direct_link"
	Failed         Outcome = "failed"
)

var (
	ErrEmptyKeyword   = errors.New("empty keyword")
	ErrNoSearchResult = errors.New("no search result")
	ErrNoDirectLink   = errors.New("no direct link resolved")
)

// Result is the outcome of one keyword. misses and hard failures both carry
// Err so they can be reported without stopping the run.
type Result struct {
	Keyword     string
	Outcome     Outcome
	Title       string
	DirectUrl   string
	WorkshopUrl string
	File        string
	Err         error
}

func (r Result) Ok() bool {
	return r.Outcome == Resolved
}

func (r Result) ErrorString() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Summary collects every result of a run.
type Summary struct {
	Results    []Result
	ReportPath string
}

func (s Summary) Counts() (success, failed int) {
	for _, r := range s.Results {
		if r.Ok() {
			success++
			continue
		}
		failed++
	}
	return success, failed
}
