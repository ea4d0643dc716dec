package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var reportFieldReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func reportField(value string) string {
	return strings.TrimSpace(reportFieldReplacer.Replace(value))
}

// ReportName is the mapping file name for a batch started at `t`.
func ReportName(t time.Time) string {
	return fmt.Sprintf("workshop_mapping_%s.txt", t.Format("20060102_150405"))
}

// FormatReport renders results as a tab separated table with a header row.
func FormatReport(results []Result) string {
	var b strings.Builder
	b.WriteString("keyword\tworkshop_url\ttitle\tdirect_url\tstatus\terror\n")
	for _, r := range results {
		fields := []string{
			reportField(r.Keyword),
			reportField(r.WorkshopUrl),
			reportField(r.Title),
			reportField(r.DirectUrl),
			string(r.Outcome),
			reportField(r.ErrorString()),
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteReport saves the batch mapping into `dir` and returns its path.
func WriteReport(dir string, startedAt time.Time, results []Result) (string, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ReportName(startedAt))
	err = os.WriteFile(path, []byte(FormatReport(results)), 0644)
	if err != nil {
		return "", err
	}
	return path, nil
}
