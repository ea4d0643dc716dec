package keywords

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// Parse reads one keyword per line, skipping blank lines and `#` comments.
func Parse(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimPrefix(scanner.Text(), "\ufeff")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keyword file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Collect joins a single keyword with the contents of a keyword file, the
// single keyword first. either may be empty.
func Collect(keyword, listFile string) ([]string, error) {
	var out []string
	keyword = strings.TrimSpace(keyword)
	if keyword != "" {
		out = append(out, keyword)
	}
	if listFile == "" {
		return out, nil
	}
	fromFile, err := Read(listFile)
	if err != nil {
		return nil, err
	}
	return append(out, fromFile...), nil
}

var noteRegex = regexp.MustCompile(`（[^）]*）`)

// Clean drops full-width parenthesized notes, "Omaha（奥马哈）" searches as "Omaha".
func Clean(keyword string) string {
	return strings.TrimSpace(noteRegex.ReplaceAllString(strings.TrimSpace(keyword), ""))
}
