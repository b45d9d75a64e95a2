package identity

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"leadhunt-engine/internal/scrape/util"
)

// ReadLines returns trimmed lines, skipping blanks and '#' comments.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// ReadURLFile keeps linkedin.com URLs only, deduped case-insensitively (first form wins).
func ReadURLFile(path string) ([]string, error) {
	return ReadInputFile(path, false)
}

// ReadInputFile is ReadURLFile that optionally keeps plain company names too.
// Non-LinkedIn URLs are always dropped.
func ReadInputFile(path string, allowNames bool) ([]string, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []string
	for _, line := range lines {
		switch {
		case util.IsLinkedInURL(line):
		case allowNames && !util.LooksLikeURL(line):
		default:
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
	}
	return out, nil
}
