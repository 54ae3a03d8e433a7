// Package watchlist reads the operator-maintained list of domains to monitor.
package watchlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CommentPrefix marks a watchlist line as a comment.
const CommentPrefix = "#"

// Load reads the watchlist file at path. A missing or unreadable file is a
// fatal condition for the caller: with no watchlist there is nothing to check.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer f.Close()

	domains, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read watchlist %s: %w", path, err)
	}
	return domains, nil
}

// Parse extracts domain entries from newline-delimited text. Lines are
// trimmed; blank lines and lines starting with the comment prefix are
// skipped. Entries are otherwise passed through verbatim: no lowercasing,
// no deduplication, order preserved.
func Parse(r io.Reader) ([]string, error) {
	var domains []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return domains, nil
}
