package process

import (
	"regexp"
	"strings"
)

// How many leading/trailing non-empty lines of a page are candidates for
// running headers and footers.
const edgeLines = 2

// A pattern must recur on at least this share of pages (and on no fewer
// than two) to count as boilerplate.
const repeatThreshold = 0.6

var digitRun = regexp.MustCompile(`\d+`)

// normalizeLine canonicalizes a line for cross-page comparison: whitespace
// collapsed, digit runs replaced so varying page numbers still match.
func normalizeLine(line string) string {
	line = strings.Join(strings.Fields(line), " ")
	return digitRun.ReplaceAllString(line, "#")
}

// pageEdges returns the first and last non-empty lines of a page.
func pageEdges(text string) (first, last []string) {
	var nonEmpty []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			nonEmpty = append(nonEmpty, trimmed)
		}
	}
	for i := 0; i < edgeLines && i < len(nonEmpty); i++ {
		first = append(first, nonEmpty[i])
	}
	start := len(nonEmpty) - edgeLines
	if start < 0 {
		start = 0
	}
	// A line can't be both header and footer candidate on a short page.
	if start < len(first) {
		start = len(first)
	}
	for i := start; i < len(nonEmpty); i++ {
		last = append(last, nonEmpty[i])
	}
	return first, last
}

// DetectBoilerplate finds normalized line patterns that repeat at page tops
// (headers) and bottoms (footers) across the document.
func DetectBoilerplate(pageTexts []string) (headers, footers []string) {
	if len(pageTexts) < 2 {
		return nil, nil
	}
	headerCount := make(map[string]int)
	footerCount := make(map[string]int)
	var headerOrder, footerOrder []string

	for _, text := range pageTexts {
		first, last := pageEdges(text)
		for _, line := range first {
			key := normalizeLine(line)
			if headerCount[key] == 0 {
				headerOrder = append(headerOrder, key)
			}
			headerCount[key]++
		}
		for _, line := range last {
			key := normalizeLine(line)
			if footerCount[key] == 0 {
				footerOrder = append(footerOrder, key)
			}
			footerCount[key]++
		}
	}

	min := int(repeatThreshold * float64(len(pageTexts)))
	if min < 2 {
		min = 2
	}
	for _, key := range headerOrder {
		if headerCount[key] >= min {
			headers = append(headers, key)
		}
	}
	for _, key := range footerOrder {
		if footerCount[key] >= min {
			footers = append(footers, key)
		}
	}
	return headers, footers
}

// StripBoilerplate removes lines matching the detected patterns from a
// page's text. Only the page edges are considered, so body text that
// happens to normalize like a header survives.
func StripBoilerplate(text string, headers, footers []string) (string, bool) {
	headerSet := make(map[string]bool, len(headers))
	for _, h := range headers {
		headerSet[h] = true
	}
	footerSet := make(map[string]bool, len(footers))
	for _, f := range footers {
		footerSet[f] = true
	}

	first, last := pageEdges(text)
	drop := make(map[string]bool)
	for _, line := range first {
		if headerSet[normalizeLine(line)] {
			drop[line] = true
		}
	}
	for _, line := range last {
		if footerSet[normalizeLine(line)] {
			drop[line] = true
		}
	}
	if len(drop) == 0 {
		return text, false
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if drop[strings.TrimSpace(line)] {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), true
}
