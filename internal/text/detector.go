package text

import (
	"regexp"
	"strings"
)

// chapterPatterns recognizes conventional structural markers at the start
// of a line. Order matters: the first pattern that matches a line wins.
var chapterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^chapter\s+\d+`),
	regexp.MustCompile(`(?i)^part\s+\d+`),
	regexp.MustCompile(`(?i)^section\s+\d+`),
	regexp.MustCompile(`(?i)^book\s+\d+`),
	regexp.MustCompile(`(?i)^ch\.\s*\d+`),
	regexp.MustCompile(`^\d+\.\s+\p{Lu}`),
}

// DetectChapters scans the document line by line and partitions it into an
// ordered sequence of sections. Lines matching a chapter pattern become
// one-line title sections; everything between titles becomes content
// sections. A document with no recognizable markers comes back as a single
// content section; this is the common case and not an error.
func DetectChapters(doc string) []Section {
	lines := strings.Split(doc, "\n")

	var titleIdx []int
	for i, line := range lines {
		if isChapterHeading(strings.TrimSpace(line)) {
			titleIdx = append(titleIdx, i)
		}
	}

	if len(titleIdx) == 0 {
		if trimmed := strings.TrimSpace(doc); trimmed != "" {
			return []Section{{Text: trimmed}}
		}
		return nil
	}

	var sections []Section

	appendContent := func(from, to int) {
		content := strings.TrimSpace(strings.Join(lines[from:to], "\n"))
		if content != "" {
			sections = append(sections, Section{Text: content})
		}
	}

	// Content before the first title, if any.
	appendContent(0, titleIdx[0])

	for n, idx := range titleIdx {
		sections = append(sections, Section{
			Text:           strings.TrimSpace(lines[idx]),
			IsChapterTitle: true,
		})

		end := len(lines)
		if n+1 < len(titleIdx) {
			end = titleIdx[n+1]
		}
		appendContent(idx+1, end)
	}

	return sections
}

// isChapterHeading reports whether a trimmed line matches any chapter
// pattern. An empty line never matches.
func isChapterHeading(line string) bool {
	if line == "" {
		return false
	}
	for _, p := range chapterPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// CountChapterTitles returns how many sections are chapter titles.
func CountChapterTitles(sections []Section) int {
	n := 0
	for _, s := range sections {
		if s.IsChapterTitle {
			n++
		}
	}
	return n
}
