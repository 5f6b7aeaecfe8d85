package text

import (
	"regexp"
	"strings"
)

// DefaultMaxChunkLength is the default upper bound on chunk size in
// characters. Chatterbox degrades noticeably past ~300 characters.
const DefaultMaxChunkLength = 300

// paragraphSplit matches one or more blank lines (including
// whitespace-only lines) separating paragraphs.
var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// SplitChunks splits text into speakable chunks no longer than maxLength
// characters without ever breaking a sentence. Paragraph boundaries are
// honored first; paragraphs that fit are emitted verbatim, longer ones are
// split at sentence boundaries and greedily re-joined.
//
// The limit is soft: a single sentence longer than maxLength is emitted
// whole rather than truncated, so callers must tolerate oversized chunks.
// Empty or whitespace-only input yields no chunks.
func SplitChunks(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxChunkLength
	}

	var chunks []string
	for _, paragraph := range paragraphSplit.Split(text, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if len(paragraph) <= maxLength {
			chunks = append(chunks, paragraph)
			continue
		}

		chunks = append(chunks, splitParagraph(paragraph, maxLength)...)
	}
	return chunks
}

// splitParagraph breaks one over-long paragraph at sentence boundaries and
// accumulates sentences greedily, counting the joining space against the
// limit before each append.
func splitParagraph(paragraph string, maxLength int) []string {
	var (
		chunks  []string
		current string
	)

	for _, sentence := range splitSentences(paragraph) {
		if current != "" && len(current)+1+len(sentence) > maxLength {
			chunks = append(chunks, current)
			current = sentence
			continue
		}
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitSentences splits on sentence-terminal punctuation (., !, ?)
// followed by whitespace. The punctuation stays attached to the preceding
// sentence; the separating whitespace is consumed.
func splitSentences(s string) []string {
	var (
		sentences []string
		start     int
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		// Consume any run of terminal punctuation ("..." , "?!").
		end := i + 1
		for end < len(s) && (s[end] == '.' || s[end] == '!' || s[end] == '?') {
			end++
		}
		if end >= len(s) || !isSpace(s[end]) {
			i = end - 1
			continue
		}

		sentence := strings.TrimSpace(s[start:end])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}

		// Skip the whitespace run to the start of the next sentence.
		for end < len(s) && isSpace(s[end]) {
			end++
		}
		start = end
		i = end - 1
	}

	if rest := strings.TrimSpace(s[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
