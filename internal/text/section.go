// Package text turns a raw document into the ordered, speakable units the
// pipeline narrates: labeled sections (chapter titles vs. content) and
// bounded-length, sentence-safe chunks.
package text

// Section is a contiguous slice of the document in document order, labeled
// as either a chapter title or plain content. Title sections are always a
// single trimmed line.
type Section struct {
	// Text is the trimmed section content.
	Text string
	// IsChapterTitle marks sections that match a chapter heading pattern.
	IsChapterTitle bool
}
