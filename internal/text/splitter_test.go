package text

import (
	"strings"
	"testing"
)

func TestSplitChunks_ShortTextPassesThrough(t *testing.T) {
	chunks := SplitChunks("A short paragraph.", 300)
	if len(chunks) != 1 || chunks[0] != "A short paragraph." {
		t.Fatalf("got %q", chunks)
	}
}

func TestSplitChunks_ParagraphBoundaries(t *testing.T) {
	chunks := SplitChunks("First paragraph.\n\nSecond paragraph.\n \nThird.", 300)
	want := []string{"First paragraph.", "Second paragraph.", "Third."}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks %q, want %d", len(chunks), chunks, len(want))
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: got %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestSplitChunks_LengthBound(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("This sentence is here to pad the paragraph out. ")
	}
	chunks := SplitChunks(sb.String(), 120)

	if len(chunks) < 2 {
		t.Fatalf("expected the paragraph to be split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 120 {
			t.Errorf("chunk %d exceeds limit: %d chars", i, len(c))
		}
	}
}

func TestSplitChunks_SentencesNeverBroken(t *testing.T) {
	text := "One two three. Four five six! Seven eight nine? Ten eleven twelve."
	chunks := SplitChunks(text, 20)

	for _, c := range chunks {
		last := c[len(c)-1]
		if last != '.' && last != '!' && last != '?' {
			t.Errorf("chunk does not end at a sentence boundary: %q", c)
		}
	}
}

func TestSplitChunks_Reconstruction(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota!\n\nKappa lambda mu? Nu xi omicron."
	chunks := SplitChunks(text, 25)

	joined := strings.Join(chunks, " ")
	normalized := strings.Join(strings.Fields(text), " ")
	if joined != normalized {
		t.Errorf("joined chunks differ from source:\n got  %q\n want %q", joined, normalized)
	}
}

func TestSplitChunks_OversizedSentenceEmittedWhole(t *testing.T) {
	long := "This single sentence runs well past the configured limit without any terminal punctuation along the way until the very end."
	chunks := SplitChunks(long, 40)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != long {
		t.Errorf("oversized sentence was altered: %q", chunks[0])
	}
}

func TestSplitChunks_GreedyPacking(t *testing.T) {
	// Each sentence is 8 chars; with the joining space two fit in 17.
	chunks := SplitChunks("Aaa bbb. Ccc ddd. Eee fff.", 17)
	want := []string{"Aaa bbb. Ccc ddd.", "Eee fff."}
	if len(chunks) != 2 || chunks[0] != want[0] || chunks[1] != want[1] {
		t.Errorf("got %q, want %q", chunks, want)
	}
}

func TestSplitChunks_PunctuationRuns(t *testing.T) {
	sentences := splitSentences("Really?! Yes... Fine.")
	want := []string{"Really?!", "Yes...", "Fine."}
	if len(sentences) != len(want) {
		t.Fatalf("got %q", sentences)
	}
	for i := range want {
		if sentences[i] != want[i] {
			t.Errorf("sentence %d: got %q, want %q", i, sentences[i], want[i])
		}
	}
}

func TestSplitChunks_AbbreviationMidSentence(t *testing.T) {
	// A period not followed by whitespace does not end a sentence.
	sentences := splitSentences("Visit example.com today. Then rest.")
	want := []string{"Visit example.com today.", "Then rest."}
	if len(sentences) != 2 || sentences[0] != want[0] || sentences[1] != want[1] {
		t.Errorf("got %q, want %q", sentences, want)
	}
}

func TestSplitChunks_Empty(t *testing.T) {
	if got := SplitChunks("", 300); got != nil {
		t.Errorf("empty input: got %q", got)
	}
	if got := SplitChunks("\n\n  \n", 300); got != nil {
		t.Errorf("whitespace input: got %q", got)
	}
}

func TestSplitChunks_DefaultLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("Padding sentence number one of several in a row. ")
	}
	chunks := SplitChunks(sb.String(), 0)
	for i, c := range chunks {
		if len(c) > DefaultMaxChunkLength {
			t.Errorf("chunk %d exceeds default limit: %d chars", i, len(c))
		}
	}
}
