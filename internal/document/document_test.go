package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSupported(t *testing.T) {
	for _, name := range []string{"book.txt", "book.md", "book.HTML", "book.pdf", "book.docx"} {
		if !Supported(name) {
			t.Errorf("expected %q to be supported", name)
		}
	}
	for _, name := range []string{"book.epub", "book.mobi", "book"} {
		if Supported(name) {
			t.Errorf("expected %q to be unsupported", name)
		}
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	_, err := Extract(strings.NewReader("data"), "book.epub")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtract_Text(t *testing.T) {
	got, err := Extract(strings.NewReader("Line one.\r\nLine two.\r\n"), "book.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Line one.\nLine two." {
		t.Errorf("got %q", got)
	}
}

func TestExtract_Markdown(t *testing.T) {
	input := "# Chapter 1\n\nFirst paragraph.\n\nSecond paragraph.\n\n# Chapter 2\n\nMore text.\n"

	got, err := Extract(strings.NewReader(input), "book.md")
	if err != nil {
		t.Fatal(err)
	}

	want := "Chapter 1\n\nFirst paragraph.\n\nSecond paragraph.\n\nChapter 2\n\nMore text."
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestExtract_MarkdownList(t *testing.T) {
	input := "Intro.\n\n- first item\n- second item\n"

	got, err := Extract(strings.NewReader(input), "book.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "first item") || !strings.Contains(got, "second item") {
		t.Errorf("list items missing: %q", got)
	}
}

func TestExtract_HTML(t *testing.T) {
	input := `<html><head><title>ignored</title><style>p{color:red}</style></head>
<body>
<h1>Chapter 1</h1>
<p>First paragraph.</p>
<p>Second
paragraph.</p>
<script>alert("skip me")</script>
</body></html>`

	got, err := Extract(strings.NewReader(input), "book.html")
	if err != nil {
		t.Fatal(err)
	}

	want := "Chapter 1\n\nFirst paragraph.\n\nSecond paragraph."
	if got != want {
		t.Errorf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestExtract_HTMLNoBlocks(t *testing.T) {
	got, err := Extract(strings.NewReader("<html><body>bare text</body></html>"), "book.html")
	if err != nil {
		t.Fatal(err)
	}
	if got != "bare text" {
		t.Errorf("got %q", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.txt")
	if err := os.WriteFile(path, []byte("Chapter 1\nHello."), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Chapter 1\nHello." {
		t.Errorf("got %q", got)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
