// Package pipeline assembles a document into narrated audiobook files.
// It walks the detected sections in a single pass, narrates each chunk,
// inserts silence around chapter titles, and hands finished buffers to
// the output writer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/icewall905/audiobooker/internal/audio"
	"github.com/icewall905/audiobooker/internal/narrator"
	"github.com/icewall905/audiobooker/internal/output"
	"github.com/icewall905/audiobooker/internal/text"
)

// DefaultPauseSeconds is the silence inserted before and after a
// chapter title.
const DefaultPauseSeconds = 1.0

// Static errors for pipeline operations.
var (
	// ErrNarratorRequired is returned when no narrator is configured.
	ErrNarratorRequired = errors.New("pipeline: narrator is required")
	// ErrWriterRequired is returned when no output writer is configured.
	ErrWriterRequired = errors.New("pipeline: output writer is required")
	// ErrEmptyDocument is returned when the document has no speakable content.
	ErrEmptyDocument = errors.New("pipeline: document is empty")
	// ErrNoAudioGenerated is returned when every narration attempt failed.
	ErrNoAudioGenerated = errors.New("pipeline: no audio was generated")
)

// ProgressFunc is called after each narration attempt with the number of
// chunks processed so far and the total.
type ProgressFunc func(done, total int)

// Stats summarizes one assembly run.
type Stats struct {
	// Sections is the number of detected sections.
	Sections int `json:"sections"`
	// ChapterTitles is how many of those sections are titles.
	ChapterTitles int `json:"chapter_titles"`
	// ChunksTotal is the number of narration chunks attempted.
	ChunksTotal int `json:"chunks_total"`
	// ChunksFailed is the number of chunks skipped after narration failed.
	ChunksFailed int `json:"chunks_failed"`
	// Characters is the total character count submitted for narration.
	Characters int `json:"characters"`
	// Duration is the total audio length in seconds across all files.
	Duration float64 `json:"duration"`
}

// Result is the outcome of one assembly run.
type Result struct {
	Files []output.File
	Stats Stats
}

// Assembler drives the narration pipeline for one document at a time.
type Assembler struct {
	narrator   narrator.Narrator
	writer     *output.Writer
	pause      float64
	split      bool
	maxChunk   int
	name       string
	logger     *slog.Logger
	onProgress ProgressFunc
}

// AssemblerOption is a function that configures an Assembler.
type AssemblerOption func(*Assembler)

// WithPause sets the silence duration around chapter titles, in seconds.
// Zero disables the pauses; negative values are treated as zero.
func WithPause(seconds float64) AssemblerOption {
	return func(a *Assembler) {
		if seconds < 0 {
			seconds = 0
		}
		a.pause = seconds
	}
}

// WithSplitPerChapter controls the output topology. When enabled each
// chapter becomes its own file; otherwise the whole book is one file.
func WithSplitPerChapter(split bool) AssemblerOption {
	return func(a *Assembler) {
		a.split = split
	}
}

// WithMaxChunkLength sets the chunk size limit in characters.
func WithMaxChunkLength(n int) AssemblerOption {
	return func(a *Assembler) {
		a.maxChunk = n
	}
}

// WithOutputName sets the base name used for single-file output.
func WithOutputName(name string) AssemblerOption {
	return func(a *Assembler) {
		a.name = name
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) AssemblerOption {
	return func(a *Assembler) {
		a.onProgress = fn
	}
}

// WithAssemblerLogger sets the logger.
func WithAssemblerLogger(logger *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(n narrator.Narrator, w *output.Writer, opts ...AssemblerOption) (*Assembler, error) {
	if n == nil {
		return nil, ErrNarratorRequired
	}
	if w == nil {
		return nil, ErrWriterRequired
	}

	a := &Assembler{
		narrator: n,
		writer:   w,
		pause:    DefaultPauseSeconds,
		split:    true,
		maxChunk: text.DefaultMaxChunkLength,
		name:     "audiobook",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Assemble narrates doc and writes the resulting audio files.
//
// Individual chunk failures are logged and skipped so one bad sentence
// cannot sink a long book; the run fails only when nothing at all was
// narrated. Silence around titles never counts as narrated audio, so a
// run that produced only pauses still fails.
func (a *Assembler) Assemble(ctx context.Context, doc string) (Result, error) {
	sections := text.DetectChapters(doc)
	if len(sections) == 0 {
		return Result{}, ErrEmptyDocument
	}

	stats := Stats{
		Sections:      len(sections),
		ChapterTitles: text.CountChapterTitles(sections),
	}
	for _, s := range sections {
		stats.ChunksTotal += a.countChunks(s)
	}

	rate := a.narrator.SampleRate()

	run := &assemblyRun{
		buf:   audio.NewBuffer(rate),
		rate:  rate,
		total: stats.ChunksTotal,
	}

	for i, section := range sections {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("pipeline: assembly cancelled: %w", err)
		}

		if section.IsChapterTitle {
			if err := a.beginChapter(ctx, run, section, i == 0); err != nil {
				return Result{}, err
			}
			continue
		}

		if err := a.narrateContent(ctx, run, section.Text); err != nil {
			return Result{}, err
		}
	}

	if err := a.flush(ctx, run); err != nil {
		return Result{}, err
	}

	stats.ChunksFailed = run.failed
	stats.Characters = run.chars
	for _, f := range run.files {
		stats.Duration += f.Duration
	}

	if run.narratedTotal == 0 {
		return Result{Stats: stats}, ErrNoAudioGenerated
	}

	a.logger.Info("assembly complete",
		"files", len(run.files),
		"chunks", stats.ChunksTotal,
		"failed", stats.ChunksFailed,
		"duration_sec", stats.Duration,
	)

	return Result{Files: run.files, Stats: stats}, nil
}

// assemblyRun carries the mutable state of one Assemble call.
type assemblyRun struct {
	buf           *audio.Buffer
	rate          int
	chapter       int
	bufNarrated   int
	narratedTotal int
	done          int
	failed        int
	chars         int
	total         int
	files         []output.File
}

// countChunks returns how many narration attempts a section will take.
func (a *Assembler) countChunks(s text.Section) int {
	if s.IsChapterTitle {
		return 1
	}
	return len(text.SplitChunks(s.Text, a.maxChunk))
}

// beginChapter handles a title section: in split mode the previous
// chapter is flushed first, then the pauses and the narrated title open
// the next buffer. The pause before the title is skipped when the title
// is the very first section, so a book never starts with dead air.
func (a *Assembler) beginChapter(ctx context.Context, run *assemblyRun, section text.Section, first bool) error {
	if a.split {
		if err := a.flush(ctx, run); err != nil {
			return err
		}
	}
	run.chapter++

	if !first {
		a.appendSilence(run)
	}
	a.narrateChunk(ctx, run, section.Text)
	a.appendSilence(run)
	return nil
}

// narrateContent splits a content section into chunks and narrates each.
func (a *Assembler) narrateContent(ctx context.Context, run *assemblyRun, content string) error {
	for _, chunk := range text.SplitChunks(content, a.maxChunk) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline: assembly cancelled: %w", err)
		}
		a.narrateChunk(ctx, run, chunk)
	}
	return nil
}

// narrateChunk narrates one chunk, appending the clip on success and
// counting a skip on failure.
func (a *Assembler) narrateChunk(ctx context.Context, run *assemblyRun, chunk string) {
	run.chars += len(chunk)
	clip, err := a.narrator.Narrate(ctx, chunk)
	if err != nil {
		run.failed++
		a.logger.Warn("chunk narration failed, skipping",
			"chunk_chars", len(chunk),
			"error", err,
		)
	} else if appendErr := run.buf.Append(clip); appendErr != nil {
		run.failed++
		a.logger.Warn("chunk rejected, skipping", "error", appendErr)
	} else {
		run.bufNarrated++
		run.narratedTotal++
	}

	run.done++
	if a.onProgress != nil {
		a.onProgress(run.done, run.total)
	}
}

// appendSilence adds the configured pause to the current buffer.
// Silence is generated at the narrator's rate so it always mixes.
func (a *Assembler) appendSilence(run *assemblyRun) {
	if a.pause <= 0 {
		return
	}
	_ = run.buf.Append(audio.Silence(a.pause, run.rate))
}

// flush writes the current buffer as a chapter file and starts a fresh
// one. Buffers holding no narrated audio are dropped, never written, so
// a chapter whose every chunk failed does not produce a silence-only file.
func (a *Assembler) flush(ctx context.Context, run *assemblyRun) error {
	if run.bufNarrated == 0 {
		run.buf = audio.NewBuffer(run.rate)
		return nil
	}

	name := a.name
	if a.split {
		name = fmt.Sprintf("chapter_%03d", run.chapter)
	}

	f, err := a.writer.Write(ctx, name, run.buf)
	if err != nil {
		return fmt.Errorf("pipeline: write %s: %w", name, err)
	}

	a.logger.Info("chapter written", "file", f.Path, "duration_sec", f.Duration)

	run.files = append(run.files, f)
	run.buf = audio.NewBuffer(run.rate)
	run.bufNarrated = 0
	return nil
}
