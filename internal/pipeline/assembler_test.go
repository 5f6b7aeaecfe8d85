package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icewall905/audiobooker/internal/audio"
	"github.com/icewall905/audiobooker/internal/output"
)

// fakeNarrator returns a fixed-length clip per chunk and can be told to
// fail for specific texts.
type fakeNarrator struct {
	rate    int
	clipLen int
	failOn  map[string]bool
	failAll bool
	calls   []string
}

func (f *fakeNarrator) Narrate(_ context.Context, text string) (audio.Clip, error) {
	f.calls = append(f.calls, text)
	if f.failAll || f.failOn[text] {
		return audio.Clip{}, errors.New("synthesis failed")
	}
	return audio.Clip{Samples: make([]int16, f.clipLen), SampleRate: f.rate}, nil
}

func (f *fakeNarrator) SampleRate() int {
	return f.rate
}

func newFake() *fakeNarrator {
	return &fakeNarrator{rate: 24000, clipLen: 1000}
}

const twoChapterDoc = "Chapter 1\nText A\n\nChapter 2\nText B"

func TestAssemble_SplitPerChapter(t *testing.T) {
	fake := newFake()
	w := output.NewWriter(t.TempDir())
	a, err := NewAssembler(fake, w, WithSplitPerChapter(true))
	require.NoError(t, err)

	res, err := a.Assemble(context.Background(), twoChapterDoc)
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	assert.Equal(t, "chapter_001.wav", filepath.Base(res.Files[0].Path))
	assert.Equal(t, "chapter_002.wav", filepath.Base(res.Files[1].Path))

	// Chapter 1 opens the book: title, pause, content. Chapter 2 also
	// gets a pause before its title.
	assert.InDelta(t, float64(1000+24000+1000)/24000, res.Files[0].Duration, 1e-9)
	assert.InDelta(t, float64(24000+1000+24000+1000)/24000, res.Files[1].Duration, 1e-9)

	assert.Equal(t, []string{"Chapter 1", "Text A", "Chapter 2", "Text B"}, fake.calls)

	assert.Equal(t, 4, res.Stats.Sections)
	assert.Equal(t, 2, res.Stats.ChapterTitles)
	assert.Equal(t, 4, res.Stats.ChunksTotal)
	assert.Equal(t, 0, res.Stats.ChunksFailed)
	assert.Equal(t, len("Chapter 1")+len("Text A")+len("Chapter 2")+len("Text B"), res.Stats.Characters)
}

func TestAssemble_SingleFile(t *testing.T) {
	fake := newFake()
	w := output.NewWriter(t.TempDir())
	a, err := NewAssembler(fake, w,
		WithSplitPerChapter(false),
		WithOutputName("mybook"),
	)
	require.NoError(t, err)

	res, err := a.Assemble(context.Background(), twoChapterDoc)
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, "mybook.wav", filepath.Base(res.Files[0].Path))
}

func TestAssemble_TopologiesHaveEqualDuration(t *testing.T) {
	split, err := NewAssembler(newFake(), output.NewWriter(t.TempDir()),
		WithSplitPerChapter(true))
	require.NoError(t, err)
	single, err := NewAssembler(newFake(), output.NewWriter(t.TempDir()),
		WithSplitPerChapter(false))
	require.NoError(t, err)

	splitRes, err := split.Assemble(context.Background(), twoChapterDoc)
	require.NoError(t, err)
	singleRes, err := single.Assemble(context.Background(), twoChapterDoc)
	require.NoError(t, err)

	assert.InDelta(t, singleRes.Stats.Duration, splitRes.Stats.Duration, 1e-9)
}

func TestAssemble_LeadingContentIsChapterZero(t *testing.T) {
	fake := newFake()
	w := output.NewWriter(t.TempDir())
	a, err := NewAssembler(fake, w, WithSplitPerChapter(true))
	require.NoError(t, err)

	res, err := a.Assemble(context.Background(), "A preface.\n\nChapter 1\nBody text.")
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	assert.Equal(t, "chapter_000.wav", filepath.Base(res.Files[0].Path))
	assert.Equal(t, "chapter_001.wav", filepath.Base(res.Files[1].Path))
}

func TestAssemble_NoMarkersSingleChapter(t *testing.T) {
	fake := newFake()
	w := output.NewWriter(t.TempDir())
	a, err := NewAssembler(fake, w, WithSplitPerChapter(true))
	require.NoError(t, err)

	res, err := a.Assemble(context.Background(), "Just prose with no markers at all.")
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, "chapter_000.wav", filepath.Base(res.Files[0].Path))
	assert.Equal(t, 0, res.Stats.ChapterTitles)
}

func TestAssemble_FailedChunkIsSkipped(t *testing.T) {
	fake := newFake()
	fake.failOn = map[string]bool{"Text A": true}
	w := output.NewWriter(t.TempDir())
	a, err := NewAssembler(fake, w, WithSplitPerChapter(true))
	require.NoError(t, err)

	res, err := a.Assemble(context.Background(), twoChapterDoc)
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	assert.Equal(t, 1, res.Stats.ChunksFailed)
	// Chapter 1 keeps its title and pause but loses the failed content.
	assert.InDelta(t, float64(1000+24000)/24000, res.Files[0].Duration, 1e-9)
}

func TestAssemble_ChapterWithAllChunksFailedIsDropped(t *testing.T) {
	fake := newFake()
	fake.failOn = map[string]bool{"Chapter 1": true, "Text A": true}
	w := output.NewWriter(t.TempDir())
	a, err := NewAssembler(fake, w, WithSplitPerChapter(true))
	require.NoError(t, err)

	res, err := a.Assemble(context.Background(), twoChapterDoc)
	require.NoError(t, err)

	// No silence-only file for the dead chapter.
	require.Len(t, res.Files, 1)
	assert.Equal(t, "chapter_002.wav", filepath.Base(res.Files[0].Path))
	assert.Equal(t, 2, res.Stats.ChunksFailed)
}

func TestAssemble_AllFailed(t *testing.T) {
	fake := newFake()
	fake.failAll = true
	w := output.NewWriter(t.TempDir())
	a, err := NewAssembler(fake, w)
	require.NoError(t, err)

	res, err := a.Assemble(context.Background(), twoChapterDoc)
	assert.ErrorIs(t, err, ErrNoAudioGenerated)
	assert.Empty(t, res.Files)
	assert.Equal(t, 4, res.Stats.ChunksFailed)
}

func TestAssemble_EmptyDocument(t *testing.T) {
	a, err := NewAssembler(newFake(), output.NewWriter(t.TempDir()))
	require.NoError(t, err)

	_, err = a.Assemble(context.Background(), "   \n\n  ")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestAssemble_PauseDisabled(t *testing.T) {
	fake := newFake()
	w := output.NewWriter(t.TempDir())
	a, err := NewAssembler(fake, w, WithSplitPerChapter(true), WithPause(0))
	require.NoError(t, err)

	res, err := a.Assemble(context.Background(), twoChapterDoc)
	require.NoError(t, err)

	require.Len(t, res.Files, 2)
	assert.InDelta(t, float64(2000)/24000, res.Files[0].Duration, 1e-9)
	assert.InDelta(t, float64(2000)/24000, res.Files[1].Duration, 1e-9)
}

func TestAssemble_Progress(t *testing.T) {
	fake := newFake()
	w := output.NewWriter(t.TempDir())

	var dones []int
	var lastTotal int
	a, err := NewAssembler(fake, w, WithProgress(func(done, total int) {
		dones = append(dones, done)
		lastTotal = total
	}))
	require.NoError(t, err)

	_, err = a.Assemble(context.Background(), twoChapterDoc)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4}, dones)
	assert.Equal(t, 4, lastTotal)
}

func TestAssemble_Cancelled(t *testing.T) {
	a, err := NewAssembler(newFake(), output.NewWriter(t.TempDir()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Assemble(ctx, twoChapterDoc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAssembler_Validation(t *testing.T) {
	_, err := NewAssembler(nil, output.NewWriter(t.TempDir()))
	assert.ErrorIs(t, err, ErrNarratorRequired)

	_, err = NewAssembler(newFake(), nil)
	assert.ErrorIs(t, err, ErrWriterRequired)
}

func TestAssemble_LongContentSplitsIntoChunks(t *testing.T) {
	fake := newFake()
	w := output.NewWriter(t.TempDir())
	a, err := NewAssembler(fake, w, WithMaxChunkLength(40))
	require.NoError(t, err)

	doc := "First sentence here. Second sentence here. Third sentence here."
	res, err := a.Assemble(context.Background(), doc)
	require.NoError(t, err)

	assert.Greater(t, res.Stats.ChunksTotal, 1)
	assert.Equal(t, res.Stats.ChunksTotal, len(fake.calls))
	for _, call := range fake.calls {
		assert.LessOrEqual(t, len(call), 40)
	}
}
