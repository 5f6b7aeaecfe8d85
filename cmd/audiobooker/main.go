// Package main provides a batch command line for turning a document
// into audiobook files without running the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/icewall905/audiobooker/internal/bootstrap"
	"github.com/icewall905/audiobooker/internal/config"
	"github.com/icewall905/audiobooker/internal/document"
	"github.com/icewall905/audiobooker/internal/encoder"
	"github.com/icewall905/audiobooker/internal/output"
	"github.com/icewall905/audiobooker/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	docPath := flag.String("document", "", "path to the document to narrate (txt, md, html, pdf, docx)")
	outDir := flag.String("out", "", "output directory (default: from OUTPUT_DIR)")
	name := flag.String("name", "audiobook", "output file name when not splitting per chapter")
	pause := flag.Float64("pause", -1, "pause around chapter titles in seconds (default: from CHAPTER_PAUSE_SEC)")
	split := flag.Bool("split", true, "write one file per chapter")
	mp3 := flag.Bool("mp3", false, "convert finished files to MP3 with ffmpeg")
	maxChunk := flag.Int("max-chunk", 0, "chunk size limit in characters (default: from MAX_CHUNK_LENGTH)")
	voiceRef := flag.String("voice-ref", "", "voice reference file (default: from VOICE_REF_PATH)")
	flag.Parse()

	if *docPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag -document")
	}

	// A .env file is optional; the environment wins when both are set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *pause >= 0 {
		cfg.ChapterPauseSec = *pause
	}
	if *maxChunk > 0 {
		cfg.MaxChunkLength = *maxChunk
	}
	if *voiceRef != "" {
		cfg.VoiceRefPath = *voiceRef
	}
	cfg.SplitPerChapter = *split
	cfg.EncodeMP3 = *mp3

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	voice, err := bootstrap.NewNarrator(cfg, logger)
	if err != nil {
		return err
	}

	doc, err := document.Load(*docPath)
	if err != nil {
		return err
	}

	writer := output.NewWriter(cfg.OutputDir,
		output.WithEncoder(encoder.NewFFmpeg(cfg.FFmpegPath)),
		output.WithMP3(cfg.EncodeMP3),
		output.WithLogger(logger),
	)

	asm, err := pipeline.NewAssembler(voice, writer,
		pipeline.WithPause(cfg.ChapterPauseSec),
		pipeline.WithSplitPerChapter(cfg.SplitPerChapter),
		pipeline.WithMaxChunkLength(cfg.MaxChunkLength),
		pipeline.WithOutputName(*name),
		pipeline.WithAssemblerLogger(logger),
		pipeline.WithProgress(func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rnarrating chunk %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}),
	)
	if err != nil {
		return err
	}

	res, err := asm.Assemble(ctx, doc)
	if err != nil {
		return err
	}

	for _, f := range res.Files {
		fmt.Printf("%s  %.1fs\n", f.Path, f.Duration)
	}
	if res.Stats.ChunksFailed > 0 {
		fmt.Printf("warning: %d of %d chunks failed narration\n",
			res.Stats.ChunksFailed, res.Stats.ChunksTotal)
	}
	fmt.Printf("total audio: %.1fs from %d characters\n", res.Stats.Duration, res.Stats.Characters)
	return nil
}
