package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/icewall905/audiobooker/internal/document"
	"github.com/icewall905/audiobooker/internal/encoder"
	"github.com/icewall905/audiobooker/internal/narrator"
	"github.com/icewall905/audiobooker/internal/output"
	"github.com/icewall905/audiobooker/internal/pipeline"
	"github.com/icewall905/audiobooker/internal/storage"
	"github.com/icewall905/audiobooker/internal/text"
)

// Static errors for service operations.
var (
	// ErrDocumentRequired is returned when the submitted document is empty.
	ErrDocumentRequired = errors.New("job: document is required")
	// ErrDocumentNameRequired is returned when the document filename is missing.
	ErrDocumentNameRequired = errors.New("job: document name is required")
)

// SubmitInput contains the input parameters for a new audiobook job.
type SubmitInput struct {
	// DocumentName is the original filename, used to pick the extractor.
	DocumentName string
	// Document is the raw file content.
	Document []byte
	// PushToS3 indicates whether to upload finished files to S3.
	PushToS3 bool
}

// Settings holds the per-service assembly configuration.
type Settings struct {
	// OutputDir is the root directory for finished audio; each job gets
	// a subdirectory named after its ID.
	OutputDir string
	// PauseSeconds is the silence around chapter titles.
	PauseSeconds float64
	// SplitPerChapter selects one file per chapter versus one file total.
	SplitPerChapter bool
	// MaxChunkLength is the chunk size limit in characters.
	MaxChunkLength int
	// EncodeMP3 enables MP3 conversion of finished files.
	EncodeMP3 bool
}

// Service orchestrates the audiobook generation workflow. Submission
// returns immediately; narration runs in a background goroutine and the
// job record tracks its progress.
type Service struct {
	repo     Repository
	store    storage.Storage
	narrator narrator.Narrator
	enc      encoder.Encoder
	settings Settings
	logger   *slog.Logger
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithStorage sets the storage used for S3 delivery and file cleanup.
func WithStorage(store storage.Storage) ServiceOption {
	return func(s *Service) {
		s.store = store
	}
}

// WithEncoder sets the encoder used for MP3 conversion.
func WithEncoder(enc encoder.Encoder) ServiceOption {
	return func(s *Service) {
		s.enc = enc
	}
}

// WithSettings sets the assembly configuration.
func WithSettings(settings Settings) ServiceOption {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new Service. The encoder may be nil when MP3
// output is disabled; storage may be nil when S3 delivery is not used.
func NewService(repo Repository, n narrator.Narrator, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		narrator: n,
		settings: Settings{
			OutputDir:       "out",
			PauseSeconds:    pipeline.DefaultPauseSeconds,
			SplitPerChapter: true,
			MaxChunkLength:  text.DefaultMaxChunkLength,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the input, creates a job, and starts narration in
// the background. The returned job is in IN_QUEUE status.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*Job, error) {
	if len(input.Document) == 0 {
		return nil, ErrDocumentRequired
	}
	if input.DocumentName == "" {
		return nil, ErrDocumentNameRequired
	}
	if !document.Supported(input.DocumentName) {
		return nil, fmt.Errorf("%w: %s", document.ErrUnsupportedFormat, input.DocumentName)
	}

	j := New()
	j.DocumentName = input.DocumentName
	j.PushToS3 = input.PushToS3

	s.logger.Info("creating audiobook job",
		slog.String("job_id", j.ID),
		slog.String("document", input.DocumentName),
		slog.Int("bytes", len(input.Document)),
		slog.Bool("push_to_s3", input.PushToS3),
	)

	if err := s.repo.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("job: save: %w", err)
	}

	// Narration outlives the submit request.
	go s.process(context.WithoutCancel(ctx), j, input)

	return j.Clone(), nil
}

// GetJob retrieves a job by ID.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all jobs.
func (s *Service) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// DeleteJob removes a job and its output files.
func (s *Service) DeleteJob(ctx context.Context, id string) error {
	j, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if s.store != nil && len(j.OutputFiles) > 0 {
		paths := make([]string, 0, len(j.OutputFiles))
		for _, f := range j.OutputFiles {
			paths = append(paths, f.Path)
		}
		if err := s.store.CleanupTemp(ctx, paths); err != nil {
			s.logger.Warn("failed to remove output files", "job_id", id, "error", err)
		}
	}

	if err := os.RemoveAll(filepath.Join(s.settings.OutputDir, id)); err != nil {
		s.logger.Warn("failed to remove output directory", "job_id", id, "error", err)
	}

	return s.repo.Delete(ctx, id)
}

// extractDocument pulls plain text from the uploaded document,
// spooling it through the temp store when one is configured.
func (s *Service) extractDocument(ctx context.Context, jobID string, input SubmitInput) (string, error) {
	if s.store == nil {
		return document.Extract(bytes.NewReader(input.Document), input.DocumentName)
	}

	path, err := s.store.SaveTemp(ctx, jobID+"_doc", bytes.NewReader(input.Document))
	if err != nil {
		return "", fmt.Errorf("spooling document: %w", err)
	}
	defer func() {
		if err := s.store.CleanupTemp(ctx, []string{path}); err != nil {
			s.logger.Warn("failed to remove spooled document", "job_id", jobID, "error", err)
		}
	}()

	r, err := s.store.LoadTemp(ctx, path)
	if err != nil {
		return "", fmt.Errorf("reading spooled document: %w", err)
	}
	defer func() { _ = r.Close() }()

	return document.Extract(r, input.DocumentName)
}

// process runs the narration workflow for one job.
func (s *Service) process(ctx context.Context, j *Job, input SubmitInput) {
	fail := func(err error) {
		s.logger.Error("job failed",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
		_ = j.Fail(err.Error())
		_ = s.repo.Save(ctx, j)
	}

	if err := j.Start(); err != nil {
		fail(err)
		return
	}
	_ = s.repo.Save(ctx, j)

	doc, err := s.extractDocument(ctx, j.ID, input)
	if err != nil {
		fail(err)
		return
	}

	sections := text.DetectChapters(doc)
	chunksTotal := 0
	for _, sec := range sections {
		if sec.IsChapterTitle {
			chunksTotal++
		} else {
			chunksTotal += len(text.SplitChunks(sec.Text, s.settings.MaxChunkLength))
		}
	}
	j.SetPlan(len(doc), len(sections), text.CountChapterTitles(sections), chunksTotal)
	_ = s.repo.Save(ctx, j)

	writer := output.NewWriter(
		filepath.Join(s.settings.OutputDir, j.ID),
		output.WithEncoder(s.enc),
		output.WithMP3(s.settings.EncodeMP3),
		output.WithLogger(s.logger),
	)

	asm, err := pipeline.NewAssembler(s.narrator, writer,
		pipeline.WithPause(s.settings.PauseSeconds),
		pipeline.WithSplitPerChapter(s.settings.SplitPerChapter),
		pipeline.WithMaxChunkLength(s.settings.MaxChunkLength),
		pipeline.WithAssemblerLogger(s.logger),
		pipeline.WithProgress(func(done, total int) {
			j.RecordProgress(done, total)
			_ = s.repo.Save(ctx, j)
		}),
	)
	if err != nil {
		fail(err)
		return
	}

	res, err := asm.Assemble(ctx, doc)
	if err != nil {
		fail(err)
		return
	}

	files := make([]OutputFile, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, OutputFile{Path: f.Path, Duration: f.Duration})
	}

	if input.PushToS3 && s.store != nil {
		s.uploadFiles(ctx, j.ID, files)
	}

	j.SetResults(files, res.Stats.ChunksFailed, res.Stats.Duration)
	if err := j.Complete(); err != nil {
		fail(err)
		return
	}
	_ = s.repo.Save(ctx, j)

	s.logger.Info("job completed",
		slog.String("job_id", j.ID),
		slog.Int("files", len(files)),
		slog.Int("chunks_failed", res.Stats.ChunksFailed),
		slog.Float64("duration_sec", res.Stats.Duration),
	)
}

// uploadFiles pushes finished files to S3. A failed upload keeps the
// local path; delivery problems never fail a finished narration.
func (s *Service) uploadFiles(ctx context.Context, jobID string, files []OutputFile) {
	for i := range files {
		key := fmt.Sprintf("audiobooks/%s/%s", jobID, filepath.Base(files[i].Path))
		url, err := s.store.UploadFileToS3(ctx, files[i].Path, key)
		if err != nil {
			s.logger.Warn("s3 upload failed, keeping local file",
				"job_id", jobID,
				"file", files[i].Path,
				"error", err,
			)
			continue
		}
		files[i].URL = url
	}
}
