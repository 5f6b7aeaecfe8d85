// Package job provides the Job aggregate for managing audiobook
// generation jobs. It includes the Job entity with state machine
// transitions, as well as repository interfaces for persistence.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/icewall905/audiobooker/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusInQueue indicates the job is waiting to be picked up.
	StatusInQueue Status = "IN_QUEUE"
	// StatusRunning indicates the job is being narrated.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the job finished successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the job encountered an error during execution.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was manually cancelled.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusInQueue:   {StatusRunning, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// OutputFile describes one finished audio file of a job.
type OutputFile struct {
	// Path is the local path of the file.
	Path string
	// URL is the S3 URL if the file was uploaded.
	URL string
	// Duration is the audio length in seconds.
	Duration float64
}

// Job represents an audiobook generation job aggregate.
// It carries all state from document submission to finished audio.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Status is the current job state.
	Status Status
	// DocumentName is the original filename of the submitted document.
	DocumentName string
	// CharCount is the length of the extracted text in characters.
	CharCount int
	// Sections is the number of detected sections.
	Sections int
	// ChapterTitles is how many of those sections are chapter titles.
	ChapterTitles int
	// ChunksTotal is the number of narration chunks planned.
	ChunksTotal int
	// ChunksDone is the number of chunks attempted so far.
	ChunksDone int
	// ChunksFailed is the number of chunks skipped after narration failed.
	ChunksFailed int
	// Progress is the percentage of completion (0-100).
	Progress int
	// Error contains any error message if the job failed.
	Error string
	// OutputFiles lists the finished audio files.
	OutputFiles []OutputFile
	// Duration is the total audio length in seconds.
	Duration float64
	// PushToS3 indicates whether to upload the results to S3.
	PushToS3 bool
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when processing finished.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial IN_QUEUE status.
func New() *Job {
	return NewWithID(id.Generate())
}

// NewWithID creates a new Job with the specified ID and initial IN_QUEUE status.
// Useful for testing or when the ID needs to be externally generated.
func NewWithID(jobID string) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Status:    StatusInQueue,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from IN_QUEUE to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete transitions the job to COMPLETED state.
func (j *Job) Complete() error {
	return j.TransitionTo(StatusCompleted)
}

// Fail transitions the job to FAILED state with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Cancel transitions the job to CANCELLED state.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetPlan records what assembly discovered about the document before
// narration starts.
func (j *Job) SetPlan(charCount, sections, titles, chunksTotal int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.CharCount = charCount
	j.Sections = sections
	j.ChapterTitles = titles
	j.ChunksTotal = chunksTotal
	j.UpdatedAt = time.Now()
}

// RecordProgress updates the chunk counters and derived percentage.
func (j *Job) RecordProgress(done, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ChunksDone = done
	if total > 0 {
		j.Progress = done * 100 / total
	}
	if j.Progress > 100 {
		j.Progress = 100
	}
	j.UpdatedAt = time.Now()
}

// SetResults records the finished files and final counters.
func (j *Job) SetResults(files []OutputFile, chunksFailed int, duration float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.OutputFiles = files
	j.ChunksFailed = chunksFailed
	j.Duration = duration
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	files := make([]OutputFile, len(j.OutputFiles))
	copy(files, j.OutputFiles)

	return &Job{
		ID:            j.ID,
		Status:        j.Status,
		DocumentName:  j.DocumentName,
		CharCount:     j.CharCount,
		Sections:      j.Sections,
		ChapterTitles: j.ChapterTitles,
		ChunksTotal:   j.ChunksTotal,
		ChunksDone:    j.ChunksDone,
		ChunksFailed:  j.ChunksFailed,
		Progress:      j.Progress,
		Error:         j.Error,
		OutputFiles:   files,
		Duration:      j.Duration,
		PushToS3:      j.PushToS3,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
		StartedAt:     j.StartedAt,
		CompletedAt:   j.CompletedAt,
	}
}
