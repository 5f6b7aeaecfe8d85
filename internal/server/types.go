// Package server provides the HTTP server for the audiobook API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// CreateAudiobookRequest is the HTTP request body for creating a new job.
type CreateAudiobookRequest struct {
	// DocumentName is the original filename; its extension selects the extractor.
	DocumentName string `json:"document_name" validate:"required"`
	// DocumentBase64 is the base64-encoded document content.
	DocumentBase64 string `json:"document_base64" validate:"required,base64"`
	// PushToS3 indicates whether to upload the finished audio files to S3.
	PushToS3 bool `json:"push_to_s3"`
}

// CreateAudiobookResponse is the HTTP response after creating a job.
type CreateAudiobookResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// FileResponse describes one finished audio file.
type FileResponse struct {
	// Name is the file name, e.g. chapter_001.wav.
	Name string `json:"name"`
	// URL is the S3 URL of the file (if push_to_s3=true).
	URL string `json:"url,omitempty"`
	// Duration is the audio length in seconds.
	Duration float64 `json:"duration_sec"`
}

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Status is the current job status.
	Status string `json:"status"`
	// Progress is the percentage of completion (0-100).
	Progress int `json:"progress"`
	// DocumentName is the submitted document's filename.
	DocumentName string `json:"document_name"`
	// Sections is the number of detected document sections.
	Sections int `json:"sections,omitempty"`
	// ChapterTitles is the number of detected chapter headings.
	ChapterTitles int `json:"chapter_titles,omitempty"`
	// ChunksTotal is the number of narration chunks planned.
	ChunksTotal int `json:"chunks_total,omitempty"`
	// ChunksDone is the number of chunks attempted so far.
	ChunksDone int `json:"chunks_done,omitempty"`
	// ChunksFailed is the number of chunks that failed narration.
	ChunksFailed int `json:"chunks_failed,omitempty"`
	// Duration is the total narrated audio length in seconds.
	Duration float64 `json:"duration_sec,omitempty"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
	// Files lists the finished audio files (if completed).
	Files []FileResponse `json:"files,omitempty"`
}

// ListJobsResponse is the HTTP response for listing jobs.
type ListJobsResponse struct {
	// Jobs is the list of known jobs.
	Jobs []JobResponse `json:"jobs"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
