// Package id provides unique identifier generation for jobs.
package id

import (
	"github.com/google/uuid"
)

// Generate creates a new unique job ID.
// Format: job-<uuid>
// Example: job-9f1c2b4e-1a9c-4f6d-8b3a-0d2f6c7e5a10
func Generate() string {
	return "job-" + uuid.NewString()
}
