package job

import (
	"context"
	"testing"
)

func TestMemoryRepository_Save(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	job := New()
	job.DocumentName = "book.txt"

	err := repo.Save(ctx, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Verify it was saved
	saved, err := repo.FindByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID != job.ID {
		t.Errorf("expected ID %s, got %s", job.ID, saved.ID)
	}
	if saved.DocumentName != "book.txt" {
		t.Errorf("expected document name book.txt, got %s", saved.DocumentName)
	}
}

func TestMemoryRepository_Save_Update(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	job := New()

	// Save initial
	_ = repo.Save(ctx, job)

	// Update after the narration plan is known
	_ = job.Start()
	job.SetPlan(1200, 5, 4, 8)
	job.RecordProgress(4, 8)
	_ = repo.Save(ctx, job)

	// Verify update
	saved, _ := repo.FindByID(ctx, job.ID)
	if saved.Status != StatusRunning {
		t.Errorf("expected status %s, got %s", StatusRunning, saved.Status)
	}
	if saved.ChunksTotal != 8 {
		t.Errorf("expected 8 chunks, got %d", saved.ChunksTotal)
	}
	if saved.ChapterTitles != 4 {
		t.Errorf("expected 4 chapter titles, got %d", saved.ChapterTitles)
	}
	if saved.Progress != 50 {
		t.Errorf("expected progress 50, got %d", saved.Progress)
	}
}

func TestMemoryRepository_FindByID_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "nonexistent")
	if err != ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryRepository_FindByID_ReturnsClone(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	job := New()
	job.SetResults([]OutputFile{{Path: "out/chapter_001.wav", Duration: 12.5}}, 0, 12.5)
	_ = repo.Save(ctx, job)

	// Get job and mutate the copy
	found, _ := repo.FindByID(ctx, job.ID)
	found.Progress = 99
	found.OutputFiles[0].Path = "tampered.wav"
	found.OutputFiles = append(found.OutputFiles, OutputFile{Path: "extra.wav"})
	_ = found.Start()

	// Original in repo should be unchanged
	original, _ := repo.FindByID(ctx, job.ID)
	if original.Progress != 0 {
		t.Error("modifying returned job should not affect repository")
	}
	if original.Status != StatusInQueue {
		t.Error("modifying returned job status should not affect repository")
	}
	if len(original.OutputFiles) != 1 {
		t.Fatalf("expected 1 output file, got %d", len(original.OutputFiles))
	}
	if original.OutputFiles[0].Path != "out/chapter_001.wav" {
		t.Errorf("expected output file path preserved, got %s", original.OutputFiles[0].Path)
	}
}

func TestMemoryRepository_List(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	// Empty list
	jobs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected 0 jobs, got %d", len(jobs))
	}

	// Add jobs
	job1 := New()
	job1.DocumentName = "first.txt"
	job2 := New()
	job2.DocumentName = "second.md"
	_ = repo.Save(ctx, job1)
	_ = repo.Save(ctx, job2)

	jobs, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(jobs))
	}
}

func TestMemoryRepository_List_ReturnsClones(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	job := New()
	job.SetResults([]OutputFile{{Path: "out/audiobook.wav", Duration: 30}}, 2, 30)
	_ = repo.Save(ctx, job)

	// Mutate a listed job
	jobs, _ := repo.List(ctx)
	jobs[0].ChunksFailed = 99
	jobs[0].OutputFiles[0].Path = "tampered.wav"

	// Original in repo should be unchanged
	original, _ := repo.FindByID(ctx, job.ID)
	if original.ChunksFailed != 2 {
		t.Error("modifying listed job should not affect repository")
	}
	if original.OutputFiles[0].Path != "out/audiobook.wav" {
		t.Error("modifying listed job's output files should not affect repository")
	}
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	job := New()
	_ = repo.Save(ctx, job)

	err := repo.Delete(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Verify deleted
	_, err = repo.FindByID(ctx, job.ID)
	if err != ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryRepository_Delete_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	err := repo.Delete(ctx, "nonexistent")
	if err != ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryRepository_ConcurrentAccess(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	done := make(chan bool)

	// Concurrent writes with progress updates
	go func() {
		for i := 0; i < 100; i++ {
			job := New()
			job.RecordProgress(i, 100)
			_ = repo.Save(ctx, job)
		}
		done <- true
	}()

	// Concurrent reads
	go func() {
		for i := 0; i < 100; i++ {
			_, _ = repo.List(ctx)
		}
		done <- true
	}()

	<-done
	<-done
}
