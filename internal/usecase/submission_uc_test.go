package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"telegram-media-publisher/internal/domain"
	"telegram-media-publisher/internal/domain/model"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestSubmitEnqueuesDerivedJob(t *testing.T) {
	q := newMemQueue()
	uc := NewSubmissionUseCase(q, nil, testLogger(), false)

	job, depth, err := uc.Submit(context.Background(), "file-1", model.MediaKindVideo, "My Trip Vlog (Part 1) #travel", 42)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Title != "My Trip Vlog" {
		t.Errorf("title = %q", job.Title)
	}
	if job.ShortTitle != "My Trip Vlog" {
		t.Errorf("short title = %q", job.ShortTitle)
	}
	if job.SafeFilename == "" || job.ID == "" {
		t.Errorf("derived fields missing: %+v", job)
	}
	if job.SubmitterID != 42 {
		t.Errorf("submitter = %d", job.SubmitterID)
	}
	if depth != 1 {
		t.Errorf("depth = %d, want 1", depth)
	}
}

func TestSubmitEmptyCaptionFallsBack(t *testing.T) {
	q := newMemQueue()
	uc := NewSubmissionUseCase(q, nil, testLogger(), false)

	job, _, err := uc.Submit(context.Background(), "file-1", model.MediaKindDocument, "", 42)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Title != "Untitled" || job.ShortTitle != "Untitled" {
		t.Errorf("fallback not applied: %+v", job)
	}
}

func TestSubmitRejectsBadInput(t *testing.T) {
	q := newMemQueue()
	uc := NewSubmissionUseCase(q, nil, testLogger(), false)

	if _, _, err := uc.Submit(context.Background(), "", model.MediaKindVideo, "x", 42); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty sourceRef: err = %v", err)
	}
	if _, _, err := uc.Submit(context.Background(), "file-1", model.MediaKind("audio"), "x", 42); !errors.Is(err, domain.ErrUnsupportedKind) {
		t.Errorf("bad kind: err = %v", err)
	}
	if n, _ := q.Size(context.Background()); n != 0 {
		t.Errorf("rejected submissions must not enqueue, size = %d", n)
	}
}

func TestSubmitPropagatesQueueError(t *testing.T) {
	q := newMemQueue()
	q.pushErr = errors.New("store down")
	uc := NewSubmissionUseCase(q, nil, testLogger(), false)

	if _, _, err := uc.Submit(context.Background(), "file-1", model.MediaKindVideo, "x", 42); err == nil {
		t.Fatal("expected error from queue push")
	}
}

func TestQueueFIFOContract(t *testing.T) {
	q := newMemQueue()
	uc := NewSubmissionUseCase(q, nil, testLogger(), false)
	ctx := context.Background()

	for _, cap := range []string{"first", "second", "third"} {
		if _, _, err := uc.Submit(ctx, "ref-"+cap, model.MediaKindVideo, cap, 1); err != nil {
			t.Fatal(err)
		}
	}

	for _, want := range []string{"first", "second", "third"} {
		job, lease, err := q.Pop(ctx)
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if job.RawCaption != want {
			t.Errorf("pop order: got %q want %q", job.RawCaption, want)
		}
		if err := q.Complete(ctx, lease); err != nil {
			t.Errorf("Complete: %v", err)
		}
	}

	if _, _, err := q.Pop(ctx); !errors.Is(err, domain.ErrQueueEmpty) {
		t.Errorf("fourth pop: err = %v, want ErrQueueEmpty", err)
	}
}

func TestQueueLeaseRecovery(t *testing.T) {
	q := newMemQueue()
	uc := NewSubmissionUseCase(q, nil, testLogger(), false)
	ctx := context.Background()

	if _, _, err := uc.Submit(ctx, "ref", model.MediaKindVideo, "only", 1); err != nil {
		t.Fatal(err)
	}

	// Popped but never completed: the job must come back after lease expiry.
	if _, _, err := q.Pop(ctx); err != nil {
		t.Fatal(err)
	}
	if _, _, err := q.Pop(ctx); !errors.Is(err, domain.ErrQueueEmpty) {
		t.Fatalf("leased job visible: %v", err)
	}

	q.expireAll()
	n, err := q.ReapExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ReapExpired = %d, %v", n, err)
	}

	job, _, err := q.Pop(ctx)
	if err != nil {
		t.Fatalf("Pop after reap: %v", err)
	}
	if job.RawCaption != "only" {
		t.Errorf("recovered job = %+v", job)
	}
}
