package history

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/doculens/doculens/constants"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]string, 3)
	for i := range ids {
		ids[i] = uuid.New().String()
		job := Job{
			ID:           ids[i],
			Filename:     "resume.pdf",
			PageCount:    2,
			Provider:     "openai",
			Model:        "gpt-4o",
			AttemptCount: 1,
			RowCount:     10 + i,
			Status:       string(constants.JobStatusOK),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, job); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	jobs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("List() = %d jobs, want 3", len(jobs))
	}
	// Newest first.
	if jobs[0].ID != ids[2] || jobs[2].ID != ids[0] {
		t.Errorf("order = [%s %s %s], want newest first", jobs[0].ID, jobs[1].ID, jobs[2].ID)
	}
	if jobs[0].RowCount != 12 || jobs[0].Provider != "openai" {
		t.Errorf("job fields lost: %+v", jobs[0])
	}
}

func TestRecord_DefaultsStatusAndTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, Job{ID: uuid.New().String(), Filename: "a.txt"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	jobs, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if jobs[0].Status != string(constants.JobStatusOK) {
		t.Errorf("status = %q, want default OK", jobs[0].Status)
	}
	if jobs[0].CreatedAt.IsZero() {
		t.Error("created_at not defaulted")
	}
}

func TestRecord_FailedJobKeepsError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job := Job{
		ID:       uuid.New().String(),
		Filename: "broken.pdf",
		Status:   string(constants.JobStatusFailed),
		Error:    "all providers exhausted after 6 attempts",
	}
	if err := store.Record(ctx, job); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	jobs, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if jobs[0].Status != string(constants.JobStatusFailed) || jobs[0].Error == "" {
		t.Errorf("failure not persisted: %+v", jobs[0])
	}
}

func TestList_LimitClamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, Job{ID: uuid.New().String(), Filename: "f"}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	for _, limit := range []int{-1, 0, 100000} {
		jobs, err := store.List(ctx, limit)
		if err != nil {
			t.Fatalf("List(%d) error = %v", limit, err)
		}
		if len(jobs) != 5 {
			t.Errorf("List(%d) = %d jobs, want 5", limit, len(jobs))
		}
	}
	jobs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("List(2) = %d jobs", len(jobs))
	}
}
