package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// storeUnderTest builds each Store implementation fresh per test.
var storeUnderTest = map[string]func(t *testing.T) Store{
	"memory": func(_ *testing.T) Store { return NewMemory() },
	"sqlite": func(t *testing.T) Store {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "jobs.db"))
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	},
}

func TestStore_Lifecycle(t *testing.T) {
	t.Parallel()

	for name, build := range storeUnderTest {
		name, build := name, build
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := build(t)

			job := Job{ID: "j1", Status: StatusPending, CreatedAt: time.Now().UTC()}
			if err := store.Create(ctx, job); err != nil {
				t.Fatalf("Create: %v", err)
			}

			got, err := store.Get(ctx, "j1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Status != StatusPending {
				t.Fatalf("Status=%s, want pending", got.Status)
			}
			if got.Terminal() {
				t.Fatalf("pending job reported terminal")
			}

			if _, err := store.Result(ctx, "j1"); !errors.Is(err, ErrNotReady) {
				t.Fatalf("Result(pending)=%v, want ErrNotReady", err)
			}

			if err := store.SetProcessing(ctx, "j1"); err != nil {
				t.Fatalf("SetProcessing: %v", err)
			}
			got, _ = store.Get(ctx, "j1")
			if got.Status != StatusProcessing {
				t.Fatalf("Status=%s, want processing", got.Status)
			}

			payload := json.RawMessage(`{"repo":"o/r"}`)
			if err := store.Complete(ctx, "j1", payload); err != nil {
				t.Fatalf("Complete: %v", err)
			}
			got, _ = store.Get(ctx, "j1")
			if got.Status != StatusCompleted || !got.Terminal() {
				t.Fatalf("Status=%s, want completed and terminal", got.Status)
			}
			if got.CompletedAt == nil {
				t.Fatalf("CompletedAt is nil after completion")
			}

			result, err := store.Result(ctx, "j1")
			if err != nil {
				t.Fatalf("Result: %v", err)
			}
			if string(result) != `{"repo":"o/r"}` {
				t.Fatalf("Result=%s, want stored payload", result)
			}
		})
	}
}

func TestStore_FailedJobsExposeErrorNotResult(t *testing.T) {
	t.Parallel()

	for name, build := range storeUnderTest {
		name, build := name, build
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := build(t)

			if err := store.Create(ctx, Job{ID: "j2", Status: StatusPending, CreatedAt: time.Now().UTC()}); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if err := store.Fail(ctx, "j2", "repository tree: boom"); err != nil {
				t.Fatalf("Fail: %v", err)
			}

			got, err := store.Get(ctx, "j2")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Status != StatusFailed || got.Error != "repository tree: boom" {
				t.Fatalf("job=%+v, want failed with error message", got)
			}

			if _, err := store.Result(ctx, "j2"); !errors.Is(err, ErrNotReady) {
				t.Fatalf("Result(failed)=%v, want ErrNotReady", err)
			}
		})
	}
}

func TestStore_UnknownID(t *testing.T) {
	t.Parallel()

	for name, build := range storeUnderTest {
		name, build := name, build
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := build(t)

			if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get=%v, want ErrNotFound", err)
			}
			if _, err := store.Result(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Result=%v, want ErrNotFound", err)
			}
			if err := store.SetProcessing(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("SetProcessing=%v, want ErrNotFound", err)
			}
			if err := store.Fail(ctx, "nope", "x"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Fail=%v, want ErrNotFound", err)
			}
		})
	}
}
