package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/beadworks/storeadmin/internal/jobs"
)

type fakeRemover struct {
	removed []string
	err     error
}

func (f *fakeRemover) Remove(ctx context.Context, objectKey string) error {
	f.removed = append(f.removed, objectKey)
	return f.err
}

type fakeStock struct {
	calls map[int64]int
	err   error
}

func (f *fakeStock) UpdateVariantStock(ctx context.Context, variantID int64, stock int) error {
	if f.calls == nil {
		f.calls = map[int64]int{}
	}
	f.calls[variantID] = stock
	return f.err
}

func mustJob(t *testing.T, payload, jobType string) jobs.Job {
	t.Helper()

	j, err := jobs.NewJob(jobs.JobType(jobType), []byte(payload))
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	return j
}

func testWorker(remover *fakeRemover, stock *fakeStock) *Worker {
	return &Worker{
		cfg:     Config{PopTimeout: time.Second},
		remover: remover,
		stock:   stock,
		logger:  slog.New(slog.DiscardHandler),
	}
}

func TestExecuteDeleteStoredFile(t *testing.T) {
	remover := &fakeRemover{}
	w := testWorker(remover, &fakeStock{})

	j := mustJob(t, `{"objectKey":"products/123-front.jpg","requestedBy":1,"requestedAt":"2026-08-01T00:00:00Z"}`, "storage.delete_file")

	if err := w.execute(context.Background(), j); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(remover.removed) != 1 || remover.removed[0] != "products/123-front.jpg" {
		t.Fatalf("removed = %v", remover.removed)
	}
}

func TestExecuteResyncStock(t *testing.T) {
	stock := &fakeStock{}
	w := testWorker(&fakeRemover{}, stock)

	j := mustJob(t, `{"variantId":42,"stock":7}`, "catalog.resync_stock")

	if err := w.execute(context.Background(), j); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if stock.calls[42] != 7 {
		t.Fatalf("stock calls = %v", stock.calls)
	}
}

func TestExecutePropagatesHandlerError(t *testing.T) {
	boom := errors.New("store unavailable")
	w := testWorker(&fakeRemover{err: boom}, &fakeStock{})

	j := mustJob(t, `{"objectKey":"k"}`, "storage.delete_file")

	if err := w.execute(context.Background(), j); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestExecuteRejectsUnknownType(t *testing.T) {
	w := testWorker(&fakeRemover{}, &fakeStock{})

	j := mustJob(t, `{}`, "storage.delete_file")
	j.Type = "mystery"

	if err := w.execute(context.Background(), j); err == nil {
		t.Fatal("expected error for unknown job type")
	}
}

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 0; attempt < 5; attempt++ {
		d := ExponentialBackoff(attempt)
		if d <= prev {
			t.Fatalf("backoff did not grow at attempt %d: %v <= %v", attempt, d, prev)
		}
		prev = d
	}

	if d := ExponentialBackoff(20); d > 5*time.Minute+time.Second {
		t.Fatalf("backoff above cap: %v", d)
	}
}
