package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/paperstat/internal/log"
	"github.com/nao1215/paperstat/internal/model"
)

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })

		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.concurrency != 4 {
			t.Errorf("expected default concurrency 4, got %d", bp.concurrency)
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(2))

		if bp.concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0))

		if bp.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", bp.concurrency)
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithBatchLogger(nil))

		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("returns one report per survey in input order", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "load", doFunc: func(_ context.Context, r *model.SurveyReport) error {
				r.Title = "survey " + r.SurveyID
				return nil
			}})
			return p
		}

		ids := []string{"1", "2", "3", "4", "5"}
		reports, err := NewBatchProcessor(factory, WithConcurrency(2)).ProcessBatch(context.Background(), ids)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != len(ids) {
			t.Fatalf("expected %d reports, got %d", len(ids), len(reports))
		}
		for i, r := range reports {
			if r.SurveyID != ids[i] || r.Title != "survey "+ids[i] {
				t.Errorf("report %d: unexpected %s %q", i, r.SurveyID, r.Title)
			}
		}
	})

	t.Run("failed surveys keep their error", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "load", doFunc: func(_ context.Context, r *model.SurveyReport) error {
				if r.SurveyID == "bad" {
					return model.ErrNetwork
				}
				return nil
			}})
			return p
		}

		reports, err := NewBatchProcessor(factory).ProcessBatch(context.Background(), []string{"good", "bad"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reports[0].Error != nil {
			t.Errorf("expected no error for good survey, got %v", reports[0].Error)
		}
		if !errors.Is(reports[1].Error, model.ErrNetwork) {
			t.Errorf("expected ErrNetwork for bad survey, got %v", reports[1].Error)
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak int32
		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "load", doFunc: func(context.Context, *model.SurveyReport) error {
				n := atomic.AddInt32(&current, 1)
				for {
					old := atomic.LoadInt32(&peak)
					if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&current, -1)
				return nil
			}})
			return p
		}

		ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
		if _, err := NewBatchProcessor(factory, WithConcurrency(3)).ProcessBatch(context.Background(), ids); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak > 3 {
			t.Errorf("expected at most 3 concurrent loads, got %d", peak)
		}
	})

	t.Run("each survey gets its own request id", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		seen := make(map[string]bool)
		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "load", doFunc: func(ctx context.Context, _ *model.SurveyReport) error {
				id, ok := log.RequestID(ctx)
				if !ok {
					return errors.New("missing request id")
				}
				mu.Lock()
				seen[id] = true
				mu.Unlock()
				return nil
			}})
			return p
		}

		reports, err := NewBatchProcessor(factory).ProcessBatch(context.Background(), []string{"1", "2", "3"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, r := range reports {
			if r.Error != nil {
				t.Errorf("survey %s: %v", r.SurveyID, r.Error)
			}
		}
		if len(seen) != 3 {
			t.Errorf("expected 3 distinct request ids, got %d", len(seen))
		}
	})

	t.Run("cancelled batch returns context error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewBatchProcessor(func() *Pipeline { return New() }).ProcessBatch(ctx, []string{"1", "2"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
