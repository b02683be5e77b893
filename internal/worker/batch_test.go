package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avolkov/deepscout/internal/model"
)

// mockResearcher implements Researcher
type mockResearcher struct {
	shouldError bool
}

func (m *mockResearcher) ProduceReport(ctx context.Context, rawInput string) (*model.Report, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.shouldError {
		return nil, errors.New("research error")
	}
	return &model.Report{Subject: rawInput}, nil
}

func TestBatchProcessor_ProcessQueries(t *testing.T) {
	processor := NewBatchProcessor(&mockResearcher{}, 2)

	queries := []string{"Volkswagen", "TSLA", "Future of quantum computing"}
	results := processor.ProcessQueries(context.Background(), queries)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %q: %v", res.Query, res.Error)
			continue
		}
		if res.Report == nil {
			t.Errorf("expected report for %q", res.Query)
		} else if res.Report.Subject != res.Query {
			t.Errorf("report subject %q does not match query %q", res.Report.Subject, res.Query)
		}
	}
}

func TestBatchProcessor_ProcessQueries_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockResearcher{shouldError: true}, 2)

	results := processor.ProcessQueries(context.Background(), []string{"anything"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error in result")
	}
}

func TestBatchProcessor_ProcessQueries_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockResearcher{}, 2)
	results := processor.ProcessQueries(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

// ctxRecordingResearcher records whether any run started with a live context
type ctxRecordingResearcher struct {
	liveCalls int32
}

func (m *ctxRecordingResearcher) ProduceReport(ctx context.Context, rawInput string) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	atomic.AddInt32(&m.liveCalls, 1)
	return &model.Report{Subject: rawInput}, nil
}

func TestBatchProcessor_CanceledContextStopsBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	researcher := &ctxRecordingResearcher{}
	processor := NewBatchProcessor(researcher, 2)

	results := processor.ProcessQueries(ctx, []string{"Volkswagen", "TSLA"})

	if n := atomic.LoadInt32(&researcher.liveCalls); n != 0 {
		t.Errorf("%d research runs saw a live context despite cancellation", n)
	}
	for _, res := range results {
		if res.Error == nil {
			t.Errorf("query %q completed despite canceled context", res.Query)
		}
	}
}

func TestBatchProcessor_DeadlineReachesResearch(t *testing.T) {
	// An expired batch deadline must cancel the context the research runs see
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	slow := &slowResearcher{delay: time.Second}
	processor := NewBatchProcessor(slow, 2)

	start := time.Now()
	results := processor.ProcessQueries(ctx, []string{"a", "b"})
	elapsed := time.Since(start)

	if elapsed > 500*time.Millisecond {
		t.Errorf("batch was not stopped by the deadline: %v", elapsed)
	}
	for _, res := range results {
		if res.Error == nil {
			t.Errorf("query %q completed despite expired deadline", res.Query)
		}
	}
}

type slowResearcher struct {
	delay time.Duration
}

func (m *slowResearcher) ProduceReport(ctx context.Context, rawInput string) (*model.Report, error) {
	select {
	case <-time.After(m.delay):
		return &model.Report{Subject: rawInput}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestReadQueriesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	content := "Volkswagen\n\n# comment line\nTSLA\nVolkswagen\n  Future of quantum computing  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write queries file: %v", err)
	}

	queries, err := ReadQueriesFromFile(path)
	if err != nil {
		t.Fatalf("read queries: %v", err)
	}

	want := []string{"Volkswagen", "TSLA", "Future of quantum computing"}
	if len(queries) != len(want) {
		t.Fatalf("expected %d queries, got %d: %v", len(want), len(queries), queries)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, queries[i], want[i])
		}
	}
}

func TestReadQueriesFromFile_Missing(t *testing.T) {
	if _, err := ReadQueriesFromFile("/nonexistent/queries.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}
