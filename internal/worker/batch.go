package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/avolkov/deepscout/internal/model"
)

// Researcher defines the interface for running one research pipeline
type Researcher interface {
	ProduceReport(ctx context.Context, rawInput string) (*model.Report, error)
}

// ResearchJob runs the pipeline for a single query
type ResearchJob struct {
	Query      string
	Researcher Researcher
}

// Execute executes the research job
func (j *ResearchJob) Execute(ctx context.Context) Result {
	report, err := j.Researcher.ProduceReport(ctx, j.Query)
	return &ResearchResult{
		Query:  j.Query,
		Report: report,
		Error:  err,
	}
}

// ResearchResult represents the result of a research job
type ResearchResult struct {
	Query  string
	Report *model.Report
	Error  error
}

// GetError returns the error from the research result
func (r *ResearchResult) GetError() error {
	return r.Error
}

// BatchProcessor runs multiple research queries concurrently
type BatchProcessor struct {
	researcher  Researcher
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(researcher Researcher, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		researcher:  researcher,
		concurrency: concurrency,
	}
}

// ProcessQueries runs the pipeline for each query concurrently
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*ResearchResult {
	if len(queries) == 0 {
		return []*ResearchResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, query := range queries {
		pool.Submit(&ResearchJob{
			Query:      query,
			Researcher: b.researcher,
		})
	}

	results := pool.Wait()

	researchResults := make([]*ResearchResult, len(results))
	for i, result := range results {
		researchResults[i] = result.(*ResearchResult)
	}

	return researchResults
}

// ProcessFile reads queries from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ResearchResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads research queries from a file (one per line)
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate queries
		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
