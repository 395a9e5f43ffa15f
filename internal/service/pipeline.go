package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ndclink/internal/domain"
	"ndclink/internal/port"
	"ndclink/internal/spl"
)

// Pipeline orchestrates one ingestion run: enumerate documents, parse and
// extract each one in isolation, reconcile the findings into a single
// mapping, and flush it to the store. One bad document never aborts a run;
// only an empty document supply does.
type Pipeline struct {
	source      port.DocumentSource
	writer      *Writer
	runs        port.RunRepository
	report      port.ReportSender
	concurrency int
	archiveSrc  string
}

// NewPipeline constructs the orchestrator. runs and report may be nil;
// the run then goes unaudited and unreported but still executes.
func NewPipeline(source port.DocumentSource, writer *Writer, runs port.RunRepository, report port.ReportSender, concurrency int, archiveSrc string) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		source:      source,
		writer:      writer,
		runs:        runs,
		report:      report,
		concurrency: concurrency,
		archiveSrc:  archiveSrc,
	}
}

// docOutcome is the per-document result handed from the extraction workers
// to the single-threaded merge step.
type docOutcome struct {
	failed bool
	result spl.Result
}

// Run executes one full pipeline pass and returns the audit record.
func (p *Pipeline) Run(ctx context.Context) (*domain.PipelineRun, error) {
	run := &domain.PipelineRun{
		ID:            uuid.New(),
		Status:        domain.RunStatusRunning,
		ArchiveSource: p.archiveSrc,
		StartedAt:     time.Now().UTC(),
	}
	if p.runs != nil {
		if err := p.runs.Create(ctx, run); err != nil {
			return nil, fmt.Errorf("creating run record: %w", err)
		}
	}

	ids, err := p.source.Documents(ctx)
	if err != nil {
		return run, p.fail(ctx, run, fmt.Errorf("listing documents: %w", err))
	}
	if len(ids) == 0 {
		return run, p.fail(ctx, run, domain.ErrNoDocuments)
	}

	// Filesystem enumeration order is not stable across platforms; sort so
	// the merge below sees the same document order for a given archive.
	sort.Strings(ids)

	log.Printf("service.Pipeline: run %s processing %d documents (concurrency=%d)", run.ID, len(ids), p.concurrency)

	outcomes := p.extractAll(ctx, ids)

	var stats domain.RunStats
	mapping := make(map[string]string)
	for i, out := range outcomes {
		stats.DocumentsSeen++
		if out.failed {
			stats.ParseFailures++
			continue
		}

		for _, org := range out.result.ExcludedOrganizations() {
			stats.AddExcluded(org.Role)
		}

		if !out.result.HasManufacturer() {
			stats.NoManufacturer++
			continue
		}

		mergeResult(mapping, out.result.Mappings())

		if (i+1)%1000 == 0 {
			log.Printf("service.Pipeline: %d/%d documents merged (%d unique codes)", i+1, len(ids), len(mapping))
		}
	}
	stats.RowsExtracted = len(mapping)

	log.Printf("service.Pipeline: extraction done: %d documents, %d parse failures, %d without manufacturer, %d unique codes",
		stats.DocumentsSeen, stats.ParseFailures, stats.NoManufacturer, stats.RowsExtracted)

	stats.RowsPersisted, stats.RowsFailed = p.writer.Flush(ctx, mapping)

	run.Status = domain.RunStatusCompleted
	run.ApplyStats(stats)
	p.finish(ctx, run)

	if p.report != nil {
		if err := p.report.SendRunReport(ctx, run); err != nil {
			log.Printf("service.Pipeline: sending run report: %v", err)
		}
	}

	return run, nil
}

// extractAll parses and extracts every document with a bounded worker pool.
// Workers share no mutable state; outcomes land in a slice indexed by
// document position so the merge stays single-threaded and ordered.
func (p *Pipeline) extractAll(ctx context.Context, ids []string) []docOutcome {
	outcomes := make([]docOutcome, len(ids))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = p.extractOne(ctx, ids[i])
			}
		}()
	}

	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// extractOne handles a single document. Any failure here is contained:
// the document is counted and skipped, never propagated.
func (p *Pipeline) extractOne(ctx context.Context, id string) docOutcome {
	raw, err := p.source.Load(ctx, id)
	if err != nil {
		log.Printf("service.Pipeline: loading %s: %v", id, err)
		return docOutcome{failed: true}
	}

	doc, err := spl.ParseDocument(id, raw)
	if err != nil {
		log.Printf("service.Pipeline: %v", err)
		return docOutcome{failed: true}
	}

	return docOutcome{result: spl.Extract(doc)}
}

// mergeResult folds one document's pairs into the accumulator.
// Last write wins per NDC: a later document's finding for the same code
// overwrites an earlier one. Given the sorted document order this is
// deterministic for a given archive; across archives the outcome for a
// code that appears with different DUNS values legitimately follows the
// newest release processed.
func mergeResult(mapping map[string]string, pairs map[string]string) {
	for ndc, duns := range pairs {
		mapping[ndc] = duns
	}
}

func (p *Pipeline) fail(ctx context.Context, run *domain.PipelineRun, err error) error {
	run.Status = domain.RunStatusFailed
	run.Error = err.Error()
	p.finish(ctx, run)
	return err
}

func (p *Pipeline) finish(ctx context.Context, run *domain.PipelineRun) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	if p.runs == nil {
		return
	}
	if err := p.runs.Finish(ctx, run); err != nil {
		log.Printf("service.Pipeline: finishing run record %s: %v", run.ID, err)
	}
}
