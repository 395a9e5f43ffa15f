package service

import (
	"context"
	"log"
	"sort"

	"ndclink/internal/domain"
	"ndclink/internal/port"
)

// Writer flushes the reconciled mapping into the store in fixed-size
// batches. A failed batch degrades to per-row upserts so one bad row
// cannot sink its batch; a row that fails even in isolation is counted
// and skipped.
type Writer struct {
	repo      port.CrossRefRepository
	batchSize int
}

// NewWriter creates a Writer. batchSize values below 1 are clamped to 1.
func NewWriter(repo port.CrossRefRepository, batchSize int) *Writer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Writer{repo: repo, batchSize: batchSize}
}

// Flush upserts every row of the mapping and returns how many rows were
// persisted and how many failed. Writes are blind: conflict resolution is
// left entirely to the store's upsert semantics.
func (w *Writer) Flush(ctx context.Context, mapping map[string]string) (persisted, failed int) {
	rows := make([]domain.CrossReference, 0, len(mapping))
	for ndc, duns := range mapping {
		rows = append(rows, domain.CrossReference{NDC: ndc, DUNS: duns})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].NDC < rows[j].NDC })

	totalBatches := (len(rows) + w.batchSize - 1) / w.batchSize
	for i := 0; i < len(rows); i += w.batchSize {
		end := i + w.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[i:end]
		batchNum := i/w.batchSize + 1

		if err := w.repo.UpsertBatch(ctx, batch); err == nil {
			persisted += len(batch)
			log.Printf("service.Writer: batch %d/%d persisted (%d rows)", batchNum, totalBatches, len(batch))
			continue
		} else {
			log.Printf("service.Writer: batch %d/%d failed, retrying row by row: %v", batchNum, totalBatches, err)
		}

		for _, row := range batch {
			if err := w.repo.Upsert(ctx, row); err != nil {
				log.Printf("service.Writer: row %s failed: %v", row.NDC, err)
				failed++
				continue
			}
			persisted++
		}
	}

	return persisted, failed
}
