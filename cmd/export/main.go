// Command export dumps the cross-reference table to a CSV or XLSX file.
// Usage: go run ./cmd/export [csv|xlsx] [output-path]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"ndclink/internal/config"
	"ndclink/internal/domain"
	"ndclink/internal/export"
	"ndclink/internal/repository/postgres"
)

const pageSize = 5000

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	format := "csv"
	if len(os.Args) > 1 {
		format = os.Args[1]
	}
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unknown format %q, want csv or xlsx", format)
	}

	outPath := export.BuildFilename("ndc crossref", format)
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	repo := postgres.NewCrossRefRepo(db)
	ctx := context.Background()

	var refs []domain.CrossReference
	for offset := 0; ; offset += pageSize {
		page, err := repo.List(ctx, offset, pageSize)
		if err != nil {
			return fmt.Errorf("listing cross-references at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		refs = append(refs, page...)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer func() { _ = out.Close() }()

	switch format {
	case "csv":
		if _, err := out.Write(export.BOM); err != nil {
			return fmt.Errorf("writing BOM: %w", err)
		}
		w := export.NewWriter(out)
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := w.WriteRefs(refs); err != nil {
			return fmt.Errorf("writing rows: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flushing csv: %w", err)
		}
	case "xlsx":
		if err := export.WriteXLSX(out, refs); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
	}

	log.Printf("Exported %d cross-references to %s", len(refs), outPath)
	return nil
}
