// Command ingest runs one full pipeline pass: download the label release
// archive, expand it, extract the NDC to manufacturer DUNS mapping, and
// upsert it into Postgres.
// Usage: go run ./cmd/ingest
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"

	"ndclink/internal/archive"
	"ndclink/internal/config"
	"ndclink/internal/email/noop"
	"ndclink/internal/email/ses"
	"ndclink/internal/port"
	"ndclink/internal/repository/postgres"
	"ndclink/internal/service"
	s3storage "ndclink/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	report, err := buildReportSender(&cfg.Email)
	if err != nil {
		return err
	}

	ctx := context.Background()

	if err := os.MkdirAll(cfg.Archive.WorkDir, 0o755); err != nil {
		return fmt.Errorf("creating work dir: %w", err)
	}
	if !cfg.Archive.KeepWorkDir {
		defer func() {
			if err := os.RemoveAll(cfg.Archive.WorkDir); err != nil {
				log.Printf("WARN: cleaning work dir: %v", err)
			}
		}()
	}

	archivePath := filepath.Join(cfg.Archive.WorkDir, "release.zip")
	if err := acquireArchive(ctx, cfg, archivePath); err != nil {
		return err
	}

	xmlDir, count, err := archive.Expand(archivePath, cfg.Archive.WorkDir)
	if err != nil {
		return fmt.Errorf("expanding archive: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("archive contained no XML documents")
	}

	crossRefRepo := postgres.NewCrossRefRepo(db)
	runRepo := postgres.NewRunRepo(db)

	source := archive.NewSource(xmlDir)
	writer := service.NewWriter(crossRefRepo, cfg.Pipeline.BatchSize)
	pipeline := service.NewPipeline(source, writer, runRepo, report, cfg.Pipeline.Concurrency, cfg.Archive.URL)

	runRecord, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	log.Printf("Run %s %s: %d documents, %d parse failures, %d without manufacturer, %d rows extracted, %d persisted, %d failed",
		runRecord.ID, runRecord.Status, runRecord.DocumentsSeen, runRecord.ParseFailures,
		runRecord.NoManufacturer, runRecord.RowsExtracted, runRecord.RowsPersisted, runRecord.RowsFailed)
	return nil
}

// acquireArchive places the release archive at dest. With mirroring on, a
// copy already staged in S3 is preferred over the upstream download, and a
// fresh download is staged back for the next run.
func acquireArchive(ctx context.Context, cfg *config.Config, dest string) error {
	fetcher := archive.NewFetcher(cfg.Archive.FetchTimeout)

	if !cfg.S3.Mirror {
		return fetcher.Fetch(ctx, cfg.Archive.URL, dest)
	}

	store, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("initializing archive mirror: %w", err)
	}

	key, err := mirrorKey(cfg.Archive.URL)
	if err != nil {
		return err
	}

	exists, err := store.Exists(ctx, cfg.S3.Bucket, key)
	if err != nil {
		return fmt.Errorf("checking archive mirror: %w", err)
	}

	if exists {
		log.Printf("Using mirrored archive s3://%s/%s", cfg.S3.Bucket, key)
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("creating %s: %w", dest, err)
		}
		_, err = store.Download(ctx, cfg.S3.Bucket, key, f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return fmt.Errorf("downloading mirrored archive: %w", err)
		}
		return nil
	}

	if err := fetcher.Fetch(ctx, cfg.Archive.URL, dest); err != nil {
		return err
	}

	f, err := os.Open(dest)
	if err != nil {
		return fmt.Errorf("opening %s for mirroring: %w", dest, err)
	}
	defer func() { _ = f.Close() }()

	if err := store.Upload(ctx, cfg.S3.Bucket, key, f); err != nil {
		// The mirror is an optimization for the next run, not a
		// prerequisite for this one.
		log.Printf("WARN: mirroring archive to s3://%s/%s: %v", cfg.S3.Bucket, key, err)
	}
	return nil
}

// mirrorKey derives the S3 object key from the archive URL's file name.
func mirrorKey(archiveURL string) (string, error) {
	u, err := url.Parse(archiveURL)
	if err != nil {
		return "", fmt.Errorf("parsing archive URL: %w", err)
	}
	name := filepath.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("archive URL %s has no file name", archiveURL)
	}
	return "archives/" + name, nil
}

func buildReportSender(cfg *config.EmailConfig) (port.ReportSender, error) {
	if cfg.Provider == "ses" && cfg.ToAddress != "" {
		sender, err := ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.ToAddress)
		if err != nil {
			return nil, fmt.Errorf("initializing SES sender: %w", err)
		}
		return sender, nil
	}
	return noop.NewNoopSender(), nil
}
