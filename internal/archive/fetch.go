// Package archive acquires the label release archive and turns it into an
// enumerable set of XML documents: download, nested-zip expansion, and a
// filesystem-backed document source.
package archive

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Fetcher downloads the release archive over plain HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. Release archives run to gigabytes, so the
// timeout covers the whole transfer and should be generous.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch streams the archive at url into dest.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching archive: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching archive: unexpected status %s", resp.Status)
	}

	if resp.ContentLength > 0 {
		log.Printf("archive.Fetcher: downloading %.2f MB from %s", float64(resp.ContentLength)/(1024*1024), url)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	log.Printf("archive.Fetcher: download complete (%.2f MB)", float64(written)/(1024*1024))
	return nil
}
