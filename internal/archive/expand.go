package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// labelDirName is the directory inside the release archive that holds the
// nested per-label zips. Its position in the tree varies between releases,
// so it is located by name.
const labelDirName = "prescription"

// Expand unpacks the release archive under workDir and flattens every XML
// document from the nested label zips into a single directory, which it
// returns together with the number of documents extracted. A corrupt
// nested zip is logged and skipped; it never fails the expansion.
func Expand(archivePath, workDir string) (string, int, error) {
	extractedDir := filepath.Join(workDir, "extracted")
	xmlDir := filepath.Join(workDir, "xml")
	for _, dir := range []string{extractedDir, xmlDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", 0, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := extractZip(archivePath, extractedDir); err != nil {
		return "", 0, fmt.Errorf("extracting release archive: %w", err)
	}

	labelDir, err := findDir(extractedDir, labelDirName)
	if err != nil {
		return "", 0, err
	}

	count, err := expandNested(labelDir, xmlDir)
	if err != nil {
		return "", 0, err
	}

	log.Printf("archive: expanded %d XML documents into %s", count, xmlDir)
	return xmlDir, count, nil
}

// extractZip unpacks src into dest, refusing entries that escape dest.
func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		target := filepath.Join(dest, filepath.Clean(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("entry %s escapes extraction directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		if err := copyZipEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func copyZipEntry(f *zip.File, target string) error {
	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}

// findDir locates the first directory named name anywhere beneath root.
func findDir(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching for %s directory: %w", name, err)
	}
	if found == "" {
		return "", fmt.Errorf("no %s directory in extracted archive", name)
	}
	return found, nil
}

// expandNested reads every nested label zip in labelDir and writes its XML
// entries into xmlDir, prefixed with the zip name to keep them unique.
func expandNested(labelDir, xmlDir string) (int, error) {
	zips, err := filepath.Glob(filepath.Join(labelDir, "*.zip"))
	if err != nil {
		return 0, fmt.Errorf("globbing label zips: %w", err)
	}

	count := 0
	for i, zipPath := range zips {
		n, err := copyXMLEntries(zipPath, xmlDir)
		if err != nil {
			log.Printf("archive: skipping %s: %v", filepath.Base(zipPath), err)
			continue
		}
		count += n

		if (i+1)%100 == 0 {
			log.Printf("archive: %d/%d label zips expanded (%d documents)", i+1, len(zips), count)
		}
	}
	return count, nil
}

func copyXMLEntries(zipPath, xmlDir string) (int, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, fmt.Errorf("opening nested zip: %w", err)
	}
	defer func() { _ = r.Close() }()

	stem := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	count := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".xml") {
			continue
		}
		target := filepath.Join(xmlDir, stem+"_"+filepath.Base(f.Name))
		if err := copyZipEntry(f, target); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
