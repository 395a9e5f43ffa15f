package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ndclink/internal/domain"
)

const sheetName = "Cross References"

// WriteXLSX renders the cross-references as a single-sheet workbook. The
// stream writer keeps memory flat for full-table exports, which run to
// hundreds of thousands of rows.
func WriteXLSX(w io.Writer, refs []domain.CrossReference) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range refs {
		ref := &refs[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell for row %d: %w", i+2, err)
		}
		row := []interface{}{ref.NDC, ref.DUNS, ref.UpdatedAt}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing stream writer: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
