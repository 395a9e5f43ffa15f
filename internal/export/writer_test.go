package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ndclink/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Equal(t, []string{"NDC", "Manufacturer DUNS", "Updated At"}, row)
}

func TestWriteRefs(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	refs := []domain.CrossReference{
		{NDC: "0002-1433-80", DUNS: "006421325", UpdatedAt: updated},
		{NDC: "12345-678-90", DUNS: "123456789"},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRefs(refs))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"0002-1433-80", "006421325", "2026-03-01T12:00:00Z"}, rows[0])
	assert.Equal(t, "12345-678-90", rows[1][0])
	assert.Equal(t, "123456789", rows[1][1])
	assert.Empty(t, rows[1][2], "zero UpdatedAt should render empty")
}

func TestWriteXLSX(t *testing.T) {
	refs := []domain.CrossReference{
		{NDC: "0002-1433-80", DUNS: "006421325", UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{NDC: "0003-0293-11", DUNS: "002421902", UpdatedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, refs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Cross References")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "NDC", rows[0][0])
	assert.Equal(t, "0002-1433-80", rows[1][0])
	assert.Equal(t, "006421325", rows[1][1])
	assert.Equal(t, "0003-0293-11", rows[2][0])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "ndc crossref", "ndc_crossref"},
		{"special chars", "export / march (final)", "export_march_final"},
		{"hyphens and underscores preserved", "ndc-export_2026", "ndc-export_2026"},
		{"consecutive underscores collapsed", "test___export", "test_export"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "ndc_crossref_"+today+".csv", BuildFilename("ndc crossref", "csv"))
	assert.Equal(t, "ndc_crossref_"+today+".xlsx", BuildFilename("ndc crossref", "xlsx"))
}
