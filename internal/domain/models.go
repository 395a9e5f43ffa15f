package domain

import (
	"time"

	"github.com/google/uuid"
)

// CrossReference is one row of the NDC → manufacturer DUNS mapping.
type CrossReference struct {
	NDC       string    `db:"ndc" json:"ndc"`
	DUNS      string    `db:"duns" json:"duns"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RunStats aggregates the counters reported at the end of a pipeline run.
type RunStats struct {
	DocumentsSeen    int `json:"documents_seen"`
	ParseFailures    int `json:"parse_failures"`
	NoManufacturer   int `json:"no_manufacturer"`
	RowsExtracted    int `json:"rows_extracted"`
	RowsPersisted    int `json:"rows_persisted"`
	RowsFailed       int `json:"rows_failed"`
	ExcludedRepacker int `json:"excluded_repacker"`
	ExcludedLabeler  int `json:"excluded_labeler"`
	ExcludedAPIManuf int `json:"excluded_api_manufacturer"`
	ExcludedUnknown  int `json:"excluded_unknown_role"`
}

// AddExcluded bumps the counter matching a filtered-out organization role.
func (s *RunStats) AddExcluded(role OrgRole) {
	switch role {
	case RoleRepacker:
		s.ExcludedRepacker++
	case RoleLabeler:
		s.ExcludedLabeler++
	case RoleAPIManufacturer:
		s.ExcludedAPIManuf++
	default:
		s.ExcludedUnknown++
	}
}

// PipelineRun is the persisted audit record of one ingestion run.
type PipelineRun struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Status         RunStatus  `db:"status" json:"status"`
	ArchiveSource  string     `db:"archive_source" json:"archive_source"`
	DocumentsSeen  int        `db:"documents_seen" json:"documents_seen"`
	ParseFailures  int        `db:"parse_failures" json:"parse_failures"`
	NoManufacturer int        `db:"no_manufacturer" json:"no_manufacturer"`
	RowsExtracted  int        `db:"rows_extracted" json:"rows_extracted"`
	RowsPersisted  int        `db:"rows_persisted" json:"rows_persisted"`
	RowsFailed     int        `db:"rows_failed" json:"rows_failed"`
	Error          string     `db:"error" json:"error,omitempty"`
	StartedAt      time.Time  `db:"started_at" json:"started_at"`
	FinishedAt     *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// ApplyStats copies run counters onto the audit record.
func (r *PipelineRun) ApplyStats(stats RunStats) {
	r.DocumentsSeen = stats.DocumentsSeen
	r.ParseFailures = stats.ParseFailures
	r.NoManufacturer = stats.NoManufacturer
	r.RowsExtracted = stats.RowsExtracted
	r.RowsPersisted = stats.RowsPersisted
	r.RowsFailed = stats.RowsFailed
}
