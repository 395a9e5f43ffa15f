package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrgRoleEligible(t *testing.T) {
	assert.True(t, RoleManufacturer.Eligible())
	assert.False(t, RoleRepacker.Eligible())
	assert.False(t, RoleLabeler.Eligible())
	assert.False(t, RoleAPIManufacturer.Eligible())
	assert.False(t, RoleUnknown.Eligible())
}

func TestRunStatsAddExcluded(t *testing.T) {
	var s RunStats
	s.AddExcluded(RoleRepacker)
	s.AddExcluded(RoleRepacker)
	s.AddExcluded(RoleLabeler)
	s.AddExcluded(RoleAPIManufacturer)
	s.AddExcluded(RoleUnknown)

	assert.Equal(t, 2, s.ExcludedRepacker)
	assert.Equal(t, 1, s.ExcludedLabeler)
	assert.Equal(t, 1, s.ExcludedAPIManuf)
	assert.Equal(t, 1, s.ExcludedUnknown)
}

func TestApplyStats(t *testing.T) {
	run := &PipelineRun{}
	run.ApplyStats(RunStats{
		DocumentsSeen:  100,
		ParseFailures:  3,
		NoManufacturer: 7,
		RowsExtracted:  80,
		RowsPersisted:  79,
		RowsFailed:     1,
	})

	assert.Equal(t, 100, run.DocumentsSeen)
	assert.Equal(t, 3, run.ParseFailures)
	assert.Equal(t, 7, run.NoManufacturer)
	assert.Equal(t, 80, run.RowsExtracted)
	assert.Equal(t, 79, run.RowsPersisted)
	assert.Equal(t, 1, run.RowsFailed)
}
