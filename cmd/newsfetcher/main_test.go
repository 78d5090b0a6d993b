package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emadprograms/News-Fetcher-CLI/internal/progress"
)

func newTestManager(t *testing.T) *progress.Manager {
	t.Helper()
	return progress.NewManager(progress.NewFileStore(filepath.Join(t.TempDir(), "scan_state.json")))
}

func TestClearCompanyCheckpoint(t *testing.T) {
	pm := newTestManager(t)
	require.NoError(t, pm.StartNewScan("COMPANY", []string{"AAPL", "MSFT"}, "2026-08-28"))

	require.NoError(t, clearCompanyCheckpoint(pm))

	// With the checkpoint gone, the next run walks all phases again.
	ri, err := pm.GetResumeInfo()
	require.NoError(t, err)
	assert.Nil(t, ri)
	phases := phasesToRun(pm, zap.NewNop())
	assert.True(t, phases["MACRO"])
	assert.True(t, phases["SECTOR"])
}

func TestClearCompanyCheckpointLeavesOtherTypes(t *testing.T) {
	pm := newTestManager(t)
	require.NoError(t, pm.StartNewScan("SECTOR", []string{"EARNINGS"}, "2026-08-28"))

	require.NoError(t, clearCompanyCheckpoint(pm))

	ri, err := pm.GetResumeInfo()
	require.NoError(t, err)
	require.NotNil(t, ri)
	assert.Equal(t, "SECTOR", ri.ScanType)
}
