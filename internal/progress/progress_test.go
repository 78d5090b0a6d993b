package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan_state.json")
	return NewManager(NewFileStore(path)), path
}

func TestStartAndResume(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.StartNewScan("MACRO", []string{"A", "B", "C"}, "2026-08-28"))
	require.NoError(t, m.MarkTargetStart("A"))
	require.NoError(t, m.MarkTargetComplete("A"))
	require.NoError(t, m.MarkTargetStart("B"))
	// Crash here: B started but never completed.

	info, err := m.GetResumeInfo()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "MACRO", info.ScanType)
	assert.Equal(t, "2026-08-28", info.TargetDate)
	assert.Equal(t, []string{"B", "C"}, info.Remaining)
	assert.Equal(t, 1, info.CompletedCount)
	assert.Equal(t, 3, info.TotalCount)
	assert.Equal(t, "B", info.LastTarget)
}

func TestRemainingPreservesOrder(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.StartNewScan("SECTOR", []string{"A", "B", "C", "D"}, "2026-08-28"))
	// Complete out of order; remaining still follows the original list.
	require.NoError(t, m.MarkTargetComplete("C"))
	require.NoError(t, m.MarkTargetComplete("A"))

	info, err := m.GetResumeInfo()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, []string{"B", "D"}, info.Remaining)
}

func TestMarkCompleteIdempotent(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.StartNewScan("MACRO", []string{"A", "B"}, ""))
	require.NoError(t, m.MarkTargetComplete("A"))
	require.NoError(t, m.MarkTargetComplete("A"))

	info, err := m.GetResumeInfo()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, 1, info.CompletedCount)
	assert.Equal(t, []string{"B"}, info.Remaining)
}

func TestAllDoneAutoFinishes(t *testing.T) {
	m, path := newTestManager(t)

	require.NoError(t, m.StartNewScan("MACRO", []string{"A"}, ""))
	require.NoError(t, m.MarkTargetComplete("A"))

	// Active but nothing remaining: reported as no resume and deactivated.
	info, err := m.GetResumeInfo()
	require.NoError(t, err)
	assert.Nil(t, info)

	st, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.False(t, st.ActiveScan)

	info, err = m.GetResumeInfo()
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestMarksIgnoredWhenInactive(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.MarkTargetStart("A"))
	require.NoError(t, m.MarkTargetComplete("A"))

	info, err := m.GetResumeInfo()
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestFinishAndClear(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.StartNewScan("COMPANY", []string{"NVDA", "AAPL"}, "2026-08-28"))
	require.NoError(t, m.FinishScan())

	info, err := m.GetResumeInfo()
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, m.StartNewScan("COMPANY", []string{"NVDA"}, "2026-08-28"))
	require.NoError(t, m.ClearState())
	info, err = m.GetResumeInfo()
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestCorruptFileResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	m := NewManager(NewFileStore(path))
	info, err := m.GetResumeInfo()
	require.NoError(t, err)
	assert.Nil(t, info)
}
