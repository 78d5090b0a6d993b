// Package progress persists scan checkpoints so an interrupted run can pick
// up at the first unfinished target instead of starting over.
package progress

import "time"

// State is the on-disk checkpoint for one scan.
type State struct {
	ActiveScan       bool     `json:"active_scan"`
	ScanType         string   `json:"scan_type"`
	TargetDate       string   `json:"target_date"`
	StartTime        string   `json:"start_time"`
	TotalTargets     []string `json:"total_targets"`
	CompletedTargets []string `json:"completed_targets"`
	CurrentTarget    string   `json:"current_target"`
}

// Store loads and saves scan state. Implementations must tolerate a missing
// or corrupt file by handing back a clean inactive state.
type Store interface {
	Load() (State, error)
	Save(State) error
	Clear() error
}

// ResumeInfo describes what is left of an interrupted scan.
type ResumeInfo struct {
	ScanType       string
	TargetDate     string
	Remaining      []string
	CompletedCount int
	TotalCount     int
	LastTarget     string
}

// Manager drives the scan-state lifecycle on top of a Store.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// StartNewScan replaces any previous state with a fresh active scan.
func (m *Manager) StartNewScan(scanType string, targets []string, targetDate string) error {
	return m.store.Save(State{
		ActiveScan:   true,
		ScanType:     scanType,
		TargetDate:   targetDate,
		StartTime:    time.Now().UTC().Format(time.RFC3339),
		TotalTargets: targets,
	})
}

// MarkTargetStart records the target being worked on. A crash leaves it in
// current_target so the operator can see where the run died.
func (m *Manager) MarkTargetStart(target string) error {
	st, err := m.store.Load()
	if err != nil {
		return err
	}
	if !st.ActiveScan {
		return nil
	}
	st.CurrentTarget = target
	return m.store.Save(st)
}

// MarkTargetComplete moves a target to completed. Marking twice is a no-op.
func (m *Manager) MarkTargetComplete(target string) error {
	st, err := m.store.Load()
	if err != nil {
		return err
	}
	if !st.ActiveScan {
		return nil
	}
	done := false
	for _, t := range st.CompletedTargets {
		if t == target {
			done = true
			break
		}
	}
	if !done {
		st.CompletedTargets = append(st.CompletedTargets, target)
	}
	st.CurrentTarget = ""
	return m.store.Save(st)
}

// FinishScan deactivates the state, keeping the record of what was done.
func (m *Manager) FinishScan() error {
	st, err := m.store.Load()
	if err != nil {
		return err
	}
	st.ActiveScan = false
	st.CurrentTarget = ""
	return m.store.Save(st)
}

// GetResumeInfo returns what remains of an interrupted scan, preserving the
// order of the original target list. An active state with nothing remaining
// is finished on the spot and reported as no resume. nil means start fresh.
func (m *Manager) GetResumeInfo() (*ResumeInfo, error) {
	st, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	if !st.ActiveScan {
		return nil, nil
	}

	doneSet := map[string]bool{}
	for _, t := range st.CompletedTargets {
		doneSet[t] = true
	}
	var remaining []string
	for _, t := range st.TotalTargets {
		if !doneSet[t] {
			remaining = append(remaining, t)
		}
	}

	if len(remaining) == 0 {
		if err := m.FinishScan(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &ResumeInfo{
		ScanType:       st.ScanType,
		TargetDate:     st.TargetDate,
		Remaining:      remaining,
		CompletedCount: len(st.CompletedTargets),
		TotalCount:     len(st.TotalTargets),
		LastTarget:     st.CurrentTarget,
	}, nil
}

// ClearState force-resets to inactive, for an operator cancelling a scan.
func (m *Manager) ClearState() error {
	return m.FinishScan()
}
