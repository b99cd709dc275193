package aggregate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorRecordsSuccessAndFailure(t *testing.T) {
	m := NewMonitor()

	m.RecordSuccess("internshala", 12, 12, 12)
	m.RecordFailure("internshala", errors.New("blocked"))
	m.RecordFailure("naukri", errors.New("timeout"))

	snap := m.Snapshot()
	require.Contains(t, snap, "internshala")
	require.Contains(t, snap, "naukri")

	in := snap["internshala"]
	assert.Equal(t, 2, in.Attempts)
	assert.Equal(t, 1, in.Successes)
	assert.Equal(t, 1, in.Failures)
	assert.Equal(t, 12, in.JobsFound)
	assert.Equal(t, "blocked", in.LastError)
	assert.False(t, in.LastSuccessAt.IsZero())

	nk := snap["naukri"]
	assert.Equal(t, 1, nk.Attempts)
	assert.Equal(t, 0, nk.Successes)
}

func TestMonitorQualityRatio(t *testing.T) {
	m := NewMonitor()

	m.RecordSuccess("indeed", 10, 7, 10)
	assert.InDelta(t, 0.7, m.Snapshot()["indeed"].QualityRatio, 1e-9)

	// zero records counts as full quality, not division by zero
	m.RecordSuccess("indeed", 0, 0, 0)
	assert.Equal(t, 1.0, m.Snapshot()["indeed"].QualityRatio)
}

func TestMonitorSnapshotIsCopy(t *testing.T) {
	m := NewMonitor()
	m.RecordSuccess("linkedin", 1, 1, 1)

	snap := m.Snapshot()
	entry := snap["linkedin"]
	entry.JobsFound = 999
	snap["linkedin"] = entry

	assert.Equal(t, 1, m.Snapshot()["linkedin"].JobsFound)
}
