package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagesAreOrdered(t *testing.T) {
	stages := Stages()
	require.Len(t, stages, 8)
	assert.Equal(t, StageDiscovery, stages[0])
	assert.Equal(t, StageMaintenance, stages[7])
	for i := 1; i < len(stages); i++ {
		assert.True(t, stages[i-1].Before(stages[i]))
	}
}

func TestNext(t *testing.T) {
	next, ok := StageDiscovery.Next()
	require.True(t, ok)
	assert.Equal(t, StageStrategy, next)

	_, ok = StageMaintenance.Next()
	assert.False(t, ok)

	_, ok = Stage("LAUNCH").Next()
	assert.False(t, ok)
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage(" design ")
	require.NoError(t, err)
	assert.Equal(t, StageDesign, s)

	_, err = ParseStage("launch")
	assert.Error(t, err)
}

func TestScanRejectsUnknown(t *testing.T) {
	var s Stage
	require.NoError(t, s.Scan([]byte("AUDIT")))
	assert.Equal(t, StageAudit, s)
	assert.Error(t, s.Scan("NOPE"))
	assert.Error(t, s.Scan(42))
}

func TestNavigationUnlocksUpToCurrent(t *testing.T) {
	items := Navigation(StageDesign)
	require.Len(t, items, 8)
	for _, it := range items {
		assert.Equal(t, it.Stage.Index() <= StageDesign.Index(), it.Unlocked, it.Stage)
		assert.Equal(t, it.Stage == StageDesign, it.Current)
	}
	assert.Equal(t, "/dashboard/design", items[3].Path)
	assert.Equal(t, 4, items[3].Order)
}
