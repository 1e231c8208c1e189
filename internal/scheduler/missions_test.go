package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaia/internal/model"
)

const validMissions = `
missions:
  - name: forest-north
    sensor: OPTICAL
    bbox: [13.0, 52.0, 13.5, 52.5]
  - name: coast-east
    sensor: RADAR
    bbox: [14.0, 53.0, 14.5, 53.5]
`

func writeMissionFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "missions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWatchList(t *testing.T) {
	path := writeMissionFile(t, t.TempDir(), validMissions)

	wl, err := LoadWatchList(path)
	require.NoError(t, err)
	defer wl.Close()

	missions := wl.Missions()
	require.Len(t, missions, 2)
	assert.Equal(t, "forest-north", missions[0].Name)
	assert.Equal(t, model.SensorOptical, missions[0].Sensor)
	assert.Equal(t, model.BBox{13.0, 52.0, 13.5, 52.5}, missions[0].BBox)
	assert.Equal(t, model.SensorRadar, missions[1].Sensor)
}

func TestLoadWatchList_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "empty file", content: "missions: []", wantMsg: "no missions"},
		{name: "missing name", content: "missions:\n  - sensor: OPTICAL\n    bbox: [1, 2, 3, 4]", wantMsg: "without a name"},
		{name: "unknown sensor", content: "missions:\n  - name: x\n    sensor: THERMAL\n    bbox: [1, 2, 3, 4]", wantMsg: "unknown sensor"},
		{name: "inverted bbox", content: "missions:\n  - name: x\n    sensor: OPTICAL\n    bbox: [4, 3, 2, 1]", wantMsg: "invalid bbox"},
		{name: "not yaml", content: "{{{", wantMsg: "parse mission file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMissionFile(t, t.TempDir(), tt.content)
			_, err := LoadWatchList(path)
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestWatchList_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeMissionFile(t, dir, validMissions)

	wl, err := LoadWatchList(path)
	require.NoError(t, err)
	defer wl.Close()

	// A valid rewrite replaces the mission set.
	require.NoError(t, os.WriteFile(path, []byte(`
missions:
  - name: forest-north
    sensor: OPTICAL
    bbox: [13.0, 52.0, 13.5, 52.5]
`), 0o644))

	assert.Eventually(t, func() bool {
		return len(wl.Missions()) == 1
	}, 2*time.Second, 20*time.Millisecond)

	// A broken rewrite keeps the last good set.
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))

	assert.Never(t, func() bool {
		return len(wl.Missions()) != 1
	}, 300*time.Millisecond, 20*time.Millisecond)
}
