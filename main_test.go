package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, hosts int) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"entrances.wkt": "POINT (0 0)\n",
		"campus.wkt":    "LINESTRING (0 0, 10 0, 10 10)\n",
		"rooms.txt":     "# room: HS 1; capacity: 5\nPOINT (10 10)\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	cfg := fmt.Sprintf(`
timetable:
  defActivities: 1
  defActivityDur: 2
  pauseBetweenActivities: 0
  roomMapping: %s
  mapFiles: [%s, %s]
  maxRoomDraws: 500
scenario:
  endTime: 80
  groups:
    - groupID: s
      nrofHosts: %d
log:
  level: error
`, filepath.Join(dir, "rooms.txt"), filepath.Join(dir, "entrances.wkt"), filepath.Join(dir, "campus.wkt"), hosts)
	path := filepath.Join(dir, "timetable.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunPrintsAndStoresReport(t *testing.T) {
	cfg := writeScenario(t, 3)
	db := filepath.Join(t.TempDir(), "runs.db")

	out, err := execute(t, "run", "--config", cfg, "--env", "", "--db", db, "--verbose", "--label", "cli")
	require.NoError(t, err)
	assert.Contains(t, out, "SCHEDULES (3 hosts")
	assert.Contains(t, out, "HS 1")
	assert.Contains(t, out, "run stored as ")
}

func TestRunFailsWhenSeatsRunOut(t *testing.T) {
	cfg := writeScenario(t, 6)
	_, err := execute(t, "run", "--config", cfg, "--env", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LECTURE_HALL")
}

func TestScheduleAndRoomsCommands(t *testing.T) {
	cfg := writeScenario(t, 2)

	out, err := execute(t, "schedule", "--config", cfg, "--env", "", "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "seed 9")

	out, err = execute(t, "rooms", "--config", cfg, "--env", "")
	require.NoError(t, err)
	assert.Contains(t, out, "LECTURE_HALL")
	assert.Contains(t, out, "HS 1")
}

func TestInvalidSettingsAreRejected(t *testing.T) {
	cfg := writeScenario(t, 1)
	_, err := execute(t, "run", "--config", cfg, "--env", "", "--steps", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
}
