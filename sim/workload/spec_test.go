package workload

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resource-sim/resource-sim/sim"
)

func scenariosDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	// sim/workload/ → repo root scenarios/
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "scenarios")
}

func TestLoadScenario_BundledFiles_AreValid(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join(scenariosDir(t), "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Name)
		})
	}
}

func TestLoadScenario_TextbookFile_MatchesPreset(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenariosDir(t), "textbook.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ScenarioTextbook(), s)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseScenario_UnknownField_Rejected(t *testing.T) {
	// GIVEN a typo in a process key
	data := []byte("processes:\n  - {pid: 1, arival: 0, burst: 2}\n")

	_, err := ParseScenario(data)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "arival")
}

func TestParseScenario_ProcessesOnly(t *testing.T) {
	data := []byte("quantum: 2\nprocesses:\n  - {pid: 1, arrival: 0, burst: 5, priority: 2}\n")

	s, err := ParseScenario(data)

	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Quantum)
	assert.Equal(t, []sim.ProcessSpec{{PID: 1, ArrivalTime: 0, BurstTime: 5, Priority: 2}}, s.ProcessSpecs())
	assert.Nil(t, s.Graph)
	assert.Nil(t, s.Banker)
}

func TestScenario_Validate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"negative quantum", "quantum: -1\n", "Quantum"},
		{"zero burst", "processes:\n  - {pid: 1, arrival: 0, burst: 0}\n", "burst must be positive"},
		{"duplicate pid", "processes:\n  - {pid: 1, burst: 1}\n  - {pid: 1, burst: 2}\n", "duplicate pid 1"},
		{"zero instances", "graph:\n  processes: [P1]\n  resources: [{id: R1, instances: 0}]\n", "Instances"},
		{"edge to unknown resource", "graph:\n  processes: [P1]\n  resources: [{id: R1, instances: 1}]\n  requests: [{process: P1, resource: R9, count: 1}]\n", "unknown resource \"R9\""},
		{"edge from unknown process", "graph:\n  processes: [P1]\n  resources: [{id: R1, instances: 1}]\n  allocations: [{process: P7, resource: R1, count: 1}]\n", "unknown process \"P7\""},
		{"duplicate resource", "graph:\n  processes: [P1]\n  resources: [{id: R1, instances: 1}, {id: R1, instances: 2}]\n", "duplicate resource"},
		{"available length", "banker:\n  processes: [P0]\n  resources: [A, B]\n  available: [1]\n  max: [[1, 1]]\n", "available has 1 entries for 2 resources"},
		{"max rows", "banker:\n  processes: [P0, P1]\n  resources: [A]\n  available: [1]\n  max: [[1]]\n", "max has 1 rows for 2 processes"},
		{"allocation above max", "banker:\n  processes: [P0]\n  resources: [A]\n  available: [1]\n  max: [[1]]\n  allocation: [[2]]\n", "above its max"},
		{"negative available", "banker:\n  processes: [P0]\n  resources: [A]\n  available: [-1]\n  max: [[1]]\n", "Available"},
		{"request unknown process", "banker:\n  processes: [P0]\n  resources: [A]\n  available: [1]\n  max: [[1]]\n  requests: [{process: P9, amounts: [1]}]\n", "unknown process \"P9\""},
		{"request length", "banker:\n  processes: [P0]\n  resources: [A]\n  available: [1]\n  max: [[1]]\n  requests: [{process: P0, amounts: [1, 1]}]\n", "2 entries for 1 resources"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tc.yaml))

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidScenario), "got %v", err)
			assert.True(t, strings.Contains(err.Error(), tc.wantMsg), "error %q does not mention %q", err, tc.wantMsg)
		})
	}
}

func TestBankerScenario_Validate_Standalone(t *testing.T) {
	b := ScenarioTextbook().Banker
	require.NoError(t, b.Validate())

	b.Max = b.Max[:2]
	assert.ErrorIs(t, b.Validate(), ErrInvalidScenario)
}
