package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/oliverbestmann/dynquery"
	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func loadRunner(t *testing.T, logger zerolog.Logger) *Runner {
	t.Helper()

	scene, err := LoadScene("testdata/scene.yaml")
	require.NoError(t, err)

	runner, err := NewRunner(scene, spoke.Local, logger)
	require.NoError(t, err)
	t.Cleanup(runner.Close)

	return runner
}

func matchesOf(results []CycleResult, cycle int) map[string][]spoke.EntityId {
	matches := map[string][]spoke.EntityId{}
	for _, result := range results {
		if result.Cycle == cycle {
			matches[result.Query] = result.Entities
		}
	}

	return matches
}

func TestRunnerCycles(t *testing.T) {
	runner := loadRunner(t, zerolog.Nop())

	results, err := runner.Run(3)
	require.NoError(t, err)
	require.Len(t, results, 12)

	require.Equal(t, map[string][]spoke.EntityId{
		"touched": nil,
		"moving":  {1},
		"either":  {1, 2, 3, 4},
		"placed":  {10, 11},
	}, matchesOf(results, 1))

	// the mutation of entity 2 and the mutable fetch of entity 1
	require.Equal(t, map[string][]spoke.EntityId{
		"touched": {1, 2},
		"moving":  {1},
		"either":  {1, 2, 3, 4},
		"placed":  {10, 11},
	}, matchesOf(results, 2))

	// entity 3 is no longer frozen
	require.Equal(t, map[string][]spoke.EntityId{
		"touched": {1},
		"moving":  {1, 3},
		"either":  {1, 2, 3, 4},
		"placed":  {10, 11},
	}, matchesOf(results, 3))
}

func TestRunnerLogsGlobalTransforms(t *testing.T) {
	var buf bytes.Buffer
	runner := loadRunner(t, zerolog.New(&buf))

	_, err := runner.Run(3)
	require.NoError(t, err)

	type entry struct {
		Cycle      int    `json:"cycle"`
		Query      string `json:"query"`
		Entity     string `json:"entity"`
		Message    string `json:"message"`
		Components struct {
			Transform *spoke.Transform
		} `json:"components"`
	}

	var positions []float64

	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var line entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))

		if line.Message == "Matched" && line.Query == "placed" && line.Entity == "11" {
			require.NotNil(t, line.Components.Transform)
			positions = append(positions, line.Components.Transform.Position.X)
		}
	}

	require.Equal(t, []float64{11, 11, 12}, positions)
}

func TestRunnerInvalidQuery(t *testing.T) {
	scene, err := ParseScene([]byte(`
components: [Position]
entities:
  - {id: 1, components: {Position: {}}}
queries:
  - {name: optional, maybe: [Position]}
  - {name: all, select: [{component: Position}]}
`))
	require.NoError(t, err)

	runner, err := NewRunner(scene, spoke.Local, zerolog.Nop())
	require.NoError(t, err)
	defer runner.Close()

	results, err := runner.Run(2)
	require.True(t, eris.Is(err, dynquery.ErrNoDeterminantFilter))

	// the valid query still runs
	require.Equal(t, []spoke.EntityId{1}, matchesOf(results, 2)["all"])
	require.Error(t, results[0].Err)
	require.True(t, eris.Is(results[2].Err, dynquery.ErrInvalidQuery))
}

func TestRunnerSceneErrors(t *testing.T) {
	cases := []struct {
		name  string
		scene string
		err   error
	}{
		{
			name:  "unknown component in query",
			scene: "queries: [{name: q, select: [{component: Health}]}]",
			err:   ErrUnknownComponent,
		},
		{
			name:  "unknown component on entity",
			scene: "entities: [{id: 1, components: {Health: {}}}]",
			err:   ErrUnknownComponent,
		},
		{
			name:  "duplicate entity",
			scene: "entities: [{id: 1}, {id: 1}]",
			err:   ErrDuplicateEntity,
		},
		{
			name:  "unknown parent",
			scene: "spatial: [T]\nentities: [{id: 1, transform: {component: T, parent: 5}}]",
			err:   ErrUnknownEntity,
		},
		{
			name:  "component declared twice",
			scene: "components: [T]\nspatial: [T]",
			err:   spoke.ErrComponentTypeMismatch,
		},
		{
			name:  "duplicate selection",
			scene: "components: [A]\nqueries: [{name: q, select: [{component: A}, {component: A}]}]",
			err:   dynquery.ErrAlreadySelected,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scene, err := ParseScene([]byte(tc.scene))
			require.NoError(t, err)

			_, err = NewRunner(scene, spoke.Local, zerolog.Nop())
			require.True(t, eris.Is(err, tc.err), "unexpected error: %v", err)
		})
	}
}

func TestRunnerMutationErrors(t *testing.T) {
	scene, err := ParseScene([]byte(`
spatial: [T]
entities: [{id: 1, transform: {component: T}}]
mutations: [{cycle: 1, entity: 1, component: T, set: {z: 1}}]
`))
	require.NoError(t, err)

	runner, err := NewRunner(scene, spoke.Local, zerolog.Nop())
	require.NoError(t, err)
	defer runner.Close()

	_, err = runner.Run(1)
	require.ErrorContains(t, err, "unknown transform field")
}

func TestRunnerAccessConflicts(t *testing.T) {
	runner := loadRunner(t, zerolog.Nop())

	conflicts, err := runner.AccessConflicts()
	require.NoError(t, err)

	require.Equal(t, [][2]string{
		{"touched", "moving"},
		{"moving", "either"},
	}, conflicts)
}
