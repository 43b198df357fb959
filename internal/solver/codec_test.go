package solver_test

import (
	"bytes"
	"testing"

	"waypoint-route-service/internal/solver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWorkerOverBuffers(t *testing.T) {
	m := randomMatrix(t, 15, 77)

	var in, out bytes.Buffer
	require.NoError(t, solver.WriteMatrix(&in, m))
	require.NoError(t, solver.RunWorker(&in, &out))

	perm, err := solver.ReadPermutation(&out)
	require.NoError(t, err)
	assert.Equal(t, solver.Heuristic(m), perm)
}

func TestReadFramesRejectGarbage(t *testing.T) {
	_, err := solver.ReadMatrix(bytes.NewReader([]byte("nope")))
	assert.ErrorIs(t, err, solver.ErrFrame)

	_, err = solver.ReadPermutation(bytes.NewReader(nil))
	assert.ErrorIs(t, err, solver.ErrFrame)

	// Valid header, truncated body.
	var buf bytes.Buffer
	require.NoError(t, solver.WritePermutation(&buf, []int{0, 1, 2}))
	truncated := buf.Bytes()[:buf.Len()-2]
	_, err = solver.ReadPermutation(bytes.NewReader(truncated))
	assert.Error(t, err)
}

func TestRunWorkerRejectsWrongFrame(t *testing.T) {
	var in, out bytes.Buffer
	require.NoError(t, solver.WritePermutation(&in, []int{0}))
	assert.Error(t, solver.RunWorker(&in, &out))
	assert.Zero(t, out.Len())
}
