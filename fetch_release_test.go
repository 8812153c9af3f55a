//go:build !dynquery_debug

package dynquery

import (
	"testing"

	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"
)

func fetchUnmatched(t *testing.T, q *Query, entity spoke.EntityId) {
	t.Helper()

	err := q.Fetch(entity)
	require.True(t, eris.Is(err, ErrEntityNotMatched))

	// no stale values
	accessor, err := q.AccessorAt(0)
	require.NoError(t, err)
	require.False(t, accessor.HasValue())
	require.Equal(t, spoke.NoEntity, q.CurrentEntity())
}

func nextOutsideCycle(t *testing.T, q *Query) {
	t.Helper()
	require.False(t, q.Next())
}
