//go:build dynquery_debug

package dynquery

import (
	"testing"

	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/stretchr/testify/require"
)

func fetchUnmatched(t *testing.T, q *Query, entity spoke.EntityId) {
	t.Helper()

	require.Panics(t, func() { _ = q.Fetch(entity) })
}

func nextOutsideCycle(t *testing.T, q *Query) {
	t.Helper()
	require.Panics(t, func() { q.Next() })
}
