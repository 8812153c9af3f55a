package dynquery

import "github.com/oliverbestmann/dynquery/internal/typedpool"

var queryPool = typedpool.New[Query](func(q *Query) {
	q.Reset()
	q.registry = nil
	q.name = ""
	q.space = 0
})

// AcquireQuery returns an empty query from a pool. Queries built from scripts
// change frequently, pooling them saves the allocation of their elements.
func AcquireQuery(registry Registry) *Query {
	q := queryPool.Get()
	q.init(registry)
	return q
}

// ReleaseQuery resets the query and puts it back into the pool.
// The query must not be used afterwards.
func ReleaseQuery(q *Query) {
	queryPool.Put(q)
}
