package circlist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels.
const (
	opNew         = "new"
	opIsEmpty     = "is_empty"
	opLen         = "len"
	opInsertAt    = "insert_at"
	opDeleteAt    = "delete_at"
	opSearchAt    = "search_at"
	opInsertFirst = "insert_first"
	opInsertLast  = "insert_last"
	opDeleteFirst = "delete_first"
	opDeleteLast  = "delete_last"
	opSwapEnds    = "swap_ends"
	opDestroy     = "destroy"
	opValues      = "values"
	opDump        = "dump"
	opValidate    = "validate"
)

var (
	operationsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circlist_operations_total",
		Help: "Total number of list operations by outcome.",
	}, []string{"op", "result" /* ok | error kind */})
	nodesAllocated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "circlist_nodes_allocated_total",
		Help: "Total number of arena slots grown for new nodes.",
	})
	nodesRecycled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "circlist_nodes_recycled_total",
		Help: "Total number of nodes placed in a slot taken from the free list.",
	})
)

// observe counts one `op` call that ended with `err`.
func observe(op string, err error) {
	operationsMetric.WithLabelValues(op, errorKind(err)).Inc()
}
