package circlist

// header is the arena slot of the sentinel node. It never carries user data.
const header = 0

// node is one ring member. Links are arena slots, not pointers.
type node struct {
	value      int
	prev, next int
}

// arena owns every node of a list, the header included. Released slots are kept on a free list
// and handed out again before the slice grows.
type arena struct {
	nodes []node
	free  []int
	limit int // Maximum number of live slots, header included; 0 means unbounded.
}

// live returns the number of slots currently in use.
func (a *arena) live() int {
	return len(a.nodes) - len(a.free)
}

// alloc places `value` in a self-linked slot and returns the slot.
func (a *arena) alloc(value int) (int, error) {
	if n := len(a.free); n > 0 {
		slot := a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[slot] = node{value: value, prev: slot, next: slot}
		nodesRecycled.Inc()
		return slot, nil
	}
	if a.limit > 0 && len(a.nodes) >= a.limit {
		return 0, ErrOutOfMemory
	}
	slot := len(a.nodes)
	a.nodes = append(a.nodes, node{value: value, prev: slot, next: slot})
	nodesAllocated.Inc()
	return slot, nil
}

// release returns `slot` to the free list.
func (a *arena) release(slot int) {
	a.nodes[slot] = node{}
	a.free = append(a.free, slot)
}
