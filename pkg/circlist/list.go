// Package circlist implements a circular doubly linked list of integers anchored by a sentinel header node.
//
// The header never holds user data: its next neighbor is position 1 and its previous neighbor is the
// last position, so an empty list is a header linked to itself. Positions are 1-indexed. Nodes live in
// an arena and refer to each other by slot, which keeps the ring free of pointer cycles and lets
// deleted slots be recycled.
//
// A List is not safe for concurrent use; callers must serialize access to a given instance.
package circlist

import (
	"fmt"
	"iter"

	"github.com/nobletooth/ringlist/pkg/utils"
)

// State is the lifecycle state of a List.
type State uint8

const (
	Uninitialized State = iota // The zero value List.
	Created                    // Returned by New.
	Destroyed                  // After Destroy.
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Created:
		return "created"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// List is a circular doubly linked list with a header node.
// The zero value is Uninitialized; use New to create a usable list.
type List struct {
	arena arena
	size  int
	state State
}

// New creates an empty list whose header is linked to itself.
func New(opts ...Option) (l *List, err error) {
	defer func() { observe(opNew, err) }()

	options := newDefaultListOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}
	if options.maxSize < 0 {
		return nil, fmt.Errorf("%w: max size %d leaves no room for the header", ErrOutOfMemory, options.maxSize)
	}

	l = &List{}
	if options.maxSize > 0 {
		l.arena.limit = options.maxSize + 1 // The header takes a slot too.
	}
	slot, err := l.arena.alloc(0 /*value*/)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate the header: %w", err)
	}
	if slot != header {
		utils.RaiseInvariant("circlist", "misplaced_header", "Header was allocated outside its reserved slot.",
			"slot", slot)
		return nil, ErrCorruptRing
	}
	l.state = Created
	return l, nil
}

// State returns the lifecycle state of the list. A nil list is Uninitialized.
func (l *List) State() State {
	if l == nil {
		return Uninitialized
	}
	return l.state
}

func (l *List) checkCreated() error {
	if state := l.State(); state != Created {
		return fmt.Errorf("%w: list is %s", ErrInvalidState, state)
	}
	return nil
}

// IsEmpty reports whether the list holds no data nodes.
func (l *List) IsEmpty() (empty bool, err error) {
	defer func() { observe(opIsEmpty, err) }()
	if err := l.checkCreated(); err != nil {
		return false, err
	}
	return l.size == 0, nil
}

// Len returns the number of data nodes in the list.
func (l *List) Len() (size int, err error) {
	defer func() { observe(opLen, err) }()
	if err := l.checkCreated(); err != nil {
		return 0, err
	}
	return l.size, nil
}

// InsertAt inserts `value` so that it ends up at position `index`, shifting the node previously there
// and all nodes after it one position back. Valid indexes are [1, size+1]; size+1 appends.
// It walks forward from the header, even when the index is close to the tail.
func (l *List) InsertAt(value, index int) (err error) {
	defer func() { observe(opInsertAt, err) }()
	if err := l.checkCreated(); err != nil {
		return err
	}
	if index < 1 || index > l.size+1 {
		return fmt.Errorf("%w: insert index %d outside [1, %d]", ErrInvalidPosition, index, l.size+1)
	}
	slot, err := l.arena.alloc(value)
	if err != nil {
		return fmt.Errorf("failed to insert %d at index %d: %w", value, index, err)
	}
	l.splice(l.walk(index-1), slot)
	return nil
}

// DeleteAt removes the node at position `index` and returns its value. Valid indexes are [1, size].
func (l *List) DeleteAt(index int) (value int, err error) {
	defer func() { observe(opDeleteAt, err) }()
	if err := l.checkCreated(); err != nil {
		return 0, err
	}
	if index < 1 || index > l.size {
		return 0, fmt.Errorf("%w: delete index %d outside [1, %d]", ErrInvalidPosition, index, l.size)
	}
	return l.unlink(l.walk(index)), nil
}

// SearchAt returns the value at position `index`. Valid indexes are [1, size].
func (l *List) SearchAt(index int) (value int, err error) {
	defer func() { observe(opSearchAt, err) }()
	if err := l.checkCreated(); err != nil {
		return 0, err
	}
	if index < 1 || index > l.size {
		return 0, fmt.Errorf("%w: search index %d outside [1, %d]", ErrInvalidPosition, index, l.size)
	}
	return l.arena.nodes[l.walk(index)].value, nil
}

// InsertFirst inserts `value` right after the header in O(1).
func (l *List) InsertFirst(value int) (err error) {
	defer func() { observe(opInsertFirst, err) }()
	if err := l.checkCreated(); err != nil {
		return err
	}
	return l.insertAfter(header, value)
}

// InsertLast inserts `value` right before the header in O(1).
func (l *List) InsertLast(value int) (err error) {
	defer func() { observe(opInsertLast, err) }()
	if err := l.checkCreated(); err != nil {
		return err
	}
	return l.insertAfter(l.arena.nodes[header].prev, value)
}

// DeleteFirst removes the first data node in O(1) and returns its value.
func (l *List) DeleteFirst() (value int, err error) {
	defer func() { observe(opDeleteFirst, err) }()
	if err := l.checkCreated(); err != nil {
		return 0, err
	}
	if l.size == 0 {
		return 0, fmt.Errorf("%w: no first node to delete", ErrEmptyList)
	}
	return l.unlink(l.arena.nodes[header].next), nil
}

// DeleteLast removes the last data node in O(1) and returns its value.
func (l *List) DeleteLast() (value int, err error) {
	defer func() { observe(opDeleteLast, err) }()
	if err := l.checkCreated(); err != nil {
		return 0, err
	}
	if l.size == 0 {
		return 0, fmt.Errorf("%w: no last node to delete", ErrEmptyList)
	}
	return l.unlink(l.arena.nodes[header].prev), nil
}

// SwapEnds exchanges the first and last values by removing both ends and re-inserting the former last
// value at the front and the former first value at the back. Lists with fewer than two nodes are left as is.
func (l *List) SwapEnds() (err error) {
	defer func() { observe(opSwapEnds, err) }()
	if err := l.checkCreated(); err != nil {
		return err
	}
	if l.size < 2 {
		return nil
	}
	first := l.unlink(l.arena.nodes[header].next)
	last := l.unlink(l.arena.nodes[header].prev)
	// Both slots just went back to the free list, so neither insert can run out of budget.
	if err := l.insertAfter(header, last); err != nil {
		utils.RaiseInvariant("circlist", "swap_reinsert_failed", "Failed to re-insert the last value.", "error", err)
		return err
	}
	if err := l.insertAfter(l.arena.nodes[header].prev, first); err != nil {
		utils.RaiseInvariant("circlist", "swap_reinsert_failed", "Failed to re-insert the first value.", "error", err)
		return err
	}
	return nil
}

// Destroy releases every data node and then the header. The list moves to the Destroyed state and
// every later operation fails with ErrInvalidState.
func (l *List) Destroy() (err error) {
	defer func() { observe(opDestroy, err) }()
	if err := l.checkCreated(); err != nil {
		return err
	}
	for slot := l.arena.nodes[header].next; slot != header; {
		next := l.arena.nodes[slot].next
		l.arena.release(slot)
		slot = next
	}
	l.arena.release(header)
	if live := l.arena.live(); live != 0 {
		utils.RaiseInvariant("circlist", "leaked_nodes", "Nodes outlived the destroyed list.",
			"live", live, "size", l.size)
	}
	l.arena = arena{}
	l.size = 0
	l.state = Destroyed
	return nil
}

// All returns the values from position 1 to the last position. Ranging over it again walks the
// ring anew. A list that is not Created yields nothing. The list must not change during iteration.
func (l *List) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		if l.State() != Created {
			return
		}
		nodes := l.arena.nodes
		for slot := nodes[header].next; slot != header; slot = nodes[slot].next {
			if !yield(nodes[slot].value) {
				return
			}
		}
	}
}

// Values returns a copy of the values in list order.
func (l *List) Values() (values []int, err error) {
	defer func() { observe(opValues, err) }()
	if err := l.checkCreated(); err != nil {
		return nil, err
	}
	values = make([]int, 0, l.size)
	for value := range l.All() {
		values = append(values, value)
	}
	return values, nil
}

// walk returns the slot `steps` hops forward from the header.
func (l *List) walk(steps int) int {
	slot := header
	for ; steps > 0; steps-- {
		slot = l.arena.nodes[slot].next
	}
	return slot
}

// insertAfter allocates a node for `value` and splices it after `prev`.
func (l *List) insertAfter(prev, value int) error {
	slot, err := l.arena.alloc(value)
	if err != nil {
		return fmt.Errorf("failed to insert %d: %w", value, err)
	}
	l.splice(prev, slot)
	return nil
}

// splice links the self-linked node at `slot` between `prev` and its current next neighbor.
func (l *List) splice(prev, slot int) {
	nodes := l.arena.nodes
	next := nodes[prev].next
	if nodes[next].prev != prev {
		utils.RaiseInvariant("circlist", "broken_link", "Neighbors disagree before a splice.",
			"prev", prev, "next", next, "nextPrev", nodes[next].prev)
	}
	nodes[slot].prev = prev
	nodes[slot].next = next
	nodes[prev].next = slot
	nodes[next].prev = slot
	l.size++
}

// unlink connects the neighbors of `slot` to each other, releases the slot and returns its value.
func (l *List) unlink(slot int) int {
	if slot == header {
		utils.RaiseInvariant("circlist", "header_unlink", "Attempted to unlink the header.", "size", l.size)
		return 0
	}
	n := l.arena.nodes[slot]
	if l.arena.nodes[n.prev].next != slot || l.arena.nodes[n.next].prev != slot {
		utils.RaiseInvariant("circlist", "broken_link", "Neighbors disagree before an unlink.",
			"slot", slot, "prev", n.prev, "next", n.next)
	}
	l.arena.nodes[n.prev].next = n.next
	l.arena.nodes[n.next].prev = n.prev
	l.arena.release(slot)
	l.size--
	return n.value
}
