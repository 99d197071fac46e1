// The registry keeps its lists in several shards, each of which can list its own names in order. Listing
// every name in order is a k-way merge over those per-shard sequences.
//
// This module implements a heap-based multi-way iterator that lazily yields from multiple underneath iterators.
// Items pulled from multiple sequences are sorted by value and sequence priority; equal items pulled from lower
// priority sequences are discarded in case they were already yielded.

package scan

import (
	"container/heap"
	"errors"
	"iter"

	"github.com/nobletooth/ringlist/pkg/utils"
)

// heapElement represents a pulled item from sequences inside iterHeap.
type heapElement[T any] struct {
	item   T
	seqIdx int // The sequence index inside Merge's sequences that produced this element.
}

// iterHeap holds the iteration state over multiple iterators.
type iterHeap[T any] struct { // Implements heap.Interface.
	compare  func(a, b T) int
	elements []*heapElement[T]
}

var _ heap.Interface = (*iterHeap[int])(nil)

func (ih *iterHeap[T]) Len() int {
	return len(ih.elements)
}

// Less orders by item, then by sequence priority for equal items.
func (ih *iterHeap[T]) Less(i, j int) bool {
	e1, e2 := ih.elements[i], ih.elements[j]
	if cmp := ih.compare(e1.item, e2.item); cmp != 0 {
		return cmp < 0
	}
	return e1.seqIdx < e2.seqIdx
}

func (ih *iterHeap[T]) Swap(i, j int) {
	ih.elements[i], ih.elements[j] = ih.elements[j], ih.elements[i]
}

// Push adds `x` to the heap if it is a non-nil element and there is room for it.
func (ih *iterHeap[T]) Push(x any) {
	if element, ok := x.(*heapElement[T]); !ok {
		utils.RaiseInvariant("merged_iterator", "pushed_invalid_type", "An item with invalid type was pushed to heap.")
	} else if element == nil {
		utils.RaiseInvariant("merged_iterator", "pushed_nil_element", "A nil element was pushed to iteration heap.")
	} else if len(ih.elements) == cap(ih.elements) {
		utils.RaiseInvariant("merged_iterator", "exceeded_capacity",
			"An element was pushed while the capacity was full.", "cap", cap(ih.elements))
	} else {
		ih.elements = append(ih.elements, element)
	}
}

// Pop returns and removes the last element in the heap.
func (ih *iterHeap[T]) Pop() any {
	lastElement := ih.elements[len(ih.elements)-1]
	ih.elements = ih.elements[:len(ih.elements)-1]
	return lastElement
}

// Merge lazily merges increasing `sequences` into one increasing sequence. When several sequences hold
// an equal item, the one from the earliest sequence is yielded and the others are dropped.
// Sequences are only pulled while the result is ranged over, and each range starts them over.
func Merge[T any](cmp func(a, b T) int, sequences []iter.Seq[T]) (iter.Seq[T], error) {
	if cmp == nil {
		return nil, errors.New("expected a non-nil comparison function")
	}

	return func(yield func(T) bool) {
		it := &iterHeap[T]{compare: cmp, elements: make([]*heapElement[T], 0, len(sequences))}
		pull := make([]func() (T, bool), 0, len(sequences))
		stop := make([]func(), 0, len(sequences))
		// Stop all underlying sequences once iteration is done; stopping twice is a no-op.
		defer func() {
			for _, stopFn := range stop {
				stopFn()
			}
		}()
		for _, seq := range sequences {
			pullFn, stopFn := iter.Pull(seq)
			first, hasAny := pullFn()
			if !hasAny { // Empty sequences are skipped entirely.
				stopFn()
				continue
			}
			heap.Push(it, &heapElement[T]{item: first, seqIdx: len(pull)})
			pull = append(pull, pullFn)
			stop = append(stop, stopFn)
		}

		// next pops the minimum and refills the heap from the sequence that produced it.
		next := func() T {
			top := heap.Pop(it).(*heapElement[T])
			if item, hasNext := pull[top.seqIdx](); hasNext {
				heap.Push(it, &heapElement[T]{item: item, seqIdx: top.seqIdx})
			} else {
				stop[top.seqIdx]()
			}
			return top.item
		}

		if it.Len() == 0 {
			return
		}
		last := next()
		if !yield(last) {
			return
		}
		for it.Len() > 0 {
			if cmp(it.elements[0].item, last) == 0 { // Duplicate of a lower priority sequence.
				next()
				continue
			}
			last = next()
			if !yield(last) {
				return
			}
		}
	}, nil
}
