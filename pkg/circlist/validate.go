package circlist

import (
	"fmt"

	"github.com/nobletooth/ringlist/pkg/utils"
)

// Validate walks the ring in both directions and checks that:
//   - following next (or prev) from the header returns to it after exactly size+1 hops,
//   - every node is the prev of its next and the next of its prev,
//   - the header is self-linked exactly when the list is empty.
//
// Any violation is a bug in this package; it is raised as an invariant and returned as ErrCorruptRing.
func (l *List) Validate() (err error) {
	defer func() { observe(opValidate, err) }()
	if err := l.checkCreated(); err != nil {
		return err
	}
	if err := l.validate(); err != nil {
		utils.RaiseInvariant("circlist", "corrupt_ring", "List failed validation.", "error", err, "size", l.size)
		return err
	}
	return nil
}

func (l *List) validate() error {
	nodes := l.arena.nodes
	inArena := func(slot int) bool { return slot >= 0 && slot < len(nodes) }
	if l.size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrCorruptRing, l.size)
	}
	selfLinked := nodes[header].next == header && nodes[header].prev == header
	if selfLinked != (l.size == 0) {
		return fmt.Errorf("%w: header self-linked=%t with size %d", ErrCorruptRing, selfLinked, l.size)
	}
	if live := l.arena.live() - 1; live != l.size {
		return fmt.Errorf("%w: %d live nodes with size %d", ErrCorruptRing, live, l.size)
	}

	for _, direction := range []struct {
		name string
		step func(slot int) int
	}{
		{name: "next", step: func(slot int) int { return nodes[slot].next }},
		{name: "prev", step: func(slot int) int { return nodes[slot].prev }},
	} {
		slot := header
		for hop := 1; hop <= l.size+1; hop++ {
			following := direction.step(slot)
			if !inArena(following) {
				return fmt.Errorf("%w: %s of slot %d points outside the arena (%d)",
					ErrCorruptRing, direction.name, slot, following)
			}
			if !inArena(nodes[following].next) || !inArena(nodes[following].prev) {
				return fmt.Errorf("%w: slot %d links outside the arena", ErrCorruptRing, following)
			}
			if following == header && hop != l.size+1 {
				return fmt.Errorf("%w: %s ring closed after %d hops, want %d",
					ErrCorruptRing, direction.name, hop, l.size+1)
			}
			if nodes[nodes[following].next].prev != following || nodes[nodes[following].prev].next != following {
				return fmt.Errorf("%w: slot %d disagrees with its neighbors", ErrCorruptRing, following)
			}
			slot = following
		}
		if slot != header {
			return fmt.Errorf("%w: %s ring did not return to the header after %d hops",
				ErrCorruptRing, direction.name, l.size+1)
		}
	}
	return nil
}
