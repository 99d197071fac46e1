package main

import (
	"fmt"
	"io"

	"github.com/nobletooth/ringlist/pkg/circlist"
)

// demoPrinter writes the demonstration transcript and keeps the first write error.
type demoPrinter struct {
	w   io.Writer
	err error
}

func (p *demoPrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func (p *demoPrinter) summary(list *circlist.List) error {
	empty, err := list.IsEmpty()
	if err != nil {
		return err
	}
	size, err := list.Len()
	if err != nil {
		return err
	}
	p.printf("Is list empty? %s\nList size: %d\n", yesNo(empty), size)
	return nil
}

func (p *demoPrinter) display(list *circlist.List) error {
	p.printf("----- Printing list! -----\n")
	if p.err == nil {
		if err := list.Dump(p.w); err != nil {
			return err
		}
	}
	p.printf("----- List printed successfully! -----\n")
	return nil
}

func (p *demoPrinter) insertAt(list *circlist.List, value, index int) error {
	if err := list.InsertAt(value, index); err != nil {
		return err
	}
	p.printf("INSERT: Node %d inserted in the index %d of the list.\n", value, index)
	return nil
}

// runDemo creates a list, exercises every list operation and destroys it, narrating each step on w.
func runDemo(w io.Writer) error {
	p := &demoPrinter{w: w}

	list, err := circlist.New()
	if err != nil {
		return err
	}
	p.printf("LIST CREATED WITH SUCCESS!\n")
	if err := p.summary(list); err != nil {
		return err
	}

	if err := p.insertAt(list, 77, 1); err != nil {
		return err
	}
	first, err := list.SearchAt(1)
	if err != nil {
		return err
	}
	p.printf("list[1]: %d\n", first)
	removed, err := list.DeleteAt(1)
	if err != nil {
		return err
	}
	p.printf("DELETE: Node %d removed from index %d of the list.\n", removed, 1)

	for _, step := range []struct{ value, index int }{
		{88, 1}, {66, 1}, {55, 3}, {44, 2}, {33, 5},
	} {
		if err := p.insertAt(list, step.value, step.index); err != nil {
			return err
		}
	}
	for _, value := range []int{22, 11} {
		if err := list.InsertFirst(value); err != nil {
			return err
		}
	}
	for _, value := range []int{0, 2} {
		if err := list.InsertLast(value); err != nil {
			return err
		}
	}
	if err := list.InsertFirst(9); err != nil {
		return err
	}

	if err := p.summary(list); err != nil {
		return err
	}
	if err := p.display(list); err != nil {
		return err
	}

	for range 2 {
		value, err := list.DeleteFirst()
		if err != nil {
			return err
		}
		p.printf("Element %d was deleted from first position of the list.\n", value)
	}
	for range 2 {
		value, err := list.DeleteLast()
		if err != nil {
			return err
		}
		p.printf("Element %d was deleted from last position of the list.\n", value)
	}
	if err := p.display(list); err != nil {
		return err
	}

	if err := list.SwapEnds(); err != nil {
		return err
	}
	p.printf("First and last node swapped positions!\n")
	if err := p.display(list); err != nil {
		return err
	}

	p.printf("*** Destroying list... ***\n")
	if err := list.Destroy(); err != nil {
		return err
	}
	p.printf("*** List destroyed successfully! ***\n")
	return p.err
}
