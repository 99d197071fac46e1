package circlist

import (
	"fmt"
	"io"
)

// Dump writes one numbered line per value, e.g. "list[1]= 9", in list order.
func (l *List) Dump(w io.Writer) (err error) {
	defer func() { observe(opDump, err) }()
	if err := l.checkCreated(); err != nil {
		return err
	}
	position := 1
	for value := range l.All() {
		if _, err := fmt.Fprintf(w, "list[%d]= %d\n", position, value); err != nil {
			return fmt.Errorf("failed to write position %d: %w", position, err)
		}
		position++
	}
	return nil
}
