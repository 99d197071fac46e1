package circlist

// Option is a list configuration option.
type Option interface {
	apply(*listOptions)
}

type listOptions struct {
	maxSize int
}

func newDefaultListOptions() listOptions {
	return listOptions{maxSize: 0}
}

// WithMaxSize caps the number of data nodes the list may hold at once.
// Inserting past the cap fails with ErrOutOfMemory.
//
// The zero value configures an unbounded list. A negative value leaves no room for the header node,
// so New fails with ErrOutOfMemory.
func WithMaxSize(maxSize int) Option {
	return funcOption(func(opts *listOptions) {
		opts.maxSize = maxSize
	})
}

type funcOption func(*listOptions)

func (o funcOption) apply(opts *listOptions) {
	o(opts)
}
