// List names can be filtered with glob patterns, the way Redis filters keys in KEYS and SCAN.

package scan

import (
	"fmt"
	"iter"

	"v.io/v23/glob"
)

// MatchGlob filters `names` down to the ones matching the glob `pattern`, e.g. "user:*" or "l?st".
func MatchGlob(pattern string, names iter.Seq[string]) (iter.Seq[string], error) {
	parsedPattern, err := glob.Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	head := parsedPattern.Head()
	return func(yield func(string) bool) {
		for name := range names {
			if head.Match(name) && !yield(name) {
				return
			}
		}
	}, nil
}
