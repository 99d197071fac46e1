// The registry keeps named lists so several clients can work on their own lists through one server.
// Names are distributed across shards by their xxhash. Each shard owns a mutex, so clients of different
// shards never wait on each other, while every call on a given list is serialized as the list requires.
// A per-shard bloom filter of created names answers most lookups of unknown names without touching the map.

package registry

import (
	"errors"
	"flag"
	"fmt"
	"iter"
	"maps"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/ringlist/pkg/circlist"
	"github.com/nobletooth/ringlist/pkg/scan"
	"github.com/nobletooth/ringlist/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrListNotFound = errors.New("no such list")
	ErrListExists   = errors.New("list already exists")
	ErrEmptyName    = errors.New("list name must not be empty")
)

var (
	shardCount  = flag.Int("shard_count", runtime.NumCPU(), "The number of registry shards.")
	maxListSize = flag.Int("max_list_size", 0,
		"The maximum number of nodes a single list may hold; 0 means unbounded.")
	bloomExpectedNames = flag.Uint("bloom_expected_names", 1024,
		"The expected number of list names per shard, used to size the name bloom filter.")
	bloomFalsePositiveRate = flag.Float64("bloom_false_positive_rate", 0.01,
		"The target false positive rate of the name bloom filter.")

	listsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "registry_lists",
		Help: "The number of live lists in the registry.",
	})
	bloomLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_bloom_lookups_total",
		Help: "Total number of name lookups by bloom filter outcome. miss_after_bloom counts names the filter " +
			"let through but the shard does not hold: real false positives and names destroyed since creation.",
	}, []string{"result" /* negative | miss_after_bloom | positive */})
)

// shard holds a subset of the lists. Its mutex guards the map and every list in it.
type shard struct {
	mux   sync.Mutex
	lists map[string]*circlist.List
	names *bloom.BloomFilter // Names ever created in this shard; never shrinks.
}

// lookup returns the list called `name`, consulting the bloom filter first. The caller holds s.mux.
func (s *shard) lookup(name string) (*circlist.List, bool) {
	if !s.names.TestString(name) {
		bloomLookups.WithLabelValues("negative").Inc()
		return nil, false
	}
	list, found := s.lists[name]
	if !found {
		bloomLookups.WithLabelValues("miss_after_bloom").Inc()
		return nil, false
	}
	bloomLookups.WithLabelValues("positive").Inc()
	return list, true
}

// Registry is a sharded, thread-safe collection of named lists.
type Registry struct {
	shards      []*shard
	listOptions []circlist.Option // Applied to every created list.
}

// New creates a registry with `shards` shards whose lists are created with `listOptions`.
func New(shards int, listOptions ...circlist.Option) *Registry {
	if shards <= 0 {
		utils.RaiseInvariant("registry", "non_positive_shard_count",
			"Invalid shard count has been given to the registry.", "shardCount", shards)
		shards = 1
	}
	registry := &Registry{shards: make([]*shard, shards), listOptions: listOptions}
	for i := range shards {
		registry.shards[i] = &shard{
			lists: make(map[string]*circlist.List),
			names: bloom.NewWithEstimates(*bloomExpectedNames, *bloomFalsePositiveRate),
		}
	}
	return registry
}

// NewFromFlags creates a registry configured by the --shard_count and --max_list_size flags.
func NewFromFlags() *Registry {
	return New(*shardCount, circlist.WithMaxSize(*maxListSize))
}

// getShard picks the shard of `name` by its hash.
func (r *Registry) getShard(name string) *shard {
	return r.shards[xxhash.Sum64String(name)%uint64(len(r.shards))]
}

// Create makes a new empty list called `name`.
func (r *Registry) Create(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	s := r.getShard(name)
	s.mux.Lock()
	defer s.mux.Unlock()

	if _, found := s.lookup(name); found {
		return fmt.Errorf("%w: %s", ErrListExists, name)
	}
	list, err := circlist.New(r.listOptions...)
	if err != nil {
		return fmt.Errorf("failed to create list %s: %w", name, err)
	}
	s.lists[name] = list
	s.names.AddString(name)
	listsGauge.Inc()
	return nil
}

// Destroy destroys the list called `name` and forgets it.
func (r *Registry) Destroy(name string) error {
	s := r.getShard(name)
	s.mux.Lock()
	defer s.mux.Unlock()

	list, found := s.lookup(name)
	if !found {
		return fmt.Errorf("%w: %s", ErrListNotFound, name)
	}
	delete(s.lists, name)
	listsGauge.Dec()
	if err := list.Destroy(); err != nil {
		return fmt.Errorf("failed to destroy list %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a list called `name` is currently registered.
func (r *Registry) Exists(name string) bool {
	s := r.getShard(name)
	s.mux.Lock()
	defer s.mux.Unlock()
	_, found := s.lookup(name)
	return found
}

// Do runs `fn` on the list called `name` while holding its shard lock. `fn` must not keep the list
// after it returns, and must not call back into the registry.
func (r *Registry) Do(name string, fn func(list *circlist.List) error) error {
	s := r.getShard(name)
	s.mux.Lock()
	defer s.mux.Unlock()

	list, found := s.lookup(name)
	if !found {
		return fmt.Errorf("%w: %s", ErrListNotFound, name)
	}
	return fn(list)
}

// Names returns the names of all registered lists in sorted order.
func (r *Registry) Names() []string {
	perShard := make([]iter.Seq[string], len(r.shards))
	for i, s := range r.shards {
		s.mux.Lock()
		names := slices.Sorted(maps.Keys(s.lists))
		s.mux.Unlock()
		perShard[i] = slices.Values(names)
	}
	merged, err := scan.Merge(strings.Compare, perShard)
	if err != nil {
		utils.RaiseInvariant("registry", "names_merge_failed", "Failed to merge shard names.", "error", err)
		return []string{}
	}
	return append([]string{}, slices.Collect(merged)...)
}

// Len returns the number of registered lists.
func (r *Registry) Len() int {
	total := 0
	for _, s := range r.shards {
		s.mux.Lock()
		total += len(s.lists)
		s.mux.Unlock()
	}
	return total
}

// Close destroys every registered list.
func (r *Registry) Close() error {
	var errs []error
	for _, s := range r.shards {
		s.mux.Lock()
		for name, list := range s.lists {
			if err := list.Destroy(); err != nil {
				errs = append(errs, fmt.Errorf("failed to destroy list %s: %w", name, err))
			}
			delete(s.lists, name)
			listsGauge.Dec()
		}
		s.mux.Unlock()
	}
	return errors.Join(errs...)
}
