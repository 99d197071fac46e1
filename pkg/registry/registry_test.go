package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/nobletooth/ringlist/pkg/circlist"
	"github.com/nobletooth/ringlist/pkg/config"
	"github.com/nobletooth/ringlist/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lifecycle(t *testing.T) {
	r := New(4)

	t.Run("create", func(t *testing.T) {
		require.NoError(t, r.Create("a"))
		require.NoError(t, r.Create("b"))
		assert.ErrorIs(t, r.Create("a"), ErrListExists)
		assert.ErrorIs(t, r.Create(""), ErrEmptyName)
		assert.True(t, r.Exists("a"))
		assert.False(t, r.Exists("missing"))
		assert.Equal(t, []string{"a", "b"}, r.Names())
		assert.Equal(t, 2, r.Len())
	})

	t.Run("do", func(t *testing.T) {
		require.NoError(t, r.Do("a", func(list *circlist.List) error {
			require.NoError(t, list.InsertLast(1))
			return list.InsertLast(2)
		}))
		var values []int
		require.NoError(t, r.Do("a", func(list *circlist.List) (err error) {
			values, err = list.Values()
			return err
		}))
		assert.Equal(t, []int{1, 2}, values)

		err := r.Do("a", func(list *circlist.List) error {
			_, err := list.SearchAt(3)
			return err
		})
		assert.ErrorIs(t, err, circlist.ErrInvalidPosition)
		assert.ErrorIs(t, r.Do("missing", func(*circlist.List) error { return nil }), ErrListNotFound)
	})

	t.Run("destroy", func(t *testing.T) {
		var kept *circlist.List
		require.NoError(t, r.Do("a", func(list *circlist.List) error {
			kept = list
			return nil
		}))
		require.NoError(t, r.Destroy("a"))
		assert.Equal(t, circlist.Destroyed, kept.State())
		assert.False(t, r.Exists("a"))
		assert.ErrorIs(t, r.Destroy("a"), ErrListNotFound)
		assert.Equal(t, []string{"b"}, r.Names())

		// A destroyed name can be created again.
		require.NoError(t, r.Create("a"))
		assert.True(t, r.Exists("a"))
	})

	t.Run("close", func(t *testing.T) {
		require.NoError(t, r.Close())
		assert.Equal(t, 0, r.Len())
		assert.Empty(t, r.Names())
	})
}

func TestRegistry_ListOptions(t *testing.T) {
	r := New(1, circlist.WithMaxSize(1))
	require.NoError(t, r.Create("small"))
	err := r.Do("small", func(list *circlist.List) error {
		require.NoError(t, list.InsertFirst(1))
		return list.InsertFirst(2)
	})
	assert.ErrorIs(t, err, circlist.ErrOutOfMemory)
}

func TestRegistry_FromFlags(t *testing.T) {
	config.SetTestFlag(t, "shard_count", "3")
	config.SetTestFlag(t, "max_list_size", "2")
	r := NewFromFlags()
	assert.Len(t, r.shards, 3)

	require.NoError(t, r.Create("l"))
	err := r.Do("l", func(list *circlist.List) error {
		for i := range 3 {
			if err := list.InsertLast(i); err != nil {
				return err
			}
		}
		return nil
	})
	assert.ErrorIs(t, err, circlist.ErrOutOfMemory)
}

func TestRegistry_NonPositiveShardCount(t *testing.T) {
	before := utils.GetMetricValue("registry", "non_positive_shard_count")
	r := New(0)
	assert.Len(t, r.shards, 1)
	assert.Equal(t, before+1, utils.GetMetricValue("registry", "non_positive_shard_count"))
}

func TestRegistry_BloomShortCircuitsUnknownNames(t *testing.T) {
	r := New(1)
	require.NoError(t, r.Create("known"))
	negative := bloomLookups.WithLabelValues("negative")
	before := utils.CounterValue(negative)

	assert.False(t, r.Exists("definitely-not-created"))
	assert.Equal(t, before+1, utils.CounterValue(negative))
}

func TestRegistry_BloomCountsDestroyedNamesAsMisses(t *testing.T) {
	r := New(1)
	require.NoError(t, r.Create("gone"))
	require.NoError(t, r.Destroy("gone"))
	miss := bloomLookups.WithLabelValues("miss_after_bloom")
	negative := bloomLookups.WithLabelValues("negative")
	missBefore, negativeBefore := utils.CounterValue(miss), utils.CounterValue(negative)

	assert.False(t, r.Exists("gone"))
	assert.Equal(t, missBefore+1, utils.CounterValue(miss))
	assert.Equal(t, negativeBefore, utils.CounterValue(negative))
}

func TestRegistry_ListsGauge(t *testing.T) {
	before := utils.GaugeValue(listsGauge)
	r := New(2)
	require.NoError(t, r.Create("x"))
	require.NoError(t, r.Create("y"))
	assert.Equal(t, before+2, utils.GaugeValue(listsGauge))
	require.NoError(t, r.Destroy("x"))
	assert.Equal(t, before+1, utils.GaugeValue(listsGauge))
	require.NoError(t, r.Close())
	assert.Equal(t, before, utils.GaugeValue(listsGauge))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New(8)
	const lists, inserts = 16, 100
	for i := range lists {
		require.NoError(t, r.Create(fmt.Sprintf("list-%d", i)))
	}

	var wg sync.WaitGroup
	for i := range lists {
		for range 4 { // Several writers per list.
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range inserts {
					_ = r.Do(fmt.Sprintf("list-%d", i), func(list *circlist.List) error {
						return list.InsertLast(j)
					})
				}
			}()
		}
	}
	wg.Wait()

	for i := range lists {
		require.NoError(t, r.Do(fmt.Sprintf("list-%d", i), func(list *circlist.List) error {
			size, err := list.Len()
			require.NoError(t, err)
			assert.Equal(t, 4*inserts, size)
			return list.Validate()
		}))
	}
}
