package generics

import (
	"github.com/stretchr/testify/assert"
	"slices"
	"strconv"
	"testing"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]float64{"b": 1, "c": 5, "a": 3}
	// Since the builtin map iterator in Go is deliberately non-deterministic, we
	// run it a bunch of times to show it is stably sorted.
	want := []string{"a", "b", "c"}
	for range 100 {
		got := slices.Collect(SortedKeys(m))
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestSortedKeysAndValues(t *testing.T) {
	m := map[int]string{1: "1", 5: "5", 3: "3"}
	for range 100 {
		var keys []int
		var values []string
		for key, value := range SortedKeysAndValues(m) {
			keys = append(keys, key)
			values = append(values, value)
		}
		assert.Equal(t, []int{1, 3, 5}, keys)
		assert.Equal(t, []string{"1", "3", "5"}, values)
	}
}

func TestArgMaxFirst(t *testing.T) {
	assert.Equal(t, -1, ArgMaxFirst([]float64{}))
	assert.Equal(t, 0, ArgMaxFirst([]float64{0, 0, 0}))
	assert.Equal(t, 1, ArgMaxFirst([]float64{-1, 0.5, 0.5, 0.2}))
	assert.Equal(t, 3, ArgMaxFirst([]int{-3, -2, -2, 7}))
}

func TestSliceMap(t *testing.T) {
	assert.Empty(t, SliceMap([]int{}, strconv.Itoa))
	assert.Equal(t, []string{"1", "22"}, SliceMap([]int{1, 22}, strconv.Itoa))
}
