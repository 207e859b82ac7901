// Package pool holds sync.Pools for the per-frame allocations of the
// renderer.
package pool

import (
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
)

var stringBuilderPool = sync.Pool{
	New: func() any { return new(strings.Builder) },
}

// GetStringBuilder returns an empty builder.
func GetStringBuilder() *strings.Builder {
	return stringBuilderPool.Get().(*strings.Builder)
}

// PutStringBuilder resets sb and returns it to the pool.
func PutStringBuilder(sb *strings.Builder) {
	sb.Reset()
	stringBuilderPool.Put(sb)
}

var lineSlicePool = sync.Pool{
	New: func() any {
		s := make([]string, 0, 64)
		return &s
	},
}

// GetLineSlice returns a zero-length slice for building a frame line by line.
func GetLineSlice() *[]string {
	s := lineSlicePool.Get().(*[]string)
	*s = (*s)[:0]
	return s
}

// PutLineSlice returns s to the pool. Very large slices are dropped.
func PutLineSlice(s *[]string) {
	if cap(*s) > 4096 {
		return
	}
	clear(*s)
	lineSlicePool.Put(s)
}

var stylePool = sync.Pool{
	New: func() any {
		s := lipgloss.NewStyle()
		return &s
	},
}

// GetStyle returns a blank style.
func GetStyle() *lipgloss.Style {
	return stylePool.Get().(*lipgloss.Style)
}

// PutStyle resets s and returns it to the pool.
func PutStyle(s *lipgloss.Style) {
	*s = lipgloss.NewStyle()
	stylePool.Put(s)
}
