package pool

import (
	"strings"
	"sync"
	"testing"

	"charm.land/lipgloss/v2"
)

// TestStringBuilderPool tests the string builder pool
func TestStringBuilderPool(t *testing.T) {
	sb := GetStringBuilder()
	if sb == nil {
		t.Fatal("GetStringBuilder returned nil")
	}

	sb.WriteString("test")
	if sb.String() != "test" {
		t.Errorf("Expected 'test', got %q", sb.String())
	}

	PutStringBuilder(sb)

	// Get again and verify it's reset
	sb2 := GetStringBuilder()
	if sb2.Len() != 0 {
		t.Errorf("String builder should be reset, but has length %d", sb2.Len())
	}

	PutStringBuilder(sb2)
}

// TestStringBuilderPool_Concurrent tests concurrent access to string builder pool
func TestStringBuilderPool_Concurrent(t *testing.T) {
	const goroutines = 10
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				sb := GetStringBuilder()
				sb.WriteString("test")
				if sb.String() != "test" {
					t.Errorf("Goroutine %d iteration %d: unexpected content", id, j)
				}
				PutStringBuilder(sb)
			}
		}(i)
	}

	wg.Wait()
}

// TestLineSlicePool tests the frame line pool
func TestLineSlicePool(t *testing.T) {
	lines := GetLineSlice()
	if lines == nil || *lines == nil {
		t.Fatal("GetLineSlice returned nil")
	}
	if len(*lines) != 0 {
		t.Errorf("Expected empty slice, got len %d", len(*lines))
	}
	if cap(*lines) < 64 {
		t.Errorf("Expected capacity >= 64, got %d", cap(*lines))
	}

	*lines = append(*lines, "a", "b")
	PutLineSlice(lines)

	lines2 := GetLineSlice()
	if len(*lines2) != 0 {
		t.Errorf("Line slice should be reset, got %v", *lines2)
	}
	PutLineSlice(lines2)
}

// TestStylePool tests the lipgloss style pool
func TestStylePool(t *testing.T) {
	style := GetStyle()
	if style == nil {
		t.Fatal("GetStyle returned nil")
	}
	*style = style.Bold(true)
	PutStyle(style)

	style2 := GetStyle()
	if style2 == nil {
		t.Fatal("Second GetStyle returned nil")
	}
	if style2.GetBold() {
		t.Error("style returned to the pool was not reset")
	}
	PutStyle(style2)
}

// BenchmarkStringBuilderPool benchmarks the string builder pool
func BenchmarkStringBuilderPool(b *testing.B) {
	b.Run("WithPool", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			sb := GetStringBuilder()
			sb.WriteString("test string")
			_ = sb.String()
			PutStringBuilder(sb)
		}
	})

	b.Run("WithoutPool", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			sb := &strings.Builder{}
			sb.WriteString("test string")
			_ = sb.String()
		}
	})
}

// BenchmarkLineSlicePool benchmarks the line slice pool
func BenchmarkLineSlicePool(b *testing.B) {
	b.Run("WithPool", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			lines := GetLineSlice()
			PutLineSlice(lines)
		}
	})

	b.Run("WithoutPool", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = make([]string, 0, 64)
		}
	})
}

// BenchmarkStylePool benchmarks the style pool
func BenchmarkStylePool(b *testing.B) {
	b.Run("WithPool", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			style := GetStyle()
			PutStyle(style)
		}
	})

	b.Run("WithoutPool", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = lipgloss.NewStyle()
		}
	})
}
