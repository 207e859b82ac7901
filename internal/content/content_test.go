package content

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/x/ansi"
)

// =============================================================================
// Catalog Tests
// =============================================================================

func TestCatalogConstraintsAreNormal(t *testing.T) {
	for _, typ := range Types() {
		t.Run(typ.Name, func(t *testing.T) {
			if typ.Constraints != typ.Constraints.Normalize() {
				t.Errorf("constraints %+v are not normalized", typ.Constraints)
			}
			c, ok := Lookup(typ.Name)
			if !ok || c != typ.Constraints {
				t.Errorf("Lookup(%q) = %+v, %v", typ.Name, c, ok)
			}
		})
	}
}

func TestLookupUnknownType(t *testing.T) {
	if _, ok := Lookup("weather"); ok {
		t.Error("Lookup of an unknown type succeeded")
	}
	if c := widget.Lookup(Lookup, "weather"); c.MinW != 1 || c.MinH != 1 {
		t.Errorf("fallback constraints = %+v", c)
	}
	if _, ok := Get("  Clock "); !ok {
		t.Error("Get should ignore case and spaces")
	}
}

func TestDefaultConfigIsACopy(t *testing.T) {
	a := DefaultConfig("note")
	a["text"] = "changed"
	if DefaultConfig("note")["text"] != "New note" {
		t.Error("DefaultConfig returned shared state")
	}
	if DefaultConfig("cpu") != nil {
		t.Error("cpu has no default config")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		w    widget.Widget
		want string
	}{
		{widget.Widget{Type: "cpu"}, "▤ CPU"},
		{widget.Widget{Type: "note", Config: map[string]any{"title": "Todo"}}, "Todo"},
		{widget.Widget{Type: "weather"}, "weather"},
	}
	for _, tt := range tests {
		if got := Title(tt.w); got != tt.want {
			t.Errorf("Title(%+v) = %q, want %q", tt.w, got, tt.want)
		}
	}
}

// =============================================================================
// Render Tests
// =============================================================================

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 14, 5, 30, 0, time.UTC)
}

func assertBox(t *testing.T, out string, width, height int) {
	t.Helper()
	lines := strings.Split(out, "\n")
	if len(lines) != height {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), height, out)
	}
	for i, l := range lines {
		if w := ansi.StringWidth(l); w != width {
			t.Errorf("line %d is %d cells wide, want %d: %q", i, w, width, l)
		}
	}
}

func TestRenderFillsBox(t *testing.T) {
	r := NewRenderer(fixedClock)
	r.Update(Stats{CPUPercent: 50, MemUsed: 4 << 30, MemTotal: 16 << 30, MemPercent: 25,
		Host: HostInfo{Hostname: "box", Platform: "linux", Uptime: 90 * time.Minute, Procs: 12}})

	tests := []struct {
		typ    string
		width  int
		height int
	}{
		{"clock", 14, 1},
		{"clock", 22, 4},
		{"cpu", 30, 4},
		{"memory", 10, 1},
		{"host", 20, 2},
		{"note", 6, 3},
		{"weather", 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			w := widget.Widget{ID: "x", Type: tt.typ, Config: map[string]any{"text": "a fairly long note that wraps"}}
			assertBox(t, r.Render(w, tt.width, tt.height), tt.width, tt.height)
		})
	}
}

func TestRenderZeroSize(t *testing.T) {
	r := NewRenderer(fixedClock)
	if got := r.Render(widget.Widget{Type: "clock"}, 0, 3); got != "" {
		t.Errorf("Render with zero width = %q", got)
	}
}

func TestRenderClock(t *testing.T) {
	r := NewRenderer(fixedClock)

	out := r.Render(widget.Widget{Type: "clock"}, 20, 2)
	if !strings.Contains(out, "14:05:30") || !strings.Contains(out, "Sat 09 Mar 2024") {
		t.Errorf("clock = %q", out)
	}

	out = r.Render(widget.Widget{Type: "clock", Config: map[string]any{"format": "12h"}}, 20, 1)
	if !strings.Contains(out, "2:05:30 PM") {
		t.Errorf("12h clock = %q", out)
	}
}

func TestRenderBeforeFirstSample(t *testing.T) {
	r := NewRenderer(fixedClock)
	out := r.Render(widget.Widget{Type: "cpu"}, 12, 2)
	if !strings.Contains(out, "sampling") {
		t.Errorf("cpu before sampling = %q", out)
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		samples []float64
		width   int
		want    string
	}{
		{nil, 3, "   "},
		{[]float64{0, 100}, 4, "  ▁█"},
		{[]float64{0, 50, 100}, 2, "▅█"},
		{[]float64{-5, 250}, 2, "▁█"},
	}
	for _, tt := range tests {
		if got := Sparkline(tt.samples, tt.width); got != tt.want {
			t.Errorf("Sparkline(%v, %d) = %q, want %q", tt.samples, tt.width, got, tt.want)
		}
	}
}

func TestBar(t *testing.T) {
	if got := Bar(50, 4); got != "██░░" {
		t.Errorf("Bar(50, 4) = %q", got)
	}
	if got := Bar(120, 3); got != "███" {
		t.Errorf("Bar(120, 3) = %q", got)
	}
}

func TestHumanBytes(t *testing.T) {
	tests := map[uint64]string{
		512:     "512 B",
		2048:    "2.0 KiB",
		4 << 30: "4.0 GiB",
	}
	for n, want := range tests {
		if got := humanBytes(n); got != want {
			t.Errorf("humanBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestSampleReadsSystem(t *testing.T) {
	if testing.Short() {
		t.Skip("reads host stats")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Sample(ctx)
	if err != nil {
		t.Skipf("host stats unavailable: %v", err)
	}
	if s.MemTotal == 0 {
		t.Error("memory total not read")
	}
}
