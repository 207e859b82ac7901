package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/pool"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/x/ansi"
)

var sparks = []rune("▁▂▃▄▅▆▇█")

// Renderer draws the built-in widget types from the latest system sample.
// It is used from the Update goroutine only.
type Renderer struct {
	now     func() time.Time
	stats   Stats
	sampled bool
	history []float64
}

// NewRenderer returns a renderer. A nil clock uses time.Now.
func NewRenderer(now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{now: now}
}

// Update records a sample.
func (r *Renderer) Update(s Stats) {
	r.stats = s
	r.sampled = true
	if len(r.history) >= HistoryLen {
		r.history = r.history[1:]
	}
	r.history = append(r.history, s.CPUPercent)
}

// Stats returns the latest sample.
func (r *Renderer) Stats() (Stats, bool) { return r.stats, r.sampled }

// Render returns width x height cells of plain text for w. Unknown types
// render their type name.
func (r *Renderer) Render(w widget.Widget, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	var lines []string
	switch w.Type {
	case "clock":
		lines = r.clock(w, width, height)
	case "cpu":
		lines = r.cpu(width, height)
	case "memory":
		lines = r.memory(width, height)
	case "host":
		lines = r.host()
	case "note":
		text, _ := w.Config["text"].(string)
		lines = strings.Split(ansi.Wrap(text, width, " -"), "\n")
	default:
		lines = []string{"[" + w.Type + "]"}
	}
	return box(lines, width, height)
}

// box clips or pads lines to exactly width x height cells.
func box(lines []string, width, height int) string {
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)
	for i := range height {
		if i > 0 {
			sb.WriteByte('\n')
		}
		line := ""
		if i < len(lines) {
			line = ansi.Truncate(lines[i], width, "…")
		}
		sb.WriteString(line)
		if pad := width - ansi.StringWidth(line); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}
	return sb.String()
}

func center(s string, width int) string {
	pad := (width - ansi.StringWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func (r *Renderer) clock(w widget.Widget, width, height int) []string {
	now := r.now()
	if zone, ok := w.Config["zone"].(string); ok && zone != "" {
		if loc, err := time.LoadLocation(zone); err == nil {
			now = now.In(loc)
		}
	}
	layout := "15:04:05"
	if f, _ := w.Config["format"].(string); f == "12h" {
		layout = "3:04:05 PM"
	}
	lines := []string{center(now.Format(layout), width)}
	if height > 1 {
		lines = append(lines, center(now.Format("Mon 02 Jan 2006"), width))
	}
	return lines
}

func (r *Renderer) cpu(width, height int) []string {
	if !r.sampled {
		return []string{"sampling…"}
	}
	lines := []string{fmt.Sprintf("CPU %5.1f%%", r.stats.CPUPercent)}
	if height > 1 {
		lines = append(lines, Sparkline(r.history, width))
	}
	if height > 2 {
		lines = append(lines, Bar(r.stats.CPUPercent, width))
	}
	return lines
}

func (r *Renderer) memory(width, height int) []string {
	if !r.sampled {
		return []string{"sampling…"}
	}
	lines := []string{fmt.Sprintf("%s / %s", humanBytes(r.stats.MemUsed), humanBytes(r.stats.MemTotal))}
	if height > 1 {
		lines = append(lines, Bar(r.stats.MemPercent, width))
	} else {
		lines[0] = fmt.Sprintf("%3.0f%% %s", r.stats.MemPercent, lines[0])
	}
	return lines
}

func (r *Renderer) host() []string {
	if !r.sampled {
		return []string{"sampling…"}
	}
	h := r.stats.Host
	return []string{
		h.Hostname,
		strings.TrimSpace(h.Platform),
		"up " + h.Uptime.Truncate(time.Minute).String(),
		fmt.Sprintf("%d procs", h.Procs),
	}
}

// Sparkline draws the last width samples (0..100) as block characters,
// right aligned.
func Sparkline(samples []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)
	sb.WriteString(strings.Repeat(" ", width-len(samples)))
	for _, v := range samples {
		i := int(v / 100 * float64(len(sparks)))
		sb.WriteRune(sparks[min(max(i, 0), len(sparks)-1)])
	}
	return sb.String()
}

// Bar draws a horizontal meter for pct (0..100).
func Bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
