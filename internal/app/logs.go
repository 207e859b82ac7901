package app

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/theme"
)

// LogMessage is one entry of the in-app log ring.
type LogMessage struct {
	Time    time.Time
	Level   string // INFO, WARN, ERROR
	Message string
}

// Log appends to the log ring. The viewer stays pinned to the newest entry
// if it was showing it.
func (b *Board) Log(level, format string, args ...any) {
	atBottom := b.LogScrollOffset >= b.maxLogScroll()-1
	b.LogMessages = append(b.LogMessages, LogMessage{
		Time:    b.now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
	if len(b.LogMessages) > config.MaxLogMessages {
		b.LogMessages = b.LogMessages[len(b.LogMessages)-config.MaxLogMessages:]
	}
	if atBottom {
		b.LogScrollOffset = b.maxLogScroll()
	}
}

// LogInfo logs an informational message.
func (b *Board) LogInfo(format string, args ...any) { b.Log("INFO", format, args...) }

// LogWarn logs a warning and mirrors it to the structured logger.
func (b *Board) LogWarn(format string, args ...any) {
	b.Log("WARN", format, args...)
	b.logger.Warn(fmt.Sprintf(format, args...))
}

// LogError logs an error, mirrors it to the structured logger and shows it
// in the status bar.
func (b *Board) LogError(format string, args ...any) {
	b.Log("ERROR", format, args...)
	msg := fmt.Sprintf(format, args...)
	b.logger.Error(msg)
	b.notify(msg)
}

func (b *Board) notify(msg string) {
	b.notice = msg
	b.noticeUntil = b.now().Add(noticeDuration)
}

// logsPerPage is how many entries fit in the viewer: the box loses border,
// padding and a margin (8), the title and hint lines another 4, and the
// scroll indicator 2 more.
func (b *Board) logsPerPage() int {
	height := max(b.Height-8, 8)
	fixed := 4
	if len(b.LogMessages) > height-fixed {
		fixed = 6
	}
	return max(height-fixed, 1)
}

func (b *Board) maxLogScroll() int {
	return max(len(b.LogMessages)-b.logsPerPage(), 0)
}

func (b *Board) scrollLogs(delta int) {
	b.LogScrollOffset = min(max(b.LogScrollOffset+delta, 0), b.maxLogScroll())
}

func (b *Board) renderLogs() string {
	perPage := b.logsPerPage()
	maxScroll := b.maxLogScroll()
	b.LogScrollOffset = min(max(b.LogScrollOffset, 0), maxScroll)

	lines := []string{
		lipgloss.NewStyle().Foreground(theme.LogViewerTitle()).Bold(true).Render("Board Logs"),
		"",
	}
	start := b.LogScrollOffset
	shown := 0
	for i := start; i < len(b.LogMessages) && shown < perPage; i++ {
		msg := b.LogMessages[i]
		c := theme.LogViewerInfo()
		switch msg.Level {
		case "ERROR":
			c = theme.LogViewerError()
		case "WARN":
			c = theme.LogViewerWarn()
		case "DEBUG":
			c = theme.LogViewerDebug()
		}
		level := lipgloss.NewStyle().Foreground(c).Render("[" + msg.Level + "]")
		lines = append(lines, fmt.Sprintf("%s %s %s", msg.Time.Format("15:04:05"), level, msg.Message))
		shown++
	}

	dim := lipgloss.NewStyle().Foreground(theme.HelpGray())
	if maxScroll > 0 {
		lines = append(lines, "", dim.Render(fmt.Sprintf("Showing %d-%d of %d logs", start+1, start+shown, len(b.LogMessages))))
	}
	lines = append(lines, "", dim.Render("j/k to scroll, "+b.keys.GetKeysForDisplay("toggle_logs")+" to close"))

	return lipgloss.NewStyle().
		Border(b.border()).
		BorderForeground(theme.HelpBorder()).
		Padding(1, 2).
		Width(min(80, max(b.Width-4, 20))).
		Render(strings.Join(lines, "\n"))
}
