package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ui/style"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline is a one-line trend of the most recent samples.
type Sparkline struct {
	data  []float64
	width int
	color lipgloss.Color
}

func NewSparkline(width int) *Sparkline {
	return &Sparkline{width: width, color: style.DefaultPalette().Primary}
}

// Add appends a sample, keeping at most width of them. Repeating the last
// sample is ignored so that an unchanged price does not flatten the trend.
func (s *Sparkline) Add(v float64) {
	if n := len(s.data); n > 0 && s.data[n-1] == v {
		return
	}
	s.data = append(s.data, v)
	if len(s.data) > s.width {
		s.data = s.data[len(s.data)-s.width:]
	}
}

func (s *Sparkline) Len() int { return len(s.data) }

// Blocks renders the samples without styling.
func (s *Sparkline) Blocks() string {
	if len(s.data) == 0 {
		return strings.Repeat("▁", s.width)
	}
	lo, hi := s.data[0], s.data[0]
	for _, v := range s.data {
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo == hi {
		return strings.Repeat("▄", len(s.data))
	}

	var b strings.Builder
	for _, v := range s.data {
		idx := int((v - lo) / (hi - lo) * float64(len(sparkChars)-1))
		b.WriteRune(sparkChars[min(max(idx, 0), len(sparkChars)-1)])
	}
	return b.String()
}

// Trend compares the last sample with the first.
func (s *Sparkline) Trend() string {
	if len(s.data) < 2 {
		return "→"
	}
	first, last := s.data[0], s.data[len(s.data)-1]
	switch {
	case last > first:
		return "↗"
	case last < first:
		return "↘"
	default:
		return "→"
	}
}

func (s *Sparkline) View() string {
	p := style.DefaultPalette()
	trend := s.Trend()
	color := p.TextMuted
	switch trend {
	case "↗":
		color = p.Success
	case "↘":
		color = p.Error
	}
	return lipgloss.NewStyle().Foreground(s.color).Render(s.Blocks()) + " " +
		lipgloss.NewStyle().Foreground(color).Render(trend)
}
