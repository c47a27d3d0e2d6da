package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/brand-forecast-tui/internal/logger"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/styles"
)

const (
	barLow  = "#ff6b6b"
	barHigh = "#51cf66"
)

// ShareBar renders a labelled gradient bar for a 0-100 share.
type ShareBar struct {
	progress progress.Model
}

// NewShareBar creates a share bar with the default gradient.
func NewShareBar() ShareBar {
	return ShareBar{
		progress: progress.New(
			progress.WithScaledGradient(barLow, barHigh),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// View renders the bar with a fixed-width label and the share on the right.
func (s ShareBar) View(percent float64, label string, width int) string {
	barWidth := width - 24
	if barWidth < 10 {
		barWidth = 10
	}
	s.progress.Width = barWidth

	percent = math.Max(0, math.Min(100, percent))
	bar := s.progress.ViewAs(percent / 100)

	labelStr := styles.ProgressLabelStyle.Width(15).Render(label)
	percentStr := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// RenderDivergingBar draws a bar centered on zero: decline grows to the
// left, growth to the right. maxAbs sets the scale of a full half.
func RenderDivergingBar(value, maxAbs float64, width int) string {
	if width < 4 {
		width = 4
	}
	half := width / 2
	if maxAbs <= 0 {
		maxAbs = math.Abs(value)
	}

	n := 0
	if maxAbs > 0 {
		n = int(math.Round(math.Min(math.Abs(value)/maxAbs, 1) * float64(half)))
	}

	empty := lipgloss.NewStyle().Foreground(styles.BgLight)
	style := styles.GetGrowthStyle(value)

	left := empty.Render(strings.Repeat("░", half))
	right := empty.Render(strings.Repeat("░", half))
	switch {
	case value < 0:
		left = empty.Render(strings.Repeat("░", half-n)) + style.Render(strings.Repeat("█", n))
	case value > 0:
		right = style.Render(strings.Repeat("█", n)) + empty.Render(strings.Repeat("░", half-n))
	}

	return left + styles.HelpStyle.Render("│") + right
}

// RenderGradientBar renders a filled bar whose cells fade from red to green.
func RenderGradientBar(percent float64, width int) string {
	percent = math.Max(0, math.Min(100, percent))
	filled := int(percent / 100 * float64(width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			t := 0.0
			if width > 1 {
				t = float64(i) / float64(width-1)
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(interpolateColor(barLow, barHigh, t)))
			b.WriteString(style.Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}

// RenderLoadingBar draws a shimmer that sweeps back and forth while a
// report is being built. frame advances once per animation tick.
func RenderLoadingBar(width, frame int) string {
	if width < 10 {
		width = 10
	}

	const cycle = 120
	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	pos := int(eased * float64(width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		dist := pos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}
	return b.String()
}
