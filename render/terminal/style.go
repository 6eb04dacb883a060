package terminal

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Sender colors. Known agents get fixed colors; anyone else is hashed
	// into the palette so a sender keeps its color across runs.
	colorClaude = lipgloss.AdaptiveColor{Light: "#c2410c", Dark: "#fb923c"} // orange
	colorCodex  = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34d399"} // emerald

	palette = []lipgloss.AdaptiveColor{
		{Light: "#2563eb", Dark: "#60a5fa"}, // blue
		{Light: "#7c3aed", Dark: "#a78bfa"}, // purple
		{Light: "#db2777", Dark: "#f472b6"}, // pink
		{Light: "#0891b2", Dark: "#22d3ee"}, // cyan
		{Light: "#ca8a04", Dark: "#facc15"}, // yellow
	}

	// UI colors.
	colorBright = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
)

var (
	styleTitle = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleMeta  = lipgloss.NewStyle().Foreground(colorDim)
	styleID    = lipgloss.NewStyle().Foreground(colorDim)
	styleCode  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)

	styleSeparator = lipgloss.NewStyle().Foreground(colorDim)
)

func senderColor(sender string) lipgloss.AdaptiveColor {
	switch sender {
	case "claude":
		return colorClaude
	case "codex":
		return colorCodex
	}
	h := fnv.New32a()
	h.Write([]byte(sender))
	return palette[h.Sum32()%uint32(len(palette))]
}

func senderBadge(sender string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(senderColor(sender)).Bold(true)
}
