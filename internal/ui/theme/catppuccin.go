package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1, 3)

	Title  = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted  = lipgloss.NewStyle().Foreground(Subtext0)
	Hot    = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Notice = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Alert  = lipgloss.NewStyle().Foreground(Red)

	BarFilled = lipgloss.NewStyle().Foreground(Lavender)
	BarEmpty  = lipgloss.NewStyle().Foreground(Surface0)
)

// PhaseColor picks the accent for a timer phase name.
func PhaseColor(phase string) lipgloss.Color {
	switch phase {
	case "WORK":
		return Peach
	case "SHORT_BREAK":
		return Green
	case "LONG_BREAK":
		return Sapphire
	default:
		return Subtext0
	}
}
