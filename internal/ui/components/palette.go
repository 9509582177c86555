package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studyfocus/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command name.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

// Command is one entry the palette can complete.
type Command struct {
	Name string
	Help string
}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	helpStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Palette is a single-line command prompt with prefix completion.
type Palette struct {
	input    textinput.Model
	commands []Command
	visible  bool
	width    int
}

func NewPalette(commands []Command) Palette {
	ti := textinput.New()
	ti.Placeholder = "command"
	ti.CharLimit = 32
	ti.Prompt = ": "
	return Palette{input: ti, commands: commands}
}

func (p Palette) Visible() bool { return p.visible }

// Open clears any previous input and focuses the prompt.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case tea.KeyEnter:
			value := strings.TrimSpace(p.input.Value())
			if matches := p.matching(); len(matches) == 1 {
				value = matches[0].Name
			}
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: value} }
		case tea.KeyTab:
			if matches := p.matching(); len(matches) == 1 {
				p.input.SetValue(matches[0].Name)
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p Palette) matching() []Command {
	prefix := strings.ToLower(strings.TrimSpace(p.input.Value()))
	var out []Command
	for _, c := range p.commands {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	lines := []string{p.input.View()}
	for _, c := range p.matching() {
		lines = append(lines, nameStyle.Render(c.Name)+"  "+helpStyle.Render(c.Help))
	}
	width := p.width
	if width < 24 {
		width = 48
	}
	return paletteStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}
