package components_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyfocus/internal/ui/components"
)

var commands = []components.Command{
	{Name: "pause", Help: "pause"},
	{Name: "resume", Help: "resume"},
	{Name: "stop", Help: "stop"},
	{Name: "skip", Help: "skip"},
}

func typeInto(p components.Palette, text string) components.Palette {
	for _, r := range text {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return p
}

func submit(t *testing.T, p components.Palette) (components.Palette, tea.Msg) {
	t.Helper()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	return p, cmd()
}

func TestEnterCompletesUniquePrefix(t *testing.T) {
	t.Parallel()
	p := components.NewPalette(commands)
	p.Open()
	p = typeInto(p, "re")

	p, msg := submit(t, p)
	assert.Equal(t, components.PaletteSubmitMsg{Input: "resume"}, msg)
	assert.False(t, p.Visible())
}

func TestAmbiguousPrefixIsSubmittedAsTyped(t *testing.T) {
	t.Parallel()
	p := components.NewPalette(commands)
	p.Open()
	p = typeInto(p, "s")

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	_, msg := submit(t, p)
	assert.Equal(t, components.PaletteSubmitMsg{Input: "s"}, msg)
}

func TestEscCancels(t *testing.T) {
	t.Parallel()
	p := components.NewPalette(commands)
	p.Open()
	require.True(t, p.Visible())

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, components.PaletteCancelMsg{}, cmd())
	assert.False(t, p.Visible())
}
