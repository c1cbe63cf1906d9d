package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeSelector_PickRunsOnlyChosenOption(t *testing.T) {
	var picked string
	opt := func(label string) SelectorOption {
		return SelectorOption{
			Label: label,
			Pick: func() tea.Cmd {
				picked = label
				return nil
			},
		}
	}

	s := NewTypeSelector("New Query", []SelectorOption{opt("Visual"), opt("Native"), opt("Notebook")}, DefaultTheme())

	s.MoveDown()
	s.Pick()
	assert.Equal(t, "Native", picked)
}

func TestTypeSelector_CancelRunsNothing(t *testing.T) {
	invoked := false
	s := NewTypeSelector("New Query", []SelectorOption{
		{Label: "Visual", Pick: func() tea.Cmd { invoked = true; return nil }},
	}, DefaultTheme())

	// Cancelling is the caller discarding the dialog without Pick. Nothing
	// should have run on the option handlers.
	s.MoveDown()
	s.MoveUp()
	assert.False(t, invoked)
}

func TestTypeSelector_CursorStaysInBounds(t *testing.T) {
	s := NewTypeSelector("t", []SelectorOption{{Label: "a"}, {Label: "b"}}, DefaultTheme())

	s.MoveUp()
	assert.Equal(t, 0, s.Cursor())
	s.MoveDown()
	s.MoveDown()
	s.MoveDown()
	assert.Equal(t, 1, s.Cursor())
}

func TestTypeSelector_EmptyPickIsNil(t *testing.T) {
	s := NewTypeSelector("t", nil, DefaultTheme())
	assert.Nil(t, s.Pick())
}

func TestTypeSelector_ViewShowsOptions(t *testing.T) {
	s := NewTypeSelector("New Query", []SelectorOption{
		{Label: "Visual", Icon: "▦", Description: "Build visually"},
		{Label: "Native", Icon: "¶"},
	}, DefaultTheme())

	out := s.View()
	assert.Contains(t, out, "New Query")
	assert.Contains(t, out, "Visual")
	assert.Contains(t, out, "Build visually")
	assert.Contains(t, out, "Native")
}

func TestConfirmDialog_AcceptRequiresYes(t *testing.T) {
	ran := false
	d := NewConfirmDialog("Delete notebook?", DefaultTheme(), func() tea.Cmd {
		ran = true
		return nil
	})

	// The dialog starts on no.
	require.False(t, d.Yes())
	assert.Nil(t, d.Accept())
	assert.False(t, ran)

	d.Toggle()
	d.Accept()
	assert.True(t, ran)
}
