package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectorOption is one entry of a type-selector dialog. Pick produces the
// command to run when the option is chosen; it is only invoked on an explicit
// selection, never on cancel.
type SelectorOption struct {
	Label       string
	Icon        string
	Description string
	Pick        func() tea.Cmd
}

// TypeSelector is a modal list of options, one of which may be picked.
// Cancelling the dialog produces no command and leaves the caller's state
// untouched.
type TypeSelector struct {
	title   string
	options []SelectorOption
	cursor  int
	theme   Theme
}

func NewTypeSelector(title string, options []SelectorOption, theme Theme) *TypeSelector {
	return &TypeSelector{title: title, options: options, theme: theme}
}

func (s *TypeSelector) MoveUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

func (s *TypeSelector) MoveDown() {
	if s.cursor < len(s.options)-1 {
		s.cursor++
	}
}

func (s *TypeSelector) Cursor() int { return s.cursor }

// Pick runs the handler of the option under the cursor.
func (s *TypeSelector) Pick() tea.Cmd {
	if len(s.options) == 0 {
		return nil
	}
	opt := s.options[s.cursor]
	if opt.Pick == nil {
		return nil
	}
	return opt.Pick()
}

func (s *TypeSelector) View() string {
	var b strings.Builder
	b.WriteString(s.theme.Title.Render(s.title))
	b.WriteByte('\n')
	for i, opt := range s.options {
		marker := "  "
		if i == s.cursor {
			marker = "> "
		}
		line := marker + s.theme.DialogIcon.Render(opt.Icon) + " " + opt.Label
		if opt.Description != "" {
			line += "  " + s.theme.Muted.Render(opt.Description)
		}
		if i == s.cursor {
			b.WriteString(s.theme.SelectedRow.Render(line))
		} else {
			b.WriteString(s.theme.Row.Render(line))
		}
		b.WriteByte('\n')
	}
	return s.theme.Dialog.Render(b.String())
}

// ConfirmDialog asks the user to confirm a destructive action before any
// command runs. OnConfirm fires only on an explicit yes.
type ConfirmDialog struct {
	message   string
	yes       bool
	theme     Theme
	OnConfirm func() tea.Cmd
}

func NewConfirmDialog(message string, theme Theme, onConfirm func() tea.Cmd) *ConfirmDialog {
	return &ConfirmDialog{message: message, theme: theme, OnConfirm: onConfirm}
}

func (d *ConfirmDialog) Toggle() { d.yes = !d.yes }

func (d *ConfirmDialog) Yes() bool { return d.yes }

// Accept resolves the dialog. A command is returned only when the yes
// option is highlighted.
func (d *ConfirmDialog) Accept() tea.Cmd {
	if !d.yes || d.OnConfirm == nil {
		return nil
	}
	return d.OnConfirm()
}

func (d *ConfirmDialog) View() string {
	var b strings.Builder
	b.WriteString(d.message)
	b.WriteString("\n\n")
	yes, no := "  yes  ", "  no  "
	if d.yes {
		yes = d.theme.SelectedRow.Render(yes)
	} else {
		no = d.theme.SelectedRow.Render(no)
	}
	b.WriteString(yes + " " + no)
	return d.theme.Dialog.Render(b.String())
}
