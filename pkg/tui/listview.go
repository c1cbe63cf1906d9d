package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column describes one column of a collection view. Render, when set,
// formats the cell from the row value; otherwise the zero renderer is
// used and the cell is blank.
type Column[T any] struct {
	Key    string
	Label  string
	Width  int
	Render func(row T) string
}

// CollectionView renders a snapshot of rows against a column spec. It does
// not own the resource that produced the rows; callers push fresh snapshots
// with SetRows after every reload, and the view always renders exactly the
// rows it was last given.
type CollectionView[T any] struct {
	columns []Column[T]
	rows    []T
	cursor  int
	theme   Theme
	empty   string
}

func NewCollectionView[T any](columns []Column[T], theme Theme) *CollectionView[T] {
	return &CollectionView[T]{
		columns: columns,
		theme:   theme,
		empty:   "no rows",
	}
}

// SetEmptyMessage overrides the placeholder shown when the snapshot has no rows.
func (v *CollectionView[T]) SetEmptyMessage(msg string) *CollectionView[T] {
	v.empty = msg
	return v
}

// SetRows replaces the snapshot. The cursor is clamped so it always points
// at a live row, or 0 when the snapshot is empty.
func (v *CollectionView[T]) SetRows(rows []T) {
	v.rows = rows
	if v.cursor >= len(rows) {
		v.cursor = len(rows) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *CollectionView[T]) Len() int { return len(v.rows) }

func (v *CollectionView[T]) Cursor() int { return v.cursor }

// Selected returns the row under the cursor. ok is false for an empty snapshot.
func (v *CollectionView[T]) Selected() (row T, ok bool) {
	if len(v.rows) == 0 {
		return row, false
	}
	return v.rows[v.cursor], true
}

func (v *CollectionView[T]) MoveUp() {
	if v.cursor > 0 {
		v.cursor--
	}
}

func (v *CollectionView[T]) MoveDown() {
	if v.cursor < len(v.rows)-1 {
		v.cursor++
	}
}

func (v *CollectionView[T]) cell(col Column[T], row T) string {
	var s string
	if col.Render != nil {
		s = col.Render(row)
	}
	return pad(s, col.width())
}

func (c Column[T]) width() int {
	if c.Width > 0 {
		return c.Width
	}
	return 16
}

// pad fits s into width terminal cells, truncating with an ellipsis. Widths
// are display widths, so double-width runes count as two cells.
func pad(s string, width int) string {
	if lipgloss.Width(s) > width && width > 1 {
		var b strings.Builder
		used := 0
		for _, r := range s {
			rw := lipgloss.Width(string(r))
			if used+rw > width-1 {
				break
			}
			b.WriteRune(r)
			used += rw
		}
		s = b.String() + "…"
	}
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}

// View renders the header plus one line per row in the snapshot.
func (v *CollectionView[T]) View() string {
	var b strings.Builder

	var header strings.Builder
	for _, col := range v.columns {
		header.WriteString(pad(col.Label, col.width()))
	}
	b.WriteString(v.theme.Header.Render(header.String()))
	b.WriteByte('\n')

	if len(v.rows) == 0 {
		b.WriteString(v.theme.Muted.Render(v.empty))
		b.WriteByte('\n')
		return b.String()
	}

	for i, row := range v.rows {
		var line strings.Builder
		for _, col := range v.columns {
			line.WriteString(v.cell(col, row))
		}
		style := v.theme.Row
		if i == v.cursor {
			style = v.theme.SelectedRow
		}
		b.WriteString(style.Render(line.String()))
		b.WriteByte('\n')
	}
	return b.String()
}
