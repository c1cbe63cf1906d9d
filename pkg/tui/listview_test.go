package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowFixture struct {
	Name  string
	Title string
}

func fixtureColumns() []Column[rowFixture] {
	return []Column[rowFixture]{
		{Key: "title", Label: "Title", Width: 20, Render: func(r rowFixture) string { return r.Title }},
		{Key: "name", Label: "Name", Width: 12, Render: func(r rowFixture) string { return r.Name }},
	}
}

func TestCollectionView_RendersOneLinePerRow(t *testing.T) {
	for _, n := range []int{0, 1, 3, 25} {
		t.Run(fmt.Sprintf("%d_rows", n), func(t *testing.T) {
			view := NewCollectionView(fixtureColumns(), DefaultTheme())

			rows := make([]rowFixture, n)
			for i := range rows {
				rows[i] = rowFixture{Name: fmt.Sprintf("NB-%03d", i), Title: fmt.Sprintf("Notebook %d", i)}
			}
			view.SetRows(rows)

			out := view.View()
			lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
			if n == 0 {
				// Header plus the empty placeholder.
				require.Len(t, lines, 2)
				return
			}
			require.Len(t, lines, n+1, "header plus one line per row")
			for i, row := range rows {
				assert.Contains(t, lines[i+1], row.Title)
			}
		})
	}
}

func TestCollectionView_SnapshotReplacementWins(t *testing.T) {
	view := NewCollectionView(fixtureColumns(), DefaultTheme())

	view.SetRows([]rowFixture{{Name: "NB-001", Title: "First"}, {Name: "NB-002", Title: "Second"}})
	view.SetRows([]rowFixture{{Name: "NB-003", Title: "Third"}})

	assert.Equal(t, 1, view.Len())
	out := view.View()
	assert.Contains(t, out, "Third")
	assert.NotContains(t, out, "First")
}

func TestCollectionView_CursorClampsToSnapshot(t *testing.T) {
	view := NewCollectionView(fixtureColumns(), DefaultTheme())
	view.SetRows([]rowFixture{{Name: "a"}, {Name: "b"}, {Name: "c"}})

	view.MoveDown()
	view.MoveDown()
	assert.Equal(t, 2, view.Cursor())

	// Shrinking the snapshot pulls the cursor back onto a live row.
	view.SetRows([]rowFixture{{Name: "a"}})
	assert.Equal(t, 0, view.Cursor())

	row, ok := view.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", row.Name)
}

func TestCollectionView_SelectedOnEmpty(t *testing.T) {
	view := NewCollectionView(fixtureColumns(), DefaultTheme())
	_, ok := view.Selected()
	assert.False(t, ok)

	view.MoveUp()
	view.MoveDown()
	assert.Equal(t, 0, view.Cursor())
}

func TestCollectionView_TruncatesLongCells(t *testing.T) {
	view := NewCollectionView([]Column[rowFixture]{
		{Key: "title", Label: "Title", Width: 8, Render: func(r rowFixture) string { return r.Title }},
	}, DefaultTheme())
	view.SetRows([]rowFixture{{Title: "a very long notebook title"}})

	assert.Contains(t, view.View(), "…")
}

func TestPad_DisplayWidth(t *testing.T) {
	for _, tc := range []struct {
		name  string
		in    string
		width int
	}{
		{name: "ascii fits", in: "abc", width: 6},
		{name: "ascii truncates", in: "abcdefgh", width: 4},
		{name: "cjk fits", in: "売上", width: 6},
		{name: "cjk truncates", in: "売上分析", width: 4},
		{name: "cjk odd width", in: "売上分析", width: 5},
		{name: "mixed", in: "q3売上report", width: 7},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := pad(tc.in, tc.width)
			assert.Equal(t, tc.width, lipgloss.Width(out), "cell must occupy exactly the column width")
		})
	}
}
