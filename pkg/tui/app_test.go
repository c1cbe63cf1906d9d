package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	insights "github.com/frappe/insights.go"
	"github.com/frappe/insights.go/internal/mock"
)

func notebookApp(t *testing.T) (*mock.Connection, *App) {
	t.Helper()
	con := mock.New()
	notebooks := []map[string]any{
		{"name": "NB-001", "title": "Sales"},
		{"name": "NB-002", "title": "Marketing"},
	}

	con.Handler = func(method string, params map[string]any) (any, error) {
		switch method {
		case "frappe.client.get_list":
			if params["doctype"] == "Insights Notebook" {
				return notebooks, nil
			}
			return []map[string]any{}, nil
		case "frappe.client.delete":
			name := params["name"]
			for i, nb := range notebooks {
				if nb["name"] == name {
					notebooks = append(notebooks[:i], notebooks[i+1:]...)
					break
				}
			}
			return nil, nil
		}
		return nil, nil
	}

	client, err := insights.FromConnection(context.Background(), con)
	require.NoError(t, err)
	app, err := NewApp(client, "Orders")
	require.NoError(t, err)

	require.NoError(t, app.notebooks.Reload(context.Background()))
	app.syncViews()
	return con, app
}

func press(t *testing.T, app *App, msg tea.KeyMsg) {
	t.Helper()
	model, cmd := app.Update(msg)
	require.Same(t, app, model)
	// Returned commands run synchronously so their completion messages can
	// feed back into the model, as the runtime would.
	for cmd != nil {
		out := cmd()
		if out == nil {
			return
		}
		model, cmd = app.Update(out)
		require.Same(t, app, model)
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestApp_DeleteCancelledLeavesListUnchanged(t *testing.T) {
	con, app := notebookApp(t)
	require.Equal(t, 2, app.notebookView.Len())

	press(t, app, keyRune('d'))
	require.NotNil(t, app.confirm, "delete opens a confirmation dialog")

	press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, app.confirm, "cancel closes the dialog")
	assert.Equal(t, 0, con.CallCount("frappe.client.delete"))
	assert.Equal(t, 2, app.notebookView.Len())
}

func TestApp_DeleteDefaultsToNo(t *testing.T) {
	con, app := notebookApp(t)

	press(t, app, keyRune('d'))
	require.NotNil(t, app.confirm)

	// Enter without toggling resolves the dialog on the no option.
	press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, app.confirm)
	assert.Equal(t, 0, con.CallCount("frappe.client.delete"))
}

func TestApp_DeleteConfirmedRemovesRow(t *testing.T) {
	con, app := notebookApp(t)

	press(t, app, keyRune('d'))
	require.NotNil(t, app.confirm)

	press(t, app, tea.KeyMsg{Type: tea.KeyTab})
	press(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, app.confirm)
	assert.Equal(t, 1, con.CallCount("frappe.client.delete"))
	assert.Equal(t, 1, app.notebookView.Len(), "list reflects the reload after the delete")
}

func TestApp_DialogCapturesKeys(t *testing.T) {
	con, app := notebookApp(t)

	press(t, app, keyRune('d'))
	require.NotNil(t, app.confirm)

	// Navigation keys must not leak to the list while the dialog is open.
	cursor := app.notebookView.Cursor()
	press(t, app, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, cursor, app.notebookView.Cursor())
	assert.Equal(t, 0, con.CallCount("frappe.client.delete"))
}

func TestApp_RenameQuery(t *testing.T) {
	con := mock.New()
	title := "Old Title"
	con.Handler = func(method string, params map[string]any) (any, error) {
		switch method {
		case "frappe.client.get_list":
			if params["doctype"] == "Insights Query" {
				return []map[string]any{{"name": "QRY-001", "title": title}}, nil
			}
			return []map[string]any{}, nil
		case "frappe.client.set_value":
			title, _ = params["value"].(string)
			return nil, nil
		}
		return nil, nil
	}

	client, err := insights.FromConnection(context.Background(), con)
	require.NoError(t, err)
	app, err := NewApp(client, "Orders")
	require.NoError(t, err)
	require.NoError(t, app.queries.Reload(context.Background()))
	app.syncViews()
	app.page = pageQueries

	press(t, app, keyRune('e'))
	require.True(t, app.renaming)
	assert.Equal(t, "Old Title", app.rename.Value())

	app.rename.SetValue("New Title")
	press(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, app.renaming)
	assert.Equal(t, 1, con.CallCount("frappe.client.set_value"))
	assert.Equal(t, "New Title", title)
	require.NotEmpty(t, app.queries.Rows())
	assert.Equal(t, "New Title", app.queries.Rows()[0].Title)
}

func TestApp_RenameCancelWritesNothing(t *testing.T) {
	con, app := notebookApp(t)
	app.page = pageQueries

	// No query rows, so rename has nothing to target.
	press(t, app, keyRune('e'))
	assert.False(t, app.renaming)
	assert.Equal(t, 0, con.CallCount("frappe.client.set_value"))
}

func TestApp_QuerySelectorCancelCreatesNothing(t *testing.T) {
	con, app := notebookApp(t)
	app.page = pageQueries

	press(t, app, keyRune('n'))
	require.NotNil(t, app.selector, "new query opens the type selector")

	press(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, app.selector)
	assert.Equal(t, 0, con.CallCount("frappe.client.insert"))
}

func TestApp_QuerySelectorPickCreates(t *testing.T) {
	con, app := notebookApp(t)
	app.page = pageQueries

	con.Handler = func(method string, params map[string]any) (any, error) {
		switch method {
		case "frappe.client.insert":
			return map[string]any{"name": "QRY-001"}, nil
		case "frappe.client.get_list":
			return []map[string]any{}, nil
		}
		return nil, nil
	}

	press(t, app, keyRune('n'))
	require.NotNil(t, app.selector)

	press(t, app, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, app.selector)
	assert.Equal(t, 1, con.CallCount("frappe.client.insert"))
}
