package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	insights "github.com/frappe/insights.go"
	"github.com/frappe/insights.go/pkg/models"
)

type page int

const (
	pageNotebooks page = iota
	pageNotebookDetail
	pageQueries
	pageChart
)

// opTimeout bounds every remote call issued from the UI.
const opTimeout = 15 * time.Second

// resizeSettle is how long resize events must be quiet before the new size
// is applied; terminals emit a burst of them during an interactive resize.
const resizeSettle = 120 * time.Millisecond

type reloadedMsg struct{ err error }

type createdMsg struct {
	what string
	name string
	err  error
}

type deletedMsg struct {
	what string
	err  error
}

type chartMountedMsg struct {
	block *ChartBlock
	err   error
}

type toastChangedMsg struct{}

type renamedMsg struct {
	title string
	err   error
}

type resizeSettledMsg struct{ seq int }

// App is the root bubbletea model. It owns one binding per collection it
// shows and routes key events to the focused view or the open dialog.
type App struct {
	client     *insights.Client
	dataSource string
	theme      Theme
	keys       KeyMap
	registry   *WidgetRegistry

	page page

	notebooks *insights.ListResource[models.Notebook]
	queries   *insights.ListResource[models.Query]
	pages     *insights.ListResource[models.NotebookPage]

	notebookView *CollectionView[models.Notebook]
	queryView    *CollectionView[models.Query]
	pageView     *CollectionView[models.NotebookPage]

	openNotebook models.Notebook
	chart        *ChartBlock

	selector *TypeSelector
	confirm  *ConfirmDialog

	spinner spinner.Model

	rename       textinput.Model
	renaming     bool
	renameTarget string

	width, height int
	pendingWidth  int
	pendingHeight int
	resizeSeq     int
}

// NewApp builds the root model. dataSource is the default data source new
// queries are created on. The widget registry is validated here so an
// incomplete registry aborts startup instead of surfacing mid-session.
func NewApp(client *insights.Client, dataSource string) (*App, error) {
	registry := DefaultWidgetRegistry()
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	theme := DefaultTheme()
	a := &App{
		client:     client,
		dataSource: dataSource,
		theme:      theme,
		keys:       DefaultKeyMap(),
		registry:   registry,

		notebooks: insights.NewListResource[models.Notebook](client, models.DoctypeNotebook, insights.ListOptions{
			Fields:  []string{"name", "title"},
			OrderBy: "title asc",
		}),
		queries: insights.NewListResource[models.Query](client, models.DoctypeQuery, insights.ListOptions{
			Fields:  []string{"name", "title", "data_source", "status"},
			OrderBy: "modified desc",
		}),
	}

	a.notebookView = NewCollectionView([]Column[models.Notebook]{
		{Key: "title", Label: "Notebook", Width: 32, Render: func(n models.Notebook) string { return n.Title }},
		{Key: "name", Label: "Name", Width: 20, Render: func(n models.Notebook) string { return n.Name }},
	}, theme).SetEmptyMessage("no notebooks yet, press n to create one")

	a.spinner = spinner.New()
	a.spinner.Spinner = spinner.Dot
	a.spinner.Style = theme.Muted

	a.rename = textinput.New()
	a.rename.CharLimit = 140
	a.rename.Prompt = "title: "

	a.queryView = NewCollectionView([]Column[models.Query]{
		{Key: "title", Label: "Query", Width: 32, Render: func(q models.Query) string { return q.Title }},
		{Key: "data_source", Label: "Data Source", Width: 20, Render: func(q models.Query) string { return q.DataSource }},
		{Key: "status", Label: "Status", Width: 16, Render: func(q models.Query) string { return q.Status }},
	}, theme).SetEmptyMessage("no queries yet, press n to create one")

	return a, nil
}

// AttachProgram wires toast changes to a live program so pushes from command
// goroutines repaint immediately.
func (a *App) AttachProgram(p *tea.Program) {
	Toasts().SetOnChange(func() { p.Send(toastChangedMsg{}) })
}

func (a *App) Init() tea.Cmd {
	// Both landing collections load together in one batch.
	return tea.Batch(
		a.reloadCmd(a.notebooks),
		a.reloadCmd(a.queries),
		a.spinner.Tick,
	)
}

func (a *App) reloadCmd(res insights.Reloader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return reloadedMsg{err: res.Reload(ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.pendingWidth, a.pendingHeight = msg.Width, msg.Height
		a.resizeSeq++
		seq := a.resizeSeq
		return a, tea.Tick(resizeSettle, func(time.Time) tea.Msg {
			return resizeSettledMsg{seq: seq}
		})

	case resizeSettledMsg:
		// Only the last resize of a burst applies.
		if msg.seq == a.resizeSeq {
			a.width, a.height = a.pendingWidth, a.pendingHeight
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case renamedMsg:
		a.renaming = false
		if msg.err != nil {
			Toasts().Push(ToastError, "renaming: "+msg.err.Error(), 0)
			return a, nil
		}
		Toasts().Push(ToastSuccess, "renamed to "+msg.title, 0)
		a.syncViews()
		return a, nil

	case toastChangedMsg:
		return a, nil

	case reloadedMsg:
		if msg.err != nil {
			Toasts().Push(ToastError, msg.err.Error(), 0)
		}
		a.syncViews()
		return a, nil

	case createdMsg:
		if msg.err != nil {
			Toasts().Push(ToastError, fmt.Sprintf("creating %s: %v", msg.what, msg.err), 0)
			return a, nil
		}
		Toasts().Push(ToastSuccess, fmt.Sprintf("created %s %s", msg.what, msg.name), 0)
		a.syncViews()
		return a, nil

	case deletedMsg:
		if msg.err != nil {
			Toasts().Push(ToastError, fmt.Sprintf("deleting %s: %v", msg.what, msg.err), 0)
			return a, nil
		}
		Toasts().Push(ToastSuccess, fmt.Sprintf("deleted %s", msg.what), 0)
		a.syncViews()
		return a, nil

	case chartMountedMsg:
		if msg.err != nil {
			Toasts().Push(ToastError, "opening chart: "+msg.err.Error(), 0)
			return a, nil
		}
		a.chart = msg.block
		a.page = pageChart
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) syncViews() {
	a.notebookView.SetRows(a.notebooks.Rows())
	a.queryView.SetRows(a.queries.Rows())
	if a.pages != nil && a.pageView != nil {
		a.pageView.SetRows(a.pages.Rows())
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// An open dialog or rename input captures all keys until it resolves.
	if a.confirm != nil {
		return a.handleConfirmKey(msg)
	}
	if a.selector != nil {
		return a.handleSelectorKey(msg)
	}
	if a.renaming {
		return a.handleRenameKey(msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Back):
		switch a.page {
		case pageNotebookDetail, pageQueries:
			a.page = pageNotebooks
		case pageChart:
			// Pending edits flush before the editor goes away.
			chart := a.chart
			a.page = pageQueries
			a.chart = nil
			if chart != nil {
				return a, func() tea.Msg {
					ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
					defer cancel()
					if err := chart.Flush(ctx); err != nil {
						Toasts().Push(ToastError, "saving chart: "+err.Error(), 0)
					}
					return toastChangedMsg{}
				}
			}
		}
		return a, nil

	case key.Matches(msg, a.keys.Refresh):
		return a, a.refreshCurrent()

	case key.Matches(msg, a.keys.Up):
		a.currentView().MoveUp()
		return a, nil

	case key.Matches(msg, a.keys.Down):
		a.currentView().MoveDown()
		return a, nil
	}

	switch a.page {
	case pageNotebooks:
		return a.handleNotebooksKey(msg)
	case pageNotebookDetail:
		return a.handleNotebookDetailKey(msg)
	case pageQueries:
		return a.handleQueriesKey(msg)
	}
	return a, nil
}

type mover interface {
	MoveUp()
	MoveDown()
}

func (a *App) currentView() mover {
	switch a.page {
	case pageNotebookDetail:
		if a.pageView != nil {
			return a.pageView
		}
	case pageQueries, pageChart:
		return a.queryView
	}
	return a.notebookView
}

func (a *App) refreshCurrent() tea.Cmd {
	switch a.page {
	case pageNotebookDetail:
		if a.pages != nil {
			return a.reloadCmd(a.pages)
		}
	case pageQueries:
		return a.reloadCmd(a.queries)
	}
	return a.reloadCmd(a.notebooks)
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "tab", "h", "l":
		a.confirm.Toggle()
	case "enter":
		cmd := a.confirm.Accept()
		a.confirm = nil
		return a, cmd
	case "esc":
		a.confirm = nil
	}
	return a, nil
}

func (a *App) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := a.rename.Value()
		target := a.renameTarget
		a.rename.Blur()
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			err := a.client.SetValue(ctx, models.DoctypeQuery, target, "title", title)
			if err == nil {
				err = a.queries.Reload(ctx)
			}
			return renamedMsg{title: title, err: err}
		}
	case "esc":
		a.renaming = false
		a.rename.Blur()
		return a, nil
	}
	var cmd tea.Cmd
	a.rename, cmd = a.rename.Update(msg)
	return a, cmd
}

func (a *App) handleSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Up):
		a.selector.MoveUp()
	case key.Matches(msg, a.keys.Down):
		a.selector.MoveDown()
	case key.Matches(msg, a.keys.Open):
		cmd := a.selector.Pick()
		a.selector = nil
		return a, cmd
	case key.Matches(msg, a.keys.Back):
		a.selector = nil
	}
	return a, nil
}

func (a *App) handleNotebooksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Open):
		nb, ok := a.notebookView.Selected()
		if !ok {
			return a, nil
		}
		a.openNotebookDetail(nb)
		return a, a.reloadCmd(a.pages)

	case key.Matches(msg, a.keys.New):
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			name, err := a.notebooks.Create(ctx, map[string]any{
				"doctype": models.DoctypeNotebook,
				"title":   "Untitled Notebook",
			}, insights.RefreshSelf())
			return createdMsg{what: "notebook", name: name, err: err}
		}

	case key.Matches(msg, a.keys.Delete):
		nb, ok := a.notebookView.Selected()
		if !ok {
			return a, nil
		}
		a.confirm = NewConfirmDialog(
			fmt.Sprintf("Delete notebook %q and all its pages?", nb.Title),
			a.theme,
			func() tea.Cmd {
				return func() tea.Msg {
					ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
					defer cancel()
					err := a.notebooks.Delete(ctx, nb.Name, insights.RefreshSelf())
					return deletedMsg{what: "notebook " + nb.Title, err: err}
				}
			},
		)
		return a, nil
	}

	if msg.String() == "2" {
		a.page = pageQueries
	}
	return a, nil
}

func (a *App) openNotebookDetail(nb models.Notebook) {
	a.openNotebook = nb
	a.pages = insights.NewListResource[models.NotebookPage](a.client, models.DoctypeNotebookPage, insights.ListOptions{
		Fields:  []string{"name", "notebook", "title"},
		Filters: map[string]any{"notebook": nb.Name},
		OrderBy: "creation asc",
	})
	a.pageView = NewCollectionView([]Column[models.NotebookPage]{
		{Key: "title", Label: "Page", Width: 40, Render: func(p models.NotebookPage) string { return p.Title }},
		{Key: "name", Label: "Name", Width: 20, Render: func(p models.NotebookPage) string { return p.Name }},
	}, a.theme).SetEmptyMessage("no pages yet, press n to create one")
	a.page = pageNotebookDetail
}

func (a *App) handleNotebookDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.New):
		nb := a.openNotebook
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			name, err := a.client.CreateNotebookPage(ctx, nb.Name)
			if err == nil {
				err = a.pages.Reload(ctx)
			}
			return createdMsg{what: "page", name: name, err: err}
		}

	case key.Matches(msg, a.keys.Delete):
		pg, ok := a.pageView.Selected()
		if !ok {
			return a, nil
		}
		// Deleting a page also updates the notebook list's page counts.
		pages, notebooks := a.pages, a.notebooks
		a.confirm = NewConfirmDialog(
			fmt.Sprintf("Delete page %q?", pg.Title),
			a.theme,
			func() tea.Cmd {
				return func() tea.Msg {
					ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
					defer cancel()
					err := pages.Delete(ctx, pg.Name, insights.RefreshAlso(notebooks))
					return deletedMsg{what: "page " + pg.Title, err: err}
				}
			},
		)
		return a, nil
	}
	return a, nil
}

func (a *App) handleQueriesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.New):
		a.selector = a.newQuerySelector()
		return a, nil

	case key.Matches(msg, a.keys.Rename):
		q, ok := a.queryView.Selected()
		if !ok {
			return a, nil
		}
		a.renaming = true
		a.renameTarget = q.Name
		a.rename.SetValue(q.Title)
		a.rename.CursorEnd()
		return a, a.rename.Focus()

	case key.Matches(msg, a.keys.Open):
		q, ok := a.queryView.Selected()
		if !ok {
			return a, nil
		}
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
			defer cancel()
			block := NewChartBlock(a.client, q.Name, "")
			if err := block.Mount(ctx); err != nil {
				return chartMountedMsg{err: err}
			}
			return chartMountedMsg{block: block}
		}

	case key.Matches(msg, a.keys.Delete):
		q, ok := a.queryView.Selected()
		if !ok {
			return a, nil
		}
		a.confirm = NewConfirmDialog(
			fmt.Sprintf("Delete query %q?", q.Title),
			a.theme,
			func() tea.Cmd {
				return func() tea.Msg {
					ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
					defer cancel()
					err := a.queries.Delete(ctx, q.Name, insights.RefreshSelf())
					return deletedMsg{what: "query " + q.Title, err: err}
				}
			},
		)
		return a, nil
	}

	if msg.String() == "1" {
		a.page = pageNotebooks
	}
	return a, nil
}

// newQuerySelector builds the new-query type selector. Picking a kind
// creates the query; cancelling creates nothing.
func (a *App) newQuerySelector() *TypeSelector {
	create := func(kind insights.QueryKind) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
				defer cancel()
				name, err := a.client.CreateQuery(ctx, a.dataSource, kind)
				if err == nil {
					err = a.queries.Reload(ctx)
				}
				return createdMsg{what: "query", name: name, err: err}
			}
		}
	}
	return NewTypeSelector("New Query", []SelectorOption{
		{Label: "Query Builder", Icon: "▦", Description: "Build visually from tables and columns", Pick: create(insights.QueryKindVisual)},
		{Label: "Native Query", Icon: "¶", Description: "Write raw SQL", Pick: create(insights.QueryKindNative)},
		{Label: "Notebook", Icon: "∿", Description: "Explore in a notebook page", Pick: create(insights.QueryKindNotebook)},
	}, a.theme)
}

func (a *App) View() string {
	var body string
	switch a.page {
	case pageNotebooks:
		title := "Notebooks"
		if a.notebooks.Loading() {
			title += " " + a.spinner.View()
		}
		body = a.theme.Title.Render(title) + "\n" + a.notebookView.View() +
			a.theme.Muted.Render("enter open · n new · d delete · r refresh · 2 queries · q quit")
	case pageNotebookDetail:
		body = a.theme.Title.Render("Notebook: "+a.openNotebook.Title) + "\n" + a.pageView.View() +
			a.theme.Muted.Render("n new page · d delete · r refresh · esc back")
	case pageQueries:
		title := "Queries"
		if a.queries.Loading() {
			title += " " + a.spinner.View()
		}
		body = a.theme.Title.Render(title) + "\n" + a.queryView.View()
		if a.renaming {
			body += a.rename.View() + "\n"
		}
		body += a.theme.Muted.Render("enter open chart · n new · e rename · d delete · r refresh · 1 notebooks · q quit")
	case pageChart:
		if a.chart != nil {
			body = a.chart.View(a.theme, a.registry) + "\n" +
				a.theme.Muted.Render("esc back (saves pending edits)")
		}
	}

	if a.confirm != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, a.confirm.View())
	}
	if a.selector != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, a.selector.View())
	}
	if toasts := Toasts().View(a.theme); toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, toasts)
	}
	return body
}
