package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	insights "github.com/frappe/insights.go"
	"github.com/frappe/insights.go/pkg/constants"
	"github.com/frappe/insights.go/pkg/models"
)

// ChartBlock edits the chart attached to a query. A block opened without a
// chart name asks the server for a fresh chart on mount and adopts the
// returned name; mounting is idempotent, so re-entering the page never
// creates a second chart for the same block.
type ChartBlock struct {
	client    *insights.Client
	queryName string

	mountOnce sync.Once
	mountErr  error

	mu        sync.Mutex
	chartName string
	res       *insights.DocumentResource[models.Chart]
	saver     *insights.AutoSaver[models.Chart]
}

// NewChartBlock binds a block to a query. chartName may be empty; Mount then
// creates the chart.
func NewChartBlock(client *insights.Client, queryName, chartName string) *ChartBlock {
	return &ChartBlock{client: client, queryName: queryName, chartName: chartName}
}

// Mount prepares the block for editing: it resolves the query's chart,
// creating one only when the query has none yet, binds the document
// resource, and fetches the current fields. At most one create happens
// across all Mount calls on a block, and reopening a query rebinds the same
// chart instead of minting another.
func (b *ChartBlock) Mount(ctx context.Context) error {
	b.mountOnce.Do(func() {
		b.mountErr = b.mount(ctx)
	})
	return b.mountErr
}

func (b *ChartBlock) mount(ctx context.Context) error {
	b.mu.Lock()
	name := b.chartName
	b.mu.Unlock()

	if name == "" {
		existing, err := b.existingChartName(ctx)
		if err != nil {
			return err
		}
		name = existing
	}
	if name == "" {
		created, err := b.client.CreateChart(ctx, b.queryName)
		if err != nil {
			return err
		}
		name = created
	}

	res := insights.NewDocumentResource[models.Chart](
		b.client, models.DoctypeChart, name,
		models.WhitelistedMethods(models.DoctypeChart),
	)
	if err := res.TriggerFetch(ctx); err != nil {
		return err
	}

	b.mu.Lock()
	b.chartName = name
	b.res = res
	b.saver = insights.NewAutoSaver(res, insights.DefaultAutoSaveInterval, insights.RefreshSelf(), func(err error) {
		Toasts().Push(ToastError, "saving chart: "+err.Error(), 0)
	})
	b.mu.Unlock()
	return nil
}

// existingChartName asks the query's controller for its chart. An empty
// name or a no-result response means the query has no chart yet.
func (b *ChartBlock) existingChartName(ctx context.Context) (string, error) {
	query := insights.NewDocumentResource[models.Query](
		b.client, models.DoctypeQuery, b.queryName,
		models.WhitelistedMethods(models.DoctypeQuery),
	)
	var name string
	err := query.RunMethod(ctx, &name, "get_chart_name", nil)
	if err != nil && !errors.Is(err, constants.ErrNoResult) {
		return "", err
	}
	return name, nil
}

// ChartName returns the bound chart's name, empty before Mount resolves.
func (b *ChartBlock) ChartName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chartName
}

// Chart returns the last fetched chart fields.
func (b *ChartBlock) Chart() models.Chart {
	b.mu.Lock()
	res := b.res
	b.mu.Unlock()
	if res == nil {
		return models.Chart{}
	}
	return res.Doc()
}

// SetTitle queues a debounced title edit.
func (b *ChartBlock) SetTitle(title string) {
	b.queue("title", title)
}

// SetType queues a debounced chart type change. Unknown types are rejected
// up front so a typo never reaches the server.
func (b *ChartBlock) SetType(t models.WidgetType) error {
	if !t.Valid() {
		return fmt.Errorf("unknown widget type %q", t)
	}
	b.queue("chart_type", string(t))
	return nil
}

func (b *ChartBlock) queue(field string, value any) {
	b.mu.Lock()
	saver := b.saver
	b.mu.Unlock()
	if saver != nil {
		saver.Queue(field, value)
	}
}

// Flush writes queued edits immediately, e.g. before leaving the page.
func (b *ChartBlock) Flush(ctx context.Context) error {
	b.mu.Lock()
	saver := b.saver
	b.mu.Unlock()
	if saver == nil {
		return nil
	}
	return saver.Flush(ctx)
}

// AddToDashboard places the block's chart on a dashboard.
func (b *ChartBlock) AddToDashboard(ctx context.Context, dashboard string) error {
	b.mu.Lock()
	name := b.chartName
	b.mu.Unlock()
	return b.client.AddChartToDashboard(ctx, dashboard, name)
}

// View renders the chart using the registry's renderer for its type. The
// chart's serialized config becomes the renderer's options.
func (b *ChartBlock) View(theme Theme, registry *WidgetRegistry) string {
	chart := b.Chart()
	t := models.WidgetType(chart.ChartType)
	if !t.Valid() {
		return theme.Error.Render("unknown chart type " + chart.ChartType)
	}
	options := map[string]any{}
	if chart.Config != "" {
		if err := json.Unmarshal([]byte(chart.Config), &options); err != nil {
			return theme.Error.Render("bad chart config: " + err.Error())
		}
	}
	out, err := registry.Render(t, theme, chart.Title, options)
	if err != nil {
		return theme.Error.Render(err.Error())
	}
	return out
}
