package insights

import (
	"context"
	"fmt"

	"github.com/frappe/insights.go/pkg/models"
)

// Typed wrappers over the insights.api.* methods the application surface
// uses. Anything not covered here remains reachable through Client.Call.

// UncategorizedNotebook is the server's default notebook; notebook-backed
// queries land on a page of this notebook.
const UncategorizedNotebook = "Uncategorized"

func (c *Client) GetDataSources(ctx context.Context) ([]models.DataSource, error) {
	var sources []models.DataSource
	if err := c.Call(ctx, &sources, "insights.api.get_data_sources", nil); err != nil {
		return nil, err
	}
	return sources, nil
}

// AddDatabaseParams describes a database to connect as a new data source.
type AddDatabaseParams struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	Database string `json:"name"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	UseSSL   bool   `json:"use_ssl,omitempty"`
}

func (c *Client) AddDatabase(ctx context.Context, p AddDatabaseParams) error {
	return c.Call(ctx, nil, "insights.api.add_database", map[string]any{
		"title":    p.Title,
		"type":     p.Type,
		"host":     p.Host,
		"port":     p.Port,
		"name":     p.Database,
		"username": p.Username,
		"password": p.Password,
		"use_ssl":  p.UseSSL,
	})
}

// GetTableName resolves a raw table identifier to its label.
func (c *Client) GetTableName(ctx context.Context, dataSource, table string) (string, error) {
	var name string
	err := c.Call(ctx, &name, "insights.api.get_table_name", map[string]any{
		"data_source": dataSource,
		"table":       table,
	})
	return name, err
}

func (c *Client) GetNotebooks(ctx context.Context) ([]models.Notebook, error) {
	var notebooks []models.Notebook
	if err := c.Call(ctx, &notebooks, "insights.api.get_notebooks", nil); err != nil {
		return nil, err
	}
	return notebooks, nil
}

// CreateNotebookPage creates an untitled page in the given notebook and
// returns its name.
func (c *Client) CreateNotebookPage(ctx context.Context, notebook string) (string, error) {
	return c.InsertDoc(ctx, map[string]any{
		"doctype":  models.DoctypeNotebookPage,
		"notebook": notebook,
		"title":    "Untitled Page",
	})
}

// QueryKind selects the editor a new query opens in.
type QueryKind string

const (
	QueryKindVisual   QueryKind = "Query Builder"
	QueryKindNative   QueryKind = "Native Query"
	QueryKindNotebook QueryKind = "Notebook"
)

// CreateQuery creates a query of the given kind on a data source and
// returns the name of the document to bind an editor to. For
// QueryKindNotebook that is the name of a fresh page in the default
// "Uncategorized" notebook; when that notebook does not exist the call
// fails with ErrUncategorizedNotebookMissing instead of failing silently.
func (c *Client) CreateQuery(ctx context.Context, dataSource string, kind QueryKind) (string, error) {
	if kind == QueryKindNotebook {
		notebooks, err := c.GetNotebooks(ctx)
		if err != nil {
			return "", err
		}
		for _, nb := range notebooks {
			if nb.Title == UncategorizedNotebook {
				return c.CreateNotebookPage(ctx, nb.Name)
			}
		}
		return "", ErrUncategorizedNotebookMissing
	}

	return c.InsertDoc(ctx, map[string]any{
		"doctype":         models.DoctypeQuery,
		"title":           "Untitled Query",
		"data_source":     dataSource,
		"is_native_query": kind == QueryKindNative,
	})
}

// CreateChart creates an empty chart bound to a query and returns its name.
// Chart editors mounted without a chart name call this on mount and adopt
// the result.
func (c *Client) CreateChart(ctx context.Context, query string) (string, error) {
	return c.InsertDoc(ctx, map[string]any{
		"doctype":    models.DoctypeChart,
		"query":      query,
		"chart_type": string(models.WidgetBar),
	})
}

// AddChartToDashboard places a chart on a dashboard.
func (c *Client) AddChartToDashboard(ctx context.Context, dashboard, chart string) error {
	return c.Call(ctx, nil, "insights.api.add_chart_to_dashboard", map[string]any{
		"dashboard": dashboard,
		"chart":     chart,
	})
}

// GetDashboardOptions lists dashboards a chart can be added to.
func (c *Client) GetDashboardOptions(ctx context.Context, chart string) ([]models.Dashboard, error) {
	var dashboards []models.Dashboard
	err := c.Call(ctx, &dashboards, "insights.api.get_dashboard_options", map[string]any{
		"chart": chart,
	})
	if err != nil {
		return nil, fmt.Errorf("listing dashboards for chart %s: %w", chart, err)
	}
	return dashboards, nil
}
