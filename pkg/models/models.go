// Package models holds the client-side projections of the server's Insights
// doctypes, plus the per-doctype whitelists of controller methods callable
// on a bound document.
package models

// Doctype names as stored server-side.
const (
	DoctypeDataSource   = "Insights Data Source"
	DoctypeTable        = "Insights Table"
	DoctypeQuery        = "Insights Query"
	DoctypeChart        = "Insights Chart"
	DoctypeDashboard    = "Insights Dashboard"
	DoctypeNotebook     = "Insights Notebook"
	DoctypeNotebookPage = "Insights Notebook Page"
)

// DataSource is a connected database.
type DataSource struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	DatabaseType string `json:"database_type"`
	Status       string `json:"status"`
}

// Table is one queryable table of a data source.
type Table struct {
	Name       string `json:"name"`
	Table      string `json:"table"`
	Label      string `json:"label"`
	DataSource string `json:"data_source"`
	Hidden     bool   `json:"hidden"`
}

// Column is a projected column of a query.
type Column struct {
	Name        string `json:"name,omitempty"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Table       string `json:"table"`
	Column      string `json:"column"`
	TableLabel  string `json:"table_label,omitempty"`
	Aggregation string `json:"aggregation,omitempty"`
	OrderBy     string `json:"order_by,omitempty"`
	Expression  string `json:"expression,omitempty"`
}

// QueryTable is a table row inside a query, optionally carrying a join
// description as serialized JSON.
type QueryTable struct {
	Name  string `json:"name,omitempty"`
	Table string `json:"table"`
	Label string `json:"label"`
	Join  string `json:"join,omitempty"`
}

// Query is a saved query document.
type Query struct {
	Name          string       `json:"name"`
	Title         string       `json:"title"`
	DataSource    string       `json:"data_source"`
	Tables        []QueryTable `json:"tables,omitempty"`
	Columns       []Column     `json:"columns,omitempty"`
	Filters       string       `json:"filters,omitempty"`
	Limit         int          `json:"limit,omitempty"`
	SQL           string       `json:"sql,omitempty"`
	IsNativeQuery bool         `json:"is_native_query,omitempty"`
	Status        string       `json:"status,omitempty"`
}

// Chart visualizes one query.
type Chart struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	ChartType string `json:"chart_type"`
	Query     string `json:"query"`
	Config    string `json:"config,omitempty"`
}

// Dashboard is a grid of chart and widget items.
type Dashboard struct {
	Name  string          `json:"name"`
	Title string          `json:"title"`
	Items []DashboardItem `json:"items,omitempty"`
}

// DashboardItem places one widget on a dashboard.
type DashboardItem struct {
	Name       string     `json:"name,omitempty"`
	ItemType   WidgetType `json:"item_type"`
	Chart      string     `json:"chart,omitempty"`
	Layout     string     `json:"layout,omitempty"`
	Markdown   string     `json:"markdown,omitempty"`
	FilterJSON string     `json:"filter_json,omitempty"`
}

// Notebook groups pages.
type Notebook struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// NotebookPage is one page of a notebook; Content is the serialized block
// tree the editor renders.
type NotebookPage struct {
	Name     string `json:"name"`
	Notebook string `json:"notebook"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
}

// doctypeMethods is the per-doctype whitelist of controller methods the
// server allows on a bound document. Methods outside this set are rejected
// client-side before any remote call.
var doctypeMethods = map[string][]string{
	DoctypeQuery: {
		"add_table", "update_table", "remove_table",
		"add_column", "update_column", "remove_column", "move_column",
		"update_filters",
		"fetch_tables", "fetch_columns", "fetch_column_values", "fetch_join_options",
		"run", "reset", "get_chart_name",
	},
	DoctypeChart: {
		"add_to_dashboard",
	},
	DoctypeDataSource: {
		"enqueue_sync_tables", "get_tables",
	},
	DoctypeDashboard: {
		"add_chart", "remove_item", "refresh_items",
	},
	DoctypeNotebook: {},
}

// WhitelistedMethods returns the controller methods callable on documents
// of a doctype. Unknown doctypes get an empty whitelist.
func WhitelistedMethods(doctype string) []string {
	return doctypeMethods[doctype]
}
