package insights

// ListOptions narrows a list fetch. The zero value fetches every field of
// every row in server default order.
type ListOptions struct {
	// Fields to project into each row. Empty means all fields.
	Fields []string
	// Filters as field -> exact value, or field -> [operator, value]
	// (e.g. {"status": ["!=", "archived"]}).
	Filters map[string]any
	// OrderBy clause, e.g. "title asc".
	OrderBy string
	// Start is the row offset.
	Start int
	// Limit caps the page size. Zero means the server default.
	Limit int
}

func (o ListOptions) params(doctype string) map[string]any {
	params := map[string]any{"doctype": doctype}
	if len(o.Fields) > 0 {
		params["fields"] = o.Fields
	}
	if len(o.Filters) > 0 {
		params["filters"] = o.Filters
	}
	if o.OrderBy != "" {
		params["order_by"] = o.OrderBy
	}
	if o.Start > 0 {
		params["limit_start"] = o.Start
	}
	if o.Limit > 0 {
		params["limit_page_length"] = o.Limit
	}
	return params
}
