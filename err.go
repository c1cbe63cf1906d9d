package insights

import "errors"

var (
	// ErrMethodNotAllowed is returned by DocumentResource.RunMethod when
	// the method is not in the doctype's whitelist.
	ErrMethodNotAllowed = errors.New("method not whitelisted for doctype")

	// ErrUncategorizedNotebookMissing is returned when a notebook-backed
	// query is requested but the default "Uncategorized" notebook does not
	// exist on the server.
	ErrUncategorizedNotebookMissing = errors.New(`default notebook "Uncategorized" not found`)

	// ErrNoName is returned when a create call succeeds but the server
	// response carries no document name to bind to.
	ErrNoName = errors.New("created document has no name")
)
