// Package insights is a client SDK for an Insights reporting backend.
//
// The SDK is built in three layers:
//
//   - pkg/connection owns the wire: an HTTP transport that POSTs to
//     /api/method/<dotted.name> and a websocket transport that correlates
//     requests with responses by id and surfaces server-pushed document
//     events.
//   - The root package wraps a connection into a [Client] with typed
//     document and list operations, plus resource bindings
//     ([ListResource], [DocumentResource]) that carry a local projection,
//     loading flags, and explicit post-mutation refresh effects.
//   - pkg/tui renders bound resources as an interactive terminal
//     application: collection views, detail editors, a type-selector
//     dialog, and toast notifications.
//
// A minimal session:
//
//	client, err := insights.New("http://localhost:8000")
//	if err != nil { ... }
//	defer client.Close(ctx)
//
//	if err := client.Login(ctx, "admin", "admin"); err != nil { ... }
//
//	notebooks := insights.NewListResource[models.Notebook](client, models.DoctypeNotebook, insights.ListOptions{
//		Fields:  []string{"name", "title"},
//		OrderBy: "title asc",
//	})
//	if err := notebooks.Reload(ctx); err != nil { ... }
package insights
