package insights

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Reloader is anything with a reloadable projection. Both resource kinds
// implement it, so a Refresh effect can name sibling resources of either
// kind.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Refresh is the typed post-mutation effect: it declares, next to each
// mutation call, exactly which projections are refetched once the mutation
// has resolved. This replaces the loose "remember to reload after you
// mutate" convention with something the compiler can see.
type Refresh struct {
	self     bool
	siblings []Reloader
}

// RefreshNone performs no refetch. The local projection will be stale until
// something else reloads it.
var RefreshNone = Refresh{}

// RefreshSelf refetches the mutated resource's own projection.
func RefreshSelf() Refresh {
	return Refresh{self: true}
}

// RefreshAlso refetches the resource's own projection plus the given
// siblings, in order. Use it when a mutation affects another bound list,
// e.g. deleting a notebook page must also reload the notebooks list.
func RefreshAlso(siblings ...Reloader) Refresh {
	return Refresh{self: true, siblings: siblings}
}

func (r Refresh) apply(ctx context.Context, self Reloader) error {
	if r.self {
		if err := self.Reload(ctx); err != nil {
			return err
		}
	}
	for _, sibling := range r.siblings {
		if err := sibling.Reload(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ListResource binds a remote collection of doctype rows to a local
// projection. The projection always reflects the last successful reload or
// mutation; there is no cache coherency beyond last write wins.
//
// All methods are safe for concurrent use; the TUI calls them from
// bubbletea command goroutines.
type ListResource[T any] struct {
	client  *Client
	doctype string
	opts    ListOptions

	mu       sync.RWMutex
	rows     []T
	loading  bool
	creating bool
}

func NewListResource[T any](client *Client, doctype string, opts ListOptions) *ListResource[T] {
	return &ListResource[T]{
		client:  client,
		doctype: doctype,
		opts:    opts,
	}
}

// Rows returns the current projection. The returned slice is shared; treat
// it as read-only.
func (l *ListResource[T]) Rows() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rows
}

// Len avoids copying when only the row count is needed.
func (l *ListResource[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rows)
}

func (l *ListResource[T]) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

func (l *ListResource[T]) Creating() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.creating
}

// Reload refetches the collection, replacing the projection on success. On
// failure the previous projection is kept.
func (l *ListResource[T]) Reload(ctx context.Context) error {
	l.setLoading(true)
	defer l.setLoading(false)

	var rows []T
	if err := l.client.GetList(ctx, &rows, l.doctype, l.opts); err != nil {
		return err
	}

	l.mu.Lock()
	l.rows = rows
	l.mu.Unlock()
	return nil
}

// Create inserts a document remotely and returns its assigned name, then
// applies the refresh effect. A server-side validation failure is returned
// as-is and no refresh runs.
func (l *ListResource[T]) Create(ctx context.Context, doc any, refresh Refresh) (string, error) {
	l.setCreating(true)
	defer l.setCreating(false)

	name, err := l.client.InsertDoc(ctx, doc)
	if err != nil {
		return "", err
	}
	return name, refresh.apply(ctx, l)
}

// Delete removes a document remotely, then applies the refresh effect. The
// server rejects deletes of missing or still-referenced documents.
func (l *ListResource[T]) Delete(ctx context.Context, name string, refresh Refresh) error {
	if err := l.client.DeleteDoc(ctx, l.doctype, name); err != nil {
		return err
	}
	return refresh.apply(ctx, l)
}

func (l *ListResource[T]) setLoading(v bool) {
	l.mu.Lock()
	l.loading = v
	l.mu.Unlock()
}

func (l *ListResource[T]) setCreating(v bool) {
	l.mu.Lock()
	l.creating = v
	l.mu.Unlock()
}

// DocumentResource binds a single remote document. Fetching is deduplicated:
// at most one fetch per instance is in flight at a time, and TriggerFetch
// while one is pending is a no-op rather than a queued second request.
type DocumentResource[T any] struct {
	client    *Client
	doctype   string
	name      string
	whitelist map[string]struct{}

	fetching atomic.Bool

	mu     sync.RWMutex
	doc    T
	loaded bool
}

// DocumentOption configures a DocumentResource at construction.
type DocumentOption func(whitelist map[string]struct{})

// WithMethods extends the doctype's default whitelist with additional
// remote method names callable through RunMethod.
func WithMethods(methods ...string) DocumentOption {
	return func(whitelist map[string]struct{}) {
		for _, m := range methods {
			whitelist[m] = struct{}{}
		}
	}
}

// NewDocumentResource binds doctype/name. defaultMethods seeds the method
// whitelist (callers usually pass models.WhitelistedMethods(doctype)).
func NewDocumentResource[T any](client *Client, doctype, name string, defaultMethods []string, opts ...DocumentOption) *DocumentResource[T] {
	whitelist := make(map[string]struct{}, len(defaultMethods))
	for _, m := range defaultMethods {
		whitelist[m] = struct{}{}
	}
	for _, opt := range opts {
		opt(whitelist)
	}
	return &DocumentResource[T]{
		client:    client,
		doctype:   doctype,
		name:      name,
		whitelist: whitelist,
	}
}

func (d *DocumentResource[T]) Name() string    { return d.name }
func (d *DocumentResource[T]) Doctype() string { return d.doctype }

// Doc returns the current field mapping. Zero value until the first
// successful fetch.
func (d *DocumentResource[T]) Doc() T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.doc
}

// Loaded reports whether at least one fetch has completed.
func (d *DocumentResource[T]) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Loading reports whether a fetch is currently in flight.
func (d *DocumentResource[T]) Loading() bool {
	return d.fetching.Load()
}

// TriggerFetch fetches the document unless a fetch is already in flight, in
// which case it performs zero remote calls and returns nil.
func (d *DocumentResource[T]) TriggerFetch(ctx context.Context) error {
	if !d.fetching.CompareAndSwap(false, true) {
		return nil
	}
	defer d.fetching.Store(false)

	var doc T
	if err := d.client.GetDoc(ctx, &doc, d.doctype, d.name); err != nil {
		return err
	}

	d.mu.Lock()
	d.doc = doc
	d.loaded = true
	d.mu.Unlock()
	return nil
}

// Reload is TriggerFetch under the Reloader interface, so a document
// resource can appear in a Refresh effect.
func (d *DocumentResource[T]) Reload(ctx context.Context) error {
	return d.TriggerFetch(ctx)
}

// SetValue writes one field remotely, then applies the refresh effect.
func (d *DocumentResource[T]) SetValue(ctx context.Context, field string, value any, refresh Refresh) error {
	if err := d.client.SetValue(ctx, d.doctype, d.name, field, value); err != nil {
		return err
	}
	return refresh.apply(ctx, d)
}

// Delete removes the bound document. The binding keeps its last projection;
// callers are expected to discard the resource afterwards.
func (d *DocumentResource[T]) Delete(ctx context.Context, siblings ...Reloader) error {
	if err := d.client.DeleteDoc(ctx, d.doctype, d.name); err != nil {
		return err
	}
	return Refresh{siblings: siblings}.apply(ctx, d)
}

// RunMethod invokes a whitelisted controller method on the document.
// Methods outside the whitelist fail with ErrMethodNotAllowed before any
// remote call is made.
func (d *DocumentResource[T]) RunMethod(ctx context.Context, dest any, method string, params map[string]any) error {
	if _, ok := d.whitelist[method]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrMethodNotAllowed, d.doctype, method)
	}
	return d.client.RunDocMethod(ctx, dest, d.doctype, d.name, method, params)
}
