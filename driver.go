package sitesearch

// Driver is the thin request→response glue the specification calls the
// Search Driver: it owns a Store's lifecycle and exposes a single
// query-in, results-out function. It deliberately knows nothing about
// HTTP or CLI concerns — those are external collaborators (see the
// httpapi package and cmd/sitesearch) that hold a Driver and call Query.
type Driver struct {
	store Store
}

// NewDriver wraps an already-open Store.
func NewDriver(store Store) *Driver {
	return &Driver{store: store}
}

// Query runs one free-text query against the underlying store and
// returns its ranked results. Query errors never propagate to callers;
// an empty slice is the normal "no match" signal.
func (d *Driver) Query(query string) []SearchResult {
	return Search(d.store, query)
}
