// Package httpapi exposes the search driver over HTTP. It is an external,
// non-core collaborator: one handler, no router dependency, since a single
// endpoint doesn't earn its own framework.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/wizenheimer/sitesearch"
)

// Handler serves GET /search?q=<query>, returning the ranked results as a
// JSON array. A missing or blank q yields an empty array, not an error.
func Handler(driver *sitesearch.Driver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		query := r.URL.Query().Get("q")
		results := driver.Query(query)
		if results == nil {
			results = []sitesearch.SearchResult{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(results); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
