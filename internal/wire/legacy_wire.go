package wire

import (
	"net/http"

	"woodeoo-auth/internal/routes"

	"github.com/go-chi/chi/v5"
)

// wireLegacy permanently redirects historical page paths to their current
// location, keeping the query string.
func wireLegacy(r chi.Router, table routes.Table) {
	for path, name := range table.Legacy() {
		target := table.Path(name)
		r.Get(path, func(w http.ResponseWriter, req *http.Request) {
			location := target
			if req.URL.RawQuery != "" {
				location += "?" + req.URL.RawQuery
			}
			http.Redirect(w, req, location, http.StatusPermanentRedirect)
		})
	}
}
