package api

import (
	"net/http"
	"strings"
)

// StaticHandler serves the front-end bundle under /static/. Requests for an
// index.html are answered in place rather than redirected to the directory,
// so FrontendEntry resolves with a single hop from the root redirect.
func StaticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.StripPrefix("/static", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/index.html") {
			u := *r.URL
			u.Path = strings.TrimSuffix(u.Path, "index.html")
			u.RawPath = ""
			r2 := r.Clone(r.Context())
			r2.URL = &u
			files.ServeHTTP(w, r2)
			return
		}
		files.ServeHTTP(w, r)
	}))
}
