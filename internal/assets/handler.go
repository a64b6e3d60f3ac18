package assets

import (
	"bytes"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

const immutable = "public, max-age=31536000, immutable"

// Handler serves files from fsys. Requests for a fingerprinted name from m
// are served with a long-lived cache policy; source names are served with
// no-cache. The request path must already have the mount prefix stripped.
func Handler(fsys fs.FS, m *Manifest) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		cache := "no-cache"
		if m != nil {
			if src, ok := m.Source(name); ok {
				name = src
				cache = immutable
			}
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil || name == "" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", cache)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
	})
}
