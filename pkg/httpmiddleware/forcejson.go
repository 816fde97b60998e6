package httpmiddleware

import (
	"net/http"
	"strings"
)

// ForceJSON rejects requests whose Accept header does not admit a JSON
// response. The API is JSON-only; browsers and other clients asking for
// HTML get a 403 before reaching any handler.
func ForceJSON() Middleware {
	body := []byte(`{"success":false,"message":"API access only. Please use an API client."}`)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptsJSON(r.Header.Get("Accept")) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write(body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// acceptsJSON reports whether the Accept header admits application/json.
// An absent header counts as accepting anything.
func acceptsJSON(accept string) bool {
	if accept == "" {
		return true
	}
	for part := range strings.SplitSeq(accept, ",") {
		mt := strings.TrimSpace(part)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		switch mt {
		case "application/json", "application/*", "*/*":
			return true
		}
	}
	return false
}
