package chi

import "net/http"

// CORSMiddleware attaches permissive CORS headers to every response, error
// responses included. The API is meant to be called from any static frontend,
// so the headers do not depend on the Origin header being present.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}
