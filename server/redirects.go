package server

import (
	"mime"
	"net/http"
	"net/url"
)

// redirect sends the browser to path. HTMX requests get an HX-Redirect instruction instead of
// a 303 so the swap target is not replaced by the destination page.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError redirects with the message in the error query parameter, which the
// login view displays.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, message string) {
	redirect(w, r, path+"?"+url.Values{"error": {message}}.Encode())
}

func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// isFormPost reports whether the body is an HTML form rather than JSON.
func isFormPost(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}
