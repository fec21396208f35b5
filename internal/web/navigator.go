package web

import "net/http"

const (
	htmxHeader         = "HX-Request"
	htmxRedirectHeader = "HX-Redirect"
)

// httpNavigator completes a request by redirecting the browser.
type httpNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

// Navigate answers htmx requests with HX-Redirect and everything else with a
// 303 so the browser follows a POST with a GET.
func (n httpNavigator) Navigate(path string) {
	if n.r.Header.Get(htmxHeader) == "true" {
		n.w.Header().Set(htmxRedirectHeader, path)
		n.w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}
