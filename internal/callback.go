package internal

import (
	"net/http"
	"net/url"
	"strings"
)

// oauthParams are stripped from a request URL when it is turned into a callback URL.
var oauthParams = []string{"code", "state", "error", "error_code", "error_reason", "error_description"}

// CallbackURLFromRequest rebuilds the URL of r as a callback URL: OAuth parameters
// removed and param set to 1. Both legs of a login (the page that redirects to the
// dialog and the callback itself) yield the same URL, so the code exchange uses the
// redirect URI the dialog was opened with. Returns DefaultCallbackURL when r has no host.
func CallbackURLFromRequest(r *http.Request, param string) string {
	if r == nil || r.Host == "" || r.URL == nil {
		return DefaultCallbackURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	q := r.URL.Query()
	for _, p := range oauthParams {
		q.Del(p)
	}
	if param != "" {
		q.Set(param, "1")
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
