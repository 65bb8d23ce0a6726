package api

import (
	"net/http"
	"net/url"
	"strings"
)

// queryAPICookie names the cookie holding the selected Query API URL. The
// name contains a space, which net/http's cookie parser rejects, so the
// header is read and written directly.
const queryAPICookie = "Query API"

func queryAPIFromRequest(r *http.Request) string {
	for _, header := range r.Header.Values("Cookie") {
		for _, part := range strings.Split(header, ";") {
			name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
			if !ok || name != queryAPICookie {
				continue
			}
			if v, err := url.PathUnescape(strings.Trim(value, `"`)); err == nil {
				return v
			}
			return value
		}
	}
	return ""
}

func setQueryAPICookie(w http.ResponseWriter, queryAPI, path string) {
	if path == "" {
		path = "/"
	}
	w.Header().Add("Set-Cookie", queryAPICookie+"="+url.PathEscape(queryAPI)+"; Path="+path+"; SameSite=Lax")
}
