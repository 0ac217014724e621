package htmx

import "net/http"

// IsHTMX returns true if the request originated from HTMX.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// TriggerName returns the name of the form field that fired the request.
func TriggerName(r *http.Request) string {
	return r.Header.Get(HeaderHXTriggerName)
}
