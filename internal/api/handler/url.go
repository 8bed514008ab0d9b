// Package handler provides HTTP handlers for the observation EDR API.
package handler

import "net/http"

// requestScheme returns the request scheme, honoring the X-Forwarded-Proto
// header set by any proxy in front of the service.
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// baseURL reconstructs the externally visible service root URL. The host is
// expected to be set from X-Forwarded-Host by any proxy in front.
func baseURL(r *http.Request) string {
	return requestScheme(r) + "://" + r.Host
}

// collectionsURL returns the collections root URL with a trailing slash, so
// collection links can be built by appending the collection id.
func collectionsURL(r *http.Request) string {
	return baseURL(r) + "/collections/"
}
