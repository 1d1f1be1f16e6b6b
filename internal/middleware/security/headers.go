package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HeaderPolicy is the fixed set of response headers the API attaches to every
// reply. Empty fields are not sent.
type HeaderPolicy struct {
	ContentSecurity    string
	FrameOptions       string
	ContentTypeOptions string
	Referrer           string
	Permissions        string
	Opener             string
	Resource           string

	// HSTS is only sent on TLS connections.
	HSTS           time.Duration
	HSTSSubdomains bool

	// Responses under NoStorePrefix carry ledger data and must not be cached.
	NoStorePrefix string
}

// DefaultHeaderPolicy suits the JSON API plus the bundled single page app
// served from the same origin.
func DefaultHeaderPolicy() HeaderPolicy {
	return HeaderPolicy{
		ContentSecurity: strings.Join([]string{
			"default-src 'self'",
			"script-src 'self'",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data:",
			"connect-src 'self'",
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
		}, "; "),
		FrameOptions:       "DENY",
		ContentTypeOptions: "nosniff",
		Referrer:           "strict-origin-when-cross-origin",
		Permissions:        "geolocation=(), microphone=(), camera=(), payment=()",
		Opener:             "same-origin",
		Resource:           "same-site",
		HSTS:               365 * 24 * time.Hour,
		HSTSSubdomains:     true,
		NoStorePrefix:      "/api/",
	}
}

type headerPair struct{ name, value string }

// Handler returns middleware applying p. The header list is built once.
func (p HeaderPolicy) Handler(next http.Handler) http.Handler {
	var fixed []headerPair
	add := func(name, value string) {
		if value != "" {
			fixed = append(fixed, headerPair{name, value})
		}
	}
	add("Content-Security-Policy", p.ContentSecurity)
	add("X-Frame-Options", p.FrameOptions)
	add("X-Content-Type-Options", p.ContentTypeOptions)
	add("Referrer-Policy", p.Referrer)
	add("Permissions-Policy", p.Permissions)
	add("Cross-Origin-Opener-Policy", p.Opener)
	add("Cross-Origin-Resource-Policy", p.Resource)

	var hsts string
	if secs := int64(p.HSTS / time.Second); secs > 0 {
		hsts = fmt.Sprintf("max-age=%d", secs)
		if p.HSTSSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range fixed {
			h.Set(kv.name, kv.value)
		}
		if hsts != "" && r.TLS != nil {
			h.Set("Strict-Transport-Security", hsts)
		}
		if p.NoStorePrefix != "" && strings.HasPrefix(r.URL.Path, p.NoStorePrefix) {
			h.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

// CacheStatic marks frontend bundle responses as publicly cacheable for maxAge.
func CacheStatic(maxAge time.Duration) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", int64(maxAge/time.Second))
	return func(next http.Handler) http.Handler {
		if maxAge <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
