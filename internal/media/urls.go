// Package media turns stored media keys into public URLs. Keys are
// opaque paths in the media store; nothing here touches bytes.
package media

import "strings"

// Resolver rewrites storage keys into absolute URLs against a CDN or
// media host base.
type Resolver struct {
	baseURL string
}

// NewResolver creates a resolver. baseURL may carry a trailing slash.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// URL resolves one storage key. Empty keys and already-absolute URLs
// pass through unchanged.
func (r *Resolver) URL(key string) string {
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	return r.baseURL + "/" + strings.TrimPrefix(key, "/")
}

// URLs resolves a slice of keys in order.
func (r *Resolver) URLs(keys []string) []string {
	if keys == nil {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = r.URL(k)
	}
	return out
}
