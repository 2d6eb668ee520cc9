package cookies

import (
	"context"

	"github.com/e0as/mobile-bridge/internal/log"
)

// Extractor probes an ordered list of origins for an ordered list of
// candidate cookie names and returns the first match. The order is a
// contract: cookies set under one origin variant are not always visible
// under another, and the backend's cookie name has changed across
// deployments, so the full cross product is searched deterministically.
type Extractor struct {
	store   Store
	origins []string
	names   []string
}

// NewExtractor creates an extractor over the given store and probe lists
func NewExtractor(store Store, origins, names []string) *Extractor {
	return &Extractor{store: store, origins: origins, names: names}
}

// Extract returns the first (origin, name) match in probe order, or false
// when the whole cross product is empty. A query failure against a single
// origin is treated as "no cookies at that origin" and the search
// continues; extraction itself never fails.
func (e *Extractor) Extract(ctx context.Context) (Cookie, bool) {
	for _, origin := range e.origins {
		found, err := e.store.Cookies(ctx, origin)
		if err != nil {
			log.LogTraceWithFields("cookies", "Cookie query failed, trying next origin", map[string]any{
				"origin": origin,
				"error":  err.Error(),
			})
			continue
		}
		if len(found) == 0 {
			continue
		}

		log.LogTraceWithFields("cookies", "Cookies visible at origin", map[string]any{
			"origin": origin,
			"count":  len(found),
		})

		for _, name := range e.names {
			if value, ok := found[name]; ok && value != "" {
				log.LogDebugWithFields("cookies", "Session cookie extracted", map[string]any{
					"origin": origin,
					"name":   name,
				})
				return Cookie{Name: name, Value: value}, true
			}
		}
	}

	log.LogDebugWithFields("cookies", "No session cookie found at any origin", map[string]any{
		"origins": len(e.origins),
		"names":   len(e.names),
	})
	return Cookie{}, false
}
