// Package stats serves historical per-map samples for teams and
// players, with alias resolution and an explicit-clear cache.
package stats

import "strings"

// Resolver maps provider team spellings to the canonical names used by
// the historical database. Resolution is deterministic and an unmapped
// name resolves to itself.
type Resolver struct {
	aliases map[string]string
}

// NewResolver creates a resolver over the given alias map. Keys are
// compared case-insensitively after trimming.
func NewResolver(aliases map[string]string) *Resolver {
	normalized := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		normalized[normalize(alias)] = canonical
	}
	return &Resolver{aliases: normalized}
}

// Resolve returns the canonical name for a provider spelling
func (r *Resolver) Resolve(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := r.aliases[normalize(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
