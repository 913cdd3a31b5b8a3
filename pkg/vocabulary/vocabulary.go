// Package vocabulary defines the controlled-vocabulary model and the
// resolver contract used to turn term URIs into canonical labels and
// units. Implementations live in internal/iovocab.
package vocabulary

import (
	"context"
)

// Term is a controlled-vocabulary entry identified by its URI.
// Once resolved, a term is treated as an immutable fact for the
// lifetime of the process.
type Term struct {
	// URI identifies the term, harmonized (http scheme, trailing slash).
	URI string `json:"uri"`

	// URN is the short identifier of the term, e.g. "SDN:P01::TEMPPR01".
	URN string `json:"urn,omitempty"`

	// PrefLabel is the preferred human-readable label.
	PrefLabel string `json:"prefLabel"`

	// Unit is the canonical unit of measurement label.
	Unit string `json:"unit,omitempty"`

	// StandardName is the Climate-and-Forecast standard name, when the
	// authority provides one.
	StandardName string `json:"standard_name,omitempty"`
}

// IsZero reports whether the term carries no resolved content.
func (t Term) IsZero() bool {
	return t.PrefLabel == "" && t.Unit == "" && t.StandardName == ""
}

// Resolver resolves term URIs against a term authority.
// Implementations must guarantee that each distinct URI triggers at most
// one external fetch per run, even under concurrent resolution.
type Resolver interface {
	// Resolve returns the term for a single URI.
	Resolve(ctx context.Context, uri string) (Term, error)

	// ResolveBatch resolves many URIs, deduplicating them and running
	// lookups on a bounded worker pool. The returned map is keyed by the
	// harmonized URI. A batch fails only if any single URI fails after
	// cache fallback.
	ResolveBatch(ctx context.Context, uris []string) (map[string]Term, error)
}

// Cache stores resolved terms. Entries are immutable once stored;
// the only mutation is an explicit Clear by the caller.
type Cache interface {
	// Get returns the cached term for a harmonized URI.
	Get(uri string) (Term, bool, error)

	// Put stores a term. Storing an already-present URI is a no-op,
	// keeping entries append-only.
	Put(term Term) error

	// Clear removes all entries. Maintenance operation.
	Clear() error

	// Close releases any underlying resources.
	Close() error
}
