package store

import "context"

// Reader is the read contract the retrieval service depends on.
type Reader interface {
	// ListAll returns every record ordered by section, then title.
	ListAll(ctx context.Context) ([]Record, error)
}

// Store defines the full set of content operations.
type Store interface {
	Reader

	Get(ctx context.Context, id string) (*Record, error)
	ListBySection(ctx context.Context, section string) ([]Record, error)
	ListByCategory(ctx context.Context, category string) ([]Record, error)
	Sections(ctx context.Context) ([]string, error)
	Search(ctx context.Context, term string) ([]Record, error)
	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, rec Record) (*Record, error)
	Update(ctx context.Context, rec Record) error
	Delete(ctx context.Context, id string) error
	// ReplaceAll swaps the whole collection in one transaction.
	ReplaceAll(ctx context.Context, recs []Record) error

	// Meta and SetMeta keep small bookkeeping values such as the seed fingerprint.
	Meta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error

	Close() error
}
