package tool

import (
	"context"

	"webscout/internal/domain"
)

// SearchBackend performs one query against a metasearch engine and
// returns up to numResults hits in engine ranking order.
type SearchBackend interface {
	Search(ctx context.Context, query string, numResults int) ([]domain.SearchResultItem, error)
}
