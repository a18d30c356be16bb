// Package paging drives MLflow search endpoints, which return a page of
// items plus an opaque continuation token, as single flat sequences.
package paging

import (
	"iter"

	"github.com/acryldata/datahub-mlflow-source/pkg/utils"
)

type Page[T any] struct {
	Items         []T
	NextPageToken *string
}

// FetchFunc returns one page for a continuation token. The first call is
// made with an empty token.
type FetchFunc[T any] func(pageToken string) (*Page[T], error)

// Traverse yields every item across all pages in page order. The next page
// is not fetched until the current page's items have been consumed, and
// iteration stops at the first empty or missing continuation token. Fetch
// errors are yielded as-is and end the sequence.
func Traverse[T any](fetch FetchFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		token := ""
		for {
			page, err := fetch(token)
			if err != nil {
				var zero T
				yield(zero, err)

				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}

			if utils.IsNilOrEmptyString(page.NextPageToken) {
				return
			}
			token = *page.NextPageToken
		}
	}
}

// Collect gathers a traversal into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var items []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}
