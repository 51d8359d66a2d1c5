package paginator

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Paginate splits items into consecutive pages of pageSize; only the last
// page may be shorter. The pages share items' backing array.
func Paginate[T any](items []T, pageSize int) ([][]T, error) {
	if pageSize <= 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidArgument, "page size %d must be positive", pageSize)
	}
	pages := make([][]T, 0, (len(items)+pageSize-1)/pageSize)
	for start := 0; start < len(items); start += pageSize {
		end := min(start+pageSize, len(items))
		pages = append(pages, items[start:end:end])
	}
	return pages, nil
}
