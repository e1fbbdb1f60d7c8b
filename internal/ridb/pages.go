package ridb

import "context"

// PageFunc fetches one page of items at the given offset and reports the
// total count claimed by the source's envelope metadata. A zero total means
// the source did not report one.
type PageFunc[T any] func(ctx context.Context, limit, offset int) ([]T, int, error)

// WalkPages drives offset/limit pagination over a listing endpoint, invoking
// visit for every item in source order. The walk is lazy, finite, and
// non-restartable: it advances the offset by the count actually returned
// (the source may return fewer than limit) and stops when a page comes back
// empty or the offset reaches the reported total. A missing total falls back
// to empty-page termination. An error from fetch or visit ends the walk.
func WalkPages[T any](ctx context.Context, pageSize, offset int, fetch PageFunc[T], visit func(T) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		items, total, err := fetch(ctx, pageSize, offset)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for _, item := range items {
			if err := visit(item); err != nil {
				return err
			}
		}
		offset += len(items)
		if total > 0 && offset >= total {
			return nil
		}
	}
}
