package storage

import (
	"context"
	"time"
)

// writeInBatches commits items in consecutive chunks of at most size. Each
// commit is awaited before the next one starts and gets its own timeout
// (none when timeout <= 0); a failing chunk stops the loop and earlier
// chunks stay committed.
func writeInBatches[T any](ctx context.Context, items []T, size int, timeout time.Duration, commit func(context.Context, []T) error) (int, error) {
	written := 0
	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		if err := commitWithTimeout(ctx, timeout, items[start:end], commit); err != nil {
			return written, err
		}
		written += end - start
	}
	return written, nil
}

func commitWithTimeout[T any](ctx context.Context, timeout time.Duration, chunk []T, commit func(context.Context, []T) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return commit(ctx, chunk)
}

// deleteInBatches repeatedly fetches up to size matching items and deletes
// them, until a fetch returns fewer than size. It returns the number deleted.
func deleteInBatches[T any](ctx context.Context, size int, fetch func(context.Context, int) ([]T, error), remove func(context.Context, []T) error) (int, error) {
	deleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		batch, err := fetch(ctx, size)
		if err != nil {
			return deleted, err
		}
		if len(batch) == 0 {
			return deleted, nil
		}
		if err := remove(ctx, batch); err != nil {
			return deleted, err
		}
		deleted += len(batch)
		if len(batch) < size {
			return deleted, nil
		}
	}
}
