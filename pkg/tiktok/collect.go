package tiktok

// pageFetch retrieves one page at the given cursor and reports the items,
// the cursor for the next page, and whether more pages exist. Cursors are
// passed back upstream verbatim.
type pageFetch[T any] func(cursor string) (items []T, next string, hasMore bool, err error)

// collectPages drains a cursor-paginated endpoint until the upstream reports
// no more pages or limit items have been collected. A non-positive limit
// means no cap: collection runs to exhaustion. On error the items gathered
// so far are returned alongside it, so callers can keep partial progress.
func collectPages[T any](fetch pageFetch[T], limit int) ([]T, error) {
	var collected []T
	cursor := "0"

	for {
		items, next, hasMore, err := fetch(cursor)
		if err != nil {
			return collected, err
		}

		for _, item := range items {
			collected = append(collected, item)
			if limit > 0 && len(collected) >= limit {
				return collected, nil
			}
		}

		if !hasMore {
			return collected, nil
		}
		cursor = next
	}
}
