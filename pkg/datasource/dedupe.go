package datasource

// DedupeByID collapses records sharing an id. The last occurrence
// wins and keeps the position of the first, so a feed built by
// concatenating exports shows each record once, with its newest
// content, in its original place. Records with an empty id pass
// through untouched.
func DedupeByID[T any](records []T, id func(T) string) []T {
	if len(records) < 2 {
		return records
	}

	index := make(map[string]int, len(records))
	out := make([]T, 0, len(records))
	for _, rec := range records {
		key := id(rec)
		if key == "" {
			out = append(out, rec)
			continue
		}
		if at, seen := index[key]; seen {
			out[at] = rec
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}
