package pipeline

// Keyed is any record carrying an upstream reconciliation key.
type Keyed interface {
	Key() int64
}

// Partition splits a normalized batch against the pre-fetched existing rows:
// records whose key is already stored route to toUpdate, the rest to
// toCreate. Batch order is preserved. A key duplicated within the batch
// appears once in its bucket and the later occurrence wins.
func Partition[T Keyed](batch []T, existing map[int64]T) (toCreate, toUpdate []T) {
	createIdx := make(map[int64]int)
	updateIdx := make(map[int64]int)

	for _, item := range batch {
		k := item.Key()
		if _, ok := existing[k]; ok {
			if i, dup := updateIdx[k]; dup {
				toUpdate[i] = item
				continue
			}
			updateIdx[k] = len(toUpdate)
			toUpdate = append(toUpdate, item)
		} else {
			if i, dup := createIdx[k]; dup {
				toCreate[i] = item
				continue
			}
			createIdx[k] = len(toCreate)
			toCreate = append(toCreate, item)
		}
	}
	return toCreate, toUpdate
}

// keysOf collects the distinct keys of a batch in first-seen order.
func keysOf[T Keyed](batch []T) []int64 {
	seen := make(map[int64]struct{}, len(batch))
	out := make([]int64, 0, len(batch))
	for _, item := range batch {
		k := item.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// byKey indexes rows by their key.
func byKey[T Keyed](rows []T) map[int64]T {
	m := make(map[int64]T, len(rows))
	for _, r := range rows {
		m[r.Key()] = r
	}
	return m
}
