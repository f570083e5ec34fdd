package session

// Items handled here are numbered by position: the item at index i carries
// identifier i+1. Every function keeps that true.

// Append adds item with the next identifier, N+1.
func Append[T any](items []T, item T, setID func(*T, int)) []T {
	setID(&item, len(items)+1)
	return append(items, item)
}

// Renumber reassigns identifiers 1..len(items) in slice order.
func Renumber[T any](items []T, setID func(*T, int)) {
	for i := range items {
		setID(&items[i], i+1)
	}
}

// RemoveID drops the item numbered id and renumbers the survivors 1..N-1
// without changing their order.
//
// aux holds per-item state keyed by the old identifiers. Each surviving entry
// is moved to its item's new identifier and the removed item's entry is
// dropped. The mapping follows the item itself, so two items with equal
// contents never trade state.
//
// Out-of-range ids leave both inputs untouched and report false.
func RemoveID[T any, V any](items []T, aux map[int]V, id int, setID func(*T, int)) ([]T, map[int]V, bool) {
	if id < 1 || id > len(items) {
		return items, aux, false
	}

	out := make([]T, 0, len(items)-1)
	var remapped map[int]V
	if aux != nil {
		remapped = make(map[int]V, len(aux))
	}

	for i, item := range items {
		oldID := i + 1
		if oldID == id {
			continue
		}
		newID := len(out) + 1
		setID(&item, newID)
		out = append(out, item)
		if v, ok := aux[oldID]; ok {
			remapped[newID] = v
		}
	}
	return out, remapped, true
}

// Contiguous reports whether ids are exactly 1..len(ids) in order.
func Contiguous(ids []int) bool {
	for i, id := range ids {
		if id != i+1 {
			return false
		}
	}
	return true
}
