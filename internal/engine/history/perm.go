package history

import (
	"slices"

	"github.com/dshills/edithistory/internal/engine/doc"
)

// A permutation perm reorders a list so that new[p] = old[perm[p]].

func identity(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// sortPerm sorts the indices of elems with a quicksort that only ever asks
// less(a, b). Equal elements may change relative order; the permutation is
// recorded, so replay does not depend on it.
func sortPerm(elems []doc.Value, desc bool) []int {
	perm := identity(len(elems))
	less := func(a, b int) bool {
		if desc {
			return doc.Less(elems[b], elems[a])
		}
		return doc.Less(elems[a], elems[b])
	}
	quicksort(perm, 0, len(perm)-1, less)
	return perm
}

func quicksort(perm []int, lo, hi int, less func(a, b int) bool) {
	for lo < hi {
		mid := lo + (hi-lo)/2
		perm[mid], perm[hi] = perm[hi], perm[mid]
		pivot := perm[hi]
		store := lo
		for i := lo; i < hi; i++ {
			if less(perm[i], pivot) {
				perm[i], perm[store] = perm[store], perm[i]
				store++
			}
		}
		perm[store], perm[hi] = perm[hi], perm[store]

		// Recurse into the smaller half.
		if store-lo < hi-store {
			quicksort(perm, lo, store-1, less)
			lo = store + 1
		} else {
			quicksort(perm, store+1, hi, less)
			hi = store - 1
		}
	}
}

func swapPerm(n, i, j int) []int {
	perm := identity(n)
	perm[i], perm[j] = perm[j], perm[i]
	return perm
}

// movePerm computes the permutation of a move operation over a set of
// indices. idxs must be distinct and in range; target is only used by
// moveTo.
func movePerm(shape moveShape, n int, idxs []int, target int) []int {
	sorted := slices.Clone(idxs)
	slices.Sort(sorted)

	switch shape {
	case moveUp:
		perm := identity(n)
		next := 0
		for _, idx := range sorted {
			if idx == next {
				next++
				continue
			}
			perm[idx-1], perm[idx] = perm[idx], perm[idx-1]
			next = idx
		}
		return perm

	case moveDown:
		perm := identity(n)
		next := n - 1
		for k := len(sorted) - 1; k >= 0; k-- {
			idx := sorted[k]
			if idx == next {
				next--
				continue
			}
			perm[idx], perm[idx+1] = perm[idx+1], perm[idx]
			next = idx
		}
		return perm

	case moveTop, moveBottom, moveTo:
		picked := make([]bool, n)
		for _, idx := range sorted {
			picked[idx] = true
		}
		rest := make([]int, 0, n-len(sorted))
		for k := 0; k < n; k++ {
			if !picked[k] {
				rest = append(rest, k)
			}
		}
		at := 0
		switch shape {
		case moveBottom:
			at = len(rest)
		case moveTo:
			at = min(max(target, 0), len(rest))
		}
		return slices.Insert(rest, at, sorted...)
	}
	panic("history: unknown move shape")
}

// isIdentity reports whether perm leaves every element in place.
func isIdentity(perm []int) bool {
	for p, src := range perm {
		if p != src {
			return false
		}
	}
	return true
}
