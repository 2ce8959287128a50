package history

import (
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dshills/edithistory/internal/engine/doc"
)

func TestMovePerm(t *testing.T) {
	tests := []struct {
		name   string
		shape  moveShape
		n      int
		idxs   []int
		target int
		want   []int
	}{
		{"up single", moveUp, 4, []int{2}, 0, []int{0, 2, 1, 3}},
		{"up at head", moveUp, 4, []int{0}, 0, []int{0, 1, 2, 3}},
		{"up packed block", moveUp, 5, []int{0, 1, 3}, 0, []int{0, 1, 3, 2, 4}},
		{"up gap", moveUp, 5, []int{2, 4}, 0, []int{0, 2, 1, 4, 3}},
		{"down single", moveDown, 4, []int{1}, 0, []int{0, 2, 1, 3}},
		{"down at tail", moveDown, 4, []int{3}, 0, []int{0, 1, 2, 3}},
		{"down packed block", moveDown, 5, []int{1, 3, 4}, 0, []int{0, 2, 1, 3, 4}},
		{"top", moveTop, 5, []int{3, 1}, 0, []int{1, 3, 0, 2, 4}},
		{"bottom", moveBottom, 5, []int{0, 2}, 0, []int{1, 3, 4, 0, 2}},
		{"to forward", moveTo, 4, []int{0}, 2, []int{1, 2, 0, 3}},
		{"to backward", moveTo, 4, []int{3}, 0, []int{3, 0, 1, 2}},
		{"to same place", moveTo, 4, []int{1}, 1, []int{0, 1, 2, 3}},
		{"to block clamps", moveTo, 5, []int{0, 1}, 9, []int{2, 3, 4, 0, 1}},
		{"to block middle", moveTo, 6, []int{0, 5}, 2, []int{1, 2, 0, 5, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := movePerm(tt.shape, tt.n, tt.idxs, tt.target)
			if !slices.Equal(got, tt.want) {
				t.Errorf("movePerm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortPermIsStrict(t *testing.T) {
	elems := []doc.Value{doc.Int(2), doc.Int(1), doc.Int(2), doc.Int(1)}
	perm := sortPerm(elems, false)
	var sorted []int64
	for _, src := range perm {
		sorted = append(sorted, int64(elems[src].(doc.Int)))
	}
	if !slices.Equal(sorted, []int64{1, 1, 2, 2}) {
		t.Errorf("sorted = %v, want [1 1 2 2]", sorted)
	}
	if !slices.Equal(doc.Inverse(doc.Inverse(perm)), perm) {
		t.Error("perm is not a permutation")
	}
}

func TestPermutationsAreBijections(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every move shape yields a permutation", prop.ForAll(
		func(n int, picks []int, shape uint8, target int) bool {
			var idxs []int
			for _, p := range picks {
				idxs = append(idxs, p%n)
			}
			slices.Sort(idxs)
			idxs = slices.Compact(idxs)
			perm := movePerm(moveShape(shape%5), n, idxs, target)
			seen := make([]bool, n)
			for _, src := range perm {
				if src < 0 || src >= n || seen[src] {
					return false
				}
				seen[src] = true
			}
			return len(perm) == n
		},
		gen.IntRange(1, 40),
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.UInt8(),
		gen.IntRange(0, 50),
	))

	properties.Property("sort perm orders values", prop.ForAll(
		func(vals []int32, desc bool) bool {
			elems := make([]doc.Value, len(vals))
			for i, v := range vals {
				elems[i] = doc.Int(v)
			}
			perm := sortPerm(elems, desc)
			for k := 1; k < len(perm); k++ {
				a, b := elems[perm[k-1]], elems[perm[k]]
				if (!desc && doc.Less(b, a)) || (desc && doc.Less(a, b)) {
					return false
				}
			}
			return len(perm) == len(vals)
		},
		gen.SliceOf(gen.Int32()),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
