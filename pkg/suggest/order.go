package suggest

// Order returns the display permutation of indices 0..n-1: selected records
// first, suggested-but-not-selected records next, everything else after.
//
// Selected records keep the relative order of the selection sequence itself;
// the other two partitions keep original store order. The function never
// reorders within a partition, so recomputing it after every change to
// selection, suggestions, or the collection cannot make the listing thrash.
// Out-of-range and duplicate indices in the inputs are ignored.
func Order(n int, selected, suggested []int) []int {
	if n <= 0 {
		return nil
	}

	suggestedSet := make(map[int]bool, len(suggested))
	for _, i := range suggested {
		if i >= 0 && i < n {
			suggestedSet[i] = true
		}
	}

	out := make([]int, 0, n)
	placed := make(map[int]bool, n)

	for _, i := range selected {
		if i >= 0 && i < n && !placed[i] {
			out = append(out, i)
			placed[i] = true
		}
	}
	for i := 0; i < n; i++ {
		if suggestedSet[i] && !placed[i] {
			out = append(out, i)
			placed[i] = true
		}
	}
	for i := 0; i < n; i++ {
		if !placed[i] {
			out = append(out, i)
		}
	}
	return out
}
