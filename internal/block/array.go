package block

import "slices"

// arrayContains reports whether x is present in the ascending, deduplicated
// slice arr, via binary search.
func arrayContains(arr []uint16, x uint16) bool {
	_, found := slices.BinarySearch(arr, x)
	return found
}

// arrayInsert inserts x into *arr if absent, keeping it sorted and unique.
// changed reports whether the set grew; overflow reports whether the
// insert would push the array past arrayMax elements (the caller must
// escalate to Bitmap and retry the insert there).
func arrayInsert(arr *[]uint16, x uint16) (changed, overflow bool) {
	i, found := slices.BinarySearch(*arr, x)
	if found {
		return false, false
	}
	if len(*arr)+1 > arrayMax {
		return false, true
	}
	*arr = slices.Insert(*arr, i, x)
	return true, false
}

// arrayRemove deletes x from *arr if present.
func arrayRemove(arr *[]uint16, x uint16) bool {
	i, found := slices.BinarySearch(*arr, x)
	if !found {
		return false
	}
	*arr = slices.Delete(*arr, i, i+1)
	return true
}

// arrayRank1 returns the count of elements strictly less than x.
func arrayRank1(arr []uint16, x int) int {
	i, _ := slices.BinarySearch(arr, uint16(min(x, 0xffff)))
	if x > 0xffff {
		return len(arr)
	}
	return i
}

// arraySelect1 returns the n-th (0-indexed) element, if present.
func arraySelect1(arr []uint16, n int) (uint16, bool) {
	if n >= len(arr) {
		return 0, false
	}
	return arr[n], true
}
