package feed

// CompareIDs orders two post IDs chronologically.
//
// Post IDs are decimal strings without leading zeros, so a shorter ID is
// always older and equal-length IDs order lexicographically. Comparing this
// way, rather than parsing, is a load-bearing invariant: IDs exceed the
// safe-integer range of some consumers and must never go through a numeric
// type. Returns -1, 0 or 1.
func CompareIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// IDLess reports whether a is chronologically before b.
func IDLess(a, b string) bool { return CompareIDs(a, b) < 0 }
