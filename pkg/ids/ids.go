// Package ids holds helpers for lists of numeric row ids.
package ids

// Unique drops repeated ids, keeping the order of first occurrence.
func Unique(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
