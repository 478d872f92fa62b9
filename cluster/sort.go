package cluster

import "sort"

// sortBySubmitThenID sorts ids ascending by the referenced job's submit
// time, breaking ties by lexicographic id — the stable order spec.md §4.2.2
// requires.
func sortBySubmitThenID(js JobSet, ids []string) {
	sort.Slice(ids, func(i, k int) bool {
		a, b := js[ids[i]], js[ids[k]]
		if a.SubmitTime != b.SubmitTime {
			return a.SubmitTime < b.SubmitTime
		}
		return a.ID < b.ID
	})
}

func sortStrings(ids []string) {
	sort.Strings(ids)
}
