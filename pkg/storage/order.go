package storage

// OrderByIDs returns the facilities of found arranged in the order of ids.
// IDs with no matching facility are skipped.
func OrderByIDs(found []Facility, ids []string) []Facility {
	byID := make(map[string]Facility, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}
	out := make([]Facility, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f)
		}
	}
	return out
}
