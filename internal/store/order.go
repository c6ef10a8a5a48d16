package store

// OrderByIDs returns the entities matching ids in the order of ids, dropping
// ids with no entity. Duplicate ids yield duplicate entries.
func OrderByIDs(entities []Entity, ids []int64) []Entity {
	byID := make(map[int64]Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	ordered := make([]Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered
}
