package puzzle

import "charnnections/internal/store"

// Verdict never says how close an incorrect guess was; Group is set only
// when Correct is true.
type Verdict struct {
	Correct bool
	Group   *store.PuzzleGroup
}

// Check compares the candidate ids, as a set, with each group's members.
func Check(groups []store.PuzzleGroup, ids []int64) (Verdict, error) {
	if len(ids) != GroupSize {
		return Verdict{}, invalidf("exactly %d character ids are required, got %d", GroupSize, len(ids))
	}

	candidate := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		candidate[id] = struct{}{}
	}

	for i := range groups {
		if sameMembers(candidate, groups[i].Characters) {
			group := groups[i]
			return Verdict{Correct: true, Group: &group}, nil
		}
	}
	return Verdict{}, nil
}

func sameMembers(candidate map[int64]struct{}, members []store.CharacterRef) bool {
	set := make(map[int64]struct{}, len(members))
	for _, c := range members {
		set[c.ID] = struct{}{}
	}
	if len(set) != len(candidate) {
		return false
	}
	for id := range set {
		if _, ok := candidate[id]; !ok {
			return false
		}
	}
	return true
}
