package tutor

import "sort"

// Recommend returns up to limit tutors (all of them if limit <= 0) of which a subject contains
// one of subjects, best rated first.
func Recommend(tutors []Tutor, subjects []string, limit int) []Tutor {
	recommended := make([]Tutor, 0)
	for _, t := range tutors {
		for _, s := range subjects {
			if t.Teaches(s) {
				recommended = append(recommended, t)
				break
			}
		}
	}
	sortByRating(recommended)
	if limit > 0 && len(recommended) > limit {
		recommended = recommended[:limit]
	}
	return recommended
}

func sortByRating(tutors []Tutor) {
	sort.SliceStable(tutors, func(i, j int) bool { return tutors[i].Rating > tutors[j].Rating })
}
