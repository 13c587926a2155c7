package types

// SkillSet maps a taxonomy category to the skill phrases found for it.
// Categories without matches are absent.
type SkillSet map[string][]string

// Count returns the total number of skills across all categories.
func (s SkillSet) Count() int {
	total := 0
	for _, skills := range s {
		total += len(skills)
	}
	return total
}

// Contains reports whether skill was found under category.
func (s SkillSet) Contains(category, skill string) bool {
	for _, found := range s[category] {
		if found == skill {
			return true
		}
	}
	return false
}
