package rotation

// StructuralTemplates is the closed set of document skeletons rotated
// across publications to avoid detectable structural repetition.
var StructuralTemplates = []string{
	"COMPASS",   // Orientation-first: map the area, then drill into sections
	"CATALYST",  // Problem/solution framing with a call to action per section
	"ATLAS",     // Encyclopedic: numbered sections with uniform depth
	"BEACON",    // Single hero topic with satellite mini-sections
	"BLUEPRINT", // Step-by-step walkthrough structure
	"MOSAIC",    // Many short vignettes stitched by transitions
}

// templateExclusionWindow is how many of the most recent templates are
// barred from reuse.
const templateExclusionWindow = 2

// TemplateValidation reports whether a candidate template may be used given
// the recent publication history.
type TemplateValidation struct {
	Valid     bool
	Excluded  []string
	Available []string
}

// ValidateTemplate checks a candidate against the no-repeat-in-last-2 rule.
// The caller supplies the history explicitly; only its tail matters.
func ValidateTemplate(candidate string, recentHistory []string) TemplateValidation {
	excluded := recentTail(recentHistory, templateExclusionWindow)

	excludedSet := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		excludedSet[id] = true
	}

	var available []string
	for _, id := range StructuralTemplates {
		if !excludedSet[id] {
			available = append(available, id)
		}
	}

	valid := false
	for _, id := range available {
		if id == candidate {
			valid = true
			break
		}
	}

	return TemplateValidation{
		Valid:     valid,
		Excluded:  excluded,
		Available: available,
	}
}

// NextTemplate picks the first template permitted by the recent history,
// preferring the one used least recently.
func NextTemplate(recentHistory []string) string {
	validation := ValidateTemplate("", recentHistory)
	if len(validation.Available) == 0 {
		return StructuralTemplates[0]
	}

	lastSeen := make(map[string]int, len(recentHistory))
	for i, id := range recentHistory {
		lastSeen[id] = i + 1
	}

	choice := validation.Available[0]
	oldest := lastSeen[choice]
	for _, id := range validation.Available[1:] {
		if lastSeen[id] < oldest {
			choice = id
			oldest = lastSeen[id]
		}
	}
	return choice
}

func recentTail(history []string, n int) []string {
	if len(history) <= n {
		return append([]string(nil), history...)
	}
	return append([]string(nil), history[len(history)-n:]...)
}
