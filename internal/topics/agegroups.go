package topics

import "strings"

// ageKeywords maps each age group label to phrases that signal content aimed
// at that range. Matching is plain substring search on lowercased text.
var ageKeywords = map[string][]string{
	"2-4": {
		"toddler", "2 year", "3 year", "two year", "three year",
		"terrible twos", "preschool", "daycare", "potty", "diaper",
		"nap", "tantrum", "meltdown", "clingy", "separation",
	},
	"4-6": {
		"preschool", "4 year", "5 year", "four year", "five year",
		"kindergarten", "pre-k", "school readiness", "learning",
		"playdates", "sharing", "cooperation",
	},
	"6-8": {
		"school age", "6 year", "7 year", "six year", "seven year",
		"elementary", "homework", "reading", "friends", "sports",
		"responsibility", "chores",
	},
	"8-10": {
		"tween", "8 year", "9 year", "10 year", "eight year", "nine year",
		"preteen", "independence", "peer pressure", "social media",
		"puberty", "growing up",
	},
}

// DetectAgeGroups narrows a topic's age groups to those whose keywords appear
// in the text. When nothing matches, the topic's full set is kept so cards
// never end up with an empty age range.
func DetectAgeGroups(text string, topicGroups []string) []string {
	lower := strings.ToLower(text)
	var detected []string
	for _, group := range topicGroups {
		kws, ok := ageKeywords[group]
		if !ok {
			continue
		}
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				detected = append(detected, group)
				break
			}
		}
	}
	if len(detected) == 0 {
		out := make([]string, len(topicGroups))
		copy(out, topicGroups)
		return out
	}
	return detected
}
