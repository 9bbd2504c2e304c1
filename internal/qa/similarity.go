package qa

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// sectionMatchOptions makes a substitution cost one deletion plus one
// insertion, which turns the ratio into 2*matches/(len(a)+len(b)). That keeps
// paraphrased labels like "Elections" and "Election Commission" above the 0.5
// acceptance threshold while unrelated labels fall well below it.
var sectionMatchOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 2,
	Matches: levenshtein.IdenticalRunes,
}

// SectionSimilarity scores how closely an inferred topic label matches a
// stored section label on a 0..1 scale. The comparison is case-insensitive.
// Section labels are model-inferred free text, so exact matching against the
// ingestion-time taxonomy would reject valid paraphrases.
func SectionSimilarity(topic, section string) float64 {
	a := []rune(strings.ToLower(topic))
	b := []rune(strings.ToLower(section))
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	return levenshtein.RatioForStrings(a, b, sectionMatchOptions)
}
