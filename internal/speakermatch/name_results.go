package speakermatch

import "sort"

// FromNameResults flattens the grouped name_based_results shape
// (name -> attributions) into evidence. Names are visited in sorted order so
// the output is reproducible.
func FromNameResults(results map[string][]NameResult) []Evidence {
	names := make([]string, 0, len(results))
	total := 0
	for name, attributions := range results {
		names = append(names, name)
		total += len(attributions)
	}
	sort.Strings(names)

	out := make([]Evidence, 0, total)
	for _, name := range names {
		for _, attribution := range results[name] {
			out = append(out, Evidence{
				Speaker:    attribution.Speaker,
				Name:       name,
				Confidence: attribution.Confidence,
			})
		}
	}
	return out
}
