package custom

import (
	"hanlex.com/lac/lexical"
	"hanlex.com/lac/types"
)

type span struct {
	start int
	end   int
	tag   string
}

// Apply rewrites a model result so that every dictionary word found in the
// text becomes a single segment. Model segments straddling a dictionary
// word boundary are split at it; segments fully inside a matched word are
// merged into it. The dictionary tag wins when the entry has one, otherwise
// the word keeps the model tag of its first character.
func (dict *Dictionary) Apply(result types.Result, withEntities bool) types.Result {
	if dict.size == 0 || len(result.Segs) == 0 {
		return result
	}

	runes := []rune(result.Text)

	// The decoded segments may cover only a prefix of the text when the
	// input was truncated; intervention stays inside that prefix.
	covered := 0
	for _, seg := range result.Segs {
		covered += len([]rune(seg))
	}

	// Per-rune view of the model segmentation.
	segStarts := make([]bool, covered)
	runeTags := make([]string, covered)
	cursor := 0
	for i, seg := range result.Segs {
		segStarts[cursor] = true
		for range []rune(seg) {
			runeTags[cursor] = result.Tags[i]
			cursor++
		}
	}

	// Greedy longest-match scan for dictionary words.
	var spans []span
	for i := 0; i < covered; {
		matchLen, tag := dict.match(runes[:covered], i)
		if matchLen == 0 {
			i++
			continue
		}
		spans = append(spans, span{start: i, end: i + matchLen, tag: tag})
		i += matchLen
	}
	if len(spans) == 0 {
		return result
	}

	var segs []string
	var tags []string
	spanIdx := 0
	for r := 0; r < covered; {
		if spanIdx < len(spans) && spans[spanIdx].start == r {
			sp := spans[spanIdx]
			tag := sp.tag
			if tag == "" {
				tag = runeTags[r]
			}
			segs = append(segs, string(runes[sp.start:sp.end]))
			tags = append(tags, tag)
			r = sp.end
			spanIdx++
			continue
		}
		start := r
		r++
		for r < covered && !segStarts[r] && !(spanIdx < len(spans) && spans[spanIdx].start == r) {
			r++
		}
		segs = append(segs, string(runes[start:r]))
		tags = append(tags, runeTags[start])
	}

	updated := types.Result{
		Text: result.Text,
		Segs: segs,
		Tags: tags,
	}
	if withEntities {
		updated.Entities = lexical.CollectEntities(result.Text, segs, tags)
	}
	return updated
}
