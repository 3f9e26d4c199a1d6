package lexical

import (
	"hanlex.com/lac/types"
	"hanlex.com/lac/utils"
	"strings"
)

// DecodeSpans merges a per-character tag sequence back into segmented words
// with coarse tags. Tags use the "-B"/"-I"/"-E"/"-S" suffix scheme with "O"
// for characters outside any span: a word opens on a "-B" tag, or on an "O"
// following a non-"O" tag, and the suffix is dropped from the reported tag.
// When tags cover only a prefix of text (truncated input) the remainder of
// the text is left out of the result.
func DecodeSpans(text string, tags []string, withEntities bool) types.Result {
	runes := []rune(text)
	if len(tags) > len(runes) {
		tags = tags[:len(runes)]
	}

	var segs []string
	var tagsOut []string
	var word []rune
	for ind, tag := range tags {
		if len(word) == 0 {
			word = append(word, runes[ind])
			tagsOut = append(tagsOut, coarseTag(tag))
			continue
		}
		if strings.HasSuffix(tag, "-B") || (tag == "O" && tags[ind-1] != "O") {
			segs = append(segs, string(word))
			tagsOut = append(tagsOut, coarseTag(tag))
			word = []rune{runes[ind]}
			continue
		}
		word = append(word, runes[ind])
	}
	if len(segs) < len(tagsOut) {
		segs = append(segs, string(word))
	}

	result := types.Result{
		Text: text,
		Segs: segs,
		Tags: tagsOut,
	}
	if withEntities {
		result.Entities = CollectEntities(text, segs, tagsOut)
	}
	return result
}

func coarseTag(tag string) string {
	return strings.SplitN(tag, "-", 2)[0]
}

// CollectEntities picks the segments carrying named-entity labels and maps
// them back to byte offsets in the original text.
func CollectEntities(text string, segs []string, tags []string) []types.Entity {
	_, byteOffsets := utils.MakeRuneByteSlices(text)
	var entities []types.Entity
	runeCursor := 0
	for i, seg := range segs {
		segRunes := len([]rune(seg))
		if isEntityLabel(tags[i]) {
			start := byteOffsets[runeCursor]
			end := len(text)
			if runeCursor+segRunes < len(byteOffsets) {
				end = byteOffsets[runeCursor+segRunes]
			}
			entities = append(entities, types.Entity{
				Text:  seg,
				Label: tags[i],
				Start: start,
				End:   end,
			})
		}
		runeCursor += segRunes
	}
	return entities
}

// Entity labels are the all-uppercase tags (PER, LOC, ORG, TIME); "O" and
// the lowercase part-of-speech tags are not entities.
func isEntityLabel(tag string) bool {
	if len(tag) < 2 {
		return false
	}
	for _, c := range tag {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
