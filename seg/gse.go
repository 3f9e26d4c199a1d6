package seg

import (
	"github.com/go-ego/gse"
	"hanlex.com/lac/types"
)

// GseSegmenter is the dictionary-only fast mode: segmentation through the
// gse dictionary with its part-of-speech labels, no neural model involved.
type GseSegmenter struct {
	seg *gse.Segmenter
}

// New loads the gse segmenter. With an empty dictPath the embedded default
// Chinese dictionary is used.
func New(dictPath string) (*GseSegmenter, error) {
	segmenter := new(gse.Segmenter)
	var err error
	if dictPath == "" {
		err = segmenter.LoadDict()
	} else {
		err = segmenter.LoadDict(dictPath)
	}
	if err != nil {
		return nil, err
	}
	return &GseSegmenter{
		seg: segmenter,
	}, nil
}

func (g *GseSegmenter) Analyze(text string) types.Result {
	poses := g.seg.Pos(text, false)
	segs := make([]string, 0, len(poses))
	tags := make([]string, 0, len(poses))
	for _, pos := range poses {
		segs = append(segs, pos.Text)
		tag := pos.Pos
		if tag == "" {
			tag = "n"
		}
		tags = append(tags, tag)
	}
	return types.Result{
		Text: text,
		Segs: segs,
		Tags: tags,
	}
}
