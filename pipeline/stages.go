package pipeline

import (
	"fmt"
	"hanlex.com/lac/custom"
	"hanlex.com/lac/lexical"
	"hanlex.com/lac/ml"
	"hanlex.com/lac/seg"
	"hanlex.com/lac/types"
	"hanlex.com/lac/vocab"
)

// Tagged is one input text with its decoded per-character tag strings.
type Tagged struct {
	Text string
	Tags []string
	Err  error
}

// Analyzed is one finished result, or the error that prevented it.
type Analyzed struct {
	Result types.Result
	Err    error
}

// Stages run one goroutine each and keep input order: results must line up
// with the request's text list.

func NewEncoderStage(enc *lexical.Encoder) func(in <-chan string) <-chan lexical.Encoded {
	return func(in <-chan string) <-chan lexical.Encoded {
		out := make(chan lexical.Encoded)
		go func() {
			defer close(out)
			for text := range in {
				out <- enc.Encode(text)
			}
		}()
		return out
	}
}

func NewBatcherStage(batchSize int) func(in <-chan lexical.Encoded) <-chan lexical.Batch {
	if batchSize <= 0 {
		batchSize = lexical.DefaultBatchSize
	}
	return func(in <-chan lexical.Encoded) <-chan lexical.Batch {
		out := make(chan lexical.Batch)
		go func() {
			defer close(out)
			pending := make([]lexical.Encoded, 0, batchSize)
			flush := func() {
				if len(pending) == 0 {
					return
				}
				batches := lexical.MakeBatches(pending, batchSize)
				for _, batch := range batches {
					out <- batch
				}
				pending = pending[:0]
			}
			for encoded := range in {
				pending = append(pending, encoded)
				if len(pending) == batchSize {
					flush()
				}
			}
			flush()
		}()
		return out
	}
}

func NewInferenceStage(backend ml.Backend, crf *ml.CRF, tags *vocab.Vocab) func(in <-chan lexical.Batch) <-chan Tagged {
	return func(in <-chan lexical.Batch) <-chan Tagged {
		out := make(chan Tagged)
		go func() {
			defer close(out)
			for batch := range in {
				emissions, err := backend.Infer(batch.IDs, batch.Lengths)
				if err != nil {
					for _, text := range batch.Texts {
						out <- Tagged{Text: text, Err: err}
					}
					continue
				}
				for i, text := range batch.Texts {
					out <- decodeTags(text, emissions[i], batch.Lengths[i], crf, tags)
				}
			}
		}()
		return out
	}
}

func decodeTags(text string, emissions [][]float32, length int64, crf *ml.CRF, tags *vocab.Vocab) Tagged {
	seqLen := int(length)
	if seqLen > len(emissions) {
		return Tagged{
			Text: text,
			Err:  fmt.Errorf("model emitted %d positions for sequence of length %d", len(emissions), seqLen),
		}
	}
	for pos := 0; pos < seqLen; pos++ {
		if len(emissions[pos]) < len(crf.Tags) {
			return Tagged{
				Text: text,
				Err: fmt.Errorf(
					"model emitted %d scores at position %d, tag set has %d",
					len(emissions[pos]), pos, len(crf.Tags),
				),
			}
		}
	}
	tagIDs := crf.Decode(emissions[:seqLen])
	tagNames := make([]string, len(tagIDs))
	for i, tagID := range tagIDs {
		name, ok := tags.Token(int64(tagID))
		if !ok {
			return Tagged{
				Text: text,
				Err:  fmt.Errorf("tag id %d is not in the tag dictionary", tagID),
			}
		}
		tagNames[i] = name
	}
	return Tagged{Text: text, Tags: tagNames}
}

func NewDecoderStage(withEntities bool) func(in <-chan Tagged) <-chan Analyzed {
	return func(in <-chan Tagged) <-chan Analyzed {
		out := make(chan Analyzed)
		go func() {
			defer close(out)
			for tagged := range in {
				if tagged.Err != nil {
					out <- Analyzed{Err: tagged.Err}
					continue
				}
				out <- Analyzed{Result: lexical.DecodeSpans(tagged.Text, tagged.Tags, withEntities)}
			}
		}()
		return out
	}
}

func NewCustomDictStage(dict *custom.Dictionary, withEntities bool) func(in <-chan Analyzed) <-chan Analyzed {
	return func(in <-chan Analyzed) <-chan Analyzed {
		out := make(chan Analyzed)
		go func() {
			defer close(out)
			for analyzed := range in {
				if analyzed.Err != nil {
					out <- analyzed
					continue
				}
				out <- Analyzed{Result: dict.Apply(analyzed.Result, withEntities)}
			}
		}()
		return out
	}
}

func NewGseStage(segmenter *seg.GseSegmenter) func(in <-chan string) <-chan Analyzed {
	return func(in <-chan string) <-chan Analyzed {
		out := make(chan Analyzed)
		go func() {
			defer close(out)
			for text := range in {
				out <- Analyzed{Result: segmenter.Analyze(text)}
			}
		}()
		return out
	}
}
