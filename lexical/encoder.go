package lexical

import (
	"errors"
	"hanlex.com/lac/vocab"
)

const DefaultMaxSeqLen = 64

// Encoded is one input text turned into model input ids. Text keeps the
// full original string even when the id sequence was truncated.
type Encoded struct {
	Text   string
	IDs    []int64
	Length int64
}

// Encoder maps raw text to character id sequences: full-width characters
// are normalized through the q2b table, unknown characters fall back to the
// OOV id and sequences are cut at maxSeqLen characters.
type Encoder struct {
	words     *vocab.Vocab
	q2b       map[rune]rune
	maxSeqLen int
	oovID     int64
}

func NewEncoder(words *vocab.Vocab, q2b map[rune]rune, maxSeqLen int) (*Encoder, error) {
	oovID, ok := words.OOVID()
	if !ok {
		return nil, errors.New("word dictionary has no OOV entry")
	}
	if maxSeqLen <= 0 {
		maxSeqLen = DefaultMaxSeqLen
	}
	return &Encoder{
		words:     words,
		q2b:       q2b,
		maxSeqLen: maxSeqLen,
		oovID:     oovID,
	}, nil
}

func (enc *Encoder) Encode(text string) Encoded {
	ids := make([]int64, 0, enc.maxSeqLen)
	for _, ch := range text {
		if len(ids) >= enc.maxSeqLen {
			break
		}
		if replacement, ok := enc.q2b[ch]; ok {
			ch = replacement
		}
		id, ok := enc.words.ID(string(ch))
		if !ok {
			id = enc.oovID
		}
		ids = append(ids, id)
	}
	return Encoded{
		Text:   text,
		IDs:    ids,
		Length: int64(len(ids)),
	}
}
