package ml

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
)

// CRF holds the transition parameters of a linear-chain conditional random
// field. Emission scores come from the neural backend; this decoder only
// combines them with the transition weights.
type CRF struct {
	Tags         []string    `json:"tags"`
	StartWeights []float64   `json:"start_weights"`
	EndWeights   []float64   `json:"end_weights"`
	Transitions  [][]float64 `json:"transitions"`
}

// Decode runs Viterbi over per-position emission scores and returns the
// highest scoring tag id sequence. emissions is [T][L] with L == len(Tags).
func (crf *CRF) Decode(emissions [][]float32) []int {
	seqLen := len(emissions)
	if seqLen == 0 {
		return nil
	}
	statesCnt := len(crf.Tags)

	delta := make([]float64, statesCnt)
	for stateID := 0; stateID < statesCnt; stateID++ {
		delta[stateID] = crf.StartWeights[stateID] + float64(emissions[0][stateID])
	}

	backPointers := make([][]int, seqLen)
	for pos := 1; pos < seqLen; pos++ {
		next := make([]float64, statesCnt)
		pointers := make([]int, statesCnt)
		for stateID := 0; stateID < statesCnt; stateID++ {
			bestPrev := 0
			bestWeight := delta[0] + crf.Transitions[0][stateID]
			for prevID := 1; prevID < statesCnt; prevID++ {
				weight := delta[prevID] + crf.Transitions[prevID][stateID]
				if weight > bestWeight {
					bestWeight = weight
					bestPrev = prevID
				}
			}
			next[stateID] = bestWeight + float64(emissions[pos][stateID])
			pointers[stateID] = bestPrev
		}
		delta = next
		backPointers[pos] = pointers
	}

	bestLast := 0
	bestWeight := delta[0] + crf.EndWeights[0]
	for stateID := 1; stateID < statesCnt; stateID++ {
		weight := delta[stateID] + crf.EndWeights[stateID]
		if weight > bestWeight {
			bestWeight = weight
			bestLast = stateID
		}
	}

	result := make([]int, seqLen)
	result[seqLen-1] = bestLast
	for pos := seqLen - 1; pos > 0; pos-- {
		result[pos-1] = backPointers[pos][result[pos]]
	}
	return result
}

func LoadCRFFromFile(modelPath string) (*CRF, error) {
	buf, err := ioutil.ReadFile(modelPath)
	if err != nil {
		return nil, err
	}

	var m CRF
	err = json.Unmarshal(buf, &m)
	if err != nil {
		return nil, err
	}

	statesCnt := len(m.Tags)
	if statesCnt == 0 {
		return nil, fmt.Errorf("crf params file %s has no tags", modelPath)
	}
	if len(m.Transitions) != statesCnt {
		return nil, fmt.Errorf(
			"crf params file %s: expected %d transition rows, got %d",
			modelPath, statesCnt, len(m.Transitions),
		)
	}
	for i, row := range m.Transitions {
		if len(row) != statesCnt {
			return nil, fmt.Errorf(
				"crf params file %s: transition row %d has %d weights, expected %d",
				modelPath, i, len(row), statesCnt,
			)
		}
	}

	// fill absent start/end weights with zero values
	for len(m.StartWeights) < statesCnt {
		m.StartWeights = append(m.StartWeights, 0)
	}
	for len(m.EndWeights) < statesCnt {
		m.EndWeights = append(m.EndWeights, 0)
	}

	return &m, nil
}
