package lexical

const DefaultBatchSize = 1

// Batch is a group of encoded inputs padded to a common length.
type Batch struct {
	Texts   []string
	IDs     [][]int64
	Lengths []int64
}

// MakeBatches groups encoded inputs into batches of batchSize in input
// order, padding every id row with 0 to the longest row of its batch.
func MakeBatches(items []Encoded, batchSize int) []Batch {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	batches := make([]Batch, 0, (len(items)+batchSize-1)/batchSize)
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		group := items[start:end]

		maxLen := 0
		for _, item := range group {
			if len(item.IDs) > maxLen {
				maxLen = len(item.IDs)
			}
		}

		batch := Batch{
			Texts:   make([]string, len(group)),
			IDs:     make([][]int64, len(group)),
			Lengths: make([]int64, len(group)),
		}
		for i, item := range group {
			padded := make([]int64, maxLen)
			copy(padded, item.IDs)
			batch.Texts[i] = item.Text
			batch.IDs[i] = padded
			batch.Lengths[i] = item.Length
		}
		batches = append(batches, batch)
	}
	return batches
}
