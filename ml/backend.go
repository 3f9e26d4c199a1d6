package ml

// Backend executes the pretrained sequence model on a padded batch of
// token ids and returns per-position emission scores.
type Backend interface {
	// Infer takes a padded batch of token id rows (all rows the same
	// length) with the true sequence lengths and returns emissions shaped
	// [batch][seqLen][numTags]. Rows keep their input order.
	Infer(ids [][]int64, lengths []int64) ([][][]float32, error)
	Close() error
}
