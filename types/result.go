package types

// Result is one analyzed input text. Segs holds the segmented words and
// Tags the coarse lexical tag aligned with each word.
type Result struct {
	Text     string   `json:"text"`
	Segs     []string `json:"segs"`
	Tags     []string `json:"tags"`
	Entities []Entity `json:"entities,omitempty"`
}

// Entity is a named-entity span recovered from the tagged segments.
// Start and End are byte offsets into Text, End exclusive.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}
