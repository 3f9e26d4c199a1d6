package pipeline

// Request is one analysis call: a batch of input texts plus the tracking id
// used in logs and task bookkeeping.
type Request struct {
	Texts []string `json:"texts"`
	Tid   string   `json:"tid"`
}

// Pipeline takes a request and asynchronously produces the marshalled
// response: a JSON object keyed by configuration name.
type Pipeline func(request Request) <-chan string

type Result struct {
	ConfigName string
	Data       interface{}
	Err        error
}
