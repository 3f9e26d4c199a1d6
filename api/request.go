package api

import (
	"encoding/json"
	"github.com/google/uuid"
	"hanlex.com/lac/pipeline"
	"io/ioutil"
	"net/http"
	"strings"
)

type Request struct {
	Pipeline pipeline.Pipeline
}

type requestBody struct {
	Texts []string `json:"texts"`
}

func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != "POST" {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	texts, err := parseTexts(msg)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not parse request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	request := pipeline.Request{
		Tid:   uuid.NewString(),
		Texts: texts,
	}
	logger.Info().Str("tid", request.Tid).Msg("Starting pipeline for request from API")
	resp := <-req.Pipeline(request)
	_, _ = w.Write([]byte(resp))
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

// parseTexts accepts either a JSON object {"texts": [...]} or a raw text
// body treated as a single input.
func parseTexts(msg []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(msg))
	if strings.HasPrefix(trimmed, "{") {
		var body requestBody
		if err := json.Unmarshal(msg, &body); err != nil {
			return nil, err
		}
		return body.Texts, nil
	}
	return []string{string(msg)}, nil
}
