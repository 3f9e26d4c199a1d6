package api

import (
	"github.com/stretchr/testify/require"
	"hanlex.com/lac/pipeline"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func echoPipeline(captured *pipeline.Request) pipeline.Pipeline {
	return func(request pipeline.Request) <-chan string {
		*captured = request
		ch := make(chan string, 1)
		ch <- `{"standard":[]}`
		close(ch)
		return ch
	}
}

func TestProcessData(t *testing.T) {
	var captured pipeline.Request
	req := &Request{Pipeline: echoPipeline(&captured)}

	recorder := httptest.NewRecorder()
	body := strings.NewReader(`{"texts": ["你好", "三亚是一个美丽的城市"]}`)
	req.ProcessData(recorder, httptest.NewRequest("POST", "/", body))

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, `{"standard":[]}`, recorder.Body.String())
	require.Equal(t, []string{"你好", "三亚是一个美丽的城市"}, captured.Texts)
	require.NotEmpty(t, captured.Tid)
}

func TestProcessDataRawBody(t *testing.T) {
	var captured pipeline.Request
	req := &Request{Pipeline: echoPipeline(&captured)}

	recorder := httptest.NewRecorder()
	req.ProcessData(recorder, httptest.NewRequest("POST", "/", strings.NewReader("你好")))

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, []string{"你好"}, captured.Texts)
}

func TestProcessDataRejectsGet(t *testing.T) {
	req := &Request{}

	recorder := httptest.NewRecorder()
	req.ProcessData(recorder, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestProcessDataRejectsBrokenJSON(t *testing.T) {
	req := &Request{}

	recorder := httptest.NewRecorder()
	req.ProcessData(recorder, httptest.NewRequest("POST", "/", strings.NewReader(`{"texts": [`)))

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestParseTexts(t *testing.T) {
	texts, err := parseTexts([]byte(`{"texts": ["a", "b"]}`))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, texts)

	texts, err = parseTexts([]byte("plain text"))
	require.NoError(t, err)
	require.Equal(t, []string{"plain text"}, texts)
}
