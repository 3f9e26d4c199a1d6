package pipeline

import (
	"errors"
	"github.com/stretchr/testify/require"
	"hanlex.com/lac/lexical"
	"hanlex.com/lac/ml"
	"hanlex.com/lac/types"
	"hanlex.com/lac/vocab"
	"io/ioutil"
	"path"
	"testing"
)

// fakeBackend plays back scripted emissions, one response per Infer call in
// batch order.
type fakeBackend struct {
	responses [][][][]float32
	err       error
	calls     int
}

func (backend *fakeBackend) Infer(ids [][]int64, lengths []int64) ([][][]float32, error) {
	if backend.err != nil {
		return nil, backend.err
	}
	if backend.calls >= len(backend.responses) {
		return nil, errors.New("no scripted response left")
	}
	response := backend.responses[backend.calls]
	backend.calls++
	return response, nil
}

func (backend *fakeBackend) Close() error {
	return nil
}

var testTagNames = []string{"n-B", "n-I", "v-B", "O", "PER-B", "PER-I"}

func oneHot(tagIDs ...int) [][]float32 {
	emissions := make([][]float32, len(tagIDs))
	for i, tagID := range tagIDs {
		row := make([]float32, len(testTagNames))
		row[tagID] = 1
		emissions[i] = row
	}
	return emissions
}

func loadTestDicts(t *testing.T) (*vocab.Vocab, *vocab.Vocab) {
	t.Helper()
	dir := t.TempDir()

	wordDictPath := path.Join(dir, "word.dic")
	require.NoError(t, ioutil.WriteFile(
		wordDictPath,
		[]byte("0\tOOV\n1\t你\n2\t好\n3\t吗\n4\t李\n5\t雷\n"),
		0644,
	))
	words, err := vocab.Load(wordDictPath)
	require.NoError(t, err)

	tagDictPath := path.Join(dir, "tag.dic")
	tagContent := ""
	for _, name := range testTagNames {
		tagContent += name + "\n"
	}
	require.NoError(t, ioutil.WriteFile(tagDictPath, []byte(tagContent), 0644))
	tags, err := vocab.Load(tagDictPath)
	require.NoError(t, err)

	return words, tags
}

func zeroCRF(tags []string) *ml.CRF {
	transitions := make([][]float64, len(tags))
	for i := range transitions {
		transitions[i] = make([]float64, len(tags))
	}
	return &ml.CRF{
		Tags:         tags,
		StartWeights: make([]float64, len(tags)),
		EndWeights:   make([]float64, len(tags)),
		Transitions:  transitions,
	}
}

func runChain(backend ml.Backend, crf *ml.CRF, words *vocab.Vocab, tags *vocab.Vocab, batchSize int, withEntities bool, texts []string) ([]Analyzed, error) {
	enc, err := lexical.NewEncoder(words, nil, 0)
	if err != nil {
		return nil, err
	}
	in := make(chan string)
	out := NewDecoderStage(withEntities)(
		NewInferenceStage(backend, crf, tags)(
			NewBatcherStage(batchSize)(
				NewEncoderStage(enc)(in))))
	go func() {
		defer close(in)
		for _, text := range texts {
			in <- text
		}
	}()
	var results []Analyzed
	for analyzed := range out {
		results = append(results, analyzed)
	}
	return results, nil
}

func TestStageChain(t *testing.T) {
	words, tags := loadTestDicts(t)
	crf := zeroCRF(testTagNames)

	// batch of two padded rows, then a single leftover row
	backend := &fakeBackend{
		responses: [][][][]float32{
			{
				oneHot(4, 5, 2),
				append(oneHot(2), oneHot(3, 3)...),
			},
			{
				oneHot(0, 1),
			},
		},
	}

	results, err := runChain(backend, crf, words, tags, 2, true, []string{"李雷好", "好", "你好"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	first := results[0]
	require.NoError(t, first.Err)
	require.Equal(t, []string{"李雷", "好"}, first.Result.Segs)
	require.Equal(t, []string{"PER", "v"}, first.Result.Tags)
	require.Equal(t, []types.Entity{
		{Text: "李雷", Label: "PER", Start: 0, End: 6},
	}, first.Result.Entities)

	second := results[1]
	require.NoError(t, second.Err)
	require.Equal(t, []string{"好"}, second.Result.Segs)
	require.Equal(t, []string{"v"}, second.Result.Tags)

	third := results[2]
	require.NoError(t, third.Err)
	require.Equal(t, []string{"你好"}, third.Result.Segs)
	require.Equal(t, []string{"n"}, third.Result.Tags)

	require.Equal(t, 2, backend.calls)
}

func TestStageChainBackendError(t *testing.T) {
	words, tags := loadTestDicts(t)
	crf := zeroCRF(testTagNames)
	backend := &fakeBackend{err: errors.New("inference failed")}

	results, err := runChain(backend, crf, words, tags, 1, false, []string{"你好"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}

func TestStageChainShortEmissions(t *testing.T) {
	words, tags := loadTestDicts(t)
	crf := zeroCRF(testTagNames)

	// one emission row for a two character input
	backend := &fakeBackend{
		responses: [][][][]float32{
			{oneHot(0)},
		},
	}

	results, err := runChain(backend, crf, words, tags, 1, false, []string{"你好"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}

func TestStageChainNarrowEmissions(t *testing.T) {
	words, tags := loadTestDicts(t)
	crf := zeroCRF(testTagNames)

	// emission rows narrower than the tag set
	backend := &fakeBackend{
		responses: [][][][]float32{
			{{{1, 0, 0}, {0, 1, 0}}},
		},
	}

	results, err := runChain(backend, crf, words, tags, 1, false, []string{"你好"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	require.Contains(t, results[0].Err.Error(), "tag set")
}

func TestResultCollectorGathersInOrder(t *testing.T) {
	in := make(chan Analyzed, 3)
	in <- Analyzed{Result: types.Result{Text: "a"}}
	in <- Analyzed{Result: types.Result{Text: "b"}}
	in <- Analyzed{Result: types.Result{Text: "c"}}
	close(in)

	result := <-newResultCollector("standard")(in)
	require.Equal(t, "standard", result.ConfigName)
	require.NoError(t, result.Err)

	results, ok := result.Data.([]types.Result)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "c"}, []string{results[0].Text, results[1].Text, results[2].Text})
}

func TestResultCollectorKeepsFirstError(t *testing.T) {
	firstErr := errors.New("first")
	in := make(chan Analyzed, 3)
	in <- Analyzed{Err: firstErr}
	in <- Analyzed{Err: errors.New("second")}
	in <- Analyzed{Result: types.Result{Text: "c"}}
	close(in)

	result := <-newResultCollector("standard")(in)
	require.Equal(t, firstErr, result.Err)
}

func TestTextChannelSplitter(t *testing.T) {
	in := make(chan string)
	outs := NewTextChannelSplitter(2)(in)
	require.Len(t, outs, 2)

	collected := make([][]string, 2)
	done := make(chan int)
	for i := 0; i < 2; i++ {
		go func(i int) {
			for text := range outs[i] {
				collected[i] = append(collected[i], text)
			}
			done <- i
		}(i)
	}

	in <- "a"
	in <- "b"
	close(in)
	<-done
	<-done

	require.Equal(t, []string{"a", "b"}, collected[0])
	require.Equal(t, []string{"a", "b"}, collected[1])
}
