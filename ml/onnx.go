//go:build !windows

package ml

import (
	"fmt"
	"github.com/kelseyhightower/envconfig"
	ort "github.com/yalue/onnxruntime_go"
	"hanlex.com/lac/logger"
	"sync"
)

const (
	inputTokenIDs  = "token_ids"
	inputLength    = "length"
	outputEmission = "emissions"
)

var onnxLogger = logger.NewLogger("ONNX backend")

var initOnce sync.Once
var initErr error

type OnnxConfig struct {
	SharedLibPath string `envconfig:"LAC_ONNX_SHARED_LIB" default:""`
}

// OnnxBackend runs the exported lexical analysis network through the ONNX
// runtime. The graph takes int64 token ids and true lengths and emits
// per-position tag scores; CRF decoding happens outside the graph.
type OnnxBackend struct {
	session *ort.DynamicAdvancedSession
}

func NewOnnxBackend(modelPath string) (*OnnxBackend, error) {
	var config OnnxConfig
	if err := envconfig.Process("", &config); err != nil {
		onnxLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	initOnce.Do(func() {
		if config.SharedLibPath != "" {
			ort.SetSharedLibraryPath(config.SharedLibPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		onnxLogger.Error().Err(initErr).Msg("Could not initialize ONNX runtime environment")
		return nil, initErr
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputTokenIDs, inputLength},
		[]string{outputEmission},
		nil,
	)
	if err != nil {
		onnxLogger.Error().Err(err).Str("model_path", modelPath).Msg("Could not create ONNX session")
		return nil, err
	}
	onnxLogger.Info().Str("model_path", modelPath).Msg("Loaded ONNX model")
	return &OnnxBackend{session: session}, nil
}

func (backend *OnnxBackend) Infer(ids [][]int64, lengths []int64) ([][][]float32, error) {
	batchSize := len(ids)
	if batchSize == 0 {
		return nil, fmt.Errorf("empty batch")
	}
	seqLen := len(ids[0])

	flat := make([]int64, 0, batchSize*seqLen)
	for _, row := range ids {
		if len(row) != seqLen {
			return nil, fmt.Errorf("ragged batch: row length %d, expected %d", len(row), seqLen)
		}
		flat = append(flat, row...)
	}

	idsTensor, err := ort.NewTensor(ort.NewShape(int64(batchSize), int64(seqLen)), flat)
	if err != nil {
		return nil, err
	}
	defer idsTensor.Destroy()

	lensTensor, err := ort.NewTensor(ort.NewShape(int64(batchSize)), lengths)
	if err != nil {
		return nil, err
	}
	defer lensTensor.Destroy()

	outputs := []ort.Value{nil}
	err = backend.session.Run([]ort.Value{idsTensor, lensTensor}, outputs)
	if err != nil {
		return nil, err
	}
	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	defer outTensor.Destroy()

	shape := outTensor.GetShape()
	if len(shape) != 3 || shape[0] != int64(batchSize) {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	outSeqLen := int(shape[1])
	tagsCnt := int(shape[2])
	data := outTensor.GetData()

	emissions := make([][][]float32, batchSize)
	for b := 0; b < batchSize; b++ {
		emissions[b] = make([][]float32, outSeqLen)
		for pos := 0; pos < outSeqLen; pos++ {
			offset := (b*outSeqLen + pos) * tagsCnt
			row := make([]float32, tagsCnt)
			copy(row, data[offset:offset+tagsCnt])
			emissions[b][pos] = row
		}
	}
	return emissions, nil
}

func (backend *OnnxBackend) Close() error {
	return backend.session.Destroy()
}
