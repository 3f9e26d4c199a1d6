//go:build windows

package ml

import "errors"

var ErrOnnxNotSupportedOnWindows = errors.New("ONNX models are not supported on Windows")

type OnnxBackend struct{}

func NewOnnxBackend(modelPath string) (*OnnxBackend, error) {
	return nil, ErrOnnxNotSupportedOnWindows
}

func (backend *OnnxBackend) Infer(ids [][]int64, lengths []int64) ([][][]float32, error) {
	return nil, ErrOnnxNotSupportedOnWindows
}

func (backend *OnnxBackend) Close() error {
	// no-op
	return nil
}
