package seg

import (
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestAnalyze(t *testing.T) {
	segmenter, err := New("")
	require.NoError(t, err)

	text := "你好世界"
	result := segmenter.Analyze(text)
	require.Equal(t, text, result.Text)
	require.NotEmpty(t, result.Segs)
	require.Len(t, result.Tags, len(result.Segs))
	require.Equal(t, text, strings.Join(result.Segs, ""))
	for _, tag := range result.Tags {
		require.NotEmpty(t, tag)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	segmenter, err := New("")
	require.NoError(t, err)

	result := segmenter.Analyze("")
	require.Empty(t, result.Segs)
}
