package lexical

import (
	"github.com/stretchr/testify/require"
	"hanlex.com/lac/types"
	"strings"
	"testing"
)

func TestDecodeSpans(t *testing.T) {
	text := "LAC是个优秀的分词工具"
	tags := []string{
		"nz-B", "nz-I", "nz-I",
		"v-B",
		"q-B",
		"a-B", "a-I",
		"u-B",
		"n-B", "n-I",
		"n-B", "n-I",
	}
	result := DecodeSpans(text, tags, false)
	require.Equal(t, []string{"LAC", "是", "个", "优秀", "的", "分词", "工具"}, result.Segs)
	require.Equal(t, []string{"nz", "v", "q", "a", "u", "n", "n"}, result.Tags)
	require.Equal(t, text, strings.Join(result.Segs, ""))
	require.Nil(t, result.Entities)
}

func TestDecodeSpansOutsideRuns(t *testing.T) {
	// "O" opens a new word only right after a non-"O" tag so
	// consecutive outside characters stay merged.
	result := DecodeSpans("你好吗", []string{"O", "O", "v-B"}, false)
	require.Equal(t, []string{"你好", "吗"}, result.Segs)
	require.Equal(t, []string{"O", "v"}, result.Tags)

	result = DecodeSpans("你好吗", []string{"v-B", "O", "O"}, false)
	require.Equal(t, []string{"你", "好吗"}, result.Segs)
	require.Equal(t, []string{"v", "O"}, result.Tags)
}

func TestDecodeSpansTruncatedTags(t *testing.T) {
	// Tags cover only the model input prefix when the text was cut at
	// the maximum sequence length.
	result := DecodeSpans("你好吗", []string{"v-B", "v-I"}, false)
	require.Equal(t, []string{"你好"}, result.Segs)
	require.Equal(t, []string{"v"}, result.Tags)
}

func TestDecodeSpansEmpty(t *testing.T) {
	result := DecodeSpans("", nil, false)
	require.Empty(t, result.Segs)
	require.Empty(t, result.Tags)
}

func TestDecodeSpansWithEntities(t *testing.T) {
	text := "三亚是一个美丽的城市"
	tags := []string{
		"LOC-B", "LOC-I",
		"v-B",
		"m-B",
		"q-B",
		"a-B", "a-I",
		"u-B",
		"n-B", "n-I",
	}
	result := DecodeSpans(text, tags, true)
	require.Equal(t, []string{"三亚", "是", "一", "个", "美丽", "的", "城市"}, result.Segs)
	require.Equal(t, []string{"LOC", "v", "m", "q", "a", "u", "n"}, result.Tags)
	require.Equal(t, []types.Entity{
		{Text: "三亚", Label: "LOC", Start: 0, End: 6},
	}, result.Entities)
}

func TestCollectEntities(t *testing.T) {
	text := "他去了北京"
	segs := []string{"他", "去了", "北京"}
	tags := []string{"r", "v", "LOC"}
	entities := CollectEntities(text, segs, tags)
	require.Equal(t, []types.Entity{
		{Text: "北京", Label: "LOC", Start: 9, End: 15},
	}, entities)
	require.Equal(t, "北京", text[9:15])
}

func TestCollectEntitiesNoEntities(t *testing.T) {
	entities := CollectEntities("你好", []string{"你好"}, []string{"v"})
	require.Nil(t, entities)
}
