package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FencedBlockWins(t *testing.T) {
	// Код-блок приоритетнее лишних скобок в прозе вокруг
	raw := "Here is { not the answer.\n```json\n{\"score\": 88}\n```\nHope this helps }"

	obj, repaired, err := Extract(raw)
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Equal(t, float64(88), obj["score"])
}

func TestExtract_FenceWithoutLanguageTag(t *testing.T) {
	obj, repaired, err := Extract("```\n{\"score\": 42}\n```")
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Equal(t, float64(42), obj["score"])
}

func TestExtract_BraceSpanInsideProse(t *testing.T) {
	obj, repaired, err := Extract(`Sure! Here is your audit: {"score": 77, "summary": "ok"} Let me know!`)
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Equal(t, float64(77), obj["score"])
	assert.Equal(t, "ok", obj["summary"])
}

func TestExtract_WholeTextIsObject(t *testing.T) {
	obj, repaired, err := Extract(`{"a": 1}`)
	require.NoError(t, err)
	assert.False(t, repaired)
	assert.Equal(t, float64(1), obj["a"])
}

func TestExtract_RepairTrailingComma(t *testing.T) {
	obj, repaired, err := Extract(`{"score": 90, "tags": ["a", "b",],}`)
	require.NoError(t, err)
	assert.True(t, repaired, "трейлинг-запятые чинятся только ремонтом")
	assert.Equal(t, float64(90), obj["score"])
}

func TestExtract_RepairUnquotedKeys(t *testing.T) {
	obj, repaired, err := Extract(`{score: 65, summary: "fine"}`)
	require.NoError(t, err)
	assert.True(t, repaired)
	assert.Equal(t, float64(65), obj["score"])
	assert.Equal(t, "fine", obj["summary"])
}

func TestExtract_Unparsable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"truncated object", `{"a":`},
		{"pure prose", "I could not analyze this website, sorry."},
		{"empty input", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, repaired, err := Extract(tt.raw)
			require.Error(t, err)
			assert.Nil(t, obj)
			assert.False(t, repaired)

			var uerr *UnparsableError
			require.True(t, errors.As(err, &uerr))
			assert.Equal(t, tt.raw, uerr.Raw)
		})
	}
}

func TestUnparsableError_TruncatesPreview(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	e := &UnparsableError{Raw: string(long)}
	assert.Less(t, len(e.Error()), 200)
}
