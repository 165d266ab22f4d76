package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/brandpulse/internal/domain"
)

func TestApply_NilInputSynthesizesFullReport(t *testing.T) {
	res := Apply(nil, "acme.com")

	assert.Equal(t, DefaultScore, res.Score)
	assert.Contains(t, res.Summary, "acme.com")

	// Все пять категорий присутствуют с дефолтом
	for _, cat := range domain.ScoreCategories {
		assert.Equal(t, DefaultScore, res.ScoreBreakdown[cat], cat)
	}

	// website_analysis обязательна и несет фиксированные метрики
	website, ok := res.DetailedAnalysis[domain.SectionWebsite].(map[string]interface{})
	require.True(t, ok)
	metrics, ok := website["performance_metrics"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(75), metrics["mobile_speed_score"])
	assert.Equal(t, float64(82), metrics["accessibility_score"])
	assert.Equal(t, float64(78), metrics["seo_optimization"])
}

func TestApply_ScoreFallback(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want int
	}{
		{"valid", float64(88), 88},
		{"above range falls back, not clamps", float64(150), DefaultScore},
		{"below range falls back", float64(-5), DefaultScore},
		{"non-numeric", "high", DefaultScore},
		{"missing", nil, DefaultScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(map[string]interface{}{"score": tt.in}, "acme.com")
			assert.Equal(t, tt.want, res.Score)
		})
	}
}

func TestApply_BreakdownKeepsExtraCategories(t *testing.T) {
	res := Apply(map[string]interface{}{
		"score_breakdown": map[string]interface{}{
			"messaging": float64(91),
			"packaging": float64(40), // неизвестная категория сохраняется
		},
	}, "acme.com")

	assert.Equal(t, 91, res.ScoreBreakdown["messaging"])
	assert.Equal(t, 40, res.ScoreBreakdown["packaging"])
	assert.Equal(t, DefaultScore, res.ScoreBreakdown["website"])
	assert.Len(t, res.ScoreBreakdown, len(domain.ScoreCategories)+1)
}

func TestApply_PreservesValidInput(t *testing.T) {
	in := map[string]interface{}{
		"score": float64(88),
		"score_breakdown": map[string]interface{}{
			"visual_consistency": float64(80),
			"messaging":          float64(85),
			"positioning":        float64(90),
			"social_media":       float64(95),
			"website":            float64(90),
		},
		"summary": "Strong brand with a consistent visual identity.",
		"detailed_analysis": map[string]interface{}{
			"visual_analysis": map[string]interface{}{
				"summary":         "Cohesive design language.",
				"recommendations": []interface{}{"Refresh the logo"},
			},
			"website_analysis": map[string]interface{}{
				"summary": "Fast and accessible.",
				"performance_metrics": map[string]interface{}{
					"mobile_speed_score": float64(95),
				},
			},
		},
	}

	res := Apply(in, "acme.com")

	assert.Equal(t, 88, res.Score)
	assert.Equal(t, "Strong brand with a consistent visual identity.", res.Summary)
	assert.Equal(t, 95, res.ScoreBreakdown["social_media"])

	website := res.DetailedAnalysis["website_analysis"].(map[string]interface{})
	metrics := website["performance_metrics"].(map[string]interface{})
	assert.Equal(t, float64(95), metrics["mobile_speed_score"], "непустые метрики не перетираются дефолтами")
}

func TestApply_Idempotent(t *testing.T) {
	first := Apply(map[string]interface{}{"score": float64(61)}, "acme.com")

	again := Apply(map[string]interface{}{
		"score":             float64(first.Score),
		"summary":           first.Summary,
		"detailed_analysis": first.DetailedAnalysis,
	}, "acme.com")

	assert.Equal(t, first.Score, again.Score)
	assert.Equal(t, first.Summary, again.Summary)
	assert.Equal(t, first.DetailedAnalysis, again.DetailedAnalysis)
}

func TestApply_EmptyPerformanceMetricsGetDefaults(t *testing.T) {
	res := Apply(map[string]interface{}{
		"detailed_analysis": map[string]interface{}{
			"website_analysis": map[string]interface{}{
				"summary":             "ok",
				"performance_metrics": map[string]interface{}{},
			},
		},
	}, "acme.com")

	website := res.DetailedAnalysis["website_analysis"].(map[string]interface{})
	metrics := website["performance_metrics"].(map[string]interface{})
	assert.Equal(t, float64(75), metrics["mobile_speed_score"])
	assert.Equal(t, "ok", website["summary"], "существующие поля секции не трогаем")
}

func TestApply_RecommendationsCoercedToArray(t *testing.T) {
	res := Apply(map[string]interface{}{
		"detailed_analysis": map[string]interface{}{
			"messaging_analysis": map[string]interface{}{
				"recommendations": "improve tone", // не массив
			},
			"positioning_analysis": map[string]interface{}{
				"summary": "no recommendations key",
			},
		},
	}, "acme.com")

	messaging := res.DetailedAnalysis["messaging_analysis"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, messaging["recommendations"])

	positioning := res.DetailedAnalysis["positioning_analysis"].(map[string]interface{})
	_, present := positioning["recommendations"]
	assert.False(t, present, "отсутствующий ключ не синтезируется")
}
