package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_Deterministic(t *testing.T) {
	a := Build("https://acme.com", "B2B SaaS")
	b := Build("https://acme.com", "B2B SaaS")
	assert.Equal(t, a, b)
}

func TestBuild_EmbedsTargetAndSchema(t *testing.T) {
	p := Build("https://acme.com", "")

	assert.Contains(t, p, "https://acme.com")
	assert.NotContains(t, p, "ADDITIONAL CONTEXT")

	// Промпт дословно несет целевую JSON-схему отчета
	for _, key := range []string{
		`"score"`, `"score_breakdown"`, `"summary"`, `"detailed_analysis"`,
		`"visual_consistency"`, `"messaging"`, `"positioning"`, `"social_media"`, `"website"`,
		`"visual_analysis"`, `"messaging_analysis"`, `"positioning_analysis"`,
		`"social_media_analysis"`, `"website_analysis"`,
		`"performance_metrics"`, `"mobile_speed_score"`, `"accessibility_score"`, `"seo_optimization"`,
	} {
		assert.Contains(t, p, key)
	}
}

func TestBuild_AdditionalContext(t *testing.T) {
	p := Build("https://acme.com", "  Luxury watches brand  ")
	assert.Contains(t, p, "ADDITIONAL CONTEXT: Luxury watches brand")

	// Пустой/пробельный контекст не оставляет следов
	blank := Build("https://acme.com", "   ")
	assert.False(t, strings.Contains(blank, "ADDITIONAL CONTEXT"))
}

func TestUserMessage(t *testing.T) {
	m := UserMessage("https://acme.com")
	assert.Contains(t, m, "https://acme.com")
	assert.Contains(t, m, "brand audit")
}
