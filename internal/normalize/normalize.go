// Package normalize гарантирует схемную полноту отчета: каждое
// обязательное поле существует после нормализации, что бы ни вернул
// completion-сервис. Это тотальная функция — она не умеет падать.
package normalize

import (
	"fmt"
	"math"

	"github.com/xela07ax/brandpulse/internal/domain"
)

// DefaultScore — запасная оценка для отсутствующих/невалидных чисел.
const DefaultScore = 70

// Result — нормализованная часть отчета, готовая к персистентности.
type Result struct {
	Score            int
	ScoreBreakdown   map[string]int
	Summary          string
	DetailedAnalysis map[string]interface{}
}

// Apply нормализует распарсенный объект. Вход {} или nil дает полностью
// синтезированный отчет; уже полный вход проходит без изменений
// (повторная нормализация — no-op).
func Apply(parsed map[string]interface{}, domainName string) Result {
	if parsed == nil {
		parsed = map[string]interface{}{}
	}

	res := Result{
		Score:          scoreOrDefault(parsed["score"]),
		ScoreBreakdown: normalizeBreakdown(parsed["score_breakdown"]),
		Summary:        summaryOrDefault(parsed["summary"], domainName),
	}

	analysis, _ := parsed["detailed_analysis"].(map[string]interface{})
	if analysis == nil {
		analysis = map[string]interface{}{}
	}
	res.DetailedAnalysis = normalizeAnalysis(analysis)

	return res
}

// scoreOrDefault принимает только конечные числа в [0,100].
// 150, -5 и "high" одинаково откатываются к дефолту, а не клампятся.
func scoreOrDefault(v interface{}) int {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > 100 {
		return DefaultScore
	}
	return int(math.Round(f))
}

// normalizeBreakdown гарантирует пять фиксированных категорий.
// Неизвестные категории из входа сохраняются, а не отбрасываются.
func normalizeBreakdown(v interface{}) map[string]int {
	raw, _ := v.(map[string]interface{})

	out := make(map[string]int, len(domain.ScoreCategories))
	for _, cat := range domain.ScoreCategories {
		out[cat] = scoreOrDefault(raw[cat])
	}
	for name, val := range raw {
		if _, fixed := out[name]; fixed {
			continue
		}
		if f, ok := val.(float64); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			out[name] = int(math.Round(f))
		}
	}
	return out
}

func summaryOrDefault(v interface{}, domainName string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fmt.Sprintf("Brand audit completed for %s. Detailed analysis available in the report.", domainName)
}

// normalizeAnalysis: website_analysis обязательна и дефолтится; остальные
// четыре секции — passthrough (UI рендерит их условно). Асимметрия
// намеренная: метрики website performance визуализируются всегда.
func normalizeAnalysis(analysis map[string]interface{}) map[string]interface{} {
	website, _ := analysis[domain.SectionWebsite].(map[string]interface{})
	switch {
	case website == nil:
		analysis[domain.SectionWebsite] = defaultWebsiteAnalysis()
	case !hasMetrics(website):
		website["performance_metrics"] = DefaultPerformanceMetrics()
	}

	for _, section := range domain.OptionalSections {
		sec, ok := analysis[section].(map[string]interface{})
		if !ok {
			continue
		}
		// recommendations обязаны быть массивом, не ошибкой
		if _, isArr := sec["recommendations"].([]interface{}); !isArr {
			if _, present := sec["recommendations"]; present {
				sec["recommendations"] = []interface{}{}
			}
		}
	}

	return analysis
}

func hasMetrics(website map[string]interface{}) bool {
	metrics, ok := website["performance_metrics"].(map[string]interface{})
	return ok && len(metrics) > 0
}

// DefaultPerformanceMetrics — фиксированные метрики для синтезированной
// секции. Детерминированные значения, никакого рандома.
func DefaultPerformanceMetrics() map[string]interface{} {
	return map[string]interface{}{
		"mobile_speed_score":  float64(75),
		"accessibility_score": float64(82),
		"seo_optimization":    float64(78),
	}
}

func defaultWebsiteAnalysis() map[string]interface{} {
	return map[string]interface{}{
		"user_experience": "The website provides a standard user experience with clear navigation elements.",
		"content_quality": "Content effectively communicates the brand message with clear value propositions.",
		"performance":     "Page load times are moderate with some optimization opportunities for mobile devices.",
		"summary":         "The website offers a functional user experience with opportunities for performance improvements.",
		"strengths": []interface{}{
			"Clear navigation structure",
			"Effective content organization",
			"Consistent branding elements",
		},
		"weaknesses": []interface{}{
			"Mobile optimization needed",
			"Page load speed can be improved",
			"Some accessibility issues detected",
		},
		"performance_metrics": DefaultPerformanceMetrics(),
		"recommendations": []interface{}{
			"Optimize images for faster loading on mobile devices",
			"Improve accessibility features for broader audience reach",
			"Enhance SEO elements for better search visibility",
		},
	}
}
