// Package extract вытаскивает JSON-объект из сырого текста completion.
// Модели обычно либо оборачивают JSON в код-блок, либо окружают прозой,
// либо допускают мелкие синтаксические огрехи. Ремонт применяется только
// как последняя мера и только для известных типовых ошибок — пакет
// сознательно не является универсальным санитайзером.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// UnparsableError — все стратегии исчерпаны. Несет исходный текст
// целиком для диагностики (в ответ клиенту он не попадает).
type UnparsableError struct {
	Raw string
}

func (e *UnparsableError) Error() string {
	preview := e.Raw
	if len(preview) > 120 {
		preview = preview[:120] + "..."
	}
	return fmt.Sprintf("extract: completion contains no parsable JSON object: %q", preview)
}

var (
	// ```json { ... } ``` — нежадный матч содержимого код-блока
	fencedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

	// Незакавыченные ключи-идентификаторы: {foo: 1} -> {"foo": 1}
	unquotedKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

	// Висячие запятые перед } или ]
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Extract находит кандидата и парсит его. Порядок стратегий фиксирован,
// первая успешная выигрывает:
//  1. содержимое fenced-блока;
//  2. жадный диапазон от первой { до последней };
//  3. весь текст как есть.
//
// repaired=true означает, что строгий парсинг не прошел и сработал
// ограниченный ремонт.
func Extract(raw string) (obj map[string]interface{}, repaired bool, err error) {
	candidate := pickCandidate(raw)

	if obj, err = parseStrict(candidate); err == nil {
		return obj, false, nil
	}

	if obj, err = parseStrict(repair(candidate)); err == nil {
		return obj, true, nil
	}

	return nil, false, &UnparsableError{Raw: raw}
}

func pickCandidate(raw string) string {
	if m := fencedRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start >= 0 && end > start {
		return raw[start : end+1]
	}

	return raw
}

func parseStrict(candidate string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// repair применяет ограниченный набор текстовых починок и не более того.
func repair(candidate string) string {
	fixed := unquotedKeyRe.ReplaceAllString(candidate, `${1}"${2}":`)
	fixed = trailingCommaRe.ReplaceAllString(fixed, "${1}")
	return fixed
}
