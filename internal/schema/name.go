package schema

import (
	"regexp"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// normalizeColumnName 规范化列名：分隔符转空格、压缩空白、转小写
func normalizeColumnName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	name = whitespaceRE.ReplaceAllString(name, " ")
	return strings.ToLower(strings.TrimSpace(name))
}

// nameSimilarity 列名与目标关键词的最大部分模糊匹配得分 (0-1)
func (e *Engine) nameSimilarity(columnName string, role Role) float64 {
	cleaned := normalizeColumnName(columnName)

	max := 0.0
	for _, keyword := range e.vocab.Keywords[role] {
		if ratio := partialRatio(cleaned, keyword); ratio > max {
			max = ratio
		}
	}
	return max
}

// regexBonus 命中任一正则提示时给固定加分 0.4
func (e *Engine) regexBonus(columnName string, role Role) float64 {
	cleaned := strings.ToLower(columnName)
	for _, pattern := range e.vocab.Hints[role] {
		if pattern.MatchString(cleaned) {
			return 0.4
		}
	}
	return 0.0
}

// partialRatio 部分模糊匹配：较短串与较长串所有等长窗口的
// 最佳 Levenshtein 相似度
func partialRatio(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0.0
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := longer[i : i+len(shorter)]
		ratio := levenshtein.RatioForStrings(shorter, window, levenshtein.DefaultOptions)
		if ratio > best {
			best = ratio
		}
		if best >= 1.0 {
			break
		}
	}
	return best
}
